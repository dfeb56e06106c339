package account

import (
	"time"

	"github.com/sharethrift/marketplace/internal/core/domain"
)

// Props is the plain-data shape of an Account that repositories map to and
// from storage documents.
type Props struct {
	ID        string
	Version   int64
	Name      string
	Handle    string
	CreatedBy string
	Contacts  []ContactProps
	Roles     []RoleProps
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ContactProps struct {
	ID        string
	UserID    string
	RoleID    string
	CreatedAt time.Time
}

type RoleProps struct {
	ID          string
	Name        string
	IsDefault   bool
	Permissions RolePermissions
	CreatedAt   time.Time
}

// Rehydrate rebuilds an Account from stored props and binds the visa p
// issues for it. Stored data is trusted and not re-validated.
func Rehydrate(props Props, p Passport, rec *domain.EventRecorder) *Account {
	a := &Account{
		AggregateRoot: domain.NewAggregateRoot(props.ID, props.Version, rec),
		name:          Name(props.Name),
		handle:        Handle(props.Handle),
		createdBy:     props.CreatedBy,
		createdAt:     props.CreatedAt,
		updatedAt:     props.UpdatedAt,
	}
	for _, r := range props.Roles {
		a.roles = append(a.roles, &Role{
			Entity:      domain.NewEntity(r.ID),
			name:        RoleName(r.Name),
			isDefault:   r.IsDefault,
			permissions: r.Permissions,
			createdAt:   r.CreatedAt,
		})
	}
	for _, c := range props.Contacts {
		a.contacts = append(a.contacts, &Contact{
			Entity:    domain.NewEntity(c.ID),
			userID:    c.UserID,
			roleID:    c.RoleID,
			createdAt: c.CreatedAt,
		})
	}
	a.visa = visaFrom(p, a)
	return a
}

// Props snapshots the aggregate.
func (a *Account) Props() Props {
	props := Props{
		ID:        a.ID(),
		Version:   a.Version(),
		Name:      string(a.name),
		Handle:    string(a.handle),
		CreatedBy: a.createdBy,
		CreatedAt: a.createdAt,
		UpdatedAt: a.updatedAt,
	}
	for _, r := range a.roles {
		props.Roles = append(props.Roles, RoleProps{
			ID:          r.ID(),
			Name:        string(r.name),
			IsDefault:   r.isDefault,
			Permissions: r.permissions,
			CreatedAt:   r.createdAt,
		})
	}
	for _, c := range a.contacts {
		props.Contacts = append(props.Contacts, ContactProps{
			ID:        c.ID(),
			UserID:    c.userID,
			RoleID:    c.roleID,
			CreatedAt: c.createdAt,
		})
	}
	return props
}
