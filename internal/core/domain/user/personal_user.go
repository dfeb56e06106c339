package user

import (
	"strings"
	"time"

	"github.com/sharethrift/marketplace/internal/core/domain"
)

// Permissions is the record a personal-user visa hands to predicates.
type Permissions struct {
	IsEditingOwnAccount bool
	CanBlockUsers       bool
	IsSystemAccount     bool
}

type Visa = domain.Visa[Permissions]

type Passport interface {
	ForPersonalUser(root *PersonalUser) Visa
}

func canEditProfile(p Permissions) bool { return p.IsEditingOwnAccount || p.IsSystemAccount }
func canBlock(p Permissions) bool       { return p.CanBlockUsers || p.IsSystemAccount }

type Email string

func NewEmail(s string) (Email, error) {
	s = strings.ToLower(domain.NormalizeText(s))
	if err := domain.ValidateVar("email", s, "required,email,max=254"); err != nil {
		return "", err
	}
	return Email(s), nil
}

type PersonName string

func NewPersonName(field, s string) (PersonName, error) {
	s = domain.NormalizeText(s)
	if err := domain.ValidateVar(field, s, "max=100"); err != nil {
		return "", err
	}
	return PersonName(s), nil
}

// PersonalUser is a marketplace member. Blocked users lose most rights in
// every visa minted for them.
type PersonalUser struct {
	domain.AggregateRoot
	visa Visa

	email     Email
	firstName PersonName
	lastName  PersonName
	isBlocked bool
	blockedBy string
	createdAt time.Time
	updatedAt time.Time
}

// NewPersonalUser provisions a user on first authentication and raises
// PersonalUserCreated so an account can be created for them.
func NewPersonalUser(p Passport, id, email, firstName, lastName string, rec *domain.EventRecorder) (*PersonalUser, error) {
	e, err := NewEmail(email)
	if err != nil {
		return nil, err
	}
	first, err := NewPersonName("first name", firstName)
	if err != nil {
		return nil, err
	}
	last, err := NewPersonName("last name", lastName)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &PersonalUser{
		AggregateRoot: domain.NewAggregateRoot(id, 0, rec),
		email:         e,
		firstName:     first,
		lastName:      last,
		createdAt:     now,
		updatedAt:     now,
	}
	u.visa = visaFrom(p, u)
	if err := domain.Require(u.visa, "create personal user", canEditProfile); err != nil {
		return nil, err
	}
	u.AddIntegrationEvent(domain.EventPersonalUserCreated, domain.PersonalUserCreatedPayload{
		UserID:    u.ID(),
		Email:     string(e),
		FirstName: string(first),
		LastName:  string(last),
	})
	return u, nil
}

func visaFrom(p Passport, u *PersonalUser) Visa {
	if p == nil {
		return domain.DenyVisa[Permissions]{}
	}
	return p.ForPersonalUser(u)
}

func (u *PersonalUser) Email() string        { return string(u.email) }
func (u *PersonalUser) FirstName() string    { return string(u.firstName) }
func (u *PersonalUser) LastName() string     { return string(u.lastName) }
func (u *PersonalUser) IsBlocked() bool      { return u.isBlocked }
func (u *PersonalUser) BlockedBy() string    { return u.blockedBy }
func (u *PersonalUser) CreatedAt() time.Time { return u.createdAt }
func (u *PersonalUser) UpdatedAt() time.Time { return u.updatedAt }

// DisplayName joins first and last name, falling back to the email.
func (u *PersonalUser) DisplayName() string {
	n := strings.TrimSpace(string(u.firstName) + " " + string(u.lastName))
	if n == "" {
		return string(u.email)
	}
	return n
}

func (u *PersonalUser) SetProfile(firstName, lastName string) error {
	if err := domain.Require(u.visa, "set profile", canEditProfile); err != nil {
		return err
	}
	first, err := NewPersonName("first name", firstName)
	if err != nil {
		return err
	}
	last, err := NewPersonName("last name", lastName)
	if err != nil {
		return err
	}
	u.firstName, u.lastName = first, last
	u.touch()
	u.AddDomainEvent(domain.EventPersonalUserProfileUpdated, domain.PersonalUserCreatedPayload{
		UserID: u.ID(), Email: string(u.email), FirstName: string(first), LastName: string(last),
	})
	return nil
}

// SetBlocked blocks or unblocks the user. blockerID is recorded so an appeal
// can name who imposed the block.
func (u *PersonalUser) SetBlocked(blocked bool, blockerID string) error {
	if err := domain.Require(u.visa, "set user blocked", canBlock); err != nil {
		return err
	}
	if u.isBlocked == blocked {
		return nil
	}
	u.isBlocked = blocked
	if blocked {
		u.blockedBy = blockerID
	} else {
		u.blockedBy = ""
	}
	u.touch()
	u.AddDomainEvent(domain.EventPersonalUserBlockChanged, domain.BlockChangedPayload{AggregateID: u.ID(), Blocked: blocked})
	return nil
}

func (u *PersonalUser) touch() {
	u.updatedAt = time.Now().UTC()
}

type Props struct {
	ID        string
	Version   int64
	Email     string
	FirstName string
	LastName  string
	IsBlocked bool
	BlockedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func Rehydrate(props Props, p Passport, rec *domain.EventRecorder) *PersonalUser {
	u := &PersonalUser{
		AggregateRoot: domain.NewAggregateRoot(props.ID, props.Version, rec),
		email:         Email(props.Email),
		firstName:     PersonName(props.FirstName),
		lastName:      PersonName(props.LastName),
		isBlocked:     props.IsBlocked,
		blockedBy:     props.BlockedBy,
		createdAt:     props.CreatedAt,
		updatedAt:     props.UpdatedAt,
	}
	u.visa = visaFrom(p, u)
	return u
}

func (u *PersonalUser) Props() Props {
	return Props{
		ID:        u.ID(),
		Version:   u.Version(),
		Email:     string(u.email),
		FirstName: string(u.firstName),
		LastName:  string(u.lastName),
		IsBlocked: u.isBlocked,
		BlockedBy: u.blockedBy,
		CreatedAt: u.createdAt,
		UpdatedAt: u.updatedAt,
	}
}
