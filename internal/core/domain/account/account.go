package account

import (
	"time"

	"github.com/sharethrift/marketplace/internal/core/domain"
)

// Role is an entity inside Account carrying a permission bundle.
type Role struct {
	domain.Entity
	name        RoleName
	isDefault   bool
	permissions RolePermissions
	createdAt   time.Time
}

func (r *Role) Name() string                 { return string(r.name) }
func (r *Role) IsDefault() bool              { return r.isDefault }
func (r *Role) Permissions() RolePermissions { return r.permissions }
func (r *Role) CreatedAt() time.Time         { return r.createdAt }

// Contact links exactly one user to the account and to at most one role.
type Contact struct {
	domain.Entity
	userID    string
	roleID    string
	createdAt time.Time
}

func (c *Contact) UserID() string       { return c.userID }
func (c *Contact) RoleID() string       { return c.roleID }
func (c *Contact) CreatedAt() time.Time { return c.createdAt }

// Account is the aggregate root for a member organisation.
//
// Invariants:
//   - exactly one role has isDefault set, and it can never be deleted
//   - role names are unique (case-insensitive)
//   - every contact's role id refers to a role held by the account
//   - a user appears in at most one contact
type Account struct {
	domain.AggregateRoot
	visa      Visa
	name      Name
	handle    Handle
	createdBy string
	contacts  []*Contact
	roles     []*Role
	createdAt time.Time
	updatedAt time.Time
}

// Owner describes the user an initial account is provisioned for.
type Owner struct {
	UserID string
	Name   string
	Handle string
}

// CreateInitialAccountForNewUser provisions the first account of a new user:
// an Administrator default role with full permissions and the user as its
// first contact. No role exists yet to authorize against, so construction runs
// under an always-true visa; the returned account carries p's visa.
func CreateInitialAccountForNewUser(p Passport, id string, owner Owner, rec *domain.EventRecorder) (*Account, error) {
	name, err := NewName(owner.Name)
	if err != nil {
		return nil, err
	}
	handle, err := NewHandle(owner.Handle)
	if err != nil {
		return nil, err
	}
	if owner.UserID == "" {
		return nil, domain.NewValidationError("user id", "is required")
	}

	now := time.Now().UTC()
	a := &Account{
		AggregateRoot: domain.NewAggregateRoot(id, 0, rec),
		visa:          bootstrapVisa(),
		name:          name,
		handle:        handle,
		createdBy:     owner.UserID,
		createdAt:     now,
		updatedAt:     now,
	}

	admin := &Role{
		Entity:      domain.NewEntity(domain.NewID()),
		name:        DefaultRoleName,
		isDefault:   true,
		permissions: FullPermissions(),
		createdAt:   now,
	}
	a.roles = append(a.roles, admin)
	a.contacts = append(a.contacts, &Contact{
		Entity:    domain.NewEntity(domain.NewID()),
		userID:    owner.UserID,
		roleID:    admin.ID(),
		createdAt: now,
	})

	a.AddIntegrationEvent(domain.EventAccountCreated, domain.AccountCreatedPayload{
		AccountID: a.ID(),
		UserID:    owner.UserID,
	})

	a.visa = visaFrom(p, a)
	return a, nil
}

func visaFrom(p Passport, a *Account) Visa {
	if p == nil {
		return domain.DenyVisa[Permissions]{}
	}
	return p.ForAccount(a)
}

// --- Getters ---

func (a *Account) Name() string         { return string(a.name) }
func (a *Account) Handle() string       { return string(a.handle) }
func (a *Account) CreatedBy() string    { return a.createdBy }
func (a *Account) CreatedAt() time.Time { return a.createdAt }
func (a *Account) UpdatedAt() time.Time { return a.updatedAt }

func (a *Account) Roles() []*Role {
	return append([]*Role(nil), a.roles...)
}

func (a *Account) Contacts() []*Contact {
	return append([]*Contact(nil), a.contacts...)
}

func (a *Account) Role(id string) (*Role, bool) {
	for _, r := range a.roles {
		if r.ID() == id {
			return r, true
		}
	}
	return nil, false
}

func (a *Account) RoleByName(name string) (*Role, bool) {
	for _, r := range a.roles {
		if r.name.Equal(RoleName(name)) {
			return r, true
		}
	}
	return nil, false
}

func (a *Account) DefaultRole() *Role {
	for _, r := range a.roles {
		if r.isDefault {
			return r
		}
	}
	return nil
}

// ContactForUser finds the contact linking userID to this account.
func (a *Account) ContactForUser(userID string) (*Contact, bool) {
	for _, c := range a.contacts {
		if c.userID == userID {
			return c, true
		}
	}
	return nil, false
}

// --- Behaviour ---

func canView(p Permissions) bool {
	return p.IsMember || p.IsSystemAccount
}

func canManageRoles(p Permissions) bool {
	return p.Account.CanManageRolesAndPermissions || p.IsSystemAccount
}

func canManageSettings(p Permissions) bool {
	return p.Account.CanManageAccountSettings || p.IsSystemAccount
}

func canManageMembers(p Permissions) bool {
	return p.Account.CanManageMembers || p.IsSystemAccount
}

// CanView reports whether the bound actor may read the account's contacts
// and roles.
func (a *Account) CanView() bool {
	return a.visa != nil && a.visa.DetermineIf(canView)
}

func (a *Account) SetName(s string) error {
	if err := domain.Require(a.visa, "set account name", canManageSettings); err != nil {
		return err
	}
	name, err := NewName(s)
	if err != nil {
		return err
	}
	a.name = name
	a.touch()
	return nil
}

func (a *Account) SetHandle(s string) error {
	if err := domain.Require(a.visa, "set account handle", canManageSettings); err != nil {
		return err
	}
	handle, err := NewHandle(s)
	if err != nil {
		return err
	}
	a.handle = handle
	a.touch()
	return nil
}

// RequestAddRole creates a role with every permission off.
func (a *Account) RequestAddRole(roleName string) (*Role, error) {
	if err := domain.Require(a.visa, "add role", canManageRoles); err != nil {
		return nil, err
	}
	name, err := NewRoleName(roleName)
	if err != nil {
		return nil, err
	}
	if _, exists := a.RoleByName(string(name)); exists {
		return nil, domain.NewInvariantViolationError("role " + string(name) + " already exists")
	}

	role := &Role{
		Entity:    domain.NewEntity(domain.NewID()),
		name:      name,
		createdAt: time.Now().UTC(),
	}
	a.roles = append(a.roles, role)
	a.touch()

	a.AddDomainEvent(domain.EventRoleAdded, domain.RolePayload{AccountID: a.ID(), RoleID: role.ID()})
	return role, nil
}

// DeleteRoleAndReassignTo moves every contact on roleToDelete to roleToAssignTo
// and only then removes roleToDelete, so no contact ever points at a missing role.
func (a *Account) DeleteRoleAndReassignTo(roleToDeleteID, roleToAssignToID string) error {
	if err := domain.Require(a.visa, "delete role", canManageRoles); err != nil {
		return err
	}
	del, ok := a.Role(roleToDeleteID)
	if !ok {
		return domain.NewInvariantViolationError("role to delete does not exist")
	}
	to, ok := a.Role(roleToAssignToID)
	if !ok {
		return domain.NewInvariantViolationError("role to assign to does not exist")
	}
	if del.isDefault {
		return domain.NewInvariantViolationError("cannot delete default role")
	}
	if del.ID() == to.ID() {
		return domain.NewInvariantViolationError("cannot reassign contacts to the role being deleted")
	}

	var moved []string
	for _, c := range a.contacts {
		if c.roleID == del.ID() {
			c.roleID = to.ID()
			moved = append(moved, c.userID)
		}
	}

	kept := a.roles[:0]
	for _, r := range a.roles {
		if r.ID() != del.ID() {
			kept = append(kept, r)
		}
	}
	a.roles = kept
	a.touch()

	a.AddDomainEvent(domain.EventRoleDeleted, domain.RoleDeletedPayload{
		AccountID:       a.ID(),
		DeletedRoleID:   del.ID(),
		ReassignedTo:    to.ID(),
		ReassignedUsers: moved,
	})
	return nil
}

// UpdateRolePermissions replaces a non-default role's permission bundle.
// The default role keeps full permissions so the account can never lock
// itself out of role management.
func (a *Account) UpdateRolePermissions(roleID string, perms RolePermissions) error {
	if err := domain.Require(a.visa, "update role permissions", canManageRoles); err != nil {
		return err
	}
	role, ok := a.Role(roleID)
	if !ok {
		return domain.NewInvariantViolationError("role does not exist")
	}
	if role.isDefault {
		return domain.NewInvariantViolationError("cannot change permissions of default role")
	}
	role.permissions = perms
	a.touch()

	a.AddDomainEvent(domain.EventRolePermissionsUpdated, domain.RolePayload{AccountID: a.ID(), RoleID: role.ID()})
	return nil
}

// RequestAddContact links userID to the account. An empty roleID selects the
// default role.
func (a *Account) RequestAddContact(userID, roleID string) (*Contact, error) {
	if err := domain.Require(a.visa, "add contact", canManageMembers); err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, domain.NewValidationError("user id", "is required")
	}
	if _, exists := a.ContactForUser(userID); exists {
		return nil, domain.NewInvariantViolationError("user is already a contact of this account")
	}
	role, err := a.resolveRole(roleID)
	if err != nil {
		return nil, err
	}

	c := &Contact{
		Entity:    domain.NewEntity(domain.NewID()),
		userID:    userID,
		roleID:    role.ID(),
		createdAt: time.Now().UTC(),
	}
	a.contacts = append(a.contacts, c)
	a.touch()

	a.AddDomainEvent(domain.EventContactAdded, domain.ContactPayload{
		AccountID: a.ID(), ContactID: c.ID(), UserID: userID, RoleID: role.ID(),
	})
	return c, nil
}

func (a *Account) AssignContactRole(contactID, roleID string) error {
	if err := domain.Require(a.visa, "assign contact role", canManageMembers); err != nil {
		return err
	}
	var contact *Contact
	for _, c := range a.contacts {
		if c.ID() == contactID {
			contact = c
			break
		}
	}
	if contact == nil {
		return domain.NewInvariantViolationError("contact does not exist")
	}
	role, ok := a.Role(roleID)
	if !ok {
		return domain.NewInvariantViolationError("role does not exist")
	}
	contact.roleID = role.ID()
	a.touch()

	a.AddDomainEvent(domain.EventContactRoleAssigned, domain.ContactPayload{
		AccountID: a.ID(), ContactID: contact.ID(), UserID: contact.userID, RoleID: role.ID(),
	})
	return nil
}

func (a *Account) resolveRole(roleID string) (*Role, error) {
	if roleID == "" {
		if r := a.DefaultRole(); r != nil {
			return r, nil
		}
		return nil, domain.NewInvariantViolationError("account has no default role")
	}
	r, ok := a.Role(roleID)
	if !ok {
		return nil, domain.NewInvariantViolationError("role does not exist")
	}
	return r, nil
}

func (a *Account) touch() {
	a.updatedAt = time.Now().UTC()
}
