package account

import "github.com/sharethrift/marketplace/internal/core/domain"

// AccountPermissions govern management of the account itself.
type AccountPermissions struct {
	CanManageRolesAndPermissions bool `json:"can_manage_roles_and_permissions" bson:"can_manage_roles_and_permissions"`
	CanManageAccountSettings     bool `json:"can_manage_account_settings"      bson:"can_manage_account_settings"`
	CanManageMembers             bool `json:"can_manage_members"               bson:"can_manage_members"`
}

// ListingPermissions govern listings owned by the account.
type ListingPermissions struct {
	CanManageListings bool `json:"can_manage_listings" bson:"can_manage_listings"`
	CanDeleteListings bool `json:"can_delete_listings" bson:"can_delete_listings"`
}

// RolePermissions is the bundle carried by a Role.
type RolePermissions struct {
	Account AccountPermissions `json:"account" bson:"account"`
	Listing ListingPermissions `json:"listing" bson:"listing"`
}

// FullPermissions is what the default Administrator role is created with.
func FullPermissions() RolePermissions {
	return RolePermissions{
		Account: AccountPermissions{
			CanManageRolesAndPermissions: true,
			CanManageAccountSettings:     true,
			CanManageMembers:             true,
		},
		Listing: ListingPermissions{
			CanManageListings: true,
			CanDeleteListings: true,
		},
	}
}

// Permissions is the record an account visa hands to predicates. IsMember
// holds for any contact of the account, whatever their role.
type Permissions struct {
	Account         AccountPermissions
	Listing         ListingPermissions
	IsMember        bool
	IsSystemAccount bool
}

// FromRole exposes a role's permission bundle as a visa record.
func FromRole(rp RolePermissions) Permissions {
	return Permissions{Account: rp.Account, Listing: rp.Listing}
}

// Visa is the capability check an Account holds for the current actor.
type Visa = domain.Visa[Permissions]

// Passport mints account visas.
type Passport interface {
	ForAccount(root *Account) Visa
}

func bootstrapVisa() Visa {
	return domain.VisaFunc[Permissions](func() Permissions {
		p := FromRole(FullPermissions())
		p.IsSystemAccount = true
		return p
	})
}
