package handler

import (
	"github.com/sharethrift/marketplace/internal/core/domain/account"
	"github.com/sharethrift/marketplace/internal/core/domain/appeal"
	"github.com/sharethrift/marketplace/internal/core/domain/listing"
	"github.com/sharethrift/marketplace/internal/core/domain/user"
)

// Mappers from aggregates to the JSON contract. The contract is owned by the
// transport layer so aggregate changes do not leak into responses.

func toRoleResponse(r *account.Role) roleResponse {
	return roleResponse{
		ID:          r.ID(),
		Name:        r.Name(),
		IsDefault:   r.IsDefault(),
		Permissions: r.Permissions(),
		CreatedAt:   r.CreatedAt(),
	}
}

func toContactResponse(c *account.Contact) contactResponse {
	return contactResponse{
		ID:        c.ID(),
		UserID:    c.UserID(),
		RoleID:    c.RoleID(),
		CreatedAt: c.CreatedAt(),
	}
}

func toAccountResponse(a *account.Account) accountResponse {
	resp := accountResponse{
		ID:        a.ID(),
		Version:   a.Version(),
		Name:      a.Name(),
		Handle:    a.Handle(),
		CreatedBy: a.CreatedBy(),
		Roles:     []roleResponse{},
		Contacts:  []contactResponse{},
		CreatedAt: a.CreatedAt(),
		UpdatedAt: a.UpdatedAt(),
	}
	for _, r := range a.Roles() {
		resp.Roles = append(resp.Roles, toRoleResponse(r))
	}
	for _, c := range a.Contacts() {
		resp.Contacts = append(resp.Contacts, toContactResponse(c))
	}
	return resp
}

func toPhotoResponses(photos []listing.Photo) []photoResponse {
	out := make([]photoResponse, 0, len(photos))
	for _, p := range photos {
		out = append(out, photoResponse{Order: p.Order, DocumentID: p.DocumentID})
	}
	return out
}

// toListingResponse includes the draft only for actors allowed to see it.
func toListingResponse(l *listing.Listing) listingResponse {
	resp := listingResponse{
		ID:              l.ID(),
		Version:         l.Version(),
		AccountID:       l.AccountID(),
		Title:           l.Title(),
		Description:     l.Description(),
		Tags:            nonNil(l.Tags()),
		PrimaryCategory: l.PrimaryCategory(),
		Photos:          toPhotoResponses(l.Photos()),
		StatusCode:      string(l.StatusCode()),
		IsBlocked:       l.IsBlocked(),
		BlockedBy:       l.BlockedBy(),
		CreatedAt:       l.CreatedAt(),
		UpdatedAt:       l.UpdatedAt(),
		Links: listingLinks{
			Self:    "/v1/listings/" + l.ID(),
			Account: "/v1/accounts/" + l.AccountID(),
		},
	}
	if at := l.PublishedAt(); !at.IsZero() {
		resp.PublishedAt = &at
	}
	if !l.CanViewDraft() {
		return resp
	}
	d := l.Draft()
	resp.Draft = &draftResponse{
		Title:           d.Title(),
		Description:     d.Description(),
		Tags:            nonNil(d.Tags()),
		PrimaryCategory: d.PrimaryCategory(),
		Photos:          toPhotoResponses(d.Photos()),
		CurrentStatus:   string(d.CurrentStatus()),
		StatusHistory:   []draftStatusResponse{},
	}
	for _, s := range d.StatusHistory() {
		resp.Draft.StatusHistory = append(resp.Draft.StatusHistory, draftStatusResponse{
			StatusCode:   string(s.StatusCode),
			StatusDetail: s.StatusDetail,
			CreatedAt:    s.CreatedAt,
		})
	}
	return resp
}

func toAppealResponse(r *appeal.Request) appealResponse {
	return appealResponse{
		ID:        r.ID(),
		Version:   r.Version(),
		Type:      string(r.Type()),
		UserID:    r.UserID(),
		ListingID: r.ListingID(),
		BlockerID: r.BlockerID(),
		Reason:    r.Reason(),
		State:     string(r.State()),
		CreatedAt: r.CreatedAt(),
		UpdatedAt: r.UpdatedAt(),
	}
}

func toUserResponse(u *user.PersonalUser) userResponse {
	return userResponse{
		ID:        u.ID(),
		Version:   u.Version(),
		Email:     u.Email(),
		FirstName: u.FirstName(),
		LastName:  u.LastName(),
		IsBlocked: u.IsBlocked(),
		BlockedBy: u.BlockedBy(),
		CreatedAt: u.CreatedAt(),
		UpdatedAt: u.UpdatedAt(),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
