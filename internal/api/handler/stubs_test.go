package handler

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/sharethrift/marketplace/internal/core/domain/account"
	"github.com/sharethrift/marketplace/internal/core/domain/appeal"
	"github.com/sharethrift/marketplace/internal/core/domain/listing"
	"github.com/sharethrift/marketplace/internal/core/domain/passport"
	"github.com/sharethrift/marketplace/internal/core/domain/user"
	"github.com/sharethrift/marketplace/internal/core/ports"
)

var errNotStubbed = errors.New("not stubbed")

// newContext builds an echo context for method and target with a JSON body
// (empty for none) and p stored where the Auth middleware puts it. A nil p
// leaves the context unauthenticated.
func newContext(t *testing.T, method, target, body string, p passport.Passport) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := newTestEcho().NewContext(req, rec)
	if p != nil {
		c.Set(passportKey, p)
	}
	return c, rec
}

func withParams(c echo.Context, kv ...string) echo.Context {
	var names, values []string
	for i := 0; i+1 < len(kv); i += 2 {
		names = append(names, kv[i])
		values = append(values, kv[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c
}

func sampleListing(id string) *listing.Listing {
	return listing.Rehydrate(listing.Props{
		ID:         id,
		Version:    3,
		AccountID:  "acc-1",
		Title:      "Road bike",
		StatusCode: listing.StateUnpublished,
		Draft: listing.DraftProps{
			Title:         "Road bike",
			Photos:        []listing.Photo{{Order: 1, DocumentID: "doc-1"}},
			StatusHistory: []listing.DraftStatus{{StatusCode: listing.StatusDraft}},
		},
	}, passport.NewSystem(), nil)
}

func sampleAccount(id string) *account.Account {
	return account.Rehydrate(account.Props{
		ID:     id,
		Name:   "Ada",
		Handle: "ada",
		Roles:  []account.RoleProps{{ID: "r1", Name: "Administrator", IsDefault: true, Permissions: account.FullPermissions()}},
		Contacts: []account.ContactProps{
			{ID: "c1", UserID: "u1", RoleID: "r1"},
		},
	}, nil, nil)
}

// --- services ---

type stubAccountService struct {
	updateFn      func(id string, in ports.UpdateAccountInput) (*account.Account, error)
	addRoleFn     func(accountID, name string) (*account.Role, error)
	deleteRoleFn  func(accountID, roleID, reassignTo string) error
	updatePermsFn func(accountID, roleID string, perms account.RolePermissions) error
}

func (s *stubAccountService) Get(_ context.Context, _ passport.Passport, id string) (*account.Account, error) {
	return sampleAccount(id), nil
}

func (s *stubAccountService) CreateInitialAccount(context.Context, passport.Passport, account.Owner) (*account.Account, error) {
	return nil, errNotStubbed
}

func (s *stubAccountService) UpdateSettings(_ context.Context, _ passport.Passport, id string, in ports.UpdateAccountInput) (*account.Account, error) {
	return s.updateFn(id, in)
}

func (s *stubAccountService) AddRole(_ context.Context, _ passport.Passport, accountID, name string) (*account.Role, error) {
	return s.addRoleFn(accountID, name)
}

func (s *stubAccountService) DeleteRole(_ context.Context, _ passport.Passport, accountID, roleID, reassignTo string) error {
	return s.deleteRoleFn(accountID, roleID, reassignTo)
}

func (s *stubAccountService) UpdateRolePermissions(_ context.Context, _ passport.Passport, accountID, roleID string, perms account.RolePermissions) error {
	return s.updatePermsFn(accountID, roleID, perms)
}

func (s *stubAccountService) AddContact(context.Context, passport.Passport, string, string, string) (*account.Contact, error) {
	return nil, errNotStubbed
}

type stubListingService struct {
	createFn     func(accountID, title string) (*listing.Listing, error)
	updateFn     func(id string, in ports.UpdateDraftInput) (*listing.Listing, error)
	addPhotoFn   func(id string, order int, content io.Reader) (string, error)
	setBlockedFn func(id string, blocked bool) error
	publishFn    func(id string) error
	rejectFn     func(id, reason string) error
}

func (s *stubListingService) Create(_ context.Context, _ passport.Passport, accountID, title string) (*listing.Listing, error) {
	return s.createFn(accountID, title)
}

func (s *stubListingService) Get(_ context.Context, _ passport.Passport, id string) (*listing.Listing, error) {
	return sampleListing(id), nil
}

func (s *stubListingService) UpdateDraft(_ context.Context, _ passport.Passport, id string, in ports.UpdateDraftInput) (*listing.Listing, error) {
	return s.updateFn(id, in)
}

func (s *stubListingService) AddPhoto(_ context.Context, _ passport.Passport, id string, order int, content io.Reader) (string, error) {
	return s.addPhotoFn(id, order, content)
}

func (s *stubListingService) RemovePhoto(context.Context, passport.Passport, string, int) error {
	return errNotStubbed
}

func (s *stubListingService) RequestPublish(_ context.Context, _ passport.Passport, id string) error {
	return s.publishFn(id)
}

func (s *stubListingService) WithdrawPublishRequest(context.Context, passport.Passport, string) error {
	return errNotStubbed
}

func (s *stubListingService) ApprovePublish(context.Context, passport.Passport, string) error {
	return errNotStubbed
}

func (s *stubListingService) RejectPublish(_ context.Context, _ passport.Passport, id, reason string) error {
	return s.rejectFn(id, reason)
}

func (s *stubListingService) SetBlocked(_ context.Context, _ passport.Passport, id string, blocked bool) error {
	return s.setBlockedFn(id, blocked)
}

func (s *stubListingService) Delete(context.Context, passport.Passport, string) error {
	return errNotStubbed
}

type stubAppealService struct {
	createFn func(in ports.CreateAppealInput) (*appeal.Request, error)
	listFn   func(f ports.AppealFilter) ([]*appeal.Request, error)
	updateFn func(id string, in ports.UpdateAppealInput) (*appeal.Request, error)
}

func (s *stubAppealService) Create(_ context.Context, _ passport.Passport, in ports.CreateAppealInput) (*appeal.Request, error) {
	return s.createFn(in)
}

func (s *stubAppealService) Get(context.Context, passport.Passport, string) (*appeal.Request, error) {
	return nil, errNotStubbed
}

func (s *stubAppealService) List(_ context.Context, _ passport.Passport, f ports.AppealFilter) ([]*appeal.Request, error) {
	return s.listFn(f)
}

func (s *stubAppealService) Update(_ context.Context, _ passport.Passport, id string, in ports.UpdateAppealInput) (*appeal.Request, error) {
	return s.updateFn(id, in)
}

type stubUserService struct {
	setProfileFn func(id, first, last string) (*user.PersonalUser, error)
	setBlockedFn func(id string, blocked bool) (*user.PersonalUser, error)
}

func (s *stubUserService) Get(context.Context, string) (*user.PersonalUser, error) {
	return nil, errNotStubbed
}

func (s *stubUserService) Provision(context.Context, string, string, string) (*user.PersonalUser, error) {
	return nil, errNotStubbed
}

func (s *stubUserService) SetProfile(_ context.Context, _ passport.Passport, id, first, last string) (*user.PersonalUser, error) {
	return s.setProfileFn(id, first, last)
}

func (s *stubUserService) SetBlocked(_ context.Context, _ passport.Passport, id string, blocked bool) (*user.PersonalUser, error) {
	return s.setBlockedFn(id, blocked)
}
