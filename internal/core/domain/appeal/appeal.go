package appeal

import (
	"time"

	"github.com/sharethrift/marketplace/internal/core/domain"
)

// Type discriminates the appeal variants.
type Type string

const (
	TypeListing Type = "ListingAppealRequest"
	TypeUser    Type = "UserAppealRequest"
)

// State of an appeal. accepted and denied are terminal.
type State string

const (
	StateRequested State = "requested"
	StateAccepted  State = "accepted"
	StateDenied    State = "denied"
)

var validTransitions = map[State][]State{
	StateRequested: {StateAccepted, StateDenied},
}

func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s State) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

func ParseState(s string) (State, error) {
	if err := domain.ValidateVar("state", s, "required,oneof=requested accepted denied"); err != nil {
		return "", err
	}
	return State(s), nil
}

// Reason is the appellant's free-text explanation.
type Reason string

func NewReason(s string) (Reason, error) {
	s = domain.NormalizeText(s)
	if err := domain.ValidateVar("reason", s, "required,max=1000"); err != nil {
		return "", err
	}
	return Reason(s), nil
}

// Permissions is the record an appeal visa hands to predicates.
// CanUpdateAppealRequestState belongs to the appellant and covers the
// reason only; accepting or denying needs CanResolveAppealRequest.
type Permissions struct {
	CanCreateAppealRequest      bool
	CanUpdateAppealRequestState bool
	CanResolveAppealRequest     bool
	CanViewAppealRequest        bool
	CanViewAllAppealRequests    bool
	IsSystemAccount             bool
}

type Visa = domain.Visa[Permissions]

type Passport interface {
	ForAppealRequest(root *Request) Visa
}

// canCreate admits the appellant filing for themselves, blocked or not, and
// an actor who could resolve the appeal filing on the appellant's behalf.
func canCreate(p Permissions) bool {
	return p.IsSystemAccount ||
		p.CanUpdateAppealRequestState ||
		(p.CanCreateAppealRequest && p.CanResolveAppealRequest)
}

func canEditReason(p Permissions) bool {
	return p.CanUpdateAppealRequestState || p.IsSystemAccount
}

func canResolve(p Permissions) bool {
	return p.CanResolveAppealRequest || p.IsSystemAccount
}

func canView(p Permissions) bool {
	return p.CanViewAppealRequest || p.CanResolveAppealRequest || p.CanViewAllAppealRequests || p.IsSystemAccount
}

func canViewAll(p Permissions) bool {
	return p.CanViewAllAppealRequests || p.IsSystemAccount
}

// RequireViewAll checks, against an appeal nobody is party to, that p may
// list every appeal regardless of who filed it.
func RequireViewAll(p Passport) error {
	probe := &Request{}
	return domain.Require(visaFrom(p, probe), "list appeal requests", canViewAll)
}

// Request is an appeal against a block imposed on a user or on a listing.
type Request struct {
	domain.AggregateRoot
	visa Visa

	typ       Type
	userID    string
	listingID string
	blockerID string
	reason    Reason
	state     State
	createdAt time.Time
	updatedAt time.Time
}

// NewListingAppealRequest files an appeal by userID against the block
// blockerID put on listingID.
func NewListingAppealRequest(p Passport, id, userID, listingID, reason, blockerID string, rec *domain.EventRecorder) (*Request, error) {
	if listingID == "" {
		return nil, domain.NewValidationError("listing id", "is required")
	}
	return newRequest(p, TypeListing, id, userID, listingID, reason, blockerID, rec)
}

// NewUserAppealRequest files an appeal by userID against their own block.
func NewUserAppealRequest(p Passport, id, userID, reason, blockerID string, rec *domain.EventRecorder) (*Request, error) {
	return newRequest(p, TypeUser, id, userID, "", reason, blockerID, rec)
}

func newRequest(p Passport, typ Type, id, userID, listingID, reason, blockerID string, rec *domain.EventRecorder) (*Request, error) {
	if userID == "" {
		return nil, domain.NewValidationError("user id", "is required")
	}
	if blockerID == "" {
		return nil, domain.NewValidationError("blocker id", "is required")
	}
	rsn, err := NewReason(reason)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	r := &Request{
		AggregateRoot: domain.NewAggregateRoot(id, 0, rec),
		typ:           typ,
		userID:        userID,
		listingID:     listingID,
		blockerID:     blockerID,
		reason:        rsn,
		state:         StateRequested,
		createdAt:     now,
		updatedAt:     now,
	}
	r.visa = visaFrom(p, r)
	if err := domain.Require(r.visa, "create appeal request", canCreate); err != nil {
		return nil, err
	}
	r.AddDomainEvent(domain.EventAppealRequestCreated, r.payload())
	return r, nil
}

func visaFrom(p Passport, r *Request) Visa {
	if p == nil {
		return domain.DenyVisa[Permissions]{}
	}
	return p.ForAppealRequest(r)
}

func (r *Request) Type() Type           { return r.typ }
func (r *Request) UserID() string       { return r.userID }
func (r *Request) ListingID() string    { return r.listingID }
func (r *Request) BlockerID() string    { return r.blockerID }
func (r *Request) Reason() string       { return string(r.reason) }
func (r *Request) State() State         { return r.state }
func (r *Request) CreatedAt() time.Time { return r.createdAt }
func (r *Request) UpdatedAt() time.Time { return r.updatedAt }

// CanView reports whether the bound actor may read this appeal.
func (r *Request) CanView() bool {
	return r.visa != nil && r.visa.DetermineIf(canView)
}

// SetReason replaces the reason while the appeal is still open.
func (r *Request) SetReason(s string) error {
	if err := domain.Require(r.visa, "set appeal reason", canEditReason); err != nil {
		return err
	}
	rsn, err := NewReason(s)
	if err != nil {
		return err
	}
	if r.state.IsTerminal() {
		return domain.NewInvariantViolationError("appeal request is already resolved")
	}
	r.reason = rsn
	r.touch()
	return nil
}

// SetState resolves the appeal. Accepting raises AppealRequestAccepted so
// the block can be lifted by whoever owns the blocked aggregate. The
// appellant never resolves their own appeal.
func (r *Request) SetState(s string) error {
	if err := domain.Require(r.visa, "set appeal state", canResolve); err != nil {
		return err
	}
	next, err := ParseState(s)
	if err != nil {
		return err
	}
	if !r.state.CanTransitionTo(next) {
		return domain.NewInvalidStateTransitionError(string(r.state), string(next))
	}
	r.state = next
	r.touch()

	r.AddDomainEvent(domain.EventAppealRequestStateChanged, r.payload())
	if next == StateAccepted {
		r.AddIntegrationEvent(domain.EventAppealRequestAccepted, r.payload())
	}
	return nil
}

func (r *Request) payload() domain.AppealRequestPayload {
	return domain.AppealRequestPayload{
		AppealRequestID: r.ID(),
		Type:            string(r.typ),
		UserID:          r.userID,
		ListingID:       r.listingID,
		BlockerID:       r.blockerID,
		State:           string(r.state),
	}
}

func (r *Request) touch() {
	r.updatedAt = time.Now().UTC()
}

// Props is the storage-facing shape of a Request.
type Props struct {
	ID        string
	Version   int64
	Type      Type
	UserID    string
	ListingID string
	BlockerID string
	Reason    string
	State     State
	CreatedAt time.Time
	UpdatedAt time.Time
}

func Rehydrate(props Props, p Passport, rec *domain.EventRecorder) *Request {
	r := &Request{
		AggregateRoot: domain.NewAggregateRoot(props.ID, props.Version, rec),
		typ:           props.Type,
		userID:        props.UserID,
		listingID:     props.ListingID,
		blockerID:     props.BlockerID,
		reason:        Reason(props.Reason),
		state:         props.State,
		createdAt:     props.CreatedAt,
		updatedAt:     props.UpdatedAt,
	}
	r.visa = visaFrom(p, r)
	return r
}

func (r *Request) Props() Props {
	return Props{
		ID:        r.ID(),
		Version:   r.Version(),
		Type:      r.typ,
		UserID:    r.userID,
		ListingID: r.listingID,
		BlockerID: r.blockerID,
		Reason:    string(r.reason),
		State:     r.state,
		CreatedAt: r.createdAt,
		UpdatedAt: r.updatedAt,
	}
}
