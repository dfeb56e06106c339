package listing

import (
	"sort"
	"time"

	"github.com/sharethrift/marketplace/internal/core/domain"
)

// Permissions is the record a listing visa hands to predicates.
type Permissions struct {
	CanManageListings   bool
	CanDeleteListings   bool
	CanModerateListings bool
	IsSystemAccount     bool
}

type Visa = domain.Visa[Permissions]

type Passport interface {
	ForListing(root *Listing) Visa
}

func canManage(p Permissions) bool   { return p.CanManageListings || p.IsSystemAccount }
func canDelete(p Permissions) bool   { return p.CanDeleteListings || p.IsSystemAccount }
func canModerate(p Permissions) bool { return p.IsSystemAccount || p.CanModerateListings }
func canSeeDraft(p Permissions) bool { return canManage(p) || canModerate(p) }

// Photo occupies one ordered slot. DocumentID names the blob holding its content.
type Photo struct {
	Order      int
	DocumentID string
}

// Draft is the working copy of a listing plus its approval history.
type Draft struct {
	title           Title
	description     Description
	tags            []string
	primaryCategory Category
	photos          []Photo
	statusHistory   []DraftStatus
}

func (d *Draft) Title() string           { return string(d.title) }
func (d *Draft) Description() string     { return string(d.description) }
func (d *Draft) Tags() []string          { return append([]string(nil), d.tags...) }
func (d *Draft) PrimaryCategory() string { return string(d.primaryCategory) }
func (d *Draft) Photos() []Photo         { return append([]Photo(nil), d.photos...) }

func (d *Draft) StatusHistory() []DraftStatus {
	return append([]DraftStatus(nil), d.statusHistory...)
}

// CurrentStatus derives the state from the status history.
func (d *Draft) CurrentStatus() StatusCode {
	return currentStatus(d.statusHistory)
}

func (d *Draft) photoAt(order int) (int, bool) {
	for i, p := range d.photos {
		if p.Order == order {
			return i, true
		}
	}
	return -1, false
}

// Listing is the aggregate root for an item offered by an account.
//
// Invariants:
//   - published fields change only through PublishApprovedDraft
//   - there is exactly one draft
//   - at most MaxPhotos photos, one per slot in [1, MaxPhotos]
//   - a document referenced by the published photos is never reused for new
//     draft content nor reported deleted while still referenced
type Listing struct {
	domain.AggregateRoot
	visa Visa

	accountID       string
	title           Title
	description     Description
	tags            []string
	primaryCategory Category
	photos          []Photo
	statusCode      PublishState
	isBlocked       bool
	blockedBy       string
	isDeleted       bool
	publishedAt     time.Time

	draft *Draft

	createdAt time.Time
	updatedAt time.Time
}

// NewDraftListing creates an unpublished listing whose draft holds title.
// The actor must be able to manage listings of accountID.
func NewDraftListing(p Passport, id, accountID, title string, rec *domain.EventRecorder) (*Listing, error) {
	t, err := NewTitle(title)
	if err != nil {
		return nil, err
	}
	if accountID == "" {
		return nil, domain.NewValidationError("account id", "is required")
	}
	now := time.Now().UTC()
	l := &Listing{
		AggregateRoot: domain.NewAggregateRoot(id, 0, rec),
		accountID:     accountID,
		statusCode:    StateUnpublished,
		draft:         &Draft{title: t},
		createdAt:     now,
		updatedAt:     now,
	}
	l.visa = visaFrom(p, l)
	if err := domain.Require(l.visa, "create listing", canManage); err != nil {
		return nil, err
	}
	l.AddDomainEvent(domain.EventListingCreated, l.payload())
	return l, nil
}

func visaFrom(p Passport, l *Listing) Visa {
	if p == nil {
		return domain.DenyVisa[Permissions]{}
	}
	return p.ForListing(l)
}

// --- Getters ---

func (l *Listing) AccountID() string        { return l.accountID }
func (l *Listing) Title() string            { return string(l.title) }
func (l *Listing) Description() string      { return string(l.description) }
func (l *Listing) Tags() []string           { return append([]string(nil), l.tags...) }
func (l *Listing) PrimaryCategory() string  { return string(l.primaryCategory) }
func (l *Listing) Photos() []Photo          { return append([]Photo(nil), l.photos...) }
func (l *Listing) StatusCode() PublishState { return l.statusCode }
func (l *Listing) IsBlocked() bool          { return l.isBlocked }
func (l *Listing) BlockedBy() string        { return l.blockedBy }
func (l *Listing) IsDeleted() bool          { return l.isDeleted }
func (l *Listing) PublishedAt() time.Time   { return l.publishedAt }
func (l *Listing) Draft() *Draft            { return l.draft }
func (l *Listing) CreatedAt() time.Time     { return l.createdAt }
func (l *Listing) UpdatedAt() time.Time     { return l.updatedAt }

// CurrentStatus is the draft's approval status.
func (l *Listing) CurrentStatus() StatusCode { return l.draft.CurrentStatus() }

// CanViewDraft reports whether the bound actor may read the working copy.
func (l *Listing) CanViewDraft() bool {
	return l.visa != nil && l.visa.DetermineIf(canSeeDraft)
}

// CanView reports whether the bound actor may read the listing at all. A
// live published listing is visible to everyone signed in.
func (l *Listing) CanView() bool {
	if l.statusCode == StatePublished && !l.isBlocked && !l.isDeleted {
		return true
	}
	return l.CanViewDraft()
}

// --- Draft editing ---

func (l *Listing) SetDraftTitle(s string) error {
	if err := l.checkDraftEditable("set draft title"); err != nil {
		return err
	}
	t, err := NewTitle(s)
	if err != nil {
		return err
	}
	if err := l.openDraft(); err != nil {
		return err
	}
	l.draft.title = t
	l.touch()
	return nil
}

func (l *Listing) SetDraftDescription(s string) error {
	if err := l.checkDraftEditable("set draft description"); err != nil {
		return err
	}
	d, err := NewDescription(s)
	if err != nil {
		return err
	}
	if err := l.openDraft(); err != nil {
		return err
	}
	l.draft.description = d
	l.touch()
	return nil
}

func (l *Listing) SetDraftTags(tags []string) error {
	if err := l.checkDraftEditable("set draft tags"); err != nil {
		return err
	}
	t, err := NewTags(tags)
	if err != nil {
		return err
	}
	if err := l.openDraft(); err != nil {
		return err
	}
	l.draft.tags = t
	l.touch()
	return nil
}

func (l *Listing) SetDraftPrimaryCategory(s string) error {
	if err := l.checkDraftEditable("set draft primary category"); err != nil {
		return err
	}
	c, err := NewCategory(s)
	if err != nil {
		return err
	}
	if err := l.openDraft(); err != nil {
		return err
	}
	l.draft.primaryCategory = c
	l.touch()
	return nil
}

// checkDraftEditable checks the visa and that the draft may be edited. It
// changes nothing, so callers validate their input after it and only then
// call openDraft.
func (l *Listing) checkDraftEditable(op string) error {
	if err := domain.Require(l.visa, op, canManage); err != nil {
		return err
	}
	if l.isDeleted {
		return domain.NewInvariantViolationError("listing is deleted")
	}
	switch cur := l.CurrentStatus(); cur {
	case StatusDraft, StatusRejected:
		return nil
	case StatusPending:
		return domain.NewInvariantViolationError("draft is pending review; withdraw the publish request before editing")
	case StatusApproved:
		if l.awaitingPublication() {
			return domain.NewInvariantViolationError("approved draft has not been published yet")
		}
		return nil
	default:
		return domain.NewInvalidStateTransitionError(string(cur), string(StatusDraft))
	}
}

// openDraft brings an editable draft into DRAFT: a rejected draft goes back
// to DRAFT and a published one starts a new cycle.
func (l *Listing) openDraft() error {
	switch l.CurrentStatus() {
	case StatusRejected:
		return l.transition(StatusDraft, "revised after rejection")
	case StatusApproved:
		l.draft.statusHistory = nil
	}
	return nil
}

func (l *Listing) awaitingPublication() bool {
	h := l.draft.statusHistory
	if len(h) == 0 {
		return false
	}
	return l.publishedAt.Before(h[len(h)-1].CreatedAt)
}

// --- Photos ---

func (l *Listing) publishedReferences(documentID string) bool {
	for _, p := range l.photos {
		if p.DocumentID == documentID {
			return true
		}
	}
	return false
}

// RequestAddPhoto prepares slot order for new content and returns the
// document id the content must be stored under. A slot keeps its document id
// unless the published listing still references it, in which case a new id
// is minted so the live blob is never overwritten.
func (l *Listing) RequestAddPhoto(order int) (string, error) {
	if err := l.checkDraftEditable("add photo"); err != nil {
		return "", err
	}
	if err := validatePhotoOrder(order); err != nil {
		return "", err
	}
	i, replacing := l.draft.photoAt(order)
	if !replacing && len(l.draft.photos) >= MaxPhotos {
		return "", domain.NewInvariantViolationError("a listing holds at most 5 photos")
	}
	if err := l.openDraft(); err != nil {
		return "", err
	}

	if replacing {
		docID := l.draft.photos[i].DocumentID
		if l.publishedReferences(docID) {
			docID = domain.NewID()
		}
		l.draft.photos[i].DocumentID = docID
		l.touch()
		return docID, nil
	}

	docID := domain.NewID()
	l.draft.photos = append(l.draft.photos, Photo{Order: order, DocumentID: docID})
	sort.Slice(l.draft.photos, func(i, j int) bool { return l.draft.photos[i].Order < l.draft.photos[j].Order })
	l.touch()
	return docID, nil
}

// RequestRemovePhoto empties slot order. The blob is reported deleted only
// when the published listing does not also reference it.
func (l *Listing) RequestRemovePhoto(order int) error {
	if err := l.checkDraftEditable("remove photo"); err != nil {
		return err
	}
	if err := validatePhotoOrder(order); err != nil {
		return err
	}
	i, ok := l.draft.photoAt(order)
	if !ok {
		return domain.NewInvariantViolationError("photo not found")
	}
	if err := l.openDraft(); err != nil {
		return err
	}

	removed := l.draft.photos[i]
	l.draft.photos = append(l.draft.photos[:i:i], l.draft.photos[i+1:]...)
	l.touch()

	if !l.publishedReferences(removed.DocumentID) {
		l.AddIntegrationEvent(domain.EventPhotoDeleted, domain.PhotoDeletedPayload{
			ListingID:  l.ID(),
			DocumentID: removed.DocumentID,
		})
	}
	return nil
}

// --- Approval workflow ---

// transition appends a status entry after checking the transition table.
// Entries never go back in time so that the newest entry is always current.
func (l *Listing) transition(to StatusCode, detail string) error {
	from := l.CurrentStatus()
	if !from.CanTransitionTo(to) {
		return domain.NewInvalidStateTransitionError(string(from), string(to))
	}
	at := time.Now().UTC()
	if h := l.draft.statusHistory; len(h) > 0 && at.Before(h[len(h)-1].CreatedAt) {
		at = h[len(h)-1].CreatedAt
	}
	l.draft.statusHistory = append(l.draft.statusHistory, DraftStatus{
		StatusCode:   to,
		StatusDetail: detail,
		CreatedAt:    at,
	})
	l.touch()
	return nil
}

// RequestPublish submits the draft for moderation.
func (l *Listing) RequestPublish() error {
	if err := domain.Require(l.visa, "request publish", canManage); err != nil {
		return err
	}
	if cur := l.CurrentStatus(); cur != StatusDraft {
		return domain.NewInvalidStateTransitionError(string(cur), string(StatusPending))
	}
	if len(l.draft.photos) == 0 {
		return domain.NewInvariantViolationError("a listing needs at least one photo to be published")
	}
	if l.isBlocked || l.isDeleted {
		return domain.NewInvariantViolationError("listing is blocked or deleted")
	}
	if err := l.transition(StatusPending, ""); err != nil {
		return err
	}
	l.AddIntegrationEvent(domain.EventListingDraftPublishRequested, l.payload())
	return nil
}

// WithdrawPublishRequest moves a pending draft back to DRAFT.
func (l *Listing) WithdrawPublishRequest() error {
	if err := domain.Require(l.visa, "withdraw publish request", canManage); err != nil {
		return err
	}
	if err := l.transition(StatusDraft, "publish request withdrawn"); err != nil {
		return err
	}
	l.AddDomainEvent(domain.EventListingDraftWithdrawn, domain.DraftStatusPayload{
		ListingID: l.ID(), Status: string(StatusDraft),
	})
	return nil
}

func (l *Listing) RejectPublish(reason string) error {
	if err := domain.Require(l.visa, "reject publish", canModerate); err != nil {
		return err
	}
	detail, err := NewStatusDetail(reason)
	if err != nil {
		return err
	}
	if err := l.transition(StatusRejected, string(detail)); err != nil {
		return err
	}
	l.AddDomainEvent(domain.EventListingDraftRejected, domain.DraftStatusPayload{
		ListingID: l.ID(), Status: string(StatusRejected), Detail: string(detail),
	})
	return nil
}

func (l *Listing) ApprovePublish() error {
	if err := domain.Require(l.visa, "approve publish", canModerate); err != nil {
		return err
	}
	if err := l.transition(StatusApproved, ""); err != nil {
		return err
	}
	l.AddDomainEvent(domain.EventListingDraftApproved, domain.DraftStatusPayload{
		ListingID: l.ID(), Status: string(StatusApproved),
	})
	return nil
}

// PublishApprovedDraft copies the approved draft onto the published fields.
// Published photos the draft no longer references are reported deleted.
func (l *Listing) PublishApprovedDraft() error {
	if err := domain.Require(l.visa, "publish approved draft", canModerate); err != nil {
		return err
	}
	if cur := l.CurrentStatus(); cur != StatusApproved {
		return domain.NewInvalidStateTransitionError(string(cur), string(StatePublished))
	}
	if l.isDeleted {
		return domain.NewInvariantViolationError("listing is deleted")
	}

	d := l.draft
	inDraft := make(map[string]struct{}, len(d.photos))
	for _, p := range d.photos {
		inDraft[p.DocumentID] = struct{}{}
	}
	for _, p := range l.photos {
		if _, still := inDraft[p.DocumentID]; !still {
			l.AddIntegrationEvent(domain.EventPhotoDeleted, domain.PhotoDeletedPayload{
				ListingID:  l.ID(),
				DocumentID: p.DocumentID,
			})
		}
	}

	l.title = d.title
	l.description = d.description
	l.tags = append([]string(nil), d.tags...)
	l.primaryCategory = d.primaryCategory
	l.photos = append([]Photo(nil), d.photos...)
	l.statusCode = StatePublished

	now := time.Now().UTC()
	if h := d.statusHistory; len(h) > 0 && now.Before(h[len(h)-1].CreatedAt) {
		now = h[len(h)-1].CreatedAt
	}
	l.publishedAt = now
	l.touch()

	l.AddIntegrationEvent(domain.EventListingPublished, l.payload())
	return nil
}

// --- Moderation & removal ---

// SetBlocked blocks or unblocks the listing. blockerID is recorded while the
// listing is blocked so appeals can be routed to whoever imposed the block.
func (l *Listing) SetBlocked(blocked bool, blockerID string) error {
	if err := domain.Require(l.visa, "set listing blocked", canModerate); err != nil {
		return err
	}
	if blocked && blockerID == "" {
		return domain.NewValidationError("blocker id", "is required")
	}
	if l.isBlocked == blocked {
		return nil
	}
	l.isBlocked = blocked
	l.blockedBy = ""
	if blocked {
		l.blockedBy = blockerID
	}
	l.touch()
	l.AddDomainEvent(domain.EventListingBlockChanged, domain.BlockChangedPayload{AggregateID: l.ID(), Blocked: blocked})
	return nil
}

// RequestDelete marks the listing deleted and reports every document it
// references so blobs can be cleaned up.
func (l *Listing) RequestDelete() error {
	if err := domain.Require(l.visa, "delete listing", canDelete); err != nil {
		return err
	}
	if l.isDeleted {
		return domain.NewInvariantViolationError("listing is already deleted")
	}
	l.isDeleted = true
	l.touch()

	seen := make(map[string]struct{})
	for _, p := range append(l.Photos(), l.draft.photos...) {
		if _, dup := seen[p.DocumentID]; dup {
			continue
		}
		seen[p.DocumentID] = struct{}{}
		l.AddIntegrationEvent(domain.EventPhotoDeleted, domain.PhotoDeletedPayload{
			ListingID:  l.ID(),
			DocumentID: p.DocumentID,
		})
	}
	l.AddIntegrationEvent(domain.EventListingDeleted, l.payload())
	return nil
}

func (l *Listing) payload() domain.ListingPayload {
	return domain.ListingPayload{ListingID: l.ID(), AccountID: l.accountID}
}

func (l *Listing) touch() {
	l.updatedAt = time.Now().UTC()
}
