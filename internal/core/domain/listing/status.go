package listing

import (
	"time"

	"github.com/sharethrift/marketplace/internal/core/domain"
)

// StatusCode is the approval state of a listing's draft.
type StatusCode string

const (
	StatusDraft    StatusCode = "DRAFT"
	StatusPending  StatusCode = "PENDING"
	StatusApproved StatusCode = "APPROVED"
	StatusRejected StatusCode = "REJECTED"
)

// validTransitions defines the draft approval state machine. APPROVED is terminal.
var validTransitions = map[StatusCode][]StatusCode{
	StatusDraft:    {StatusPending},
	StatusPending:  {StatusDraft, StatusApproved, StatusRejected},
	StatusRejected: {StatusDraft},
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s StatusCode) CanTransitionTo(next StatusCode) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func ParseStatusCode(s string) (StatusCode, error) {
	if err := domain.ValidateVar("status code", s, "required,oneof=DRAFT PENDING APPROVED REJECTED"); err != nil {
		return "", err
	}
	return StatusCode(s), nil
}

// DraftStatus is one entry of a draft's status history.
type DraftStatus struct {
	StatusCode   StatusCode
	StatusDetail string
	CreatedAt    time.Time
}

// currentStatus returns the most recently created entry, later entries
// winning ties. An empty history means DRAFT.
func currentStatus(history []DraftStatus) StatusCode {
	if len(history) == 0 {
		return StatusDraft
	}
	best := history[0]
	for _, e := range history[1:] {
		if !e.CreatedAt.Before(best.CreatedAt) {
			best = e
		}
	}
	return best.StatusCode
}

// PublishState is the listing-level status of the published fields.
type PublishState string

const (
	StateUnpublished PublishState = "unpublished"
	StatePublished   PublishState = "published"
)
