package domain

import "time"

// EventType names a domain or integration event.
type EventType string

// EventKind separates events that stay inside the owning bounded context from
// those that cross context boundaries.
type EventKind string

const (
	KindDomain      EventKind = "domain"
	KindIntegration EventKind = "integration"
)

// Integration events.
const (
	EventAccountCreated               EventType = "account.AccountCreated"
	EventPersonalUserCreated          EventType = "user.PersonalUserCreated"
	EventListingDraftPublishRequested EventType = "listing.DraftPublishRequested"
	EventListingPublished             EventType = "listing.ListingPublished"
	EventListingDeleted               EventType = "listing.ListingDeleted"
	EventPhotoDeleted                 EventType = "listing.PhotoDeleted"
	EventAppealRequestAccepted        EventType = "appeal.AppealRequestAccepted"
)

// Domain events.
const (
	EventRoleAdded                  EventType = "account.RoleAdded"
	EventRoleDeleted                EventType = "account.RoleDeleted"
	EventRolePermissionsUpdated     EventType = "account.RolePermissionsUpdated"
	EventContactAdded               EventType = "account.ContactAdded"
	EventContactRoleAssigned        EventType = "account.ContactRoleAssigned"
	EventListingCreated             EventType = "listing.ListingCreated"
	EventListingDraftApproved       EventType = "listing.DraftApproved"
	EventListingDraftRejected       EventType = "listing.DraftRejected"
	EventListingDraftWithdrawn      EventType = "listing.DraftWithdrawn"
	EventListingBlockChanged        EventType = "listing.BlockChanged"
	EventAppealRequestCreated       EventType = "appeal.AppealRequestCreated"
	EventAppealRequestStateChanged  EventType = "appeal.AppealRequestStateChanged"
	EventPersonalUserBlockChanged   EventType = "user.PersonalUserBlockChanged"
	EventPersonalUserProfileUpdated EventType = "user.PersonalUserProfileUpdated"
)

// Event is an in-memory fact queued on an aggregate during a method call and
// dispatched by the unit of work after a successful commit.
type Event struct {
	ID          string
	Type        EventType
	Kind        EventKind
	AggregateID string
	Payload     any
	OccurredAt  time.Time
}

// --- Payloads ---

type AccountCreatedPayload struct {
	AccountID string `json:"account_id"`
	UserID    string `json:"user_id"`
}

type PersonalUserCreatedPayload struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type ListingPayload struct {
	ListingID string `json:"listing_id"`
	AccountID string `json:"account_id"`
}

type PhotoDeletedPayload struct {
	ListingID  string `json:"listing_id"`
	DocumentID string `json:"document_id"`
}

type RoleDeletedPayload struct {
	AccountID       string   `json:"account_id"`
	DeletedRoleID   string   `json:"deleted_role_id"`
	ReassignedTo    string   `json:"reassigned_to"`
	ReassignedUsers []string `json:"reassigned_users"`
}

type RolePayload struct {
	AccountID string `json:"account_id"`
	RoleID    string `json:"role_id"`
}

type ContactPayload struct {
	AccountID string `json:"account_id"`
	ContactID string `json:"contact_id"`
	UserID    string `json:"user_id"`
	RoleID    string `json:"role_id"`
}

type DraftStatusPayload struct {
	ListingID string `json:"listing_id"`
	Status    string `json:"status"`
	Detail    string `json:"detail,omitempty"`
}

type BlockChangedPayload struct {
	AggregateID string `json:"aggregate_id"`
	Blocked     bool   `json:"blocked"`
}

type AppealRequestPayload struct {
	AppealRequestID string `json:"appeal_request_id"`
	Type            string `json:"type"`
	UserID          string `json:"user_id"`
	ListingID       string `json:"listing_id,omitempty"`
	BlockerID       string `json:"blocker_id"`
	State           string `json:"state"`
}
