package ports

import (
	"context"
	"io"
	"time"
)

// BlobStore holds photo content keyed by document id.
type BlobStore interface {
	Put(ctx context.Context, documentID string, content io.Reader) error
	// Delete is a no-op for unknown ids.
	Delete(ctx context.Context, documentID string) error
}

// ListingDocument is the published view of a listing kept in the search index.
type ListingDocument struct {
	ListingID       string    `json:"listing_id"`
	AccountID       string    `json:"account_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Tags            []string  `json:"tags"`
	PrimaryCategory string    `json:"primary_category"`
	PhotoIDs        []string  `json:"photo_ids"`
	PublishedAt     time.Time `json:"published_at"`
}

type SearchIndex interface {
	Index(ctx context.Context, doc ListingDocument) error
	Remove(ctx context.Context, listingID string) error
	SearchByTag(ctx context.Context, tag string) ([]string, error)
}

// ModerationDraft is what the content reviewer sees of a pending draft.
type ModerationDraft struct {
	ListingID       string
	Title           string
	Description     string
	Tags            []string
	PrimaryCategory string
}

// ModerationVerdict is the reviewer's decision. Reason is set on rejection.
type ModerationVerdict struct {
	Approved bool
	Reason   string
}

type ModerationReviewer interface {
	Review(ctx context.Context, d ModerationDraft) (ModerationVerdict, error)
}
