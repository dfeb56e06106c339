package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/sharethrift/marketplace/internal/core/domain"
	"github.com/sharethrift/marketplace/internal/core/domain/user"
	"github.com/sharethrift/marketplace/internal/core/ports"
)

// AdminUserRepository implements ports.AdminUserRepository in memory.
type AdminUserRepository struct {
	mu    sync.RWMutex
	users map[string]user.AdminUser
}

func NewAdminUserRepository() *AdminUserRepository {
	return &AdminUserRepository{users: map[string]user.AdminUser{}}
}

func (r *AdminUserRepository) Create(_ context.Context, u *user.AdminUser) (*user.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.users[u.ID] = *u
	out := *u
	return &out, nil
}

func (r *AdminUserRepository) FindByEmail(_ context.Context, email string) (*user.AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, notFound("admin user with email", email)
}

func (r *AdminUserRepository) FindByID(_ context.Context, id string) (*user.AdminUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, notFound("admin user", id)
	}
	return &u, nil
}

// EventLog keeps committed events in order.
type EventLog struct {
	mu     sync.Mutex
	events []domain.Event
}

func NewEventLog() *EventLog { return &EventLog{} }

func (l *EventLog) Append(_ context.Context, events []domain.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, events...)
	return nil
}

// Events returns a copy of everything appended so far.
func (l *EventLog) Events() []domain.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.Event(nil), l.events...)
}

// Deduplicator implements ports.Deduplicator for a single process.
type Deduplicator struct {
	mu      sync.Mutex
	handled map[string]struct{}
}

func NewDeduplicator() *Deduplicator {
	return &Deduplicator{handled: map[string]struct{}{}}
}

func (d *Deduplicator) IsHandled(_ context.Context, handler, eventID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.handled[handler+":"+eventID]
	return ok, nil
}

func (d *Deduplicator) MarkHandled(_ context.Context, handler, eventID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handled[handler+":"+eventID] = struct{}{}
	return nil
}

// BlobStore keeps photo content in memory.
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewBlobStore() *BlobStore {
	return &BlobStore{blobs: map[string][]byte{}}
}

func (b *BlobStore) Put(_ context.Context, documentID string, content io.Reader) error {
	data, err := io.ReadAll(content)
	if err != nil {
		return fmt.Errorf("read blob %s: %w", documentID, err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[documentID] = data
	return nil
}

func (b *BlobStore) Delete(_ context.Context, documentID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.blobs, documentID)
	return nil
}

// Get returns a reader over the stored content of documentID.
func (b *BlobStore) Get(documentID string) (io.Reader, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.blobs[documentID]
	if !ok {
		return nil, false
	}
	return bytes.NewReader(data), true
}

// SearchIndex is an in-memory ports.SearchIndex.
type SearchIndex struct {
	mu   sync.RWMutex
	docs map[string]ports.ListingDocument
}

func NewSearchIndex() *SearchIndex {
	return &SearchIndex{docs: map[string]ports.ListingDocument{}}
}

func (s *SearchIndex) Index(_ context.Context, doc ports.ListingDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ListingID] = doc
	return nil
}

func (s *SearchIndex) Remove(_ context.Context, listingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, listingID)
	return nil
}

func (s *SearchIndex) SearchByTag(_ context.Context, tag string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for id, doc := range s.docs {
		for _, t := range doc.Tags {
			if strings.EqualFold(t, tag) {
				ids = append(ids, id)
				break
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}
