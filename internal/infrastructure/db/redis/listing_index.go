package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/sharethrift/marketplace/internal/core/ports"
)

// ListingIndex is the published-listing search index. Each listing is a JSON
// document under marketplace:listing:<id>, and marketplace:listing-tag:<tag> sets hold the ids
// carrying each tag.
type ListingIndex struct {
	client *redis.Client
}

func NewListingIndex(client *redis.Client) *ListingIndex {
	return &ListingIndex{client: client}
}

// maxWatchRetries bounds how often an index update is retried when another
// writer touches the same listing between the read and the EXEC.
const maxWatchRetries = 5

// Index replaces the stored document and its tag memberships.
func (x *ListingIndex) Index(ctx context.Context, doc ports.ListingDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode listing %s: %w", doc.ListingID, err)
	}
	err = x.replace(ctx, doc.ListingID, func(pipe redis.Pipeliner) {
		pipe.Set(ctx, docKey(doc.ListingID), body, 0)
		for _, t := range doc.Tags {
			pipe.SAdd(ctx, tagKey(t), doc.ListingID)
		}
	})
	if err != nil {
		return fmt.Errorf("index listing %s: %w", doc.ListingID, err)
	}
	return nil
}

// Remove is a no-op for listings that were never indexed.
func (x *ListingIndex) Remove(ctx context.Context, listingID string) error {
	err := x.replace(ctx, listingID, func(pipe redis.Pipeliner) {
		pipe.Del(ctx, docKey(listingID))
	})
	if err != nil {
		return fmt.Errorf("unindex listing %s: %w", listingID, err)
	}
	return nil
}

// replace drops the listing from the tag sets of its stored document and
// applies write, all in one MULTI/EXEC guarded by a WATCH on the document.
func (x *ListingIndex) replace(ctx context.Context, listingID string, write func(redis.Pipeliner)) error {
	key := docKey(listingID)
	txf := func(tx *redis.Tx) error {
		previous, err := storedTags(ctx, tx, listingID)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, t := range previous {
				pipe.SRem(ctx, tagKey(t), listingID)
			}
			write(pipe)
			return nil
		})
		return err
	}
	for attempt := 0; attempt < maxWatchRetries; attempt++ {
		err := x.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return redis.TxFailedErr
}

func (x *ListingIndex) SearchByTag(ctx context.Context, tag string) ([]string, error) {
	ids, err := x.client.SMembers(ctx, tagKey(tag)).Result()
	if err != nil {
		return nil, fmt.Errorf("search tag %q: %w", tag, err)
	}
	sort.Strings(ids)
	return ids, nil
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func storedTags(ctx context.Context, c getter, listingID string) ([]string, error) {
	body, err := c.Get(ctx, docKey(listingID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load listing %s: %w", listingID, err)
	}
	var doc ports.ListingDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode listing %s: %w", listingID, err)
	}
	return doc.Tags, nil
}

func docKey(listingID string) string { return namespace + "listing:" + listingID }
func tagKey(tag string) string       { return namespace + "listing-tag:" + strings.ToLower(tag) }
