// Package moderation reviews draft listings awaiting publication.
package moderation

import (
	"context"
	"fmt"
	"strings"

	"github.com/sharethrift/marketplace/internal/core/ports"
)

// KeywordReviewer rejects drafts whose text or tags contain a blocked term.
// Matching is case-insensitive on whole words.
type KeywordReviewer struct {
	blocked map[string]struct{}
}

var _ ports.ModerationReviewer = (*KeywordReviewer)(nil)

// Config mirrors the moderation settings.
type Config struct {
	Manual       bool
	BlockedTerms []string
}

// NewReviewer returns the automatic reviewer cfg asks for, or nil in manual
// mode so that no moderate-draft handler is registered.
func NewReviewer(cfg Config) ports.ModerationReviewer {
	if cfg.Manual {
		return nil
	}
	return NewKeywordReviewer(cfg.BlockedTerms)
}

// NewKeywordReviewer approves every draft when terms is empty.
func NewKeywordReviewer(terms []string) *KeywordReviewer {
	r := &KeywordReviewer{blocked: map[string]struct{}{}}
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			r.blocked[t] = struct{}{}
		}
	}
	return r
}

func (r *KeywordReviewer) Review(_ context.Context, d ports.ModerationDraft) (ports.ModerationVerdict, error) {
	fields := []string{d.Title, d.Description, d.PrimaryCategory}
	fields = append(fields, d.Tags...)
	for _, f := range fields {
		for _, w := range strings.FieldsFunc(strings.ToLower(f), isSeparator) {
			if _, ok := r.blocked[w]; ok {
				return ports.ModerationVerdict{Reason: fmt.Sprintf("contains blocked term %q", w)}, nil
			}
		}
	}
	return ports.ModerationVerdict{Approved: true}, nil
}

func isSeparator(r rune) bool {
	return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r > 127)
}
