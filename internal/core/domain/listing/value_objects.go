package listing

import (
	"fmt"

	"github.com/sharethrift/marketplace/internal/core/domain"
)

const (
	MinPhotoOrder = 1
	MaxPhotos     = 5
	maxTags       = 10
)

type Title string

func NewTitle(s string) (Title, error) {
	s = domain.NormalizeText(s)
	if err := domain.ValidateVar("title", s, "required,max=200"); err != nil {
		return "", err
	}
	return Title(s), nil
}

type Description string

func NewDescription(s string) (Description, error) {
	s = domain.NormalizeText(s)
	if err := domain.ValidateVar("description", s, "max=5000"); err != nil {
		return "", err
	}
	return Description(s), nil
}

type Category string

func NewCategory(s string) (Category, error) {
	s = domain.NormalizeText(s)
	if err := domain.ValidateVar("primary category", s, "max=100"); err != nil {
		return "", err
	}
	return Category(s), nil
}

// NewTags normalizes tags and drops duplicates, keeping first-seen order.
func NewTags(in []string) ([]string, error) {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = domain.NormalizeText(t)
		if err := domain.ValidateVar("tag", t, "required,max=50"); err != nil {
			return nil, err
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) > maxTags {
		return nil, domain.NewValidationError("tags", fmt.Sprintf("at most %d tags allowed", maxTags))
	}
	return out, nil
}

// StatusDetail explains a status change, e.g. a moderation rejection reason.
type StatusDetail string

func NewStatusDetail(s string) (StatusDetail, error) {
	s = domain.NormalizeText(s)
	if err := domain.ValidateVar("status detail", s, "required,max=1000"); err != nil {
		return "", err
	}
	return StatusDetail(s), nil
}

func validatePhotoOrder(order int) error {
	return domain.ValidateVar("photo order", order, fmt.Sprintf("gte=%d,lte=%d", MinPhotoOrder, MaxPhotos))
}
