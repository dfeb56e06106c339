package listing

import (
	"time"

	"github.com/sharethrift/marketplace/internal/core/domain"
)

// Props is the storage-facing shape of a Listing.
type Props struct {
	ID              string
	Version         int64
	AccountID       string
	Title           string
	Description     string
	Tags            []string
	PrimaryCategory string
	Photos          []Photo
	StatusCode      PublishState
	IsBlocked       bool
	BlockedBy       string
	IsDeleted       bool
	PublishedAt     time.Time
	Draft           DraftProps
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type DraftProps struct {
	Title           string
	Description     string
	Tags            []string
	PrimaryCategory string
	Photos          []Photo
	StatusHistory   []DraftStatus
}

func Rehydrate(props Props, p Passport, rec *domain.EventRecorder) *Listing {
	status := props.StatusCode
	if status == "" {
		status = StateUnpublished
	}
	l := &Listing{
		AggregateRoot:   domain.NewAggregateRoot(props.ID, props.Version, rec),
		accountID:       props.AccountID,
		title:           Title(props.Title),
		description:     Description(props.Description),
		tags:            append([]string(nil), props.Tags...),
		primaryCategory: Category(props.PrimaryCategory),
		photos:          append([]Photo(nil), props.Photos...),
		statusCode:      status,
		isBlocked:       props.IsBlocked,
		blockedBy:       props.BlockedBy,
		isDeleted:       props.IsDeleted,
		publishedAt:     props.PublishedAt,
		draft: &Draft{
			title:           Title(props.Draft.Title),
			description:     Description(props.Draft.Description),
			tags:            append([]string(nil), props.Draft.Tags...),
			primaryCategory: Category(props.Draft.PrimaryCategory),
			photos:          append([]Photo(nil), props.Draft.Photos...),
			statusHistory:   append([]DraftStatus(nil), props.Draft.StatusHistory...),
		},
		createdAt: props.CreatedAt,
		updatedAt: props.UpdatedAt,
	}
	l.visa = visaFrom(p, l)
	return l
}

func (l *Listing) Props() Props {
	d := l.draft
	return Props{
		ID:              l.ID(),
		Version:         l.Version(),
		AccountID:       l.accountID,
		Title:           string(l.title),
		Description:     string(l.description),
		Tags:            l.Tags(),
		PrimaryCategory: string(l.primaryCategory),
		Photos:          l.Photos(),
		StatusCode:      l.statusCode,
		IsBlocked:       l.isBlocked,
		BlockedBy:       l.blockedBy,
		IsDeleted:       l.isDeleted,
		PublishedAt:     l.publishedAt,
		Draft: DraftProps{
			Title:           string(d.title),
			Description:     string(d.description),
			Tags:            d.Tags(),
			PrimaryCategory: string(d.primaryCategory),
			Photos:          d.Photos(),
			StatusHistory:   d.StatusHistory(),
		},
		CreatedAt: l.createdAt,
		UpdatedAt: l.updatedAt,
	}
}
