package mongo

import (
	"time"

	"github.com/sharethrift/marketplace/internal/core/domain/account"
	"github.com/sharethrift/marketplace/internal/core/domain/appeal"
	"github.com/sharethrift/marketplace/internal/core/domain/listing"
	"github.com/sharethrift/marketplace/internal/core/domain/user"
)

// Storage documents and their mappers. Aggregates never see bson; the
// repositories convert between these and the aggregates' Props.

// --- account ---

type accountDoc struct {
	ID        string       `bson:"_id"`
	Version   int64        `bson:"version"`
	Name      string       `bson:"name"`
	Handle    string       `bson:"handle"`
	CreatedBy string       `bson:"created_by"`
	Contacts  []contactDoc `bson:"contacts"`
	Roles     []roleDoc    `bson:"roles"`
	CreatedAt time.Time    `bson:"created_at"`
	UpdatedAt time.Time    `bson:"updated_at"`
}

type contactDoc struct {
	ID        string    `bson:"id"`
	UserID    string    `bson:"user_id"`
	RoleID    string    `bson:"role_id"`
	CreatedAt time.Time `bson:"created_at"`
}

type roleDoc struct {
	ID          string                  `bson:"id"`
	Name        string                  `bson:"name"`
	IsDefault   bool                    `bson:"is_default"`
	Permissions account.RolePermissions `bson:"permissions"`
	CreatedAt   time.Time               `bson:"created_at"`
}

func toAccountDoc(p account.Props) accountDoc {
	d := accountDoc{
		ID:        p.ID,
		Version:   p.Version,
		Name:      p.Name,
		Handle:    p.Handle,
		CreatedBy: p.CreatedBy,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	for _, c := range p.Contacts {
		d.Contacts = append(d.Contacts, contactDoc(c))
	}
	for _, r := range p.Roles {
		d.Roles = append(d.Roles, roleDoc(r))
	}
	return d
}

func (d accountDoc) props() account.Props {
	p := account.Props{
		ID:        d.ID,
		Version:   d.Version,
		Name:      d.Name,
		Handle:    d.Handle,
		CreatedBy: d.CreatedBy,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	for _, c := range d.Contacts {
		p.Contacts = append(p.Contacts, account.ContactProps(c))
	}
	for _, r := range d.Roles {
		p.Roles = append(p.Roles, account.RoleProps(r))
	}
	return p
}

// --- listing ---

type photoDoc struct {
	Order      int    `bson:"order"`
	DocumentID string `bson:"document_id"`
}

type statusDoc struct {
	StatusCode   string    `bson:"status_code"`
	StatusDetail string    `bson:"status_detail,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
}

type draftDoc struct {
	Title           string      `bson:"title"`
	Description     string      `bson:"description"`
	Tags            []string    `bson:"tags"`
	PrimaryCategory string      `bson:"primary_category"`
	Photos          []photoDoc  `bson:"photos"`
	StatusHistory   []statusDoc `bson:"status_history"`
}

type listingDoc struct {
	ID              string     `bson:"_id"`
	Version         int64      `bson:"version"`
	AccountID       string     `bson:"account_id"`
	Title           string     `bson:"title"`
	Description     string     `bson:"description"`
	Tags            []string   `bson:"tags"`
	PrimaryCategory string     `bson:"primary_category"`
	Photos          []photoDoc `bson:"photos"`
	StatusCode      string     `bson:"status_code"`
	IsBlocked       bool       `bson:"is_blocked"`
	BlockedBy       string     `bson:"blocked_by,omitempty"`
	IsDeleted       bool       `bson:"is_deleted"`
	PublishedAt     time.Time  `bson:"published_at,omitempty"`
	Draft           draftDoc   `bson:"draft"`
	CreatedAt       time.Time  `bson:"created_at"`
	UpdatedAt       time.Time  `bson:"updated_at"`
}

func toPhotoDocs(in []listing.Photo) []photoDoc {
	out := make([]photoDoc, 0, len(in))
	for _, p := range in {
		out = append(out, photoDoc(p))
	}
	return out
}

func fromPhotoDocs(in []photoDoc) []listing.Photo {
	out := make([]listing.Photo, 0, len(in))
	for _, p := range in {
		out = append(out, listing.Photo(p))
	}
	return out
}

func toListingDoc(p listing.Props) listingDoc {
	d := listingDoc{
		ID:              p.ID,
		Version:         p.Version,
		AccountID:       p.AccountID,
		Title:           p.Title,
		Description:     p.Description,
		Tags:            p.Tags,
		PrimaryCategory: p.PrimaryCategory,
		Photos:          toPhotoDocs(p.Photos),
		StatusCode:      string(p.StatusCode),
		IsBlocked:       p.IsBlocked,
		BlockedBy:       p.BlockedBy,
		IsDeleted:       p.IsDeleted,
		PublishedAt:     p.PublishedAt,
		Draft: draftDoc{
			Title:           p.Draft.Title,
			Description:     p.Draft.Description,
			Tags:            p.Draft.Tags,
			PrimaryCategory: p.Draft.PrimaryCategory,
			Photos:          toPhotoDocs(p.Draft.Photos),
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	for _, s := range p.Draft.StatusHistory {
		d.Draft.StatusHistory = append(d.Draft.StatusHistory, statusDoc{
			StatusCode:   string(s.StatusCode),
			StatusDetail: s.StatusDetail,
			CreatedAt:    s.CreatedAt,
		})
	}
	return d
}

func (d listingDoc) props() listing.Props {
	p := listing.Props{
		ID:              d.ID,
		Version:         d.Version,
		AccountID:       d.AccountID,
		Title:           d.Title,
		Description:     d.Description,
		Tags:            d.Tags,
		PrimaryCategory: d.PrimaryCategory,
		Photos:          fromPhotoDocs(d.Photos),
		StatusCode:      listing.PublishState(d.StatusCode),
		IsBlocked:       d.IsBlocked,
		BlockedBy:       d.BlockedBy,
		IsDeleted:       d.IsDeleted,
		PublishedAt:     d.PublishedAt,
		Draft: listing.DraftProps{
			Title:           d.Draft.Title,
			Description:     d.Draft.Description,
			Tags:            d.Draft.Tags,
			PrimaryCategory: d.Draft.PrimaryCategory,
			Photos:          fromPhotoDocs(d.Draft.Photos),
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	for _, s := range d.Draft.StatusHistory {
		p.Draft.StatusHistory = append(p.Draft.StatusHistory, listing.DraftStatus{
			StatusCode:   listing.StatusCode(s.StatusCode),
			StatusDetail: s.StatusDetail,
			CreatedAt:    s.CreatedAt,
		})
	}
	return p
}

// --- appeal request ---

type appealDoc struct {
	ID        string    `bson:"_id"`
	Version   int64     `bson:"version"`
	Type      string    `bson:"type"`
	UserID    string    `bson:"user_id"`
	ListingID string    `bson:"listing_id,omitempty"`
	BlockerID string    `bson:"blocker_id"`
	Reason    string    `bson:"reason"`
	State     string    `bson:"state"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func toAppealDoc(p appeal.Props) appealDoc {
	return appealDoc{
		ID:        p.ID,
		Version:   p.Version,
		Type:      string(p.Type),
		UserID:    p.UserID,
		ListingID: p.ListingID,
		BlockerID: p.BlockerID,
		Reason:    p.Reason,
		State:     string(p.State),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (d appealDoc) props() appeal.Props {
	return appeal.Props{
		ID:        d.ID,
		Version:   d.Version,
		Type:      appeal.Type(d.Type),
		UserID:    d.UserID,
		ListingID: d.ListingID,
		BlockerID: d.BlockerID,
		Reason:    d.Reason,
		State:     appeal.State(d.State),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// --- personal user ---

type userDoc struct {
	ID        string    `bson:"_id"`
	Version   int64     `bson:"version"`
	Email     string    `bson:"email"`
	FirstName string    `bson:"first_name"`
	LastName  string    `bson:"last_name"`
	IsBlocked bool      `bson:"is_blocked"`
	BlockedBy string    `bson:"blocked_by,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func toUserDoc(p user.Props) userDoc {
	return userDoc(p)
}

func (d userDoc) props() user.Props {
	return user.Props(d)
}
