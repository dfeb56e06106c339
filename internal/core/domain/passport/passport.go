// Package passport holds the per-actor factories that mint visas for every
// aggregate type. Each actor kind is its own Passport implementation; the
// aggregates only see the narrow interface they declare.
package passport

import (
	"github.com/sharethrift/marketplace/internal/core/domain/account"
	"github.com/sharethrift/marketplace/internal/core/domain/appeal"
	"github.com/sharethrift/marketplace/internal/core/domain/listing"
	"github.com/sharethrift/marketplace/internal/core/domain/user"
)

// Kind tags the actor behind a passport.
type Kind string

const (
	KindSystem   Kind = "system"
	KindAdmin    Kind = "admin"
	KindPersonal Kind = "personal"
	KindGuest    Kind = "guest"
)

// SystemActorID is the actor id recorded for work done by background handlers.
const SystemActorID = "system"

// Passport mints visas for one actor. It is created per request and never
// stored.
type Passport interface {
	account.Passport
	listing.Passport
	appeal.Passport
	user.Passport

	Kind() Kind
	ActorID() string
}
