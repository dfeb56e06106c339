package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/sharethrift/marketplace/internal/core/domain"
	"github.com/sharethrift/marketplace/internal/core/domain/passport"
	"github.com/sharethrift/marketplace/internal/core/ports"
)

// Context keys set by Auth.
const (
	ActorKey    = "actor"
	PassportKey = "passport"
)

// Auth validates the bearer JWT, resolves the caller's passport and injects
// both into the context. Tokens without a kind claim are personal-user tokens
// from the identity provider.
func Auth(jwtSecret string, resolver ports.PassportResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			actor := actorFrom(claims)
			if actor.Kind != passport.KindGuest && actor.Subject == "" && actor.Email == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token missing subject")
			}
			if actor.Kind == passport.KindSystem {
				return echo.NewHTTPError(http.StatusUnauthorized, "system tokens are not accepted")
			}

			p, err := resolver.Resolve(c.Request().Context(), actor)
			if errors.Is(err, domain.ErrNotFound) {
				return echo.NewHTTPError(http.StatusUnauthorized, "unknown actor")
			}
			if err != nil {
				return err
			}

			c.Set(ActorKey, actor)
			c.Set(PassportKey, p)

			return next(c)
		}
	}
}

func actorFrom(claims jwt.MapClaims) ports.Actor {
	str := func(k string) string {
		s, _ := claims[k].(string)
		return s
	}
	kind := passport.Kind(str("kind"))
	if kind == "" {
		kind = passport.KindPersonal
	}
	return ports.Actor{
		Kind:      kind,
		Subject:   str("sub"),
		Email:     str("email"),
		FirstName: str("given_name"),
		LastName:  str("family_name"),
	}
}
