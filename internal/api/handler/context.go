package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sharethrift/marketplace/internal/core/domain/passport"
)

// passportKey matches the key the Auth middleware stores the passport under.
const passportKey = "passport"

// ctxPassport extracts the passport injected by the Auth middleware. Its
// absence means the middleware did not run, which is a wiring error surfaced
// as 401 rather than acting as a guest.
func ctxPassport(c echo.Context) (passport.Passport, error) {
	p, ok := c.Get(passportKey).(passport.Passport)
	if !ok || p == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return p, nil
}

// bindAndValidate decodes the request body into req and validates it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}

func orderParam(c echo.Context) (int, error) {
	order, err := strconv.Atoi(c.Param("order"))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "order must be an integer")
	}
	return order, nil
}
