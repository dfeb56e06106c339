package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sharethrift/marketplace/internal/core/ports"
)

// UserHandler exposes personal-user profile and blocking.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// UpdateProfile handles PATCH /v1/users/:id/profile.
//
// @Summary      Change a user's name
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "User id"
// @Param        body  body      updateProfileRequest  true  "Names"
// @Success      200   {object}  userResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/users/{id}/profile [patch]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	p, err := ctxPassport(c)
	if err != nil {
		return err
	}
	var req updateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	u, err := h.service.SetProfile(c.Request().Context(), p, c.Param("id"), req.FirstName, req.LastName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}

// SetBlocked handles PUT /v1/users/:id/blocked.
//
// @Summary      Block or unblock a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "User id"
// @Param        body  body      blockedRequest  true  "Blocked flag"
// @Success      200   {object}  userResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/users/{id}/blocked [put]
func (h *UserHandler) SetBlocked(c echo.Context) error {
	p, err := ctxPassport(c)
	if err != nil {
		return err
	}
	var req blockedRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	u, err := h.service.SetBlocked(c.Request().Context(), p, c.Param("id"), req.Blocked)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}
