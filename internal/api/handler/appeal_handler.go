package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sharethrift/marketplace/internal/core/domain/appeal"
	"github.com/sharethrift/marketplace/internal/core/ports"
)

// AppealHandler exposes appeal requests against user and listing blocks.
type AppealHandler struct {
	service ports.AppealService
}

func NewAppealHandler(service ports.AppealService) *AppealHandler {
	return &AppealHandler{service: service}
}

// Create handles POST /v1/appeal-requests.
//
// @Summary      Appeal a block
// @Tags         appeal-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createAppealRequest  true  "Appeal details"
// @Success      201   {object}  appealResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/appeal-requests [post]
func (h *AppealHandler) Create(c echo.Context) error {
	p, err := ctxPassport(c)
	if err != nil {
		return err
	}
	var req createAppealRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	r, err := h.service.Create(c.Request().Context(), p, ports.CreateAppealInput{
		Type:      appeal.Type(req.Type),
		UserID:    req.UserID,
		ListingID: req.ListingID,
		Reason:    req.Reason,
		BlockerID: req.BlockerID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toAppealResponse(r))
}

// Get handles GET /v1/appeal-requests/:id.
//
// @Summary      Get an appeal request
// @Tags         appeal-requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Appeal request id"
// @Success      200  {object}  appealResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/appeal-requests/{id} [get]
func (h *AppealHandler) Get(c echo.Context) error {
	p, err := ctxPassport(c)
	if err != nil {
		return err
	}
	r, err := h.service.Get(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAppealResponse(r))
}

// List handles GET /v1/appeal-requests.
// Callers may always list their own appeals with user_id set to themselves.
//
// @Summary      List appeal requests
// @Tags         appeal-requests
// @Produce      json
// @Security     BearerAuth
// @Param        user_id  query     string  false  "Filter by appellant"
// @Param        state    query     string  false  "Filter by state"  Enums(requested, accepted, denied)
// @Param        type     query     string  false  "Filter by type"   Enums(ListingAppealRequest, UserAppealRequest)
// @Success      200      {object}  listAppealsResponse
// @Failure      403      {object}  errorResponse
// @Failure      422      {object}  errorResponse
// @Router       /v1/appeal-requests [get]
func (h *AppealHandler) List(c echo.Context) error {
	p, err := ctxPassport(c)
	if err != nil {
		return err
	}
	f := ports.AppealFilter{UserID: c.QueryParam("user_id")}
	if s := c.QueryParam("state"); s != "" {
		state, err := appeal.ParseState(s)
		if err != nil {
			return err
		}
		f.State = state
	}
	if t := c.QueryParam("type"); t != "" {
		f.Type = appeal.Type(t)
	}

	reqs, err := h.service.List(c.Request().Context(), p, f)
	if err != nil {
		return err
	}
	resp := listAppealsResponse{Data: make([]appealResponse, 0, len(reqs))}
	for _, r := range reqs {
		resp.Data = append(resp.Data, toAppealResponse(r))
	}
	return c.JSON(http.StatusOK, resp)
}

// Update handles PATCH /v1/appeal-requests/:id.
//
// @Summary      Change an appeal's reason or state
// @Tags         appeal-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Appeal request id"
// @Param        body  body      updateAppealRequest  true  "Fields to change"
// @Success      200   {object}  appealResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/appeal-requests/{id} [patch]
func (h *AppealHandler) Update(c echo.Context) error {
	p, err := ctxPassport(c)
	if err != nil {
		return err
	}
	var req updateAppealRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	r, err := h.service.Update(c.Request().Context(), p, c.Param("id"), ports.UpdateAppealInput{
		Reason: req.Reason,
		State:  req.State,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAppealResponse(r))
}
