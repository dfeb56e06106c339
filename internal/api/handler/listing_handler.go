package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sharethrift/marketplace/internal/core/ports"
)

// photoField is the multipart field carrying photo content.
const photoField = "photo"

// ListingHandler exposes listing drafts, photos and the publish workflow.
type ListingHandler struct {
	service ports.ListingService
	index   ports.SearchIndex
}

// NewListingHandler builds the handler. index may be nil, which disables
// tag search.
func NewListingHandler(service ports.ListingService, index ports.SearchIndex) *ListingHandler {
	return &ListingHandler{service: service, index: index}
}

// Create handles POST /v1/accounts/:id/listings.
//
// @Summary      Create a draft listing
// @Tags         listings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Owning account id"
// @Param        body  body      createListingRequest  true  "Initial title"
// @Success      201   {object}  listingResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/accounts/{id}/listings [post]
func (h *ListingHandler) Create(c echo.Context) error {
	p, err := ctxPassport(c)
	if err != nil {
		return err
	}
	var req createListingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	l, err := h.service.Create(c.Request().Context(), p, c.Param("id"), req.Title)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderLocation, "/v1/listings/"+l.ID())
	return c.JSON(http.StatusCreated, toListingResponse(l))
}

// Get handles GET /v1/listings/:id.
//
// @Summary      Get a listing with its draft
// @Tags         listings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Listing id"
// @Success      200  {object}  listingResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/listings/{id} [get]
func (h *ListingHandler) Get(c echo.Context) error {
	p, err := ctxPassport(c)
	if err != nil {
		return err
	}
	l, err := h.service.Get(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListingResponse(l))
}

// Search handles GET /v1/listings?tag=.
//
// @Summary      Find published listings by tag
// @Tags         listings
// @Produce      json
// @Security     BearerAuth
// @Param        tag  query     string  true  "Tag"
// @Success      200  {object}  searchListingsResponse
// @Failure      400  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /v1/listings [get]
func (h *ListingHandler) Search(c echo.Context) error {
	if h.index == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not configured")
	}
	tag := c.QueryParam("tag")
	if tag == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "tag is required")
	}
	ids, err := h.index.SearchByTag(c.Request().Context(), tag)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, searchListingsResponse{Tag: tag, ListingIDs: nonNil(ids)})
}

// UpdateDraft handles PATCH /v1/listings/:id/draft.
//
// @Summary      Edit the working copy of a listing
// @Tags         listings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Listing id"
// @Param        body  body      updateDraftRequest  true  "Draft fields to change"
// @Success      200   {object}  listingResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/listings/{id}/draft [patch]
func (h *ListingHandler) UpdateDraft(c echo.Context) error {
	p, err := ctxPassport(c)
	if err != nil {
		return err
	}
	var req updateDraftRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	l, err := h.service.UpdateDraft(c.Request().Context(), p, c.Param("id"), ports.UpdateDraftInput{
		Title:           req.Title,
		Description:     req.Description,
		Tags:            req.Tags,
		PrimaryCategory: req.PrimaryCategory,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListingResponse(l))
}

// AddPhoto handles POST /v1/listings/:id/photos/:order. Content is read from
// the multipart "photo" field; without it the slot is only reserved.
//
// @Summary      Add or replace the photo in a slot
// @Tags         listings
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true   "Listing id"
// @Param        order  path      int     true   "Slot, 1 to 5"
// @Param        photo  formData  file    false  "Photo content"
// @Success      200    {object}  addPhotoResponse
// @Failure      403    {object}  errorResponse
// @Failure      409    {object}  errorResponse
// @Failure      422    {object}  errorResponse
// @Router       /v1/listings/{id}/photos/{order} [post]
func (h *ListingHandler) AddPhoto(c echo.Context) error {
	p, err := ctxPassport(c)
	if err != nil {
		return err
	}
	order, err := orderParam(c)
	if err != nil {
		return err
	}

	var content io.Reader
	fh, err := c.FormFile(photoField)
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "unreadable photo")
		}
		defer f.Close()
		content = f
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "invalid multipart payload")
	}

	docID, err := h.service.AddPhoto(c.Request().Context(), p, c.Param("id"), order, content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, addPhotoResponse{Order: order, DocumentID: docID})
}

// RemovePhoto handles DELETE /v1/listings/:id/photos/:order.
//
// @Summary      Empty a photo slot
// @Tags         listings
// @Security     BearerAuth
// @Param        id     path  string  true  "Listing id"
// @Param        order  path  int     true  "Slot, 1 to 5"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/listings/{id}/photos/{order} [delete]
func (h *ListingHandler) RemovePhoto(c echo.Context) error {
	p, err := ctxPassport(c)
	if err != nil {
		return err
	}
	order, err := orderParam(c)
	if err != nil {
		return err
	}
	if err := h.service.RemovePhoto(c.Request().Context(), p, c.Param("id"), order); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// RequestPublish handles POST /v1/listings/:id/publish-request.
//
// @Summary      Submit the draft for moderation
// @Tags         listings
// @Security     BearerAuth
// @Param        id  path  string  true  "Listing id"
// @Success      202
// @Failure      403  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/listings/{id}/publish-request [post]
func (h *ListingHandler) RequestPublish(c echo.Context) error {
	p, err := ctxPassport(c)
	if err != nil {
		return err
	}
	if err := h.service.RequestPublish(c.Request().Context(), p, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusAccepted)
}

// WithdrawPublishRequest handles DELETE /v1/listings/:id/publish-request.
//
// @Summary      Withdraw a pending draft
// @Tags         listings
// @Security     BearerAuth
// @Param        id  path  string  true  "Listing id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/listings/{id}/publish-request [delete]
func (h *ListingHandler) WithdrawPublishRequest(c echo.Context) error {
	p, err := ctxPassport(c)
	if err != nil {
		return err
	}
	if err := h.service.WithdrawPublishRequest(c.Request().Context(), p, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ApprovePublish handles POST /v1/listings/:id/approval.
//
// @Summary      Approve and publish a pending draft
// @Tags         listings
// @Security     BearerAuth
// @Param        id  path  string  true  "Listing id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/listings/{id}/approval [post]
func (h *ListingHandler) ApprovePublish(c echo.Context) error {
	p, err := ctxPassport(c)
	if err != nil {
		return err
	}
	if err := h.service.ApprovePublish(c.Request().Context(), p, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// RejectPublish handles POST /v1/listings/:id/rejection.
//
// @Summary      Reject a pending draft
// @Tags         listings
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string                true  "Listing id"
// @Param        body  body  rejectPublishRequest  true  "Rejection reason"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/listings/{id}/rejection [post]
func (h *ListingHandler) RejectPublish(c echo.Context) error {
	p, err := ctxPassport(c)
	if err != nil {
		return err
	}
	var req rejectPublishRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.service.RejectPublish(c.Request().Context(), p, c.Param("id"), req.Reason); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// SetBlocked handles PUT /v1/listings/:id/blocked.
//
// @Summary      Block or unblock a listing
// @Tags         listings
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string          true  "Listing id"
// @Param        body  body  blockedRequest  true  "Blocked flag"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Router       /v1/listings/{id}/blocked [put]
func (h *ListingHandler) SetBlocked(c echo.Context) error {
	p, err := ctxPassport(c)
	if err != nil {
		return err
	}
	var req blockedRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.service.SetBlocked(c.Request().Context(), p, c.Param("id"), req.Blocked); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /v1/listings/:id.
//
// @Summary      Delete a listing
// @Tags         listings
// @Security     BearerAuth
// @Param        id  path  string  true  "Listing id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/listings/{id} [delete]
func (h *ListingHandler) Delete(c echo.Context) error {
	p, err := ctxPassport(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), p, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
