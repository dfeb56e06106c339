package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sharethrift/marketplace/internal/core/ports"
)

// AccountHandler exposes account settings, roles and contacts.
type AccountHandler struct {
	service ports.AccountService
}

func NewAccountHandler(service ports.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// Get handles GET /v1/accounts/:id.
//
// @Summary      Get an account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  accountResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/accounts/{id} [get]
func (h *AccountHandler) Get(c echo.Context) error {
	p, err := ctxPassport(c)
	if err != nil {
		return err
	}
	a, err := h.service.Get(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(a))
}

// Update handles PATCH /v1/accounts/:id.
//
// @Summary      Update account name or handle
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Account id"
// @Param        body  body      updateAccountRequest  true  "Fields to change"
// @Success      200   {object}  accountResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/accounts/{id} [patch]
func (h *AccountHandler) Update(c echo.Context) error {
	p, err := ctxPassport(c)
	if err != nil {
		return err
	}
	var req updateAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	a, err := h.service.UpdateSettings(c.Request().Context(), p, c.Param("id"), ports.UpdateAccountInput{
		Name:   req.Name,
		Handle: req.Handle,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(a))
}

// AddRole handles POST /v1/accounts/:id/roles.
//
// @Summary      Add a role with no permissions
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Account id"
// @Param        body  body      addRoleRequest  true  "Role name"
// @Success      201   {object}  roleResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/accounts/{id}/roles [post]
func (h *AccountHandler) AddRole(c echo.Context) error {
	p, err := ctxPassport(c)
	if err != nil {
		return err
	}
	var req addRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	r, err := h.service.AddRole(c.Request().Context(), p, c.Param("id"), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toRoleResponse(r))
}

// DeleteRole handles DELETE /v1/accounts/:id/roles/:roleId.
// Contacts holding the role move to reassign_to, or to the default role.
//
// @Summary      Delete a role and reassign its contacts
// @Tags         accounts
// @Security     BearerAuth
// @Param        id           path   string  true   "Account id"
// @Param        roleId       path   string  true   "Role to delete"
// @Param        reassign_to  query  string  false  "Role that receives the contacts"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/accounts/{id}/roles/{roleId} [delete]
func (h *AccountHandler) DeleteRole(c echo.Context) error {
	p, err := ctxPassport(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteRole(c.Request().Context(), p, c.Param("id"), c.Param("roleId"), c.QueryParam("reassign_to")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateRolePermissions handles PUT /v1/accounts/:id/roles/:roleId/permissions.
//
// @Summary      Replace a role's permissions
// @Tags         accounts
// @Accept       json
// @Security     BearerAuth
// @Param        id      path  string                  true  "Account id"
// @Param        roleId  path  string                  true  "Role id"
// @Param        body    body  rolePermissionsRequest  true  "New permissions"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/accounts/{id}/roles/{roleId}/permissions [put]
func (h *AccountHandler) UpdateRolePermissions(c echo.Context) error {
	p, err := ctxPassport(c)
	if err != nil {
		return err
	}
	var req rolePermissionsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.service.UpdateRolePermissions(c.Request().Context(), p, c.Param("id"), c.Param("roleId"), req.Permissions); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AddContact handles POST /v1/accounts/:id/contacts.
//
// @Summary      Add a member to the account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Account id"
// @Param        body  body      addContactRequest  true  "User and optional role"
// @Success      201   {object}  contactResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/accounts/{id}/contacts [post]
func (h *AccountHandler) AddContact(c echo.Context) error {
	p, err := ctxPassport(c)
	if err != nil {
		return err
	}
	var req addContactRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	contact, err := h.service.AddContact(c.Request().Context(), p, c.Param("id"), req.UserID, req.RoleID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toContactResponse(contact))
}
