package handler

import (
	"github.com/gin-gonic/gin"
	appidentity "github.com/shopadmin/backoffice/internal/application/identity"
)

// RoleHandler handles role management HTTP requests
type RoleHandler struct {
	BaseHandler
	roleService *appidentity.RoleService
}

// NewRoleHandler creates a new role handler
func NewRoleHandler(roleService *appidentity.RoleService) *RoleHandler {
	return &RoleHandler{
		roleService: roleService,
	}
}

// Create godoc
//
//	@ID				createRole
//	@Summary		Create a new role
//	@Description	Create a role holding a set of permission names. Names need not exist in the catalog yet.
//	@Tags			roles
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateRoleRequest	true	"Role creation request"
//	@Success		201		{object}	APIResponse[RoleResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/roles [post]
func (h *RoleHandler) Create(c *gin.Context) {
	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	role, err := h.roleService.Create(c.Request.Context(), appidentity.CreateRoleInput{
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toRoleResponse(role))
}

// GetByID godoc
//
//	@ID				getRoleById
//	@Summary		Get a role by ID
//	@Tags			roles
//	@Produce		json
//	@Param			id	path		string	true	"Role ID"	format(uuid)
//	@Success		200	{object}	APIResponse[RoleResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		403	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/roles/{id} [get]
func (h *RoleHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id", "role")
	if !ok {
		return
	}

	role, err := h.roleService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toRoleResponse(role))
}

// List godoc
//
//	@ID				listRoles
//	@Summary		List roles
//	@Description	List every role sorted by name, with permission references expanded against the catalog
//	@Tags			roles
//	@Produce		json
//	@Success		200	{object}	APIResponse[[]RoleResponse]
//	@Failure		401	{object}	ErrorResponse
//	@Failure		403	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/roles [get]
func (h *RoleHandler) List(c *gin.Context) {
	roles, err := h.roleService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]RoleResponse, len(roles))
	for i := range roles {
		out[i] = toRoleResponse(&roles[i])
	}
	h.Success(c, out)
}

// Update godoc
//
//	@ID				updateRole
//	@Summary		Update a role
//	@Description	Rename a role, change its description or replace its permission set
//	@Tags			roles
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Role ID"	format(uuid)
//	@Param			request	body		UpdateRoleRequest	true	"Role update request"
//	@Success		200		{object}	APIResponse[RoleResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/roles/{id} [put]
func (h *RoleHandler) Update(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id", "role")
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	role, err := h.roleService.Update(c.Request.Context(), id, appidentity.UpdateRoleInput{
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toRoleResponse(role))
}

// Delete godoc
//
//	@ID				deleteRole
//	@Summary		Delete a role
//	@Description	Delete a role. Users holding it keep authenticating but lose every permission.
//	@Tags			roles
//	@Produce		json
//	@Param			id	path		string	true	"Role ID"	format(uuid)
//	@Success		200	{object}	APIResponse[RoleResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		403	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/roles/{id} [delete]
func (h *RoleHandler) Delete(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id", "role")
	if !ok {
		return
	}

	role, err := h.roleService.Delete(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toRoleResponse(role))
}
