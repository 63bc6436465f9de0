package handler

import (
	"github.com/gin-gonic/gin"
	appidentity "github.com/shopadmin/backoffice/internal/application/identity"
)

// PermissionHandler manages the permission catalog
type PermissionHandler struct {
	BaseHandler
	permissionService *appidentity.PermissionService
}

// NewPermissionHandler creates a new permission handler
func NewPermissionHandler(permissionService *appidentity.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissionService: permissionService}
}

// List godoc
// @ID           listPermissions
// @Summary      List permissions
// @Description  Return the whole permission catalog sorted by name
// @Tags         permissions
// @Produce      json
// @Success      200 {object} APIResponse[[]PermissionResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /permissions [get]
func (h *PermissionHandler) List(c *gin.Context) {
	perms, err := h.permissionService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]PermissionResponse, len(perms))
	for i, p := range perms {
		out[i] = toPermissionResponse(p)
	}
	h.Success(c, out)
}

// Get godoc
// @ID           getPermission
// @Summary      Get a permission
// @Tags         permissions
// @Produce      json
// @Param        name path string true "Permission name"
// @Success      200 {object} APIResponse[PermissionResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /permissions/{name} [get]
func (h *PermissionHandler) Get(c *gin.Context) {
	perm, err := h.permissionService.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPermissionResponse(*perm))
}

// Create godoc
// @ID           createPermission
// @Summary      Create a permission
// @Description  Add a permission name to the catalog. Names are matched exactly and case-sensitively.
// @Tags         permissions
// @Accept       json
// @Produce      json
// @Param        request body CreatePermissionRequest true "Permission"
// @Success      201 {object} APIResponse[PermissionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /permissions [post]
func (h *PermissionHandler) Create(c *gin.Context) {
	var req CreatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	perm, err := h.permissionService.Create(c.Request.Context(), appidentity.CreatePermissionInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toPermissionResponse(*perm))
}

// Delete godoc
// @ID           deletePermission
// @Summary      Delete a permission
// @Description  Remove a name from the catalog. Roles that reference it keep the reference until they are updated.
// @Tags         permissions
// @Produce      json
// @Param        name path string true "Permission name"
// @Success      200 {object} APIResponse[PermissionResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /permissions/{name} [delete]
func (h *PermissionHandler) Delete(c *gin.Context) {
	perm, err := h.permissionService.Delete(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPermissionResponse(*perm))
}
