package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appidentity "github.com/shopadmin/backoffice/internal/application/identity"
)

// UserHandler handles user management HTTP requests
type UserHandler struct {
	BaseHandler
	userService *appidentity.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *appidentity.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// Create godoc
// @ID           createUser
// @Summary      Create a new user
// @Description  Provision a user, optionally with a role
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body CreateUserRequest true "User creation request"
// @Success      201 {object} APIResponse[UserResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	input := appidentity.CreateUserInput{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    req.Password,
	}
	if req.RoleID != nil {
		roleID, err := uuid.Parse(*req.RoleID)
		if err != nil {
			h.BadRequest(c, "Invalid role ID format")
			return
		}
		input.RoleID = &roleID
	}

	user, err := h.userService.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toUserResponse(*user))
}

// GetByID godoc
// @ID           getUserById
// @Summary      Get a user by ID
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[UserResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{id} [get]
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id", "user")
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toUserResponse(*user))
}

// List godoc
// @ID           listUsers
// @Summary      List users
// @Description  Get a paginated list of users
// @Tags         users
// @Produce      json
// @Param        keyword    query string false "Search in email and display name"
// @Param        role_id    query string false "Filter by role" format(uuid)
// @Param        sort_by    query string false "Sort field" Enums(email, display_name, created_at, updated_at, last_login_at)
// @Param        sort_order query string false "Sort order" Enums(asc, desc)
// @Param        page       query int    false "Page number" default(1)
// @Param        page_size  query int    false "Items per page" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]UserResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	var query UserListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}

	input := appidentity.UserListInput{
		Keyword:   query.Keyword,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
		Page:      query.Page,
		PageSize:  query.PageSize,
	}
	if query.RoleID != "" {
		roleID, err := uuid.Parse(query.RoleID)
		if err != nil {
			h.BadRequest(c, "Invalid role ID format")
			return
		}
		input.RoleID = &roleID
	}

	result, err := h.userService.List(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, toUserResponses(result.Users), result.Total, result.Page, result.PageSize)
}

// AssignRole godoc
// @ID           assignUserRole
// @Summary      Assign a role to a user
// @Description  Replace the user's role. The change applies to the next authenticated request.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id      path string            true "User ID" format(uuid)
// @Param        request body AssignRoleRequest true "Role assignment"
// @Success      200 {object} APIResponse[UserResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{id}/role [put]
func (h *UserHandler) AssignRole(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id", "user")
	if !ok {
		return
	}

	var req AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	roleID, err := uuid.Parse(req.RoleID)
	if err != nil {
		h.BadRequest(c, "Invalid role ID format")
		return
	}

	user, err := h.userService.AssignRole(c.Request.Context(), id, roleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toUserResponse(*user))
}

// VerifyEmail godoc
// @ID           verifyUserEmail
// @Summary      Mark a user's email as verified
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[UserResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{id}/verify-email [post]
func (h *UserHandler) VerifyEmail(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id", "user")
	if !ok {
		return
	}

	user, err := h.userService.VerifyEmail(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toUserResponse(*user))
}

// Delete godoc
// @ID           deleteUser
// @Summary      Delete a user
// @Description  Delete a user. Callers cannot delete their own account.
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id", "user")
	if !ok {
		return
	}
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.userService.Delete(c.Request.Context(), actorID, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
