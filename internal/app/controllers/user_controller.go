package controllers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"sampoornaangan-backend/internal/domain/models"
	"sampoornaangan-backend/internal/domain/services"
	"sampoornaangan-backend/internal/domain/services/container"
	"sampoornaangan-backend/internal/error/code"
	"sampoornaangan-backend/internal/error/response"
	Logger "sampoornaangan-backend/pkg/logger"
)

// InterfaceUserController defines the admin-facing user management controller
type InterfaceUserController interface {
	GetUsers()
	GetUser()
	CreateUser()
	UpdateUser()
	DeactivateUser()
}

// UserController handles admin-facing user management requests
type UserController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewUserController creates a new user management controller
func NewUserController(ctx *gin.Context, container *container.ServiceContainer) *UserController {
	return &UserController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleUserFunc returns a gin handler dispatching to the named method
func HandleUserFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewUserController(ctx, container)

		switch method {
		case "getUsers":
			controller.GetUsers()
		case "getUser":
			controller.GetUser()
		case "createUser":
			controller.CreateUser()
		case "updateUser":
			controller.UpdateUser()
		case "deactivateUser":
			controller.DeactivateUser()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "Unknown method", nil)
		}
	}
}

// CreateUserRequest is the admin-side user creation payload. The new user
// receives a generated temporary password returned once in the response.
type CreateUserRequest struct {
	Name             string         `json:"name" binding:"required" example:"Lakshmi Devi"`
	Email            string         `json:"email" binding:"required,email" example:"lakshmi@example.com"`
	Phone            string         `json:"phone" example:"9876543211"`
	Role             string         `json:"role" binding:"required" example:"anganwadi-worker"`
	Address          string         `json:"address" example:"Akathumuri, Varkala"`
	RoleSpecificData models.JSONMap `json:"roleSpecificData"`
}

// UpdateUserRequest carries the mutable user fields; nil pointers are skipped
type UpdateUserRequest struct {
	Name             *string        `json:"name"`
	Phone            *string        `json:"phone"`
	Address          *string        `json:"address"`
	IsActive         *bool          `json:"isActive"`
	RoleSpecificData models.JSONMap `json:"roleSpecificData"`
}

// GetUsers returns a paginated user listing with role and search filters
// @Summary      List users
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Param        pageNum   query  int     false  "Page number"      default(1)
// @Param        pageSize  query  int     false  "Page size"        default(10)
// @Param        role      query  string  false  "Filter by role"
// @Param        search    query  string  false  "Search name or email"
// @Success      200  {object}  response.Response
// @Router       /users [get]
func (c *UserController) GetUsers() {
	pagination := models.PaginationQuery{PageNum: 1, PageSize: 10}
	if err := c.Ctx.ShouldBindQuery(&pagination); err != nil || pagination.PageNum < 1 || pagination.PageSize < 1 {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Invalid pagination parameters", nil)
		return
	}
	role := c.Ctx.Query("role")
	search := c.Ctx.Query("search")

	users, total, err := c.Container.GetUserService().GetAllUsers(pagination.PageNum, pagination.PageSize, role, search)
	if err != nil {
		Logger.Error("Failed to list users: %v", err)
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}

	views := make([]gin.H, 0, len(users))
	for i := range users {
		views = append(views, users[i].SafeView())
	}

	response.Success(c.Ctx, gin.H{
		"users":      views,
		"pagination": models.NewPaginationResult(int(total), pagination.PageNum, pagination.PageSize),
	})
}

// GetUser returns a single user by ID
// @Summary      Get user
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "User ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /users/{id} [get]
func (c *UserController) GetUser() {
	id, err := strconv.ParseUint(c.Ctx.Param("id"), 10, 32)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Invalid user ID", nil)
		return
	}

	user, err := c.Container.GetUserService().GetUserByID(uint(id))
	if err != nil {
		response.Fail(c.Ctx, code.ErrUserNotFound, nil)
		return
	}

	response.Success(c.Ctx, gin.H{"user": user.SafeView()})
}

// CreateUser creates a staff account with a generated temporary password
// @Summary      Create user
// @Description  Create a worker, helper or other staff account. The response contains the one-time temporary password; the user must change it on first login.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateUserRequest true "User creation payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /users [post]
func (c *UserController) CreateUser() {
	var req CreateUserRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Invalid request parameters", nil)
		return
	}
	if !models.IsValidUserRole(req.Role) {
		response.Fail(c.Ctx, code.ErrInvalidRole, nil)
		return
	}

	user := &models.User{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Role:        req.Role,
		Address:     req.Address,
		RoleDetails: req.RoleSpecificData,
		IsActive:    true,
	}

	tempPassword, err := c.Container.GetUserService().CreateWithTempPassword(user)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			response.Fail(c.Ctx, code.ErrUserAlreadyExists, nil)
			return
		}
		Logger.Error("Failed to create user %s: %v", req.Email, err)
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}

	response.Created(c.Ctx, gin.H{
		"user":         user.SafeView(),
		"tempPassword": tempPassword,
	})
}

// UpdateUser applies partial updates to a user
// @Summary      Update user
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path  int                true  "User ID"
// @Param        request body  UpdateUserRequest  true  "Update payload"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /users/{id} [put]
func (c *UserController) UpdateUser() {
	id, err := strconv.ParseUint(c.Ctx.Param("id"), 10, 32)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Invalid user ID", nil)
		return
	}

	var req UpdateUserRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Invalid request parameters", nil)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.RoleSpecificData != nil {
		updates["role_details"] = req.RoleSpecificData
	}
	if len(updates) == 0 {
		response.FailWithMessage(c.Ctx, code.ErrBind, "No fields to update", nil)
		return
	}

	user, err := c.Container.GetUserService().UpdateUser(uint(id), updates)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.Fail(c.Ctx, code.ErrUserNotFound, nil)
			return
		}
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}

	response.Success(c.Ctx, gin.H{"user": user.SafeView()})
}

// DeactivateUser soft-deletes a user; the row and its audit trail remain
// @Summary      Deactivate user
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "User ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /users/{id} [delete]
func (c *UserController) DeactivateUser() {
	id, err := strconv.ParseUint(c.Ctx.Param("id"), 10, 32)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Invalid user ID", nil)
		return
	}

	if err := c.Container.GetUserService().DeactivateUser(uint(id)); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.Fail(c.Ctx, code.ErrUserNotFound, nil)
			return
		}
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}

	response.Success(c.Ctx, gin.H{"message": "User deactivated"})
}
