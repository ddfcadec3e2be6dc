package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"sampoornaangan-backend/internal/app/middleware"
	"sampoornaangan-backend/internal/domain/models"
	"sampoornaangan-backend/internal/domain/services"
	"sampoornaangan-backend/internal/domain/services/container"
	"sampoornaangan-backend/internal/error/code"
	"sampoornaangan-backend/internal/error/response"
	Logger "sampoornaangan-backend/pkg/logger"
)

// InterfaceAdminAuthController defines the admin authentication controller
type InterfaceAdminAuthController interface {
	Login()
	Me()
}

// AdminAuthController handles admin authentication requests
type AdminAuthController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAdminAuthController creates a new admin authentication controller
func NewAdminAuthController(ctx *gin.Context, container *container.ServiceContainer) *AdminAuthController {
	return &AdminAuthController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleAdminAuthFunc returns a gin handler dispatching to the named method
func HandleAdminAuthFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAdminAuthController(ctx, container)

		switch method {
		case "login":
			controller.Login()
		case "me":
			controller.Me()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "Unknown method", nil)
		}
	}
}

// AdminLoginRequest accepts a username or email as the identifier
type AdminLoginRequest struct {
	Identifier string `json:"identifier" binding:"required" example:"admin"`
	Password   string `json:"password" binding:"required" example:"admin"`
}

// Login authenticates an admin against the lockout state machine
// @Summary      Admin login
// @Description  Authenticate an administrator by username or email. Five consecutive failures lock the account for two hours; the lock self-expires.
// @Tags         AdminAuth
// @Accept       json
// @Produce      json
// @Param        request body AdminLoginRequest true "Admin login payload"
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      423  {object}  response.Response
// @Router       /auth/admin/login [post]
func (c *AdminAuthController) Login() {
	var req AdminLoginRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Invalid request parameters", nil)
		return
	}

	admin, err := c.Container.GetAdminService().Login(
		req.Identifier, req.Password,
		c.Ctx.ClientIP(), c.Ctx.Request.UserAgent(),
	)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAccountLocked):
			response.Fail(c.Ctx, code.ErrAccountLocked, nil)
		case errors.Is(err, services.ErrInvalidCredentials):
			response.Fail(c.Ctx, code.ErrInvalidCredentials, nil)
		default:
			Logger.Error("Admin login failed for %s: %v", req.Identifier, err)
			response.Fail(c.Ctx, code.ErrDatabase, nil)
		}
		return
	}

	token, err := c.Container.GetJWTService().GenerateAdminToken(admin.ID)
	if err != nil {
		response.Fail(c.Ctx, code.ErrUnknown, nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"admin":     admin.SafeView(),
		"token":     token,
		"dashboard": models.DashboardRouteForRole(models.RoleSuperAdmin),
	})
}

// Me returns the authenticated admin's safe view
// @Summary      Current admin
// @Tags         AdminAuth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /auth/admin/me [get]
func (c *AdminAuthController) Me() {
	admin, ok := middleware.CurrentAdmin(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	response.Success(c.Ctx, gin.H{
		"admin":     admin.SafeView(),
		"dashboard": models.DashboardRouteForRole(models.RoleSuperAdmin),
	})
}
