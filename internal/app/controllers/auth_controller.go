package controllers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"sampoornaangan-backend/internal/app/middleware"
	"sampoornaangan-backend/internal/domain/models"
	"sampoornaangan-backend/internal/domain/services"
	"sampoornaangan-backend/internal/domain/services/container"
	"sampoornaangan-backend/internal/error/code"
	"sampoornaangan-backend/internal/error/response"
	Logger "sampoornaangan-backend/pkg/logger"
)

// Registration keeps the legacy 6-character minimum so existing
// beneficiary passwords remain accepted; credentials set through
// change-password or reset must be at least 8.
const (
	MinRegisterPasswordLength = 6
	MinPasswordLength         = 8
)

// InterfaceAuthController defines the user authentication controller
type InterfaceAuthController interface {
	Register()
	Login()
	Me()
	ChangePassword()
	Logout()
	ForgotPassword()
	ResetPassword()
}

// AuthController handles user authentication requests
type AuthController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAuthController creates a new authentication controller
func NewAuthController(ctx *gin.Context, container *container.ServiceContainer) *AuthController {
	return &AuthController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleAuthFunc returns a gin handler dispatching to the named method
func HandleAuthFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAuthController(ctx, container)

		switch method {
		case "register":
			controller.Register()
		case "login":
			controller.Login()
		case "me":
			controller.Me()
		case "changePassword":
			controller.ChangePassword()
		case "logout":
			controller.Logout()
		case "forgotPassword":
			controller.ForgotPassword()
		case "resetPassword":
			controller.ResetPassword()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "Unknown method", nil)
		}
	}
}

// RegisterRequest is the self-service registration payload
type RegisterRequest struct {
	Name             string         `json:"name" binding:"required" example:"Anjali Nair"`
	Email            string         `json:"email" binding:"required,email" example:"anjali@example.com"`
	Password         string         `json:"password" binding:"required" example:"secret123"`
	Phone            string         `json:"phone" example:"9876543210"`
	Role             string         `json:"role" binding:"required" example:"parent"`
	Address          string         `json:"address" example:"Attingal, Thiruvananthapuram"`
	RoleSpecificData models.JSONMap `json:"roleSpecificData"`
}

// LoginRequest carries either a federated ID token or an email/password pair
type LoginRequest struct {
	IDToken  string `json:"idToken"`
	Email    string `json:"email" example:"anjali@example.com"`
	Password string `json:"password" example:"secret123"`
	Role     string `json:"role" example:"parent"`
}

// ChangePasswordRequest is the change-password payload
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// ForgotPasswordRequest is the reset-request payload
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest is the reset-consume payload
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// Register handles self-service registration
// @Summary      Register a new user
// @Description  Create a beneficiary-facing account. Federated identity provisioning is best-effort; the account always ends up with a usable local credential.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /auth/register [post]
func (c *AuthController) Register() {
	var req RegisterRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Invalid request parameters", nil)
		return
	}
	if len(req.Password) < MinRegisterPasswordLength {
		response.FailWithMessage(c.Ctx, code.ErrPasswordTooShort, "Password must be at least 6 characters", nil)
		return
	}
	if !models.IsValidUserRole(req.Role) {
		response.Fail(c.Ctx, code.ErrInvalidRole, nil)
		return
	}

	userService := c.Container.GetUserService()
	user, err := userService.Register(c.Ctx.Request.Context(), services.RegistrationInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Phone:       req.Phone,
		Role:        req.Role,
		Address:     req.Address,
		RoleDetails: req.RoleSpecificData,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			response.Fail(c.Ctx, code.ErrUserAlreadyExists, nil)
			return
		}
		Logger.Error("Registration failed for %s: %v", req.Email, err)
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}

	token, err := c.Container.GetJWTService().GenerateToken(user.ID, user.Email, user.Role, models.AuthMethodDirect)
	if err != nil {
		response.Fail(c.Ctx, code.ErrUnknown, nil)
		return
	}

	response.Created(c.Ctx, gin.H{
		"user":      user.SafeView(),
		"token":     token,
		"dashboard": models.DashboardRouteForRole(user.Role),
	})
}

// Login handles user login via a federated ID token or email/password
// @Summary      User login
// @Description  Authenticate via a federated ID token or email and password. The federated pathway is tried first, then temporary password, then hashed password.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login payload"
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /auth/login [post]
func (c *AuthController) Login() {
	var req LoginRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Invalid request parameters", nil)
		return
	}

	userService := c.Container.GetUserService()

	var user *models.User
	var authMethod string

	if req.IDToken != "" {
		verified, err := c.Container.GetFirebaseService().VerifyIDToken(c.Ctx.Request.Context(), req.IDToken)
		if err != nil {
			if errors.Is(err, services.ErrFirebaseNotConfigured) {
				response.Fail(c.Ctx, code.ErrFirebaseUnavailable, nil)
				return
			}
			response.Fail(c.Ctx, code.ErrTokenInvalid, nil)
			return
		}

		user, err = userService.AuthenticateFirebase(verified.UID)
		if err != nil {
			response.Fail(c.Ctx, code.ErrInvalidCredentials, nil)
			return
		}
		authMethod = models.AuthMethodFirebase
	} else {
		if req.Email == "" || req.Password == "" {
			response.FailWithMessage(c.Ctx, code.ErrBind, "Email and password are required", nil)
			return
		}

		var err error
		user, authMethod, err = userService.AuthenticateLocal(req.Email, req.Password, req.Role)
		if err != nil {
			if errors.Is(err, services.ErrNoAuthMethod) {
				response.Fail(c.Ctx, code.ErrNoAuthMethod, nil)
				return
			}
			response.Fail(c.Ctx, code.ErrInvalidCredentials, nil)
			return
		}
	}

	token, err := c.Container.GetJWTService().GenerateToken(user.ID, user.Email, user.Role, authMethod)
	if err != nil {
		response.Fail(c.Ctx, code.ErrUnknown, nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"user":                user.SafeView(),
		"token":               token,
		"dashboard":           models.DashboardRouteForRole(user.Role),
		"authMethod":          authMethod,
		"needsPasswordChange": user.NeedsPasswordChange(),
	})
}

// Me returns the authenticated principal's safe view
// @Summary      Current user
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
func (c *AuthController) Me() {
	user, ok := middleware.CurrentUser(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	response.Success(c.Ctx, gin.H{
		"user":                user.SafeView(),
		"dashboard":           models.DashboardRouteForRole(user.Role),
		"needsPasswordChange": user.NeedsPasswordChange(),
	})
}

// ChangePassword verifies the current credential and replaces it with a
// new hashed password, retiring any temporary password
// @Summary      Change password
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ChangePasswordRequest true "Change password payload"
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /auth/change-password [post]
func (c *AuthController) ChangePassword() {
	user, ok := middleware.CurrentUser(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	var req ChangePasswordRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Invalid request parameters", nil)
		return
	}
	if len(req.NewPassword) < MinPasswordLength {
		response.Fail(c.Ctx, code.ErrPasswordTooShort, nil)
		return
	}

	err := c.Container.GetUserService().ChangePassword(user.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			response.FailWithMessage(c.Ctx, code.ErrInvalidCredentials, "Current password is incorrect", nil)
		case errors.Is(err, services.ErrNoAuthMethod):
			response.Fail(c.Ctx, code.ErrNoAuthMethod, nil)
		default:
			response.Fail(c.Ctx, code.ErrDatabase, nil)
		}
		return
	}

	response.Success(c.Ctx, gin.H{"message": "Password changed successfully"})
}

// Logout revokes the presented session token until its natural expiry
// @Summary      Logout
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /auth/logout [post]
func (c *AuthController) Logout() {
	tokenValue, exists := c.Ctx.Get(middleware.ContextKeyToken)
	tokenString, _ := tokenValue.(string)
	if !exists || tokenString == "" {
		response.Success(c.Ctx, gin.H{"message": "Logged out"})
		return
	}

	redisService := c.Container.GetRedisService()
	if redisService != nil {
		if claims, err := c.Container.GetJWTService().ValidateToken(tokenString); err == nil && claims.ExpiresAt != nil {
			ttl := time.Until(claims.ExpiresAt.Time)
			if err := redisService.BlacklistToken(tokenString, ttl); err != nil && !errors.Is(err, services.ErrRedisUnavailable) {
				Logger.Warning("Failed to blacklist token: %v", err)
			}
		}
	}

	response.Success(c.Ctx, gin.H{"message": "Logged out"})
}

// ForgotPassword starts the reset flow. The response is uniform whether
// or not the account exists, so the endpoint cannot be used to enumerate
// accounts.
// @Summary      Request a password reset
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body ForgotPasswordRequest true "Forgot password payload"
// @Success      200  {object}  response.Response
// @Router       /auth/forgot-password [post]
func (c *AuthController) ForgotPassword() {
	var req ForgotPasswordRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Invalid request parameters", nil)
		return
	}

	// Users first, then admins; the raw token is delivered out of band
	// by the notification worker and never appears in the response
	rawToken, err := c.Container.GetUserService().CreateResetToken(req.Email)
	if err != nil && errors.Is(err, services.ErrNotFound) {
		rawToken, err = c.Container.GetAdminService().CreateResetToken(req.Email)
	}
	if err == nil {
		Logger.Debug("Password reset token issued for %s (%d chars)", req.Email, len(rawToken))
	} else if !errors.Is(err, services.ErrNotFound) {
		Logger.Error("Password reset request failed for %s: %v", req.Email, err)
	}

	response.Success(c.Ctx, gin.H{
		"message": "If that account exists, a reset link has been sent",
	})
}

// ResetPassword consumes a reset token and sets a new password
// @Summary      Reset password
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        token   path  string                true  "Raw reset token"
// @Param        request body  ResetPasswordRequest  true  "Reset payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /auth/reset-password/{token} [post]
func (c *AuthController) ResetPassword() {
	rawToken := c.Ctx.Param("token")
	if rawToken == "" {
		response.Fail(c.Ctx, code.ErrResetTokenInvalid, nil)
		return
	}

	var req ResetPasswordRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Invalid request parameters", nil)
		return
	}
	if len(req.Password) < MinPasswordLength {
		response.Fail(c.Ctx, code.ErrPasswordTooShort, nil)
		return
	}

	err := c.Container.GetUserService().ResetPassword(rawToken, req.Password)
	if errors.Is(err, services.ErrResetTokenInvalid) {
		err = c.Container.GetAdminService().ResetPassword(rawToken, req.Password)
	}
	if err != nil {
		if errors.Is(err, services.ErrResetTokenInvalid) {
			response.Fail(c.Ctx, code.ErrResetTokenInvalid, nil)
			return
		}
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}

	response.Success(c.Ctx, gin.H{"message": "Password has been reset"})
}
