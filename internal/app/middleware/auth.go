package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"sampoornaangan-backend/internal/domain/models"
	"sampoornaangan-backend/internal/domain/services"
	"sampoornaangan-backend/internal/domain/services/container"
	"sampoornaangan-backend/internal/error/code"
	"sampoornaangan-backend/internal/error/response"
)

// Context keys set by the authentication gates
const (
	ContextKeyUser       = "currentUser"
	ContextKeyAdmin      = "currentAdmin"
	ContextKeyUserID     = "userID"
	ContextKeyRole       = "role"
	ContextKeyAuthMethod = "authMethod"
	ContextKeyToken      = "token"
)

var (
	jwtService      services.InterfaceJWTService
	firebaseService services.InterfaceFirebaseService
	redisService    services.InterfaceRedisService
	userService     services.InterfaceUserService
	adminService    services.InterfaceAdminService
)

// InitAuthMiddleware wires the authentication gates to the service container
func InitAuthMiddleware(c *container.ServiceContainer) {
	jwtService = c.GetJWTService()
	firebaseService = c.GetFirebaseService()
	redisService = c.GetRedisService()
	userService = c.GetUserService()
	adminService = c.GetAdminService()
}

// extractBearer pulls the token out of the Authorization header. The
// header must carry the "Bearer <token>" shape.
func extractBearer(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// resolveLocalUser validates a session token and loads its active user
func resolveLocalUser(tokenString string) (*models.User, *services.JWTClaims, error) {
	if redisService != nil && redisService.IsTokenBlacklisted(tokenString) {
		return nil, nil, services.ErrInvalidCredentials
	}

	claims, err := jwtService.ValidateToken(tokenString)
	if err != nil {
		return nil, nil, err
	}
	if claims.TokenType != services.TokenTypeUser {
		return nil, nil, services.ErrWrongTokenType
	}

	user, err := userService.GetUserByID(claims.UserID)
	if err != nil || !user.IsActive {
		return nil, nil, services.ErrInvalidCredentials
	}
	return user, claims, nil
}

// resolveFirebaseUser verifies a federated ID token and loads its active user
func resolveFirebaseUser(c *gin.Context, tokenString string) (*models.User, error) {
	verified, err := firebaseService.VerifyIDToken(c.Request.Context(), tokenString)
	if err != nil {
		return nil, err
	}

	user, err := userService.GetUserByFirebaseUID(verified.UID)
	if err != nil || !user.IsActive {
		return nil, services.ErrInvalidCredentials
	}
	return user, nil
}

func attachUser(c *gin.Context, user *models.User, authMethod, token string) {
	c.Set(ContextKeyUser, user)
	c.Set(ContextKeyUserID, user.ID)
	c.Set(ContextKeyRole, user.Role)
	c.Set(ContextKeyAuthMethod, authMethod)
	c.Set(ContextKeyToken, token)
}

// AuthenticateFirebase only accepts federated ID tokens
func AuthenticateFirebase() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractBearer(c)
		if !ok {
			response.AbortFail(c, code.ErrTokenInvalid, nil)
			return
		}

		user, err := resolveFirebaseUser(c, tokenString)
		if err != nil {
			response.AbortFail(c, code.ErrTokenInvalid, nil)
			return
		}

		attachUser(c, user, models.AuthMethodFirebase, tokenString)
		c.Next()
	}
}

// AuthenticateToken only accepts locally issued session tokens
func AuthenticateToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractBearer(c)
		if !ok {
			response.AbortFail(c, code.ErrTokenInvalid, nil)
			return
		}

		user, claims, err := resolveLocalUser(tokenString)
		if err != nil {
			if errors.Is(err, services.ErrTokenExpired) {
				response.AbortFail(c, code.ErrTokenExpired, nil)
				return
			}
			response.AbortFail(c, code.ErrTokenInvalid, nil)
			return
		}

		attachUser(c, user, claims.AuthMethod, tokenString)
		c.Next()
	}
}

// AuthenticateAdmin only accepts admin session tokens and rejects locked
// accounts with a 423
func AuthenticateAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractBearer(c)
		if !ok {
			response.AbortFail(c, code.ErrTokenInvalid, nil)
			return
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			if errors.Is(err, services.ErrTokenExpired) {
				response.AbortFail(c, code.ErrTokenExpired, nil)
				return
			}
			response.AbortFail(c, code.ErrTokenInvalid, nil)
			return
		}
		if claims.TokenType != services.TokenTypeAdmin {
			response.AbortFail(c, code.ErrTokenInvalid, nil)
			return
		}

		admin, err := adminService.GetAdminByID(claims.UserID)
		if err != nil || !admin.IsActive {
			response.AbortFail(c, code.ErrTokenInvalid, nil)
			return
		}
		if admin.IsLocked() {
			response.AbortFail(c, code.ErrAccountLocked, nil)
			return
		}

		c.Set(ContextKeyAdmin, admin)
		// Hydrate the uniform principal slots for handlers that do not
		// care which principal table the request resolved against
		c.Set(ContextKeyUser, &models.User{
			BaseModel: admin.BaseModel,
			Name:      admin.Name,
			Email:     admin.Email,
			Role:      models.RoleSuperAdmin,
			IsActive:  admin.IsActive,
		})
		c.Set(ContextKeyUserID, admin.ID)
		c.Set(ContextKeyRole, models.RoleSuperAdmin)
		c.Set(ContextKeyToken, tokenString)
		c.Next()
	}
}

// AuthenticateFlexible accepts either a federated ID token or a local
// session token; the federated pathway is tried first
func AuthenticateFlexible() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractBearer(c)
		if !ok {
			response.AbortFail(c, code.ErrTokenInvalid, nil)
			return
		}

		if user, err := resolveFirebaseUser(c, tokenString); err == nil {
			attachUser(c, user, models.AuthMethodFirebase, tokenString)
			c.Next()
			return
		}

		user, claims, err := resolveLocalUser(tokenString)
		if err != nil {
			response.AbortFail(c, code.ErrTokenInvalid, nil)
			return
		}

		attachUser(c, user, claims.AuthMethod, tokenString)
		c.Next()
	}
}

// OptionalAuthenticate attaches a principal when a usable token is
// present but never blocks the request
func OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractBearer(c)
		if !ok {
			c.Next()
			return
		}

		if user, err := resolveFirebaseUser(c, tokenString); err == nil {
			attachUser(c, user, models.AuthMethodFirebase, tokenString)
			c.Next()
			return
		}
		if user, claims, err := resolveLocalUser(tokenString); err == nil {
			attachUser(c, user, claims.AuthMethod, tokenString)
		}
		c.Next()
	}
}

// CheckRole rejects requests whose principal role is outside the
// allow-list. The 403 body names the required roles and the actual one.
func CheckRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextKeyRole)
		userRole, _ := role.(string)
		if !exists || userRole == "" {
			response.AbortFail(c, code.ErrTokenInvalid, nil)
			return
		}

		for _, allowed := range allowedRoles {
			if allowed == userRole {
				c.Next()
				return
			}
		}

		response.AbortFail(c, code.ErrPermissionDenied, gin.H{
			"requiredRoles": allowedRoles,
			"userRole":      userRole,
		})
	}
}

// CheckPermission rejects admin requests lacking the named permission.
// The system:admin wildcard satisfies every check.
func CheckPermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ContextKeyAdmin)
		if !exists {
			response.AbortFail(c, code.ErrTokenInvalid, nil)
			return
		}

		admin, ok := value.(*models.Admin)
		if !ok || !admin.HasPermission(permission) {
			response.AbortFail(c, code.ErrPermissionDenied, gin.H{
				"requiredPermission": permission,
			})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user principal attached by an authentication gate
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

// CurrentAdmin returns the admin principal attached by AuthenticateAdmin
func CurrentAdmin(c *gin.Context) (*models.Admin, bool) {
	value, exists := c.Get(ContextKeyAdmin)
	if !exists {
		return nil, false
	}
	admin, ok := value.(*models.Admin)
	return admin, ok
}
