package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sampoornaangan-backend/internal/domain/models"
	"sampoornaangan-backend/internal/domain/services"
	"sampoornaangan-backend/internal/domain/services/container"
	"sampoornaangan-backend/internal/infrastructure/config"
)

type authTestEnv struct {
	db        *gorm.DB
	container *container.ServiceContainer
	redis     services.InterfaceRedisService
}

func newAuthTestEnv(t *testing.T) *authTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Admin{}, &models.AnganwadiCenter{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	redisService := services.NewRedisServiceWithClient(client)

	cfg := &config.Config{
		JWTSecretKey:       "test-secret-key",
		JWTExpiryHours:     168,
		LockoutMaxAttempts: 5,
		LockoutMinutes:     120,
		ResetTokenMinutes:  30,
	}

	c := container.NewServiceContainer(db, cfg, redisService)
	InitAuthMiddleware(c)

	return &authTestEnv{db: db, container: c, redis: redisService}
}

func (e *authTestEnv) seedUser(t *testing.T, role string) (*models.User, string) {
	t.Helper()
	user := &models.User{
		Name:           "Anjali Nair",
		Email:          fmt.Sprintf("%s@example.com", role),
		Role:           role,
		HashedPassword: "$2a$12$notcheckedbythesegates00000000000000000000000000000",
		IsActive:       true,
	}
	require.NoError(t, e.db.Create(user).Error)

	token, err := e.container.GetJWTService().GenerateToken(user.ID, user.Email, user.Role, models.AuthMethodDirect)
	require.NoError(t, err)
	return user, token
}

func (e *authTestEnv) seedAdmin(t *testing.T, permissions models.StringList) (*models.Admin, string) {
	t.Helper()
	admin := &models.Admin{
		Username:    "priya",
		Email:       "priya@example.com",
		Password:    "adminSecret1",
		Permissions: permissions,
	}
	require.NoError(t, e.db.Create(admin).Error)

	token, err := e.container.GetJWTService().GenerateAdminToken(admin.ID)
	require.NoError(t, err)
	return admin, token
}

func doRequest(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func protectedRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	chain := append([]gin.HandlerFunc{}, handlers...)
	chain = append(chain, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/protected", chain...)
	return r
}

func TestAuthenticateTokenAcceptsUserSession(t *testing.T) {
	env := newAuthTestEnv(t)
	_, token := env.seedUser(t, models.RoleParent)

	r := protectedRouter(AuthenticateToken())
	w := doRequest(r, token)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticateTokenRejectsMissingOrMalformed(t *testing.T) {
	env := newAuthTestEnv(t)
	_ = env

	r := protectedRouter(AuthenticateToken())

	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "garbage").Code)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateTokenRejectsAdminToken(t *testing.T) {
	env := newAuthTestEnv(t)
	_, adminToken := env.seedAdmin(t, nil)

	r := protectedRouter(AuthenticateToken())
	w := doRequest(r, adminToken)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateTokenRejectsInactiveUser(t *testing.T) {
	env := newAuthTestEnv(t)
	user, token := env.seedUser(t, models.RoleParent)
	require.NoError(t, env.db.Model(user).Update("is_active", false).Error)

	r := protectedRouter(AuthenticateToken())
	w := doRequest(r, token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateTokenRejectsBlacklistedToken(t *testing.T) {
	env := newAuthTestEnv(t)
	_, token := env.seedUser(t, models.RoleParent)

	r := protectedRouter(AuthenticateToken())
	assert.Equal(t, http.StatusOK, doRequest(r, token).Code)

	require.NoError(t, env.redis.BlacklistToken(token, time.Hour))
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, token).Code)
}

func TestAuthenticateAdmin(t *testing.T) {
	env := newAuthTestEnv(t)
	_, adminToken := env.seedAdmin(t, nil)
	_, userToken := env.seedUser(t, models.RoleParent)

	r := protectedRouter(AuthenticateAdmin())

	assert.Equal(t, http.StatusOK, doRequest(r, adminToken).Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, userToken).Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "").Code)
}

func TestAuthenticateAdminHydratesUniformPrincipal(t *testing.T) {
	env := newAuthTestEnv(t)
	admin, adminToken := env.seedAdmin(t, nil)

	var principal *models.User
	r := gin.New()
	r.GET("/protected", AuthenticateAdmin(), func(c *gin.Context) {
		principal, _ = CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	assert.Equal(t, http.StatusOK, doRequest(r, adminToken).Code)
	require.NotNil(t, principal)
	assert.Equal(t, admin.ID, principal.ID)
	assert.Equal(t, admin.Email, principal.Email)
	assert.Equal(t, models.RoleSuperAdmin, principal.Role)
}

func TestAuthenticateAdminLockedAccount(t *testing.T) {
	env := newAuthTestEnv(t)
	admin, adminToken := env.seedAdmin(t, nil)

	until := time.Now().Add(time.Hour)
	require.NoError(t, env.db.Model(admin).Update("lock_until", until).Error)

	r := protectedRouter(AuthenticateAdmin())
	w := doRequest(r, adminToken)

	assert.Equal(t, http.StatusLocked, w.Code)
}

func TestAuthenticateFlexibleFallsBackToLocal(t *testing.T) {
	env := newAuthTestEnv(t)
	_, token := env.seedUser(t, models.RoleAnganwadiWorker)

	// No federated verifier is configured, so the local pathway decides
	r := protectedRouter(AuthenticateFlexible())

	assert.Equal(t, http.StatusOK, doRequest(r, token).Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "garbage").Code)
}

func TestOptionalAuthenticate(t *testing.T) {
	env := newAuthTestEnv(t)
	_, token := env.seedUser(t, models.RoleParent)

	attached := false
	r := gin.New()
	r.GET("/protected", OptionalAuthenticate(), func(c *gin.Context) {
		_, attached = CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	assert.Equal(t, http.StatusOK, doRequest(r, "").Code)
	assert.False(t, attached)

	assert.Equal(t, http.StatusOK, doRequest(r, token).Code)
	assert.True(t, attached)

	// A bad token is ignored rather than rejected
	assert.Equal(t, http.StatusOK, doRequest(r, "garbage").Code)
}

func TestCheckRole(t *testing.T) {
	env := newAuthTestEnv(t)
	_, workerToken := env.seedUser(t, models.RoleAnganwadiWorker)

	allowed := protectedRouter(AuthenticateToken(), CheckRole(models.RoleAnganwadiWorker, models.RoleAshaVolunteer))
	assert.Equal(t, http.StatusOK, doRequest(allowed, workerToken).Code)

	denied := protectedRouter(AuthenticateToken(), CheckRole(models.RoleParent))
	w := doRequest(denied, workerToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "requiredRoles")
	assert.Contains(t, w.Body.String(), models.RoleAnganwadiWorker)
}

func TestCheckPermission(t *testing.T) {
	env := newAuthTestEnv(t)
	_, limitedToken := env.seedAdmin(t, models.StringList{"users:read"})

	granted := protectedRouter(AuthenticateAdmin(), CheckPermission("users:read"))
	assert.Equal(t, http.StatusOK, doRequest(granted, limitedToken).Code)

	denied := protectedRouter(AuthenticateAdmin(), CheckPermission("users:write"))
	w := doRequest(denied, limitedToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "requiredPermission")
}

func TestCheckPermissionWildcard(t *testing.T) {
	env := newAuthTestEnv(t)
	_, adminToken := env.seedAdmin(t, models.StringList{models.PermissionWildcard})

	r := protectedRouter(AuthenticateAdmin(), CheckPermission("reports:write"))
	assert.Equal(t, http.StatusOK, doRequest(r, adminToken).Code)
}
