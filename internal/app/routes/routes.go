package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "sampoornaangan-backend/docs"
	"sampoornaangan-backend/internal/app/controllers"
	"sampoornaangan-backend/internal/app/middleware"
	"sampoornaangan-backend/internal/domain/models"
	"sampoornaangan-backend/internal/domain/services"
	"sampoornaangan-backend/internal/domain/services/container"
	"sampoornaangan-backend/internal/infrastructure/config"
)

// SetupRouter initializes and returns the configured router
func SetupRouter(db *gorm.DB, cfg *config.Config, redisService services.InterfaceRedisService) *gin.Engine {
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	serviceContainer := container.NewServiceContainer(db, cfg, redisService)
	middleware.InitAuthMiddleware(serviceContainer)

	// Swagger documentation route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	registerRoutes(r, serviceContainer)
	return r
}

// registerRoutes configures all API routes
func registerRoutes(
	r *gin.Engine,
	container *container.ServiceContainer,
) {
	api := r.Group("/api")
	registerPublicRoutes(api, container)
	registerAuthenticatedRoutes(api, container)
	registerAdminRoutes(api, container)
}

// registerPublicRoutes registers routes reachable without a token
func registerPublicRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// 10 requests per second per IP, bursts of 20. Installed on a child
	// group so the authenticated routes keep their own limits.
	public := api.Group("")
	public.Use(middleware.IPRateLimiter(10, 20))

	// Health routes
	public.GET("/ping", controllers.HandleHealthFunc(container, "ping"))
	public.GET("/health", controllers.HandleHealthFunc(container, "ping"))

	healthGroup := public.Group("/health")
	healthGroup.GET("/status", controllers.HandleHealthFunc(container, "status"))

	// Authentication routes. The credential endpoints get a tighter
	// per-path limit so password guessing is throttled before the
	// lockout machinery has to engage.
	authGroup := public.Group("/auth")
	authGroup.Use(middleware.PathRateLimiter(5, 10))
	authGroup.POST("/register", controllers.HandleAuthFunc(container, "register"))
	authGroup.POST("/login", controllers.HandleAuthFunc(container, "login"))
	authGroup.POST("/forgot-password", controllers.HandleAuthFunc(container, "forgotPassword"))
	authGroup.POST("/reset-password/:token", controllers.HandleAuthFunc(container, "resetPassword"))

	adminAuthGroup := public.Group("/auth/admin")
	adminAuthGroup.Use(middleware.PathRateLimiter(5, 10))
	adminAuthGroup.POST("/login", controllers.HandleAdminAuthFunc(container, "login"))
}

// registerAuthenticatedRoutes registers routes requiring a user session token
func registerAuthenticatedRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	auth := api.Group("/auth")
	auth.Use(middleware.AuthenticateToken())
	auth.Use(middleware.IPRateLimiter(30, 50))

	auth.GET("/me", controllers.HandleAuthFunc(container, "me"))
	auth.POST("/change-password", controllers.HandleAuthFunc(container, "changePassword"))
	auth.POST("/logout", controllers.HandleAuthFunc(container, "logout"))

	// Center listing is readable by field staff; the roles that operate
	// out of a center need it to resolve their own assignment
	centers := api.Group("/centers")
	centers.Use(middleware.AuthenticateFlexible())
	centers.Use(middleware.CheckRole(
		models.RoleAnganwadiWorker,
		models.RoleAshaVolunteer,
		models.RoleSuperAdmin,
	))
	centers.GET("", middleware.Cache(middleware.CacheConfig{Expiration: 30 * time.Second}), controllers.HandleCenterFunc(container, "getCenters"))
	centers.GET("/:id", middleware.Cache(middleware.CacheConfig{Expiration: 30 * time.Second}), controllers.HandleCenterFunc(container, "getCenter"))
}

// registerAdminRoutes registers routes requiring an admin session token
func registerAdminRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	admin := api.Group("/")
	admin.Use(middleware.AuthenticateAdmin())
	admin.Use(middleware.IPRateLimiter(30, 50))

	admin.GET("/auth/admin/me", controllers.HandleAdminAuthFunc(container, "me"))
	admin.GET("/cache/stats", middleware.CheckPermission("system:admin"), controllers.HandleHealthFunc(container, "cacheStats"))

	users := admin.Group("/users")
	users.GET("", middleware.CheckPermission("users:read"), controllers.HandleUserFunc(container, "getUsers"))
	users.GET("/:id", middleware.CheckPermission("users:read"), controllers.HandleUserFunc(container, "getUser"))
	users.POST("", middleware.CheckPermission("users:write"), controllers.HandleUserFunc(container, "createUser"))
	users.PUT("/:id", middleware.CheckPermission("users:write"), controllers.HandleUserFunc(container, "updateUser"))
	users.DELETE("/:id", middleware.CheckPermission("users:delete"), controllers.HandleUserFunc(container, "deactivateUser"))

	centers := admin.Group("/admin/centers")
	centers.POST("", middleware.CheckPermission("centers:write"), controllers.HandleCenterFunc(container, "createCenter"))
	centers.PUT("/:id", middleware.CheckPermission("centers:write"), controllers.HandleCenterFunc(container, "updateCenter"))
	centers.DELETE("/:id", middleware.CheckPermission("centers:delete"), controllers.HandleCenterFunc(container, "deleteCenter"))
}
