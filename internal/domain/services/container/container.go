package container

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"sampoornaangan-backend/internal/domain/services"
	"sampoornaangan-backend/internal/infrastructure/config"
)

// ServiceContainer wires all services for dependency injection
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config

	// core services
	jwtService      services.InterfaceJWTService
	firebaseService services.InterfaceFirebaseService
	redisService    services.InterfaceRedisService

	// domain services
	adminService  services.InterfaceAdminService
	userService   services.InterfaceUserService
	centerService services.InterfaceCenterService

	mu sync.RWMutex
}

// NewServiceContainer creates a new service container
func NewServiceContainer(db *gorm.DB, cfg *config.Config, redisService services.InterfaceRedisService) *ServiceContainer {
	if db == nil {
		panic("database connection is nil")
	}
	if cfg == nil {
		panic("configuration is nil")
	}

	container := &ServiceContainer{
		db:           db,
		config:       cfg,
		redisService: redisService,
	}
	container.initializeServices()
	return container
}

// initializeServices builds every service
func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.jwtService = services.NewJWTService(c.config, c.db)
	c.firebaseService = services.NewFirebaseService(context.Background(), c.config)
	c.adminService = services.NewAdminService(c.db, c.config)
	c.userService = services.NewUserService(c.db, c.config, c.firebaseService)
	c.centerService = services.NewCenterService(c.db, c.config)
}

// GetDB returns the database connection
func (c *ServiceContainer) GetDB() *gorm.DB {
	return c.db
}

// GetConfig returns the application configuration
func (c *ServiceContainer) GetConfig() *config.Config {
	return c.config
}

// GetJWTService returns the session token issuer
func (c *ServiceContainer) GetJWTService() services.InterfaceJWTService {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.jwtService
}

// GetFirebaseService returns the federated identity verifier
func (c *ServiceContainer) GetFirebaseService() services.InterfaceFirebaseService {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.firebaseService
}

// GetRedisService returns the Redis cache/blacklist service, possibly nil
func (c *ServiceContainer) GetRedisService() services.InterfaceRedisService {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.redisService
}

// GetAdminService returns the admin account service
func (c *ServiceContainer) GetAdminService() services.InterfaceAdminService {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.adminService
}

// GetUserService returns the user account service
func (c *ServiceContainer) GetUserService() services.InterfaceUserService {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userService
}

// GetCenterService returns the Anganwadi center service
func (c *ServiceContainer) GetCenterService() services.InterfaceCenterService {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.centerService
}
