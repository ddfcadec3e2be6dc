package controllers

import (
	"time"

	"github.com/gin-gonic/gin"

	"sampoornaangan-backend/internal/app/middleware"
	"sampoornaangan-backend/internal/domain/services/container"
	"sampoornaangan-backend/internal/error/code"
	"sampoornaangan-backend/internal/error/response"
)

var startTime = time.Now()

// HealthController reports service liveness and dependency status
type HealthController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewHealthController creates a new health controller
func NewHealthController(ctx *gin.Context, container *container.ServiceContainer) *HealthController {
	return &HealthController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleHealthFunc returns a gin handler dispatching to the named method
func HandleHealthFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewHealthController(ctx, container)

		switch method {
		case "ping":
			controller.Ping()
		case "status":
			controller.Status()
		case "cacheStats":
			controller.CacheStats()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "Unknown method", nil)
		}
	}
}

// Ping is a bare liveness probe
// @Summary      Liveness probe
// @Tags         Health
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /ping [get]
func (c *HealthController) Ping() {
	response.Success(c.Ctx, gin.H{"message": "pong"})
}

// Status reports dependency health alongside uptime
// @Summary      Service status
// @Tags         Health
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /health/status [get]
func (c *HealthController) Status() {
	dbStatus := "up"
	if sqlDB, err := c.Container.GetDB().DB(); err != nil || sqlDB.Ping() != nil {
		dbStatus = "down"
	}

	redisStatus := "disabled"
	if redisService := c.Container.GetRedisService(); redisService != nil {
		redisStatus = "up"
		if err := redisService.Set("health:probe", "1", time.Minute); err != nil {
			redisStatus = "degraded"
		}
	}

	firebaseStatus := "disabled"
	if c.Container.GetFirebaseService().IsConfigured() {
		firebaseStatus = "up"
	}

	response.Success(c.Ctx, gin.H{
		"uptime":   time.Since(startTime).String(),
		"database": dbStatus,
		"redis":    redisStatus,
		"firebase": firebaseStatus,
	})
}

// CacheStats exposes the in-memory response cache counters
// @Summary      Response cache statistics
// @Tags         Health
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /cache/stats [get]
func (c *HealthController) CacheStats() {
	response.Success(c.Ctx, middleware.CacheStats())
}
