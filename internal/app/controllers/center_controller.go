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

// InterfaceCenterController defines the anganwadi center controller
type InterfaceCenterController interface {
	GetCenters()
	GetCenter()
	CreateCenter()
	UpdateCenter()
	DeleteCenter()
}

// CenterController handles anganwadi center management requests
type CenterController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewCenterController creates a new center controller
func NewCenterController(ctx *gin.Context, container *container.ServiceContainer) *CenterController {
	return &CenterController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleCenterFunc returns a gin handler dispatching to the named method
func HandleCenterFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewCenterController(ctx, container)

		switch method {
		case "getCenters":
			controller.GetCenters()
		case "getCenter":
			controller.GetCenter()
		case "createCenter":
			controller.CreateCenter()
		case "updateCenter":
			controller.UpdateCenter()
		case "deleteCenter":
			controller.DeleteCenter()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "Unknown method", nil)
		}
	}
}

// CreateCenterRequest is the center creation payload
type CreateCenterRequest struct {
	Name     string `json:"name" binding:"required" example:"Akathumuri Anganwadi"`
	Code     string `json:"code" binding:"required" example:"AWC-TVM-001"`
	District string `json:"district" example:"Thiruvananthapuram"`
	Block    string `json:"block" example:"Varkala"`
	Address  string `json:"address" example:"Akathumuri, Varkala"`
}

// UpdateCenterRequest carries the mutable center fields
type UpdateCenterRequest struct {
	Name     *string `json:"name"`
	District *string `json:"district"`
	Block    *string `json:"block"`
	Address  *string `json:"address"`
	IsActive *bool   `json:"isActive"`
}

// GetCenters returns a paginated center listing
// @Summary      List anganwadi centers
// @Tags         Centers
// @Produce      json
// @Security     BearerAuth
// @Param        pageNum   query  int     false  "Page number"  default(1)
// @Param        pageSize  query  int     false  "Page size"    default(10)
// @Param        desc      query  bool    false  "Newest first"
// @Param        search    query  string  false  "Search name or code"
// @Success      200  {object}  response.Response
// @Router       /centers [get]
func (c *CenterController) GetCenters() {
	pagination := models.PaginationQuery{PageNum: 1, PageSize: 10}
	if err := c.Ctx.ShouldBindQuery(&pagination); err != nil || pagination.PageNum < 1 || pagination.PageSize < 1 {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Invalid pagination parameters", nil)
		return
	}
	search := c.Ctx.Query("search")

	centers, total, err := c.Container.GetCenterService().GetAllCenters(pagination, search)
	if err != nil {
		Logger.Error("Failed to list centers: %v", err)
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"centers":    centers,
		"pagination": models.NewPaginationResult(int(total), pagination.PageNum, pagination.PageSize),
	})
}

// GetCenter returns a single center by ID
// @Summary      Get anganwadi center
// @Tags         Centers
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Center ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /centers/{id} [get]
func (c *CenterController) GetCenter() {
	id, err := strconv.ParseUint(c.Ctx.Param("id"), 10, 32)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Invalid center ID", nil)
		return
	}

	center, err := c.Container.GetCenterService().GetCenterByID(uint(id))
	if err != nil {
		response.Fail(c.Ctx, code.ErrCenterNotFound, nil)
		return
	}

	response.Success(c.Ctx, gin.H{"center": center})
}

// CreateCenter registers a new anganwadi center
// @Summary      Create anganwadi center
// @Tags         Centers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateCenterRequest true "Center creation payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /admin/centers [post]
func (c *CenterController) CreateCenter() {
	var req CreateCenterRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Invalid request parameters", nil)
		return
	}

	center := &models.AnganwadiCenter{
		Name:     req.Name,
		Code:     req.Code,
		District: req.District,
		Block:    req.Block,
		Address:  req.Address,
		IsActive: true,
	}

	if err := c.Container.GetCenterService().CreateCenter(center); err != nil {
		if errors.Is(err, services.ErrCenterCodeTaken) {
			response.Fail(c.Ctx, code.ErrCenterAlreadyExists, nil)
			return
		}
		Logger.Error("Failed to create center %s: %v", req.Code, err)
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}

	response.Created(c.Ctx, gin.H{"center": center})
}

// UpdateCenter applies partial updates to a center
// @Summary      Update anganwadi center
// @Tags         Centers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path  int                  true  "Center ID"
// @Param        request body  UpdateCenterRequest  true  "Update payload"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /admin/centers/{id} [put]
func (c *CenterController) UpdateCenter() {
	id, err := strconv.ParseUint(c.Ctx.Param("id"), 10, 32)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Invalid center ID", nil)
		return
	}

	var req UpdateCenterRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Invalid request parameters", nil)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.District != nil {
		updates["district"] = *req.District
	}
	if req.Block != nil {
		updates["block"] = *req.Block
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		response.FailWithMessage(c.Ctx, code.ErrBind, "No fields to update", nil)
		return
	}

	center, err := c.Container.GetCenterService().UpdateCenter(uint(id), updates)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.Fail(c.Ctx, code.ErrCenterNotFound, nil)
			return
		}
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}

	response.Success(c.Ctx, gin.H{"center": center})
}

// DeleteCenter removes a center
// @Summary      Delete anganwadi center
// @Tags         Centers
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Center ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /admin/centers/{id} [delete]
func (c *CenterController) DeleteCenter() {
	id, err := strconv.ParseUint(c.Ctx.Param("id"), 10, 32)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Invalid center ID", nil)
		return
	}

	if err := c.Container.GetCenterService().DeleteCenter(uint(id)); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.Fail(c.Ctx, code.ErrCenterNotFound, nil)
			return
		}
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}

	response.Success(c.Ctx, gin.H{"message": "Center deleted"})
}
