package services

import (
	"errors"

	"gorm.io/gorm"

	"sampoornaangan-backend/internal/domain/models"
	"sampoornaangan-backend/internal/infrastructure/config"
)

// ErrCenterCodeTaken is returned when a center code already exists
var ErrCenterCodeTaken = errors.New("center code already exists")

// InterfaceCenterService defines Anganwadi center operations
type InterfaceCenterService interface {
	GetAllCenters(pagination models.PaginationQuery, search string) ([]models.AnganwadiCenter, int64, error)
	GetCenterByID(id uint) (*models.AnganwadiCenter, error)
	CreateCenter(center *models.AnganwadiCenter) error
	UpdateCenter(id uint, updates map[string]interface{}) (*models.AnganwadiCenter, error)
	DeleteCenter(id uint) error
}

// CenterService provides Anganwadi center management
type CenterService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewCenterService creates a new center service
func NewCenterService(db *gorm.DB, cfg *config.Config) InterfaceCenterService {
	return &CenterService{
		DB:     db,
		Config: cfg,
	}
}

// GetAllCenters returns a page of centers, optionally filtered by a
// name/code/district search term
func (s *CenterService) GetAllCenters(pagination models.PaginationQuery, search string) ([]models.AnganwadiCenter, int64, error) {
	var centers []models.AnganwadiCenter
	var total int64

	query := s.DB.Model(&models.AnganwadiCenter{})
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR code LIKE ? OR district LIKE ?", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at"
	if pagination.Desc {
		order = "created_at DESC"
	}

	offset := (pagination.PageNum - 1) * pagination.PageSize
	if err := query.Order(order).Offset(offset).Limit(pagination.PageSize).Find(&centers).Error; err != nil {
		return nil, 0, err
	}

	return centers, total, nil
}

// GetCenterByID fetches a center by primary key
func (s *CenterService) GetCenterByID(id uint) (*models.AnganwadiCenter, error) {
	var center models.AnganwadiCenter
	if err := s.DB.First(&center, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &center, nil
}

// CreateCenter creates a new center, enforcing code uniqueness
func (s *CenterService) CreateCenter(center *models.AnganwadiCenter) error {
	var count int64
	if err := s.DB.Model(&models.AnganwadiCenter{}).Where("code = ?", center.Code).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrCenterCodeTaken
	}
	return s.DB.Create(center).Error
}

// UpdateCenter applies field updates to a center
func (s *CenterService) UpdateCenter(id uint, updates map[string]interface{}) (*models.AnganwadiCenter, error) {
	center, err := s.GetCenterByID(id)
	if err != nil {
		return nil, err
	}

	if code, ok := updates["code"].(string); ok && code != center.Code {
		var count int64
		if err := s.DB.Model(&models.AnganwadiCenter{}).
			Where("code = ? AND id != ?", code, id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrCenterCodeTaken
		}
	}

	if err := s.DB.Model(center).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetCenterByID(id)
}

// DeleteCenter removes a center
func (s *CenterService) DeleteCenter(id uint) error {
	result := s.DB.Delete(&models.AnganwadiCenter{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
