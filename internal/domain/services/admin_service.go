package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sampoornaangan-backend/internal/domain/models"
	"sampoornaangan-backend/internal/infrastructure/config"
	Logger "sampoornaangan-backend/pkg/logger"
	"sampoornaangan-backend/utils"
)

// Sentinel authentication errors shared by admin and user services
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account is temporarily locked")
	ErrAccountInactive    = errors.New("account is deactivated")
	ErrNoAuthMethod       = errors.New("no authentication method available")
	ErrResetTokenInvalid  = errors.New("invalid or expired reset token")
	ErrNotFound           = errors.New("record not found")
	ErrEmailTaken         = errors.New("email already registered")
)

// InterfaceAdminService defines admin account operations
type InterfaceAdminService interface {
	Login(identifier, password, ip, userAgent string) (*models.Admin, error)
	GetAdminByID(id uint) (*models.Admin, error)
	GetAdminByIdentifier(identifier string) (*models.Admin, error)
	CreateAdmin(admin *models.Admin) error
	UpdateAdmin(id uint, updates map[string]interface{}) (*models.Admin, error)
	CreateResetToken(email string) (string, error)
	ResetPassword(rawToken, newPassword string) error
	EnsureDefaultAdmin(password string) error
}

// AdminService provides admin account management and the lockout policy
type AdminService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewAdminService creates a new admin service
func NewAdminService(db *gorm.DB, cfg *config.Config) InterfaceAdminService {
	return &AdminService{
		DB:     db,
		Config: cfg,
	}
}

// Login verifies an admin credential, enforcing the lockout policy.
// A locked account rejects all attempts until the window elapses, even
// with the correct password. Each failed verification advances the
// lockout counter; success resets it and records a session.
func (s *AdminService) Login(identifier, password, ip, userAgent string) (*models.Admin, error) {
	admin, err := s.GetAdminByIdentifier(identifier)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !admin.IsActive {
		return nil, ErrInvalidCredentials
	}
	if admin.IsLocked() {
		return nil, ErrAccountLocked
	}

	now := time.Now()
	if !admin.CheckPassword(password) {
		admin.RegisterFailedLogin(s.Config.LockoutMaxAttempts, time.Duration(s.Config.LockoutMinutes)*time.Minute, now)
		if err := s.DB.Save(admin).Error; err != nil {
			Logger.Error("Failed to persist lockout state for admin %d: %v", admin.ID, err)
		}
		if admin.IsLocked() {
			Logger.Warning("Admin account %s locked after %d failed attempts", admin.Username, admin.FailedLoginAttempts)
		}
		return nil, ErrInvalidCredentials
	}

	admin.RegisterSuccessfulLogin(models.SessionInfo{
		SessionID:    uuid.NewString(),
		IPAddress:    ip,
		UserAgent:    userAgent,
		CreatedAt:    now,
		LastActivity: now,
	}, now)
	if err := s.DB.Save(admin).Error; err != nil {
		return nil, err
	}

	return admin, nil
}

// GetAdminByID fetches an admin by primary key
func (s *AdminService) GetAdminByID(id uint) (*models.Admin, error) {
	var admin models.Admin
	if err := s.DB.First(&admin, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &admin, nil
}

// GetAdminByIdentifier fetches an admin by username or email
func (s *AdminService) GetAdminByIdentifier(identifier string) (*models.Admin, error) {
	identifier = strings.TrimSpace(identifier)
	var admin models.Admin
	err := s.DB.Where("username = ? OR email = ?", strings.ToLower(identifier), identifier).First(&admin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &admin, nil
}

// CreateAdmin creates a new admin, enforcing username uniqueness. The
// model hook hashes the password and applies default permissions.
func (s *AdminService) CreateAdmin(admin *models.Admin) error {
	var count int64
	if err := s.DB.Model(&models.Admin{}).
		Where("username = ? OR email = ?", strings.ToLower(admin.Username), admin.Email).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrEmailTaken
	}

	return s.DB.Create(admin).Error
}

// UpdateAdmin applies field updates; a plaintext password update is
// hashed before persisting
func (s *AdminService) UpdateAdmin(id uint, updates map[string]interface{}) (*models.Admin, error) {
	admin, err := s.GetAdminByID(id)
	if err != nil {
		return nil, err
	}

	if password, ok := updates["password"].(string); ok && password != "" {
		hashed, err := utils.HashPassword(password)
		if err != nil {
			return nil, err
		}
		updates["password"] = hashed
	}

	if err := s.DB.Model(admin).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetAdminByID(id)
}

// CreateResetToken generates a reset token for the admin with the given
// email, storing only its hash plus an expiry, and returns the raw token
// for out-of-band delivery
func (s *AdminService) CreateResetToken(email string) (string, error) {
	var admin models.Admin
	if err := s.DB.Where("email = ? AND is_active = ?", email, true).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}

	rawToken, err := utils.GenerateResetToken()
	if err != nil {
		return "", err
	}

	expires := time.Now().Add(time.Duration(s.Config.ResetTokenMinutes) * time.Minute)
	admin.ResetPasswordToken = utils.HashResetToken(rawToken)
	admin.ResetPasswordExpires = &expires
	if err := s.DB.Save(&admin).Error; err != nil {
		return "", err
	}

	return rawToken, nil
}

// ResetPassword exchanges a valid reset token for a new password and
// clears the reset fields so the token cannot be replayed
func (s *AdminService) ResetPassword(rawToken, newPassword string) error {
	var admin models.Admin
	err := s.DB.Where("reset_password_token = ? AND reset_password_expires > ?",
		utils.HashResetToken(rawToken), time.Now()).First(&admin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResetTokenInvalid
		}
		return err
	}

	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.DB.Model(&admin).Updates(map[string]interface{}{
		"password":               hashed,
		"reset_password_token":   "",
		"reset_password_expires": nil,
	}).Error
}

// EnsureDefaultAdmin seeds the bootstrap admin account when no admin
// exists yet
func (s *AdminService) EnsureDefaultAdmin(password string) error {
	var count int64
	if err := s.DB.Model(&models.Admin{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	admin := models.Admin{
		Username: "admin",
		Email:    "admin@sampoornaangan.local",
		Name:     "System Administrator",
		Password: password,
	}
	if err := s.DB.Create(&admin).Error; err != nil {
		return err
	}

	Logger.Info("Default admin account created")
	return nil
}
