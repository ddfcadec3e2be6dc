package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"sampoornaangan-backend/internal/domain/models"
	"sampoornaangan-backend/internal/infrastructure/config"
	Logger "sampoornaangan-backend/pkg/logger"
	"sampoornaangan-backend/utils"
)

// RegistrationInput is the payload for self-service registration
type RegistrationInput struct {
	Name        string
	Email       string
	Password    string
	Phone       string
	Role        string
	Address     string
	RoleDetails models.JSONMap
}

// InterfaceUserService defines user account operations
type InterfaceUserService interface {
	Register(ctx context.Context, input RegistrationInput) (*models.User, error)
	AuthenticateLocal(email, password, role string) (*models.User, string, error)
	AuthenticateFirebase(uid string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByFirebaseUID(uid string) (*models.User, error)
	GetAllUsers(page, pageSize int, role, search string) ([]models.User, int64, error)
	CreateWithTempPassword(user *models.User) (string, error)
	UpdateUser(id uint, updates map[string]interface{}) (*models.User, error)
	DeactivateUser(id uint) error
	ChangePassword(id uint, currentPassword, newPassword string) error
	CreateResetToken(email string) (string, error)
	ResetPassword(rawToken, newPassword string) error
}

// UserService provides user account management and credential resolution
type UserService struct {
	DB       *gorm.DB
	Config   *config.Config
	Firebase InterfaceFirebaseService
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB, cfg *config.Config, firebase InterfaceFirebaseService) InterfaceUserService {
	return &UserService{
		DB:       db,
		Config:   cfg,
		Firebase: firebase,
	}
}

// Register creates a self-service account. Federated provisioning is
// best-effort: when the identity provider rejects or is absent, the
// record still gets created with a locally generated direct- uid, and
// the password hash remains the usable credential.
func (s *UserService) Register(ctx context.Context, input RegistrationInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var count int64
	if err := s.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	if !models.IsValidUserRole(input.Role) {
		return nil, errors.New("invalid role")
	}

	uid, err := s.Firebase.CreateUser(ctx, email, input.Password)
	if err != nil {
		uid = utils.GenerateDirectUID()
		Logger.Warning("Federated provisioning failed for %s (%v), falling back to %s", email, err, uid)
	} else if err := s.Firebase.SetCustomClaims(ctx, uid, map[string]interface{}{"role": input.Role}); err != nil {
		Logger.Warning("Failed to set custom claims for %s: %v", uid, err)
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:           input.Name,
		Email:          email,
		Phone:          input.Phone,
		FirebaseUID:    &uid,
		HashedPassword: hashed,
		Role:           input.Role,
		Address:        input.Address,
		RoleDetails:    input.RoleDetails,
		IsActive:       true,
	}
	if err := s.DB.Create(user).Error; err != nil {
		return nil, err
	}

	return user, nil
}

// AuthenticateLocal resolves the email/password pathway: an admin-issued
// temporary password is matched exactly when present, otherwise the
// hashed password is verified. An account with no credential at all is
// rejected with a distinct error.
func (s *UserService) AuthenticateLocal(email, password, role string) (*models.User, string, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, "", ErrInvalidCredentials
	}
	if !user.HasCredential() {
		return nil, "", ErrNoAuthMethod
	}
	if role != "" && role != user.Role {
		return nil, "", ErrInvalidCredentials
	}

	var authMethod string
	switch {
	case user.TempPassword != "":
		if subtle.ConstantTimeCompare([]byte(user.TempPassword), []byte(password)) != 1 {
			return nil, "", ErrInvalidCredentials
		}
		authMethod = models.AuthMethodTemp
	case user.HashedPassword != "":
		if !user.CheckHashedPassword(password) {
			return nil, "", ErrInvalidCredentials
		}
		authMethod = models.AuthMethodDirect
	default:
		// Only a federated identity exists; a password can never match it
		return nil, "", ErrInvalidCredentials
	}

	now := time.Now()
	user.RegisterSuccessfulLogin(now)
	if err := s.DB.Model(user).Updates(map[string]interface{}{
		"login_count": user.LoginCount,
		"last_login":  now,
	}).Error; err != nil {
		Logger.Error("Failed to record login for user %d: %v", user.ID, err)
	}

	return user, authMethod, nil
}

// AuthenticateFirebase resolves a verified federated subject to an
// active user record
func (s *UserService) AuthenticateFirebase(uid string) (*models.User, error) {
	user, err := s.GetUserByFirebaseUID(uid)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	user.RegisterSuccessfulLogin(now)
	if err := s.DB.Model(user).Updates(map[string]interface{}{
		"login_count": user.LoginCount,
		"last_login":  now,
	}).Error; err != nil {
		Logger.Error("Failed to record login for user %d: %v", user.ID, err)
	}

	return user, nil
}

// GetUserByID fetches a user by primary key
func (s *UserService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail fetches a user by email
func (s *UserService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByFirebaseUID fetches a user by federated uid
func (s *UserService) GetUserByFirebaseUID(uid string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("firebase_uid = ?", uid).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetAllUsers returns a page of users, optionally filtered by role and a
// name/email/phone search term
func (s *UserService) GetAllUsers(page, pageSize int, role, search string) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	query := s.DB.Model(&models.User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR email LIKE ? OR phone LIKE ?", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Order("id DESC").Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// CreateWithTempPassword creates an admin-initiated account carrying a
// generated temporary password, and returns the plaintext for one-time
// out-of-band delivery
func (s *UserService) CreateWithTempPassword(user *models.User) (string, error) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	var count int64
	if err := s.DB.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return "", err
	}
	if count > 0 {
		return "", ErrEmailTaken
	}
	if !models.IsValidUserRole(user.Role) {
		return "", errors.New("invalid role")
	}

	tempPassword, err := utils.GenerateTempPassword()
	if err != nil {
		return "", err
	}
	user.TempPassword = tempPassword
	user.IsActive = true

	if err := s.DB.Create(user).Error; err != nil {
		return "", err
	}
	return tempPassword, nil
}

// UpdateUser applies field updates to a user record
func (s *UserService) UpdateUser(id uint, updates map[string]interface{}) (*models.User, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.DB.Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetUserByID(id)
}

// DeactivateUser soft-deletes a user account
func (s *UserService) DeactivateUser(id uint) error {
	result := s.DB.Model(&models.User{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ChangePassword verifies the current password against whichever
// credential field is populated, then retires the temporary password by
// writing the new hash
func (s *UserService) ChangePassword(id uint, currentPassword, newPassword string) error {
	user, err := s.GetUserByID(id)
	if err != nil {
		return err
	}

	switch {
	case user.TempPassword != "":
		if subtle.ConstantTimeCompare([]byte(user.TempPassword), []byte(currentPassword)) != 1 {
			return ErrInvalidCredentials
		}
	case user.HashedPassword != "":
		if !user.CheckHashedPassword(currentPassword) {
			return ErrInvalidCredentials
		}
	default:
		return ErrNoAuthMethod
	}

	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.DB.Model(user).Updates(map[string]interface{}{
		"hashed_password": hashed,
		"temp_password":   "",
	}).Error
}

// CreateResetToken generates a reset token for the user with the given
// email, storing only its hash plus an expiry, and returns the raw token
// for out-of-band delivery
func (s *UserService) CreateResetToken(email string) (string, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		return "", err
	}
	if !user.IsActive {
		return "", ErrNotFound
	}

	rawToken, err := utils.GenerateResetToken()
	if err != nil {
		return "", err
	}

	expires := time.Now().Add(time.Duration(s.Config.ResetTokenMinutes) * time.Minute)
	if err := s.DB.Model(user).Updates(map[string]interface{}{
		"reset_password_token":   utils.HashResetToken(rawToken),
		"reset_password_expires": expires,
	}).Error; err != nil {
		return "", err
	}

	return rawToken, nil
}

// ResetPassword exchanges a valid reset token for a new password,
// retiring any temporary password and clearing the reset fields so the
// token cannot be replayed
func (s *UserService) ResetPassword(rawToken, newPassword string) error {
	var user models.User
	err := s.DB.Where("reset_password_token = ? AND reset_password_expires > ?",
		utils.HashResetToken(rawToken), time.Now()).First(&user).Error
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

	return s.DB.Model(&user).Updates(map[string]interface{}{
		"hashed_password":        hashed,
		"temp_password":          "",
		"reset_password_token":   "",
		"reset_password_expires": nil,
	}).Error
}
