package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sampoornaangan-backend/internal/domain/models"
	"sampoornaangan-backend/internal/infrastructure/config"
	"sampoornaangan-backend/utils"
)

// fakeFirebaseService provisions deterministic uids, or fails on demand
type fakeFirebaseService struct {
	failCreate bool
	created    []string
	claims     map[string]map[string]interface{}
}

func (f *fakeFirebaseService) IsConfigured() bool { return !f.failCreate }

func (f *fakeFirebaseService) VerifyIDToken(_ context.Context, _ string) (*FirebaseToken, error) {
	return nil, ErrFirebaseTokenInvalid
}

func (f *fakeFirebaseService) CreateUser(_ context.Context, email, _ string) (string, error) {
	if f.failCreate {
		return "", errors.New("provider unreachable")
	}
	uid := "fb-" + email
	f.created = append(f.created, uid)
	return uid, nil
}

func (f *fakeFirebaseService) DeleteUser(_ context.Context, _ string) error { return nil }

func (f *fakeFirebaseService) SetCustomClaims(_ context.Context, uid string, claims map[string]interface{}) error {
	if f.failCreate {
		return errors.New("provider unreachable")
	}
	if f.claims == nil {
		f.claims = make(map[string]map[string]interface{})
	}
	f.claims[uid] = claims
	return nil
}

// newTestDB opens a named shared in-memory database so every pooled
// connection sees the same tables
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
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
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecretKey:       "test-secret-key",
		JWTExpiryHours:     168,
		LockoutMaxAttempts: 5,
		LockoutMinutes:     120,
		ResetTokenMinutes:  30,
	}
}

func TestRegisterWithFederatedProvisioning(t *testing.T) {
	db := newTestDB(t)
	firebase := &fakeFirebaseService{}
	svc := NewUserService(db, testConfig(), firebase)

	user, err := svc.Register(context.Background(), RegistrationInput{
		Name:     "Anjali Nair",
		Email:    "Anjali@Example.com",
		Password: "secret123",
		Role:     models.RoleParent,
	})
	require.NoError(t, err)

	assert.Equal(t, "anjali@example.com", user.Email)
	require.NotNil(t, user.FirebaseUID)
	assert.Equal(t, "fb-anjali@example.com", *user.FirebaseUID)
	assert.False(t, user.IsDirectAccount())
	assert.True(t, user.CheckHashedPassword("secret123"))
	assert.Empty(t, user.TempPassword)

	// Role rides along as a custom claim on the provisioned identity
	require.Contains(t, firebase.claims, *user.FirebaseUID)
	assert.Equal(t, models.RoleParent, firebase.claims[*user.FirebaseUID]["role"])
}

func TestRegisterFallsBackToDirectUID(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, testConfig(), &fakeFirebaseService{failCreate: true})

	user, err := svc.Register(context.Background(), RegistrationInput{
		Name:     "Anjali Nair",
		Email:    "anjali@example.com",
		Password: "secret123",
		Role:     models.RoleParent,
	})
	require.NoError(t, err)

	// Provisioning failure never blocks registration
	require.NotNil(t, user.FirebaseUID)
	assert.True(t, user.IsDirectAccount())
	assert.True(t, user.CheckHashedPassword("secret123"))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, testConfig(), &fakeFirebaseService{})

	input := RegistrationInput{
		Name:     "Anjali Nair",
		Email:    "anjali@example.com",
		Password: "secret123",
		Role:     models.RoleParent,
	}
	_, err := svc.Register(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), input)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthenticateLocalHashedPassword(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, testConfig(), &fakeFirebaseService{failCreate: true})

	_, err := svc.Register(context.Background(), RegistrationInput{
		Name:     "Anjali Nair",
		Email:    "anjali@example.com",
		Password: "secret123",
		Role:     models.RoleParent,
	})
	require.NoError(t, err)

	user, authMethod, err := svc.AuthenticateLocal("anjali@example.com", "secret123", models.RoleParent)
	require.NoError(t, err)
	assert.Equal(t, models.AuthMethodDirect, authMethod)
	assert.Equal(t, 1, user.LoginCount)

	_, _, err = svc.AuthenticateLocal("anjali@example.com", "wrong", models.RoleParent)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Role mismatch is indistinguishable from a bad password
	_, _, err = svc.AuthenticateLocal("anjali@example.com", "secret123", models.RoleAnganwadiWorker)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateLocalTempPasswordPrecedence(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, testConfig(), &fakeFirebaseService{})

	user := &models.User{
		Name:  "Lakshmi Devi",
		Email: "lakshmi@example.com",
		Role:  models.RoleAnganwadiWorker,
	}
	tempPassword, err := svc.CreateWithTempPassword(user)
	require.NoError(t, err)
	require.NotEmpty(t, tempPassword)

	authenticated, authMethod, err := svc.AuthenticateLocal("lakshmi@example.com", tempPassword, "")
	require.NoError(t, err)
	assert.Equal(t, models.AuthMethodTemp, authMethod)
	assert.True(t, authenticated.NeedsPasswordChange())
}

func TestAuthenticateLocalNoCredential(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, testConfig(), &fakeFirebaseService{})

	require.NoError(t, db.Create(&models.User{
		Name:     "Empty",
		Email:    "empty@example.com",
		Role:     models.RoleParent,
		IsActive: true,
	}).Error)

	_, _, err := svc.AuthenticateLocal("empty@example.com", "anything", "")
	assert.ErrorIs(t, err, ErrNoAuthMethod)
}

func TestAuthenticateLocalFederatedOnlyAccount(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, testConfig(), &fakeFirebaseService{})

	uid := "fb-only"
	require.NoError(t, db.Create(&models.User{
		Name:        "Federated",
		Email:       "federated@example.com",
		FirebaseUID: &uid,
		Role:        models.RoleParent,
		IsActive:    true,
	}).Error)

	// A password can never match a federated-only account
	_, _, err := svc.AuthenticateLocal("federated@example.com", "anything", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateLocalInactiveAccount(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, testConfig(), &fakeFirebaseService{failCreate: true})

	user, err := svc.Register(context.Background(), RegistrationInput{
		Name:     "Anjali Nair",
		Email:    "anjali@example.com",
		Password: "secret123",
		Role:     models.RoleParent,
	})
	require.NoError(t, err)
	require.NoError(t, svc.DeactivateUser(user.ID))

	_, _, err = svc.AuthenticateLocal("anjali@example.com", "secret123", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePasswordRetiresTempPassword(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, testConfig(), &fakeFirebaseService{})

	user := &models.User{
		Name:  "Lakshmi Devi",
		Email: "lakshmi@example.com",
		Role:  models.RoleAnganwadiWorker,
	}
	tempPassword, err := svc.CreateWithTempPassword(user)
	require.NoError(t, err)

	require.NoError(t, svc.ChangePassword(user.ID, tempPassword, "newSecret1"))

	updated, err := svc.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Empty(t, updated.TempPassword)
	assert.False(t, updated.NeedsPasswordChange())
	assert.True(t, updated.CheckHashedPassword("newSecret1"))

	// The temporary password no longer authenticates
	_, _, err = svc.AuthenticateLocal("lakshmi@example.com", tempPassword, "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, authMethod, err := svc.AuthenticateLocal("lakshmi@example.com", "newSecret1", "")
	require.NoError(t, err)
	assert.Equal(t, models.AuthMethodDirect, authMethod)
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, testConfig(), &fakeFirebaseService{failCreate: true})

	user, err := svc.Register(context.Background(), RegistrationInput{
		Name:     "Anjali Nair",
		Email:    "anjali@example.com",
		Password: "secret123",
		Role:     models.RoleParent,
	})
	require.NoError(t, err)

	err = svc.ChangePassword(user.ID, "wrong", "newSecret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResetPasswordFlow(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, testConfig(), &fakeFirebaseService{failCreate: true})

	_, err := svc.Register(context.Background(), RegistrationInput{
		Name:     "Anjali Nair",
		Email:    "anjali@example.com",
		Password: "secret123",
		Role:     models.RoleParent,
	})
	require.NoError(t, err)

	rawToken, err := svc.CreateResetToken("anjali@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, rawToken)

	// Only the digest is stored
	stored, err := svc.GetUserByEmail("anjali@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, rawToken, stored.ResetPasswordToken)
	assert.Equal(t, utils.HashResetToken(rawToken), stored.ResetPasswordToken)

	require.NoError(t, svc.ResetPassword(rawToken, "newSecret1"))

	_, authMethod, err := svc.AuthenticateLocal("anjali@example.com", "newSecret1", "")
	require.NoError(t, err)
	assert.Equal(t, models.AuthMethodDirect, authMethod)

	// The token is one-shot
	err = svc.ResetPassword(rawToken, "anotherSecret1")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, testConfig(), &fakeFirebaseService{failCreate: true})

	_, err := svc.Register(context.Background(), RegistrationInput{
		Name:     "Anjali Nair",
		Email:    "anjali@example.com",
		Password: "secret123",
		Role:     models.RoleParent,
	})
	require.NoError(t, err)

	rawToken, err := svc.CreateResetToken("anjali@example.com")
	require.NoError(t, err)

	expired := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(&models.User{}).
		Where("email = ?", "anjali@example.com").
		Update("reset_password_expires", expired).Error)

	err = svc.ResetPassword(rawToken, "newSecret1")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestCreateResetTokenUnknownEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, testConfig(), &fakeFirebaseService{})

	_, err := svc.CreateResetToken("nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetAllUsersFilters(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, testConfig(), &fakeFirebaseService{})

	seed := []models.User{
		{Name: "Anjali Nair", Email: "anjali@example.com", Role: models.RoleParent, IsActive: true},
		{Name: "Lakshmi Devi", Email: "lakshmi@example.com", Role: models.RoleAnganwadiWorker, IsActive: true},
		{Name: "Meera Krishnan", Email: "meera@example.com", Role: models.RoleAnganwadiWorker, IsActive: true},
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}

	users, total, err := svc.GetAllUsers(1, 10, models.RoleAnganwadiWorker, "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, users, 2)

	users, total, err = svc.GetAllUsers(1, 10, "", "anjali")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, "anjali@example.com", users[0].Email)

	users, total, err = svc.GetAllUsers(1, 2, "", "")
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, users, 2)
}
