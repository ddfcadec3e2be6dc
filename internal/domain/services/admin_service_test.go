package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"sampoornaangan-backend/internal/domain/models"
)

func seedAdmin(t *testing.T, db *gorm.DB, svc InterfaceAdminService) *models.Admin {
	t.Helper()
	admin := &models.Admin{
		Username: "Priya",
		Email:    "priya@example.com",
		Name:     "Priya Menon",
		Password: "adminSecret1",
	}
	require.NoError(t, svc.CreateAdmin(admin))
	return admin
}

func TestAdminLoginByUsernameAndEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewAdminService(db, testConfig())
	seedAdmin(t, db, svc)

	byUsername, err := svc.Login("priya", "adminSecret1", "10.0.0.1", "test-agent")
	require.NoError(t, err)
	assert.Equal(t, "priya", byUsername.Username)
	assert.Equal(t, 0, byUsername.FailedLoginAttempts)
	require.Len(t, byUsername.ActiveSessions, 1)
	assert.Equal(t, "10.0.0.1", byUsername.ActiveSessions[0].IPAddress)

	byEmail, err := svc.Login("priya@example.com", "adminSecret1", "10.0.0.2", "test-agent")
	require.NoError(t, err)
	assert.Equal(t, 2, byEmail.LoginCount)
}

func TestAdminLoginLockout(t *testing.T) {
	db := newTestDB(t)
	svc := NewAdminService(db, testConfig())
	seedAdmin(t, db, svc)

	for i := 0; i < 5; i++ {
		_, err := svc.Login("priya", "wrong", "10.0.0.1", "test-agent")
		assert.ErrorIs(t, err, ErrInvalidCredentials, "attempt %d", i+1)
	}

	// The correct password is rejected while the window is active
	_, err := svc.Login("priya", "adminSecret1", "10.0.0.1", "test-agent")
	assert.ErrorIs(t, err, ErrAccountLocked)

	stored, err := svc.GetAdminByIdentifier("priya")
	require.NoError(t, err)
	assert.True(t, stored.IsLocked())
	assert.Equal(t, 5, stored.FailedLoginAttempts)
}

func TestAdminLoginLockExpiry(t *testing.T) {
	db := newTestDB(t)
	svc := NewAdminService(db, testConfig())
	admin := seedAdmin(t, db, svc)

	expired := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(admin).Updates(map[string]interface{}{
		"failed_login_attempts": 5,
		"lock_until":            expired,
	}).Error)

	// The lock self-expired; a valid credential succeeds and resets state
	restored, err := svc.Login("priya", "adminSecret1", "10.0.0.1", "test-agent")
	require.NoError(t, err)
	assert.Equal(t, 0, restored.FailedLoginAttempts)
	assert.Nil(t, restored.LockUntil)
}

func TestAdminLoginInactiveAccount(t *testing.T) {
	db := newTestDB(t)
	svc := NewAdminService(db, testConfig())
	admin := seedAdmin(t, db, svc)

	require.NoError(t, db.Model(admin).Update("is_active", false).Error)

	_, err := svc.Login("priya", "adminSecret1", "10.0.0.1", "test-agent")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAdminLoginUnknownIdentifier(t *testing.T) {
	db := newTestDB(t)
	svc := NewAdminService(db, testConfig())

	_, err := svc.Login("ghost", "whatever", "10.0.0.1", "test-agent")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAdminPasswordStoredHashed(t *testing.T) {
	db := newTestDB(t)
	svc := NewAdminService(db, testConfig())
	admin := seedAdmin(t, db, svc)

	assert.NotEqual(t, "adminSecret1", admin.Password)
	assert.True(t, admin.CheckPassword("adminSecret1"))
}

func TestAdminResetPasswordFlow(t *testing.T) {
	db := newTestDB(t)
	svc := NewAdminService(db, testConfig())
	seedAdmin(t, db, svc)

	rawToken, err := svc.CreateResetToken("priya@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(rawToken, "freshSecret1"))

	_, err = svc.Login("priya", "adminSecret1", "10.0.0.1", "test-agent")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login("priya", "freshSecret1", "10.0.0.1", "test-agent")
	require.NoError(t, err)

	// One-shot token
	err = svc.ResetPassword(rawToken, "anotherSecret1")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestEnsureDefaultAdmin(t *testing.T) {
	db := newTestDB(t)
	svc := NewAdminService(db, testConfig())

	require.NoError(t, svc.EnsureDefaultAdmin("admin"))

	admin, err := svc.GetAdminByIdentifier("admin")
	require.NoError(t, err)
	assert.True(t, admin.CheckPassword("admin"))
	assert.True(t, admin.HasPermission("users:read"))
	assert.True(t, admin.HasPermission("anything:at-all"))

	// Idempotent once any admin exists
	require.NoError(t, svc.EnsureDefaultAdmin("other"))
	var count int64
	require.NoError(t, db.Model(&models.Admin{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
