package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminLockoutThreshold(t *testing.T) {
	admin := &Admin{}
	now := time.Now()

	for i := 0; i < 4; i++ {
		admin.RegisterFailedLogin(5, 2*time.Hour, now)
		assert.False(t, admin.IsLocked(), "attempt %d should not lock", i+1)
	}

	admin.RegisterFailedLogin(5, 2*time.Hour, now)
	assert.True(t, admin.IsLocked())
	require.NotNil(t, admin.LockUntil)
	assert.WithinDuration(t, now.Add(2*time.Hour), *admin.LockUntil, time.Second)
}

func TestAdminLockoutSelfExpires(t *testing.T) {
	admin := &Admin{}
	start := time.Now().Add(-3 * time.Hour)

	for i := 0; i < 5; i++ {
		admin.RegisterFailedLogin(5, 2*time.Hour, start)
	}
	require.NotNil(t, admin.LockUntil)

	// The lock window opened three hours ago and has already passed
	assert.False(t, admin.IsLocked())

	// The next failure after expiry restarts counting at 1
	admin.RegisterFailedLogin(5, 2*time.Hour, time.Now())
	assert.Equal(t, 1, admin.FailedLoginAttempts)
	assert.Nil(t, admin.LockUntil)
	assert.False(t, admin.IsLocked())
}

func TestAdminSuccessfulLoginResetsLockout(t *testing.T) {
	admin := &Admin{FailedLoginAttempts: 3}
	now := time.Now()

	admin.RegisterSuccessfulLogin(SessionInfo{SessionID: "s1"}, now)

	assert.Equal(t, 0, admin.FailedLoginAttempts)
	assert.Nil(t, admin.LockUntil)
	assert.Equal(t, 1, admin.LoginCount)
	require.NotNil(t, admin.LastLogin)
	assert.Equal(t, now, *admin.LastLogin)
}

func TestAdminSessionListBounded(t *testing.T) {
	admin := &Admin{}
	now := time.Now()

	for i := 0; i < 8; i++ {
		admin.RegisterSuccessfulLogin(SessionInfo{SessionID: fmt.Sprintf("s%d", i)}, now)
	}

	require.Len(t, admin.ActiveSessions, MaxActiveSessions)
	// Oldest entries are evicted first
	assert.Equal(t, "s3", admin.ActiveSessions[0].SessionID)
	assert.Equal(t, "s7", admin.ActiveSessions[4].SessionID)
	assert.Equal(t, 8, admin.LoginCount)
}

func TestAdminHasPermission(t *testing.T) {
	testCases := []struct {
		name        string
		permissions StringList
		check       string
		expected    bool
	}{
		{
			name:        "named permission granted",
			permissions: StringList{"users:read"},
			check:       "users:read",
			expected:    true,
		},
		{
			name:        "named permission missing",
			permissions: StringList{"users:read"},
			check:       "users:write",
			expected:    false,
		},
		{
			name:        "wildcard satisfies everything",
			permissions: StringList{PermissionWildcard},
			check:       "reports:write",
			expected:    true,
		},
		{
			name:        "empty grant set",
			permissions: nil,
			check:       "users:read",
			expected:    false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			admin := &Admin{Permissions: tc.permissions}
			assert.Equal(t, tc.expected, admin.HasPermission(tc.check))
		})
	}
}

func TestAdminSafeViewOmitsSecrets(t *testing.T) {
	lock := time.Now().Add(time.Hour)
	admin := &Admin{
		Username:            "admin",
		Password:            "$2a$12$fakehash",
		FailedLoginAttempts: 2,
		LockUntil:           &lock,
		ResetPasswordToken:  "digest",
	}

	view := admin.SafeView()

	assert.Equal(t, "admin", view["username"])
	assert.Equal(t, RoleSuperAdmin, view["role"])
	assert.NotContains(t, view, "password")
	assert.NotContains(t, view, "failed_login_attempts")
	assert.NotContains(t, view, "lock_until")
	assert.NotContains(t, view, "reset_password_token")
}
