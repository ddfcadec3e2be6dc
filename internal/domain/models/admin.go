package models

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"sampoornaangan-backend/utils"
)

// RoleSuperAdmin is the only role an Admin record can hold
const RoleSuperAdmin = "super-admin"

// PermissionWildcard satisfies every permission check
const PermissionWildcard = "system:admin"

// MaxActiveSessions bounds the per-admin session audit list
const MaxActiveSessions = 5

// DefaultAdminPermissions is the grant set applied to newly created admins
var DefaultAdminPermissions = StringList{
	"users:read", "users:write", "users:delete",
	"centers:read", "centers:write", "centers:delete",
	"reports:read", "reports:write",
	"settings:read", "settings:write",
	PermissionWildcard,
}

// SessionInfo is one entry of the bounded active-session audit list.
// It is best-effort bookkeeping and never used for authorization.
type SessionInfo struct {
	SessionID    string    `json:"session_id"`
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

// SessionList is a JSON-encoded session slice column
type SessionList []SessionInfo

// Value implements driver.Valuer
func (l SessionList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (l *SessionList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// Admin represents a system administrator account
type Admin struct {
	BaseModel
	Username string `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email    string `gorm:"type:varchar(100);uniqueIndex" json:"email"`
	Name     string `gorm:"type:varchar(100)" json:"name"`
	Phone    string `gorm:"type:varchar(20)" json:"phone"`
	Password string `gorm:"type:varchar(100);not null" json:"-"`

	Permissions StringList `gorm:"type:text" json:"permissions"`

	// Lockout state
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LockUntil           *time.Time `json:"-"`

	// Session bookkeeping
	ActiveSessions SessionList `gorm:"type:text" json:"-"`

	// Password reset state
	ResetPasswordToken   string     `gorm:"type:varchar(64);index" json:"-"`
	ResetPasswordExpires *time.Time `json:"-"`

	IsActive   bool       `gorm:"default:true" json:"is_active"`
	LastLogin  *time.Time `json:"last_login"`
	LoginCount int        `gorm:"default:0" json:"login_count"`
}

// BeforeSave hashes the password whenever a plaintext value was assigned
func (a *Admin) BeforeSave(tx *gorm.DB) error {
	a.Username = strings.ToLower(strings.TrimSpace(a.Username))

	if a.Password != "" && !isBcryptHash(a.Password) {
		hashed, err := bcrypt.GenerateFromPassword([]byte(a.Password), utils.PasswordHashCost)
		if err != nil {
			return err
		}
		a.Password = string(hashed)
	}
	return nil
}

// BeforeCreate applies the default permission grants
func (a *Admin) BeforeCreate(tx *gorm.DB) error {
	if len(a.Permissions) == 0 {
		a.Permissions = append(StringList{}, DefaultAdminPermissions...)
	}
	return nil
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

// CheckPassword verifies a plaintext password against the stored hash
func (a *Admin) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.Password), []byte(password)) == nil
}

// IsLocked reports whether the lockout window is currently active
func (a *Admin) IsLocked() bool {
	return a.LockUntil != nil && a.LockUntil.After(time.Now())
}

// RegisterFailedLogin advances the lockout state machine after a failed
// verification. An expired lock resets the counter to 1; otherwise the
// counter increments and, at the threshold, opens a new lockout window.
func (a *Admin) RegisterFailedLogin(maxAttempts int, lockDuration time.Duration, now time.Time) {
	if a.LockUntil != nil && !a.LockUntil.After(now) {
		a.FailedLoginAttempts = 1
		a.LockUntil = nil
		return
	}

	a.FailedLoginAttempts++
	if a.FailedLoginAttempts >= maxAttempts && !a.IsLocked() {
		until := now.Add(lockDuration)
		a.LockUntil = &until
	}
}

// RegisterSuccessfulLogin clears lockout state, appends a session record
// (bounded to MaxActiveSessions, oldest evicted) and updates login stats.
func (a *Admin) RegisterSuccessfulLogin(session SessionInfo, now time.Time) {
	a.FailedLoginAttempts = 0
	a.LockUntil = nil
	a.LoginCount++
	a.LastLogin = &now

	a.ActiveSessions = append(a.ActiveSessions, session)
	if len(a.ActiveSessions) > MaxActiveSessions {
		a.ActiveSessions = a.ActiveSessions[len(a.ActiveSessions)-MaxActiveSessions:]
	}
}

// HasPermission reports whether the admin holds the named permission or
// the system:admin wildcard
func (a *Admin) HasPermission(permission string) bool {
	return a.Permissions.Contains(PermissionWildcard) || a.Permissions.Contains(permission)
}

// SafeView strips credential and lockout fields before returning the
// admin to a client
func (a *Admin) SafeView() map[string]interface{} {
	return map[string]interface{}{
		"id":          a.ID,
		"username":    a.Username,
		"email":       a.Email,
		"name":        a.Name,
		"phone":       a.Phone,
		"role":        RoleSuperAdmin,
		"permissions": a.Permissions,
		"is_active":   a.IsActive,
		"last_login":  a.LastLogin,
		"login_count": a.LoginCount,
		"created_at":  a.CreatedAt,
	}
}
