package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"sampoornaangan-backend/utils"
)

// User roles
const (
	RoleAnganwadiWorker  = "anganwadi-worker"
	RoleAshaVolunteer    = "asha-volunteer"
	RoleParent           = "parent"
	RoleAdolescentGirl   = "adolescent-girl"
	RoleSanitationWorker = "sanitation-worker"
)

// ValidUserRoles lists every role a User record may hold. RoleSuperAdmin
// appears for legacy records only; admin endpoints authenticate against
// the Admin table.
var ValidUserRoles = []string{
	RoleAnganwadiWorker,
	RoleAshaVolunteer,
	RoleParent,
	RoleAdolescentGirl,
	RoleSanitationWorker,
	RoleSuperAdmin,
}

// IsValidUserRole reports whether role is a known user role
func IsValidUserRole(role string) bool {
	for _, r := range ValidUserRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Authentication methods resolved at login time
const (
	AuthMethodFirebase = "firebase"
	AuthMethodTemp     = "temp-password"
	AuthMethodDirect   = "direct"
)

// User represents a beneficiary-facing principal (workers, volunteers,
// parents, adolescent girls, sanitation workers).
//
// Exactly one of three credential pathways authenticates a user,
// determined by which field is populated: a federated identity
// (FirebaseUID), an admin-issued temporary password, or a locally
// hashed password.
type User struct {
	BaseModel
	Name  string `gorm:"type:varchar(100);not null" json:"name"`
	Email string `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	Phone string `gorm:"type:varchar(20)" json:"phone"`

	// FirebaseUID is nullable so the unique index stays sparse
	FirebaseUID *string `gorm:"type:varchar(128);uniqueIndex" json:"-"`

	TempPassword   string `gorm:"type:varchar(100)" json:"-"`
	HashedPassword string `gorm:"type:varchar(100)" json:"-"`

	Role    string `gorm:"type:varchar(30);not null;index" json:"role"`
	Address string `gorm:"type:varchar(255)" json:"address"`

	// RoleDetails carries the role-specific payload (anganwadiCenter,
	// ashaDetails, parentDetails, adolescentDetails, sanitationDetails).
	// Opaque to the authentication core.
	RoleDetails JSONMap `gorm:"type:text" json:"role_details"`

	ResetPasswordToken   string     `gorm:"type:varchar(64);index" json:"-"`
	ResetPasswordExpires *time.Time `json:"-"`

	IsActive   bool       `gorm:"default:true" json:"is_active"`
	LastLogin  *time.Time `json:"last_login"`
	LoginCount int        `gorm:"default:0" json:"login_count"`
}

// HasCredential reports whether any authentication pathway is available
func (u *User) HasCredential() bool {
	return (u.FirebaseUID != nil && *u.FirebaseUID != "") || u.TempPassword != "" || u.HashedPassword != ""
}

// NeedsPasswordChange reports whether the account still runs on an
// admin-issued temporary password
func (u *User) NeedsPasswordChange() bool {
	return u.TempPassword != ""
}

// IsDirectAccount reports whether the federated uid was locally generated
func (u *User) IsDirectAccount() bool {
	return u.FirebaseUID != nil && utils.IsDirectUID(*u.FirebaseUID)
}

// CheckHashedPassword verifies a plaintext password against the stored hash
func (u *User) CheckHashedPassword(password string) bool {
	if u.HashedPassword == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)) == nil
}

// RegisterSuccessfulLogin updates login bookkeeping
func (u *User) RegisterSuccessfulLogin(now time.Time) {
	u.LoginCount++
	u.LastLogin = &now
}

// SafeView strips credential fields before returning the user to a client
func (u *User) SafeView() map[string]interface{} {
	return map[string]interface{}{
		"id":           u.ID,
		"name":         u.Name,
		"email":        u.Email,
		"phone":        u.Phone,
		"role":         u.Role,
		"address":      u.Address,
		"role_details": u.RoleDetails,
		"is_active":    u.IsActive,
		"last_login":   u.LastLogin,
		"login_count":  u.LoginCount,
		"created_at":   u.CreatedAt,
	}
}

// DashboardRouteForRole maps a role to its frontend dashboard route
func DashboardRouteForRole(role string) string {
	switch role {
	case RoleSuperAdmin:
		return "/admin-dashboard"
	case RoleAnganwadiWorker:
		return "/aww-dashboard"
	case RoleAshaVolunteer:
		return "/asha-dashboard"
	case RoleParent:
		return "/parent-dashboard"
	case RoleAdolescentGirl:
		return "/adolescent-dashboard"
	case RoleSanitationWorker:
		return "/sanitation-dashboard"
	default:
		return "/dashboard"
	}
}
