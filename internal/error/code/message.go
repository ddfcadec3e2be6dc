package code

// error code to message map
var codeMessageMap = map[int]string{
	// common
	ErrSuccess:         "Success",
	ErrUnknown:         "Internal server error",
	ErrBind:            "Invalid request parameters",
	ErrValidation:      "Request validation failed",
	ErrTooManyRequests: "Too many requests",
	ErrDatabase:        "Database error",

	// authentication
	ErrTokenInvalid:        "Invalid authentication token",
	ErrTokenExpired:        "Authentication token has expired",
	ErrInvalidCredentials:  "Invalid credentials",
	ErrNoAuthMethod:        "No authentication method available for this account",
	ErrAccountLocked:       "Account temporarily locked due to repeated failed login attempts",
	ErrAccountInactive:     "Account is deactivated",
	ErrPermissionDenied:    "Insufficient permissions",
	ErrFirebaseUnavailable: "Federated sign-in is not available",
	ErrResetTokenInvalid:   "Invalid or expired reset token",
	ErrPasswordTooShort:    "Password must be at least 8 characters",

	// users
	ErrUserNotFound:      "User not found",
	ErrUserAlreadyExists: "An account with this email already exists",
	ErrInvalidRole:       "Invalid role",

	// centers
	ErrCenterNotFound:      "Anganwadi center not found",
	ErrCenterAlreadyExists: "An Anganwadi center with this code already exists",
}

// error code to HTTP status map
var codeStatusMap = map[int]int{
	// common
	ErrSuccess:         StatusOK,
	ErrUnknown:         StatusInternalServerError,
	ErrBind:            StatusBadRequest,
	ErrValidation:      StatusBadRequest,
	ErrTooManyRequests: StatusTooManyRequests,
	ErrDatabase:        StatusInternalServerError,

	// authentication
	ErrTokenInvalid:        StatusUnauthorized,
	ErrTokenExpired:        StatusUnauthorized,
	ErrInvalidCredentials:  StatusUnauthorized,
	ErrNoAuthMethod:        StatusUnauthorized,
	ErrAccountLocked:       StatusLocked,
	ErrAccountInactive:     StatusUnauthorized,
	ErrPermissionDenied:    StatusForbidden,
	ErrFirebaseUnavailable: StatusUnauthorized,
	ErrResetTokenInvalid:   StatusBadRequest,
	ErrPasswordTooShort:    StatusBadRequest,

	// users
	ErrUserNotFound:      StatusNotFound,
	ErrUserAlreadyExists: StatusBadRequest,
	ErrInvalidRole:       StatusBadRequest,

	// centers
	ErrCenterNotFound:      StatusNotFound,
	ErrCenterAlreadyExists: StatusBadRequest,
}

// GetMessage returns the message for an error code
func GetMessage(errorCode int) string {
	if msg, ok := codeMessageMap[errorCode]; ok {
		return msg
	}
	return codeMessageMap[ErrUnknown]
}

// GetStatus returns the HTTP status for an error code
func GetStatus(errorCode int) int {
	if status, ok := codeStatusMap[errorCode]; ok {
		return status
	}
	return StatusInternalServerError
}
