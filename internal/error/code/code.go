package code

// HTTP status codes used by the error-code maps.
const (
	// StatusOK - 200: success.
	StatusOK = 200
	// StatusBadRequest - 400: malformed request.
	StatusBadRequest = 400
	// StatusUnauthorized - 401: authentication failure.
	StatusUnauthorized = 401
	// StatusForbidden - 403: authorization failure.
	StatusForbidden = 403
	// StatusNotFound - 404: resource not found.
	StatusNotFound = 404
	// StatusLocked - 423: account lockout window active.
	StatusLocked = 423
	// StatusTooManyRequests - 429: rate limited.
	StatusTooManyRequests = 429
	// StatusInternalServerError - 500: internal error.
	StatusInternalServerError = 500
)

// Common error codes (100xxx).
const (
	// ErrSuccess - 200: success.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500: unknown internal error.
	ErrUnknown
	// ErrBind - 400: request body binding error.
	ErrBind
	// ErrValidation - 400: request validation error.
	ErrValidation
	// ErrTooManyRequests - 429: request rate too high.
	ErrTooManyRequests
	// ErrDatabase - 500: database error.
	ErrDatabase
)

// Authentication error codes (101xxx).
const (
	// ErrTokenInvalid - 401: missing, malformed or bad-signature token.
	ErrTokenInvalid int = iota + 101000
	// ErrTokenExpired - 401: token past its expiry.
	ErrTokenExpired
	// ErrInvalidCredentials - 401: wrong password or unknown account.
	ErrInvalidCredentials
	// ErrNoAuthMethod - 401: account has no usable credential.
	ErrNoAuthMethod
	// ErrAccountLocked - 423: admin lockout window active.
	ErrAccountLocked
	// ErrAccountInactive - 401: account soft-deleted.
	ErrAccountInactive
	// ErrPermissionDenied - 403: role or permission not granted.
	ErrPermissionDenied
	// ErrFirebaseUnavailable - 401: federated identity provider not configured.
	ErrFirebaseUnavailable
	// ErrResetTokenInvalid - 400: reset token invalid or expired.
	ErrResetTokenInvalid
	// ErrPasswordTooShort - 400: new password below minimum length.
	ErrPasswordTooShort
)

// User error codes (102xxx).
const (
	// ErrUserNotFound - 404: user does not exist.
	ErrUserNotFound int = iota + 102000
	// ErrUserAlreadyExists - 400: duplicate email or firebase uid.
	ErrUserAlreadyExists
	// ErrInvalidRole - 400: unknown role value.
	ErrInvalidRole
)

// Anganwadi center error codes (103xxx).
const (
	// ErrCenterNotFound - 404: center does not exist.
	ErrCenterNotFound int = iota + 103000
	// ErrCenterAlreadyExists - 400: duplicate center code.
	ErrCenterAlreadyExists
)
