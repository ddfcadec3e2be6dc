package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"sampoornaangan-backend/internal/infrastructure/config"
)

// Token kinds carried in the token_type claim
const (
	TokenTypeUser  = "user"
	TokenTypeAdmin = "admin"
)

// Sentinel token errors
var (
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenInvalid   = errors.New("invalid token")
	ErrWrongTokenType = errors.New("wrong token type")
)

// InterfaceJWTService defines the session token issuer
type InterfaceJWTService interface {
	GenerateToken(userID uint, email, role, authMethod string) (string, error)
	GenerateAdminToken(adminID uint) (string, error)
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims is the signed claim set of a session token
type JWTClaims struct {
	UserID     uint   `json:"user_id"`
	Email      string `json:"email,omitempty"`
	Role       string `json:"role,omitempty"`
	AuthMethod string `json:"auth_method,omitempty"`
	TokenType  string `json:"token_type"`
	jwt.RegisteredClaims
}

// JWTService issues and verifies HS256 session tokens
type JWTService struct {
	secretKey string
	issuer    string
	expiry    time.Duration
	DB        *gorm.DB
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg *config.Config, db *gorm.DB) InterfaceJWTService {
	hours := cfg.JWTExpiryHours
	if hours <= 0 {
		hours = 168
	}
	return &JWTService{
		secretKey: cfg.JWTSecretKey,
		issuer:    "sampoornaangan-backend",
		expiry:    time.Duration(hours) * time.Hour,
		DB:        db,
	}
}

// GenerateToken issues a user session token carrying id, email, role and
// the authentication method that produced it
func (s *JWTService) GenerateToken(userID uint, email, role, authMethod string) (string, error) {
	return s.sign(&JWTClaims{
		UserID:     userID,
		Email:      email,
		Role:       role,
		AuthMethod: authMethod,
		TokenType:  TokenTypeUser,
	})
}

// GenerateAdminToken issues an admin session token keyed only by id
func (s *JWTService) GenerateAdminToken(adminID uint) (string, error) {
	return s.sign(&JWTClaims{
		UserID:    adminID,
		TokenType: TokenTypeAdmin,
	})
}

func (s *JWTService) sign(claims *JWTClaims) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    s.issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secretKey))
}

// ValidateToken verifies the signature and expiry of a session token and
// returns its claims. Expired and malformed tokens yield distinct errors.
func (s *JWTService) ValidateToken(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
