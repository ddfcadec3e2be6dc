package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/lestrrat-go/jwx/v2/jwk"

	"sampoornaangan-backend/internal/infrastructure/config"
	Logger "sampoornaangan-backend/pkg/logger"
)

// Sentinel federated identity errors
var (
	ErrFirebaseNotConfigured = errors.New("federated identity provider is not configured")
	ErrFirebaseTokenInvalid  = errors.New("invalid federated identity token")
)

// FirebaseToken is the verified result of a federated ID token
type FirebaseToken struct {
	UID    string
	Claims jwt.MapClaims
}

// InterfaceFirebaseService verifies federated ID tokens and provisions
// federated identities. Provisioning is best-effort: callers must treat
// failures as non-fatal.
type InterfaceFirebaseService interface {
	IsConfigured() bool
	VerifyIDToken(ctx context.Context, idToken string) (*FirebaseToken, error)
	CreateUser(ctx context.Context, email, password string) (string, error)
	DeleteUser(ctx context.Context, uid string) error
	SetCustomClaims(ctx context.Context, uid string, claims map[string]interface{}) error
}

// FirebaseService verifies ID tokens against the provider's JWKS and
// talks to the identity-toolkit REST API for provisioning
type FirebaseService struct {
	projectID  string
	issuer     string
	jwksURL    string
	apiKey     string
	jwksClient *jwk.Cache
	httpClient *http.Client
}

// NewFirebaseService builds the verifier from configuration. When the
// provider is not configured it returns a null implementation whose
// operations fail fast, so the process still boots without Firebase.
func NewFirebaseService(ctx context.Context, cfg *config.Config) InterfaceFirebaseService {
	if !cfg.FirebaseEnabled() {
		Logger.Warning("Firebase project not configured, federated sign-in disabled")
		return &disabledFirebaseService{}
	}

	cache := jwk.NewCache(ctx)
	if err := cache.Register(cfg.FirebaseJWKSURL); err != nil {
		Logger.Error("Failed to register JWKS URL %s: %v, federated sign-in disabled", cfg.FirebaseJWKSURL, err)
		return &disabledFirebaseService{}
	}

	return &FirebaseService{
		projectID:  cfg.FirebaseProjectID,
		issuer:     cfg.FirebaseIssuer,
		jwksURL:    cfg.FirebaseJWKSURL,
		apiKey:     cfg.FirebaseAPIKey,
		jwksClient: cache,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// IsConfigured reports whether federated verification is available
func (s *FirebaseService) IsConfigured() bool {
	return true
}

// VerifyIDToken checks signature, issuer, audience and expiry of a
// federated ID token and returns the verified subject and claims
func (s *FirebaseService) VerifyIDToken(ctx context.Context, idToken string) (*FirebaseToken, error) {
	token, err := jwt.Parse(idToken, func(token *jwt.Token) (interface{}, error) {
		return s.keyForToken(ctx, token)
	})
	if err != nil || !token.Valid {
		return nil, ErrFirebaseTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrFirebaseTokenInvalid
	}

	if iss, _ := claims["iss"].(string); s.issuer != "" && iss != s.issuer {
		return nil, ErrFirebaseTokenInvalid
	}
	if aud, _ := claims["aud"].(string); aud != s.projectID {
		return nil, ErrFirebaseTokenInvalid
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrFirebaseTokenInvalid
	}

	return &FirebaseToken{UID: sub, Claims: claims}, nil
}

// keyForToken resolves the RSA public key named by the token's kid header
// from the cached JWKS
func (s *FirebaseService) keyForToken(ctx context.Context, token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}

	kid, ok := token.Header["kid"].(string)
	if !ok {
		return nil, errors.New("token header missing kid")
	}

	keySet, err := s.jwksClient.Get(ctx, s.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get JWKS: %w", err)
	}

	key, found := keySet.LookupKeyID(kid)
	if !found {
		return nil, fmt.Errorf("key ID %s not found in JWKS", kid)
	}

	var rawKey interface{}
	if err := key.Raw(&rawKey); err != nil {
		return nil, fmt.Errorf("failed to get raw key: %w", err)
	}
	return rawKey, nil
}

// CreateUser provisions a federated identity through the identity-toolkit
// REST API and returns its uid
func (s *FirebaseService) CreateUser(ctx context.Context, email, password string) (string, error) {
	if s.apiKey == "" {
		return "", ErrFirebaseNotConfigured
	}

	body, err := json.Marshal(map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": false,
	})
	if err != nil {
		return "", err
	}

	url := "https://identitytoolkit.googleapis.com/v1/accounts:signUp?key=" + s.apiKey
	var result struct {
		LocalID string `json:"localId"`
	}
	if err := s.postJSON(ctx, url, body, &result); err != nil {
		return "", err
	}
	if result.LocalID == "" {
		return "", errors.New("identity provider returned no uid")
	}
	return result.LocalID, nil
}

// DeleteUser removes a federated identity. Best-effort.
func (s *FirebaseService) DeleteUser(ctx context.Context, uid string) error {
	if s.apiKey == "" {
		return ErrFirebaseNotConfigured
	}

	body, err := json.Marshal(map[string]string{"localId": uid})
	if err != nil {
		return err
	}

	url := "https://identitytoolkit.googleapis.com/v1/accounts:delete?key=" + s.apiKey
	return s.postJSON(ctx, url, body, &struct{}{})
}

// SetCustomClaims attaches claims to a federated identity so they ride
// along on future ID tokens. Best-effort.
func (s *FirebaseService) SetCustomClaims(ctx context.Context, uid string, claims map[string]interface{}) error {
	if s.apiKey == "" {
		return ErrFirebaseNotConfigured
	}

	attrs, err := json.Marshal(claims)
	if err != nil {
		return err
	}
	body, err := json.Marshal(map[string]string{
		"localId":          uid,
		"customAttributes": string(attrs),
	})
	if err != nil {
		return err
	}

	url := "https://identitytoolkit.googleapis.com/v1/accounts:update?key=" + s.apiKey
	return s.postJSON(ctx, url, body, &struct{}{})
}

func (s *FirebaseService) postJSON(ctx context.Context, url string, body []byte, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("identity provider returned status %d: %s", resp.StatusCode, string(data))
	}
	return json.Unmarshal(data, dest)
}

// disabledFirebaseService is the null verifier used when configuration is
// absent; every operation fails fast without touching the network
type disabledFirebaseService struct{}

func (*disabledFirebaseService) IsConfigured() bool { return false }

func (*disabledFirebaseService) VerifyIDToken(context.Context, string) (*FirebaseToken, error) {
	return nil, ErrFirebaseNotConfigured
}

func (*disabledFirebaseService) CreateUser(context.Context, string, string) (string, error) {
	return "", ErrFirebaseNotConfigured
}

func (*disabledFirebaseService) DeleteUser(context.Context, string) error {
	return ErrFirebaseNotConfigured
}

func (*disabledFirebaseService) SetCustomClaims(context.Context, string, map[string]interface{}) error {
	return ErrFirebaseNotConfigured
}
