package middleware

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	apierrors "github.com/feral-file/ff-sale-ledger/internal/api/shared/errors"
	"github.com/feral-file/ff-sale-ledger/internal/domain"
	"github.com/feral-file/ff-sale-ledger/internal/logger"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	AUTH_TYPE_KEY  contextKey = "auth_type"
	CALLER_KEY     contextKey = "caller"
	JWT_CLAIMS_KEY contextKey = "jwt_claims"
)

const (
	AuthTypeJWT    = "jwt"
	AuthTypeAPIKey = "apikey"
)

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string // RSA public key in PEM format
	APIKeys      []string
	// Owner is the caller identity of API-key requests
	Owner common.Address
	// Now overrides the clock used to validate token lifetimes
	Now func() time.Time
}

// Identity is an authenticated caller
type Identity struct {
	AuthType string
	Caller   common.Address
	Claims   *jwt.RegisteredClaims
}

// Authenticator resolves the Authorization header to a ledger caller.
// Bearer tokens carry the caller address as their subject; API keys act as the owner.
type Authenticator struct {
	publicKey *rsa.PublicKey
	apiKeys   map[string]bool
	owner     common.Address
	now       func() time.Time
}

// NewAuthenticator parses the configured key material once
func NewAuthenticator(cfg AuthConfig) (*Authenticator, error) {
	a := &Authenticator{
		apiKeys: make(map[string]bool),
		owner:   cfg.Owner,
		now:     cfg.Now,
	}
	if a.now == nil {
		a.now = time.Now
	}
	for _, key := range cfg.APIKeys {
		if key != "" {
			a.apiKeys[key] = true
		}
	}
	if cfg.JWTPublicKey != "" {
		publicKey, err := parseRSAPublicKey(cfg.JWTPublicKey)
		if err != nil {
			return nil, fmt.Errorf("failed to parse RSA public key: %w", err)
		}
		a.publicKey = publicKey
	}
	return a, nil
}

// Authenticate validates the Authorization header
func (a *Authenticator) Authenticate(authHeader string) (*Identity, error) {
	if authHeader == "" {
		return nil, errors.New("missing Authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return nil, errors.New("invalid Authorization header format")
	}

	credentials := parts[1]
	switch strings.ToLower(parts[0]) {
	case "bearer":
		claims, err := a.validateJWT(credentials)
		if err != nil {
			return nil, err
		}
		caller, err := domain.ParseAddress(claims.Subject)
		if err != nil {
			return nil, fmt.Errorf("token subject is not an address: %w", err)
		}
		return &Identity{AuthType: AuthTypeJWT, Caller: caller, Claims: claims}, nil

	case "apikey":
		if err := a.validateAPIKey(credentials); err != nil {
			return nil, err
		}
		return &Identity{AuthType: AuthTypeAPIKey, Caller: a.owner}, nil

	default:
		return nil, fmt.Errorf("unsupported authorization type: %s", parts[0])
	}
}

// Auth returns a gin middleware that requires an authenticated caller
func Auth(a *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := a.Authenticate(c.GetHeader("Authorization"))
		if err != nil {
			logger.WarnCtx(c.Request.Context(), "Authentication failed",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			apiErr := apierrors.NewUnauthorizedError("Authentication failed", err.Error())
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiErr)
			return
		}

		c.Set(string(AUTH_TYPE_KEY), identity.AuthType)
		c.Set(string(CALLER_KEY), identity.Caller)
		if identity.Claims != nil {
			c.Set(string(JWT_CLAIMS_KEY), identity.Claims)
		}
		c.Request = c.Request.WithContext(logger.WithFields(c.Request.Context(),
			zap.String("caller", identity.Caller.Hex()),
			zap.String("auth_type", identity.AuthType),
		))

		c.Next()
	}
}

// Caller returns the authenticated caller stored by Auth
func Caller(c *gin.Context) (common.Address, bool) {
	v, ok := c.Get(string(CALLER_KEY))
	if !ok {
		return common.Address{}, false
	}
	caller, ok := v.(common.Address)
	return caller, ok
}

// validateJWT validates an RSA-signed JWT and returns its claims
func (a *Authenticator) validateJWT(tokenString string) (*jwt.RegisteredClaims, error) {
	if a.publicKey == nil {
		return nil, errors.New("JWT public key not configured")
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.publicKey, nil
	}, jwt.WithTimeFunc(a.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// parseRSAPublicKey parses an RSA public key from PEM format
func parseRSAPublicKey(publicKeyPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return nil, errors.New("failed to parse PEM block containing public key")
	}

	// PKIX first, then PKCS1
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return x509.ParsePKCS1PublicKey(block.Bytes)
	}

	rsaKey, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not an RSA key")
	}

	return rsaKey, nil
}

func (a *Authenticator) validateAPIKey(apiKey string) error {
	if len(a.apiKeys) == 0 {
		return errors.New("no API keys configured")
	}
	if !a.apiKeys[apiKey] {
		return errors.New("invalid API key")
	}
	return nil
}
