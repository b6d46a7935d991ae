package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL applies when JWTConfig.TTL is zero.
const DefaultTokenTTL = time.Hour

// clockSkew tolerated on exp/nbf/iat between the issuer and the service.
const clockSkew = 30 * time.Second

var (
	// ErrSigningDisabled is returned by IssueToken when the service only
	// holds a public key.
	ErrSigningDisabled = errors.New("token signing disabled: no private key or secret configured")
	// ErrUnknownRole is returned when a token is requested for a role the
	// scoring API does not define.
	ErrUnknownRole = errors.New("unknown role")
)

// JWTConfig configures token signing and validation for the scoring API.
// Exactly one key source is used, in order: PrivateKeyPEM (RS256, sign and
// verify), PublicKeyPEM (RS256, verify only), Secret (HS256).
type JWTConfig struct {
	Secret        string
	PrivateKeyPEM string
	PublicKeyPEM  string

	// Issuer and Audience are checked on validation when non-empty and
	// stamped on issued tokens.
	Issuer   string
	Audience string
	TTL      time.Duration
}

// JWTService issues and validates bearer tokens carrying scoring roles.
type JWTService struct {
	cfg       JWTConfig
	method    jwt.SigningMethod
	signKey   any
	verifyKey any
	parser    *jwt.Parser
}

// NewJWTService builds a JWTService from the first configured key source.
func NewJWTService(cfg JWTConfig) (*JWTService, error) {
	svc := &JWTService{cfg: cfg}

	switch {
	case cfg.PrivateKeyPEM != "":
		key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(cfg.PrivateKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("parse RSA private key: %w", err)
		}
		svc.method, svc.signKey, svc.verifyKey = jwt.SigningMethodRS256, key, &key.PublicKey
	case cfg.PublicKeyPEM != "":
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("parse RSA public key: %w", err)
		}
		svc.method, svc.verifyKey = jwt.SigningMethodRS256, key
	case cfg.Secret != "":
		svc.method, svc.signKey, svc.verifyKey = jwt.SigningMethodHS256, []byte(cfg.Secret), []byte(cfg.Secret)
	default:
		return nil, errors.New("jwt configuration requires a private key, public key or secret")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{svc.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(clockSkew),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	svc.parser = jwt.NewParser(opts...)
	return svc, nil
}

// IssueToken signs a token for subject holding the given scoring roles.
func (s *JWTService) IssueToken(subject string, roles []string) (string, error) {
	if subject == "" {
		return "", errors.New("cannot issue token: empty subject")
	}
	if s.signKey == nil {
		return "", ErrSigningDisabled
	}
	for _, r := range roles {
		if !IsKnownRole(r) {
			return "", fmt.Errorf("%w: %q", ErrUnknownRole, r)
		}
	}

	ttl := s.cfg.TTL
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		Roles: roles,
	}
	if s.cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{s.cfg.Audience}
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.signKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies signature, expiry, issuer and audience. Roles the
// scoring API does not define are dropped from the returned claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.verifyKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}

	known := claims.Roles[:0]
	for _, r := range claims.Roles {
		if IsKnownRole(r) {
			known = append(known, r)
		}
	}
	claims.Roles = known
	return claims, nil
}

// ReadKey returns value unchanged when it already holds a PEM block and
// otherwise reads it as a path to one.
func ReadKey(value string) (string, error) {
	if strings.HasPrefix(strings.TrimSpace(value), "-----BEGIN") {
		return value, nil
	}
	data, err := os.ReadFile(value)
	if err != nil {
		return "", fmt.Errorf("read key file %q: %w", value, err)
	}
	return string(data), nil
}

// GenerateKeyPair returns a PEM-encoded 2048-bit RSA signing key and its
// public half for development issuers.
func GenerateKeyPair() (privateKeyPEM, publicKeyPEM []byte, err error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, fmt.Errorf("generate RSA key: %w", err)
	}
	pub, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal public key: %w", err)
	}
	privateKeyPEM = pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	publicKeyPEM = pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pub})
	return privateKeyPEM, publicKeyPEM, nil
}
