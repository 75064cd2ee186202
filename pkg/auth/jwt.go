package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultExpiration is the lifetime of issued tokens when none is configured.
const DefaultExpiration = 8 * time.Hour

// JWTConfig holds JWT configuration. Exactly one key source is used, in the
// order PrivateKeyPEM, PublicKeyPEM, Secret.
type JWTConfig struct {
	// Secret is the HS256 shared key.
	Secret string

	// PrivateKeyPEM is an RSA private key; the service signs RS256 tokens
	// and validates them with the derived public key.
	PrivateKeyPEM string

	// PublicKeyPEM is an RSA public key; the service only validates.
	PublicKeyPEM string

	Issuer     string
	Expiration time.Duration // zero means DefaultExpiration
	Leeway     time.Duration // clock skew tolerated on exp and nbf
}

// JWTService issues and validates back-office bearer tokens.
type JWTService struct {
	cfg     JWTConfig
	method  jwt.SigningMethod
	signKey any // nil in validation-only mode
	verify  any
	parser  *jwt.Parser
}

// NewJWTService creates a JWTService from cfg.
func NewJWTService(cfg JWTConfig) (*JWTService, error) {
	if cfg.Expiration == 0 {
		cfg.Expiration = DefaultExpiration
	}
	svc := &JWTService{cfg: cfg}

	switch {
	case cfg.PrivateKeyPEM != "":
		key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(cfg.PrivateKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("auth: parse RSA private key: %w", err)
		}
		svc.method, svc.signKey, svc.verify = jwt.SigningMethodRS256, key, &key.PublicKey
	case cfg.PublicKeyPEM != "":
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("auth: parse RSA public key: %w", err)
		}
		svc.method, svc.verify = jwt.SigningMethodRS256, key
	case cfg.Secret != "":
		svc.method, svc.signKey, svc.verify = jwt.SigningMethodHS256, []byte(cfg.Secret), []byte(cfg.Secret)
	default:
		return nil, errors.New("auth: jwt configuration requires PrivateKeyPEM, PublicKeyPEM or Secret")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{svc.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	svc.parser = jwt.NewParser(opts...)
	return svc, nil
}

// GenerateToken signs a token for the staff member username.
func (s *JWTService) GenerateToken(username string, roles []string) (string, error) {
	if username == "" {
		return "", errors.New("auth: cannot generate token with an empty subject")
	}
	if s.signKey == nil {
		return "", errors.New("auth: validation-only service cannot sign tokens")
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.Expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		Roles: roles,
	}
	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.signKey)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses tokenString and returns its claims. Tokens signed
// with another algorithm, by another issuer, expired, or without a subject
// are rejected.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.verify, nil
	})
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("auth: token has no subject")
	}
	return claims, nil
}

// LoadKeyFromFile reads a PEM-encoded key from a file path.
func LoadKeyFromFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("auth: read key file %q: %w", path, err)
	}
	return data, nil
}

// GenerateKeyPair returns a fresh 2048-bit RSA key pair as PEM: PKCS#1 for
// the private key, PKIX for the public key.
func GenerateKeyPair() (privateKeyPEM, publicKeyPEM []byte, err error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, fmt.Errorf("auth: generate RSA key: %w", err)
	}
	pub, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("auth: marshal public key: %w", err)
	}
	privateKeyPEM = pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	publicKeyPEM = pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pub})
	return privateKeyPEM, publicKeyPEM, nil
}
