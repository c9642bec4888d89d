package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/AstralMortem/go-microservice-template/pkg/apperror"
	"github.com/AstralMortem/go-microservice-template/pkg/config"
)

// Codec signs and verifies identity tokens with a shared process-wide secret.
// It is safe for concurrent use; all state is immutable after construction.
type Codec struct {
	secret     []byte
	method     jwt.SigningMethod
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewCodec builds a Codec from JWT configuration.
func NewCodec(cfg config.JWTConfig) (*Codec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token: signing secret is required")
	}
	method := jwt.GetSigningMethod(cfg.Algorithm)
	if method == nil {
		return nil, fmt.Errorf("token: unknown signing algorithm %q", cfg.Algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("token: algorithm %q is not an HMAC method", cfg.Algorithm)
	}
	return &Codec{
		secret:     []byte(cfg.Secret),
		method:     method,
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}, nil
}

// Encode signs claims into the compact string representation. Fields left
// unset on the claims are omitted from the payload.
func (c *Codec) Encode(claims jwt.Claims) (string, error) {
	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// IssueAccess signs an access token for the given subject with the
// configured TTL and issuer.
func (c *Codec) IssueAccess(sub string, roles, permissions []string) (string, error) {
	now := time.Now().UTC()
	claims := AccessClaims{
		Claims: Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   sub,
				Issuer:    c.issuer,
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTTL)),
				ID:        uuid.NewString(),
			},
			Kind: KindAccess,
		},
		Roles:       roles,
		Permissions: permissions,
	}
	return c.Encode(claims)
}

// IssueRefresh signs a refresh token for the given subject.
func (c *Codec) IssueRefresh(sub string) (string, error) {
	now := time.Now().UTC()
	claims := RefreshClaims{
		Claims: Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   sub,
				Issuer:    c.issuer,
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(c.refreshTTL)),
				ID:        uuid.NewString(),
			},
			Kind: KindRefresh,
		},
	}
	return c.Encode(claims)
}

// DecodeAccess verifies signature, expiry and the kind discriminant of an
// access token.
func (c *Codec) DecodeAccess(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := c.decode(raw, claims); err != nil {
		return nil, err
	}
	if claims.Kind != KindAccess {
		return nil, apperror.InvalidTokenType(string(KindAccess), string(claims.Kind))
	}
	return claims, nil
}

// DecodeRefresh verifies signature, expiry and the kind discriminant of a
// refresh token.
func (c *Codec) DecodeRefresh(raw string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := c.decode(raw, claims); err != nil {
		return nil, err
	}
	if claims.Kind != KindRefresh {
		return nil, apperror.InvalidTokenType(string(KindRefresh), string(claims.Kind))
	}
	return claims, nil
}

func (c *Codec) decode(raw string, into jwt.Claims) error {
	parsed, err := jwt.ParseWithClaims(raw, into, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != c.method.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return apperror.TokenExpired()
		case errors.Is(err, jwt.ErrTokenMalformed),
			errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenUnverifiable):
			return apperror.Unauthorized("Token is invalid")
		default:
			return apperror.Internal(err)
		}
	}
	if !parsed.Valid {
		return apperror.Unauthorized("Token is invalid")
	}
	return nil
}
