// Package token implements the signed token codec: issuing self-describing
// JWT credentials and verifying them by signature, expiry, and kind.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

// Kind discriminates what an otherwise structurally valid token may be used
// for. Every verification path checks the kind against the caller's
// expectation.
type Kind string

const (
	KindAccess        Kind = "access"
	KindRefresh       Kind = "refresh"
	KindPasswordReset Kind = "password_reset"
)

func (k Kind) valid() bool {
	switch k {
	case KindAccess, KindRefresh, KindPasswordReset:
		return true
	}
	return false
}

// Claims is the token payload. Identity and lifecycle fields are closed;
// Extra carries genuinely caller-supplied claims and cannot shadow the
// reserved fields.
type Claims struct {
	UserID int64          `json:"uid"`
	Email  string         `json:"email"`
	Kind   Kind           `json:"kind"`
	Extra  map[string]any `json:"extra,omitempty"`
	jwt.RegisteredClaims
}

// Config holds the signing settings for a Codec.
type Config struct {
	Secret    []byte
	Algorithm string // "HS256" (default), "HS384", or "HS512"
	Issuer    string
}

// Codec issues and parses signed tokens. A Codec is immutable after
// construction and safe for concurrent use.
type Codec struct {
	secret []byte
	method jwt.SigningMethod
	issuer string
	now    func() time.Time
}

// reservedExtraKeys are payload names the Extra map may not carry; the typed
// fields always win, and a collision is reported at issue time instead of
// being silently resolved.
var reservedExtraKeys = map[string]struct{}{
	"uid": {}, "email": {}, "kind": {}, "extra": {},
	"iss": {}, "sub": {}, "aud": {}, "exp": {}, "nbf": {}, "iat": {}, "jti": {},
}

// NewCodec validates the configuration and returns a ready Codec.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token codec requires a signing secret")
	}

	var method jwt.SigningMethod
	switch cfg.Algorithm {
	case "", "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.Algorithm)
	}

	return &Codec{secret: cfg.Secret, method: method, issuer: cfg.Issuer, now: time.Now}, nil
}

// Issue builds and signs a token of the given kind. The userID and email
// guards catch programmer errors, not user input; ttl determines exp=now+ttl
// with iat=now, both UTC.
func (c *Codec) Issue(kind Kind, userID int64, email string, ttl time.Duration, extra map[string]any) (string, error) {
	if !kind.valid() {
		return "", fmt.Errorf("unknown token kind %q", kind)
	}
	if userID <= 0 {
		return "", errors.New("user id must be a positive integer")
	}
	if email == "" {
		return "", errors.New("email must be a non-empty string")
	}
	if ttl <= 0 {
		return "", errors.New("ttl must be positive")
	}
	for k := range extra {
		if _, reserved := reservedExtraKeys[k]; reserved {
			return "", fmt.Errorf("extra claim %q shadows a reserved claim", k)
		}
	}

	now := c.now().UTC()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Kind:   kind,
		Extra:  extra,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
}

// Verify checks signature, expiry, and kind, in that order. All failure
// causes collapse into common.ErrInvalidToken; no detail about the cause is
// attached, so tampering, expiry, and kind confusion are indistinguishable
// to the caller.
func (c *Codec) Verify(tokenStr string, expected Kind) (*Claims, error) {
	claims, err := c.parse(tokenStr, false)
	if err != nil {
		return nil, common.ErrInvalidToken
	}
	if claims.Kind != expected {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// DecodeUnverified parses a token for low-trust introspection. The signature
// is still checked; only the expiry validation is skipped. Intended for
// reading the payload of a token that is about to be revoked.
func (c *Codec) DecodeUnverified(tokenStr string) (*Claims, error) {
	claims, err := c.parse(tokenStr, true)
	if err != nil {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// ExpiryOf reports when the token expires, or was going to expire. Works on
// already-expired tokens since its purpose is populating revocation entries.
func (c *Codec) ExpiryOf(tokenStr string) (time.Time, error) {
	claims, err := c.parse(tokenStr, true)
	if err != nil {
		return time.Time{}, common.ErrInvalidToken
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, common.ErrInvalidToken
	}
	return claims.ExpiresAt.Time.UTC(), nil
}

func (c *Codec) parse(tokenStr string, skipClaimsValidation bool) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithTimeFunc(c.now),
	}
	if skipClaimsValidation {
		options = append(options, jwt.WithoutClaimsValidation())
	} else {
		options = append(options, jwt.WithExpirationRequired())
	}
	if c.issuer != "" && !skipClaimsValidation {
		options = append(options, jwt.WithIssuer(c.issuer))
	}

	parsed, err := jwt.NewParser(options...).ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
