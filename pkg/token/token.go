// Package token issues and verifies signed principal tokens. Consumers treat
// the token as an opaque string; only the resolved tenant id and subject ever
// leave this package.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrEmptySecret  = errors.New("token: signing secret is required")
	ErrInvalidToken = errors.New("token: invalid or expired token")
)

// Principal identifies who (or what) a token is issued for. Kind
// distinguishes user sessions from registration tickets.
type Principal struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Kind     string
}

const (
	KindUser   = "user"
	KindTicket = "ticket"
)

type claims struct {
	jwt.RegisteredClaims
	TenantID string `json:"tid"`
	Kind     string `json:"kind"`
}

// Issuer signs principal tokens with HMAC-SHA256.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// Option configures an Issuer.
type Option func(*Issuer)

// WithIssuer sets the iss claim.
func WithIssuer(name string) Option {
	return func(i *Issuer) { i.issuer = name }
}

// WithTTL sets token lifetime; defaults to 24h.
func WithTTL(ttl time.Duration) Option {
	return func(i *Issuer) {
		if ttl > 0 {
			i.ttl = ttl
		}
	}
}

// NewIssuer creates an Issuer with the given signing secret.
func NewIssuer(secret string, opts ...Option) (*Issuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	i := &Issuer{
		secret: []byte(secret),
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Issue returns a signed token for the principal.
func (i *Issuer) Issue(p Principal) (string, error) {
	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID.String(),
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		TenantID: p.TenantID.String(),
		Kind:     p.Kind,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
}

// Parse verifies the token signature and expiry and returns the principal.
func (i *Issuer) Parse(raw string) (Principal, error) {
	var c claims
	tok, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return Principal{}, errors.Join(ErrInvalidToken, err)
	}

	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return Principal{}, errors.Join(ErrInvalidToken, err)
	}
	tenantID, err := uuid.Parse(c.TenantID)
	if err != nil {
		return Principal{}, errors.Join(ErrInvalidToken, err)
	}

	return Principal{ID: id, TenantID: tenantID, Kind: c.Kind}, nil
}
