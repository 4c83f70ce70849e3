// Package token signs arbitrary payloads into time-limited tokens and
// verifies them again.
package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ctutil/backend/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultExpiry is how long a token stays valid unless WithExpiry is used.
const DefaultExpiry = 24 * time.Hour

// Claims carries the JSON payload next to the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	Data json.RawMessage `json:"data"`
}

// Codec encodes and decodes signed tokens with a shared salt.
type Codec struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

type Option func(*Codec)

func WithExpiry(d time.Duration) Option {
	return func(c *Codec) { c.expiry = d }
}

// WithClock replaces time.Now, both for issuing and for verifying.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

func NewCodec(salt string, opts ...Option) *Codec {
	c := &Codec{
		secret: []byte(salt),
		expiry: DefaultExpiry,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Encode signs payload together with its expiry timestamp.
func (c *Codec) Encode(payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding payload: %w", err)
	}

	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.expiry)),
		},
		Data: data,
	})

	return token.SignedString(c.secret)
}

// Decode verifies tokenString and unmarshals its payload into v. It returns
// common.ErrTokenExpired once the expiry has passed and common.ErrInvalidToken
// for any other verification failure.
func (c *Codec) Decode(tokenString string, v any) error {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return common.ErrTokenExpired
		}
		return fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return common.ErrInvalidToken
	}

	if err := json.Unmarshal(claims.Data, v); err != nil {
		return fmt.Errorf("%w: payload: %v", common.ErrInvalidToken, err)
	}
	return nil
}
