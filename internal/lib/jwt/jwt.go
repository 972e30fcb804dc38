package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenMalformed   = errors.New("token malformed")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrInvalidClaims    = errors.New("invalid token claims")
)

// Claims is the verified payload of a token. Never trusted unless it came
// out of Codec.Verify.
type Claims struct {
	UserID    uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type tokenClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// Codec mints and verifies HS256-signed tokens. Stateless and safe for
// concurrent use; the secret is read-only after construction.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("jwt: empty signing secret")
	}

	return &Codec{secret: []byte(secret)}, nil
}

func (c *Codec) Mint(userID uuid.UUID, ttl time.Duration) (string, error) {
	const op = "jwt.Codec.Mint"

	now := time.Now()

	claims := tokenClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// Verify checks the signature before the expiry. The failure classes stay
// distinguishable with errors.Is even though the HTTP layer answers 401
// for all of them.
func (c *Codec) Verify(tokenStr string) (Claims, error) {
	const op = "jwt.Codec.Verify"

	token, err := jwt.ParseWithClaims(tokenStr, &tokenClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, fmt.Errorf("%s: %w", op, ErrInvalidSignature)
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		default:
			return Claims{}, fmt.Errorf("%s: %w", op, ErrTokenMalformed)
		}
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return Claims{}, fmt.Errorf("%s: %w", op, ErrInvalidClaims)
	}

	uid, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Claims{}, fmt.Errorf("%s: %w", op, ErrInvalidClaims)
	}

	return Claims{
		UserID:    uid,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
