package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lalith-99/tasklane/internal/models"
)

const issuer = "tasklane"

// Claims is the payload inside every token.
//
// The middleware trusts these fields for the lifetime of the token, so a
// role change only takes effect after the user logs in again. TenantID is
// uuid.Nil for SUPER_ADMIN, which belongs to no tenant.
type Claims struct {
	UserID   uuid.UUID   `json:"userId"`
	TenantID uuid.UUID   `json:"tenantId"`
	Role     models.Role `json:"role"`
	Email    string      `json:"email"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 tokens with one shared secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a signed token for user. Every token carries a random jti
// so it can be revoked individually on logout.
func (i *Issuer) Issue(user *models.User) (string, *Claims, error) {
	now := i.now()

	tenantID := uuid.Nil
	if user.TenantID != nil {
		tenantID = *user.TenantID
	}

	claims := &Claims{
		UserID:   user.ID,
		TenantID: tenantID,
		Role:     user.Role,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	return signed, claims, nil
}

// Parse validates the signature, expiry and issuer of tokenString.
//
// Only HMAC methods are accepted; a token claiming "none" or RS256 is
// rejected before its signature is looked at.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return i.secret, nil
		},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.UserID == uuid.Nil || !claims.Role.Valid() {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// TTL is the lifetime given to every issued token.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}
