package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shashiranjanraj/cafe/config"
)

// Token kinds. Refresh tokens are only accepted by Refresh.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// ErrWrongKind is returned when a refresh token is used for access or the
// other way round.
var ErrWrongKind = errors.New("auth: wrong token kind")

// leeway absorbs clock drift between app instances.
const leeway = 30 * time.Second

// Claims is the token payload. Subject carries the user id as a string,
// UserID the same value typed.
type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	Kind   string `json:"kind"`
	jwt.RegisteredClaims
}

func secret() []byte { return []byte(config.JWTSecret()) }

func issuer() string { return config.Get("JWT_ISSUER", "cafe") }

// GenerateToken creates a signed access token for the given user.
func GenerateToken(userID uint, role string) (string, error) {
	return sign(userID, role, KindAccess, config.Duration("JWT_TTL", 24*time.Hour))
}

// GenerateRefreshToken creates a longer-lived token that can only be
// exchanged for a new access token.
func GenerateRefreshToken(userID uint, role string) (string, error) {
	return sign(userID, role, KindRefresh, config.Duration("JWT_REFRESH_TTL", 7*24*time.Hour))
}

func sign(userID uint, role, kind string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer(),
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret())
	if err != nil {
		return "", fmt.Errorf("auth: sign %s token: %w", kind, err)
	}
	return signed, nil
}

// Refresh validates a refresh token and issues a new access token for the
// same user and role.
func Refresh(refreshToken string) (string, *Claims, error) {
	claims, err := parse(refreshToken, KindRefresh)
	if err != nil {
		return "", nil, err
	}
	token, err := GenerateToken(claims.UserID, claims.Role)
	return token, claims, err
}

// ValidateToken parses an access token.
func ValidateToken(t string) (*Claims, error) {
	return parse(t, KindAccess)
}

func parse(t, kind string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(t, claims, func(*jwt.Token) (any, error) {
		return secret(), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer()),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
	)
	if err != nil {
		return nil, err
	}
	if claims.Kind != kind {
		return nil, ErrWrongKind
	}
	if claims.Subject != strconv.FormatUint(uint64(claims.UserID), 10) {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
