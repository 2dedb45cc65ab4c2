package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/blood-donor-services/common/errors"
)

// Claims carries the identity embedded in a bearer token.
// Subject is the donor email, or the admin username for ADMIN tokens.
type Claims struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Config holds token service configuration
type Config struct {
	Secret     string
	Expiration time.Duration
}

// TokenService issues and validates signed bearer tokens. It holds no
// state beyond the signing secret; validation is a pure function of the
// token, the secret and the clock.
type TokenService struct {
	secret     []byte
	expiration time.Duration
}

// NewTokenService creates a token service from config
func NewTokenService(cfg Config) *TokenService {
	return &TokenService{
		secret:     []byte(cfg.Secret),
		expiration: cfg.Expiration,
	}
}

// GenerateToken creates a signed token for a subject. userID is 0 for
// the admin account.
func (s *TokenService) GenerateToken(subject, role string, userID int64) (string, error) {
	if subject == "" || role == "" {
		return "", apperrors.ConfigError("subject and role are required for token generation")
	}
	if len(s.secret) == 0 {
		return "", apperrors.ConfigError("JWT secret key is not configured")
	}

	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken parses and verifies a token. Any failure (bad signature,
// malformed token, expired) returns nil claims - callers treat that as
// an anonymous request, never as an error to propagate.
func (s *TokenService) ValidateToken(tokenString string) *Claims {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		return nil
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims
	}
	return nil
}

// GetRoleFromToken extracts the role claim, best effort. Returns "" when
// the token cannot be parsed or verified.
func (s *TokenService) GetRoleFromToken(tokenString string) string {
	claims := s.ValidateToken(tokenString)
	if claims == nil {
		return ""
	}
	return claims.Role
}

// GetSubjectFromToken extracts the subject claim, best effort.
func (s *TokenService) GetSubjectFromToken(tokenString string) string {
	claims := s.ValidateToken(tokenString)
	if claims == nil {
		return ""
	}
	return claims.Subject
}

// IsAdmin checks whether the token carries the ADMIN role
func (s *TokenService) IsAdmin(tokenString string) bool {
	return s.GetRoleFromToken(tokenString) == "ADMIN"
}
