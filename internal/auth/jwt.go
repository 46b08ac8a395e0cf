package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/geekskaran/cattel/internal/platform/middleware"
	id "github.com/geekskaran/cattel/pkg/domain"
	dErrors "github.com/geekskaran/cattel/pkg/domain-errors"
)

// Claims is the JWT payload for session tokens. Role and region travel
// in the token so handlers can authorize without a user lookup.
type Claims struct {
	Role   string `json:"role"`
	Region string `json:"region,omitempty"`
	jwt.RegisteredClaims
}

// TokenService signs and validates session tokens. It satisfies
// middleware.TokenValidator.
type TokenService struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

func NewTokenService(signingKey string, ttl time.Duration) *TokenService {
	return &TokenService{
		signingKey: []byte(signingKey),
		issuer:     "cattel",
		ttl:        ttl,
	}
}

// Issue signs a token for the given user. The returned expiry matches
// the token's exp claim.
func (s *TokenService) Issue(user User) (token string, expiresAt time.Time, err error) {
	now := time.Now()
	expiresAt = now.Add(s.ttl)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:   user.Role.String(),
		Region: user.Region.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	}).SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateToken parses and verifies a session token and maps its
// claims into the shape the auth middleware consumes.
func (s *TokenService) ValidateToken(tokenString string) (*middleware.SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	userID, err := id.ParseUserID(claims.Subject)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}
	role, err := id.ParseRole(claims.Role)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token role")
	}
	return &middleware.SessionClaims{
		UserID: userID,
		Role:   role,
		Region: id.Region(claims.Region),
		JTI:    claims.ID,
	}, nil
}

// RemainingTTL reports how long a token's jti must stay on the
// revocation list: the time until its exp claim.
func (s *TokenService) RemainingTTL(tokenString string) time.Duration {
	parsed, _, err := jwt.NewParser().ParseUnverified(tokenString, &Claims{})
	if err != nil {
		return s.ttl
	}
	if c, ok := parsed.Claims.(*Claims); ok && c.ExpiresAt != nil {
		if remaining := time.Until(c.ExpiresAt.Time); remaining > 0 {
			return remaining
		}
	}
	return s.ttl
}
