package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	id "github.com/geekskaran/cattel/pkg/domain"
	"github.com/geekskaran/cattel/pkg/requestcontext"
)

// SessionClaims represents the claims we expect from the token validator.
type SessionClaims struct {
	UserID id.UserID
	Role   id.Role
	Region id.Region
	// JTI identifies the token for revocation tracking.
	JTI string
}

// TokenValidator defines the interface for validating session tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*SessionClaims, error)
}

// RevocationChecker reports whether a token has been revoked (logout).
type RevocationChecker interface {
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// RequireAuth validates the bearer token, checks revocation, and stores
// the caller's session in the request context. Handlers downstream read
// it via requestcontext.Actor.
func RequireAuth(validator TokenValidator, revocations RevocationChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeUnauthorized(w)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeUnauthorized(w)
				return
			}

			if revocations != nil && claims.JTI != "" {
				revoked, err := revocations.IsTokenRevoked(ctx, claims.JTI)
				if err != nil {
					logger.ErrorContext(ctx, "revocation check failed",
						"error", err,
						"request_id", requestID,
					)
					writeUnauthorized(w)
					return
				}
				if revoked {
					logger.WarnContext(ctx, "unauthorized access - revoked token",
						"request_id", requestID,
					)
					writeUnauthorized(w)
					return
				}
			}

			ctx = requestcontext.WithActor(ctx, requestcontext.Session{
				UserID: claims.UserID,
				Role:   claims.Role,
				Region: claims.Region,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a subtree to callers holding one of the given
// roles. It must be mounted after RequireAuth.
func RequireRole(logger *slog.Logger, roles ...id.Role) func(http.Handler) http.Handler {
	allowed := make(map[id.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			actor := requestcontext.Actor(ctx)
			if actor.IsZero() || !allowed[actor.Role] {
				logger.WarnContext(ctx, "forbidden - role not permitted",
					"role", actor.Role.String(),
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden","message":"you do not have permission for this action"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","message":"please login to continue"}`))
}
