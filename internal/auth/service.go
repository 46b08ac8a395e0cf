package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/geekskaran/cattel/internal/audit"
	"github.com/geekskaran/cattel/internal/validation"
	id "github.com/geekskaran/cattel/pkg/domain"
	dErrors "github.com/geekskaran/cattel/pkg/domain-errors"
	"github.com/geekskaran/cattel/pkg/platform/sentinel"
	"github.com/geekskaran/cattel/pkg/requestcontext"
)

// RegionLister reports the regions signups may name.
type RegionLister interface {
	ListRegions(ctx context.Context) ([]id.Region, error)
}

// Service handles account creation and session lifecycle.
type Service struct {
	users       UserStore
	tokens      *TokenService
	revocations RevocationList
	rules       *validation.Rules
	regions     RegionLister
	auditor     *audit.Publisher
	logger      *slog.Logger
}

type ServiceOption func(*Service)

func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

func WithAuditor(auditor *audit.Publisher) ServiceOption {
	return func(s *Service) { s.auditor = auditor }
}

func NewService(
	users UserStore,
	tokens *TokenService,
	revocations RevocationList,
	rules *validation.Rules,
	regions RegionLister,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		users:       users,
		tokens:      tokens,
		revocations: revocations,
		rules:       rules,
		regions:     regions,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Signup creates a farmer account. Regional and super admins are
// provisioned out of band, not through this endpoint.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (User, error) {
	if err := s.rules.Mobile(req.Mobile); err != nil {
		return User{}, err
	}
	if err := s.rules.Email(req.Email); err != nil {
		return User{}, err
	}
	if err := s.rules.Password(req.Password); err != nil {
		return User{}, err
	}
	region, err := s.knownRegion(ctx, req.Region)
	if err != nil {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, dErrors.Wrap(err, dErrors.CodeInternal, "hash password")
	}

	user := User{
		ID:           id.NewUserID(),
		Name:         req.Name,
		Mobile:       req.Mobile,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         id.RoleFarmer,
		Region:       region,
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return User{}, dErrors.New(dErrors.CodeConflict, "an account with this mobile or email already exists")
		}
		s.logger.ErrorContext(ctx, "user creation failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return User{}, dErrors.Wrap(err, dErrors.CodeInternal, "create user")
	}

	s.emit(ctx, audit.Event{
		Actor:  user.ID,
		Region: user.Region,
		Action: string(audit.EventUserCreated),
	})
	return user, nil
}

// Login verifies the mobile/password pair and issues a session token.
// Lookup misses and bad passwords report the same error.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	user, err := s.users.FindByMobile(ctx, req.Mobile)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return LoginResult{}, s.failLogin(ctx, req.Mobile)
		}
		return LoginResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "lookup user")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return LoginResult{}, s.failLogin(ctx, req.Mobile)
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return LoginResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "issue token")
	}

	s.emit(ctx, audit.Event{
		Actor:     user.ID,
		ActorRole: user.Role,
		Region:    user.Region,
		Action:    string(audit.EventSessionCreated),
	})
	return LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		UserID:    user.ID,
		Role:      user.Role,
	}, nil
}

// Logout revokes the presented token for the remainder of its life.
func (s *Service) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return err
	}
	ttl := s.tokens.RemainingTTL(tokenString)
	if err := s.revocations.Revoke(ctx, claims.JTI, ttl); err != nil {
		s.logger.ErrorContext(ctx, "token revocation failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return dErrors.Wrap(err, dErrors.CodeInternal, "revoke token")
	}

	s.emit(ctx, audit.Event{
		Actor:     claims.UserID,
		ActorRole: claims.Role,
		Region:    claims.Region,
		Action:    string(audit.EventSessionRevoked),
	})
	return nil
}

func (s *Service) knownRegion(ctx context.Context, raw string) (id.Region, error) {
	region, err := id.ParseRegion(raw)
	if err != nil {
		return "", err
	}
	known, err := s.regions.ListRegions(ctx)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "list regions")
	}
	for _, candidate := range known {
		if candidate == region {
			return region, nil
		}
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "unknown region %q", raw)
}

func (s *Service) failLogin(ctx context.Context, mobile string) error {
	s.logger.WarnContext(ctx, "login failed",
		"mobile", mobile,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{Action: string(audit.EventAuthFailed)})
	return dErrors.New(dErrors.CodeUnauthorized, "invalid mobile number or password")
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", event.Action, "error", err)
	}
}
