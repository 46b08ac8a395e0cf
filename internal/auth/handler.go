package auth

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	dErrors "github.com/geekskaran/cattel/pkg/domain-errors"
	"github.com/geekskaran/cattel/pkg/platform/httputil"
	"github.com/geekskaran/cattel/pkg/requestcontext"
)

// Handler wires the account endpoints to the auth service.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the public account endpoints. Logout is mounted here
// too: it authenticates via the presented token itself.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/signup", h.HandleSignup)
	r.Post("/auth/login", h.HandleLogin)
	r.Post("/auth/logout", h.HandleLogout)
}

type signupRequest struct {
	Name     string `json:"name"`
	Mobile   string `json:"mobile"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Region   string `json:"region"`
}

type signupResponse struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Region string `json:"region"`
}

// HandleSignup handles POST /auth/signup.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := httputil.Decode[signupRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	user, err := h.service.Signup(ctx, SignupRequest{
		Name:     req.Name,
		Mobile:   req.Mobile,
		Email:    req.Email,
		Password: req.Password,
		Region:   req.Region,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "signup rejected",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "user signed up",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", user.ID.String(),
		"region", user.Region.String(),
	)
	httputil.WriteJSON(w, http.StatusCreated, signupResponse{
		UserID: user.ID.String(),
		Role:   user.Role.String(),
		Region: user.Region.String(),
	})
}

type loginRequest struct {
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Role        string `json:"role"`
}

// HandleLogin handles POST /auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := httputil.Decode[loginRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Login(ctx, LoginRequest(req))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken: result.Token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(time.Until(result.ExpiresAt).Seconds()),
		Role:        result.Role.String(),
	})
}

// HandleLogout handles POST /auth/logout.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
		return
	}
	if err := h.service.Logout(ctx, token); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}
