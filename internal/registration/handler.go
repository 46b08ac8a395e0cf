package registration

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/geekskaran/cattel/internal/policy"
	"github.com/geekskaran/cattel/internal/registration/models"
	id "github.com/geekskaran/cattel/pkg/domain"
	dErrors "github.com/geekskaran/cattel/pkg/domain-errors"
	"github.com/geekskaran/cattel/pkg/platform/httputil"
	"github.com/geekskaran/cattel/pkg/requestcontext"
)

// Handler wires the cattle record endpoints to the lifecycle service.
// All routes assume the auth middleware already ran.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the cattle endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/cattle", h.HandleSubmit)
	r.Get("/cattle", h.HandleListMine)
	r.Get("/cattle/{recordID}", h.HandleGet)
	r.Get("/cattle/{recordID}/trail", h.HandleTrail)
	r.Post("/cattle/{recordID}/approve", h.HandleApprove)
	r.Post("/cattle/{recordID}/decline", h.HandleDecline)
	r.Post("/cattle/{recordID}/archive", h.HandleArchive)
	r.Post("/cattle/{recordID}/transfer", h.HandleInitiateTransfer)
	r.Post("/cattle/{recordID}/transfer/complete", h.HandleCompleteTransfer)
	r.Post("/cattle/{recordID}/transfer/cancel", h.HandleCancelTransfer)
}

type imagePayload struct {
	Category    string `json:"category"`
	URI         string `json:"uri"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

type submitPayload struct {
	TagID  string         `json:"tag_id"`
	Region string         `json:"region"`
	Images []imagePayload `json:"images"`
}

type recordResponse struct {
	ID          string             `json:"id"`
	TagID       string             `json:"tag_id"`
	OwnerID     string             `json:"owner_id"`
	Region      string             `json:"region"`
	Status      string             `json:"status"`
	Transferee  string             `json:"transferee,omitempty"`
	SubmittedAt time.Time          `json:"submitted_at"`
	Images      []models.ImageRef  `json:"images"`
	Duplicates  []duplicateWarning `json:"possible_duplicates,omitempty"`
}

type duplicateWarning struct {
	RecordID string  `json:"record_id"`
	Score    float64 `json:"score"`
}

func toRecordResponse(rec *models.CattleRecord) recordResponse {
	resp := recordResponse{
		ID:          rec.ID.String(),
		TagID:       rec.TagID,
		OwnerID:     rec.OwnerID.String(),
		Region:      rec.Region.String(),
		Status:      rec.Status.String(),
		SubmittedAt: rec.SubmittedAt,
		Images:      rec.Images,
	}
	if !rec.Transferee.IsNil() {
		resp.Transferee = rec.Transferee.String()
	}
	return resp
}

// HandleSubmit handles POST /cattle.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	payload, err := httputil.Decode[submitPayload](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	images := make([]models.ImageRef, 0, len(payload.Images))
	for _, img := range payload.Images {
		category, err := id.ParseImageCategory(img.Category)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		images = append(images, models.ImageRef{
			Category:    category,
			URI:         img.URI,
			ContentType: img.ContentType,
			SizeBytes:   img.SizeBytes,
		})
	}

	result, err := h.service.Submit(ctx, actor, SubmitRequest{
		TagID:  payload.TagID,
		Region: payload.Region,
		Images: images,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "registration submitted",
		"request_id", requestcontext.RequestID(ctx),
		"record_id", result.Record.ID.String(),
		"region", result.Record.Region.String(),
	)

	resp := toRecordResponse(result.Record)
	for _, c := range result.Duplicates {
		resp.Duplicates = append(resp.Duplicates, duplicateWarning{
			RecordID: c.RecordID.String(),
			Score:    c.Score,
		})
	}
	httputil.WriteJSON(w, http.StatusCreated, resp)
}

// HandleListMine handles GET /cattle.
func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	records, err := h.service.ListMine(r.Context(), actor)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toRecordResponse(rec))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"records": out})
}

// HandleGet handles GET /cattle/{recordID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	recordID, err := id.ParseRecordID(chi.URLParam(r, "recordID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	rec, err := h.service.Get(r.Context(), actor, recordID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRecordResponse(rec))
}

// HandleTrail handles GET /cattle/{recordID}/trail.
func (h *Handler) HandleTrail(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	recordID, err := id.ParseRecordID(chi.URLParam(r, "recordID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	trail, err := h.service.Trail(r.Context(), actor, recordID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"trail": trail})
}

// HandleApprove handles POST /cattle/{recordID}/approve.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "approved", func(actor policy.Actor, recordID id.RecordID) (*models.CattleRecord, error) {
		return h.service.Approve(r.Context(), actor, recordID)
	})
}

type declinePayload struct {
	Reason string `json:"reason"`
}

// HandleDecline handles POST /cattle/{recordID}/decline.
func (h *Handler) HandleDecline(w http.ResponseWriter, r *http.Request) {
	payload, err := httputil.Decode[declinePayload](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.transition(w, r, "declined", func(actor policy.Actor, recordID id.RecordID) (*models.CattleRecord, error) {
		return h.service.Decline(r.Context(), actor, recordID, payload.Reason)
	})
}

// HandleArchive handles POST /cattle/{recordID}/archive.
func (h *Handler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "archived", func(actor policy.Actor, recordID id.RecordID) (*models.CattleRecord, error) {
		return h.service.Archive(r.Context(), actor, recordID)
	})
}

type transferPayload struct {
	Transferee string `json:"transferee"`
}

// HandleInitiateTransfer handles POST /cattle/{recordID}/transfer.
func (h *Handler) HandleInitiateTransfer(w http.ResponseWriter, r *http.Request) {
	payload, err := httputil.Decode[transferPayload](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	transferee, err := id.ParseUserID(payload.Transferee)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "transferee must be a valid user id"))
		return
	}
	h.transition(w, r, "transfer initiated", func(actor policy.Actor, recordID id.RecordID) (*models.CattleRecord, error) {
		return h.service.InitiateTransfer(r.Context(), actor, recordID, transferee)
	})
}

// HandleCompleteTransfer handles POST /cattle/{recordID}/transfer/complete.
func (h *Handler) HandleCompleteTransfer(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "transfer completed", func(actor policy.Actor, recordID id.RecordID) (*models.CattleRecord, error) {
		return h.service.CompleteTransfer(r.Context(), actor, recordID)
	})
}

// HandleCancelTransfer handles POST /cattle/{recordID}/transfer/cancel.
func (h *Handler) HandleCancelTransfer(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "transfer cancelled", func(actor policy.Actor, recordID id.RecordID) (*models.CattleRecord, error) {
		return h.service.CancelTransfer(r.Context(), actor, recordID)
	})
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, verb string, run func(policy.Actor, id.RecordID) (*models.CattleRecord, error)) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	recordID, err := id.ParseRecordID(chi.URLParam(r, "recordID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rec, err := run(actor, recordID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "record "+verb,
		"request_id", requestcontext.RequestID(ctx),
		"record_id", rec.ID.String(),
		"status", rec.Status.String(),
	)
	httputil.WriteJSON(w, http.StatusOK, toRecordResponse(rec))
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (policy.Actor, bool) {
	session := requestcontext.Actor(r.Context())
	if session.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return policy.Actor{}, false
	}
	return policy.Actor{ID: session.UserID, Role: session.Role, Region: session.Region}, true
}
