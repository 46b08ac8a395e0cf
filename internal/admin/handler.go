// Package admin is the review and operations surface: per-region
// approval queues, the overdue advisory list, registry stats, and
// region admin assignment.
package admin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/geekskaran/cattel/internal/audit"
	"github.com/geekskaran/cattel/internal/auth"
	"github.com/geekskaran/cattel/internal/policy"
	"github.com/geekskaran/cattel/internal/queue"
	"github.com/geekskaran/cattel/internal/region"
	"github.com/geekskaran/cattel/internal/registration/models"
	id "github.com/geekskaran/cattel/pkg/domain"
	dErrors "github.com/geekskaran/cattel/pkg/domain-errors"
	"github.com/geekskaran/cattel/pkg/platform/httputil"
	"github.com/geekskaran/cattel/pkg/platform/sentinel"
	"github.com/geekskaran/cattel/pkg/requestcontext"
)

// StatsCounter reports registry totals by lifecycle status.
type StatsCounter interface {
	CountByStatus(ctx context.Context) (map[models.Status]int, error)
}

// UserFinder resolves a user for admin assignment checks.
type UserFinder interface {
	FindByID(ctx context.Context, userID id.UserID) (auth.User, error)
}

// Handler wires the admin endpoints.
type Handler struct {
	queue     *queue.Service
	directory *region.Directory
	stats     StatsCounter
	users     UserFinder
	auditor   *audit.Publisher
	window    time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

func NewHandler(
	q *queue.Service,
	directory *region.Directory,
	stats StatsCounter,
	users UserFinder,
	auditor *audit.Publisher,
	window time.Duration,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		queue:     q,
		directory: directory,
		stats:     stats,
		users:     users,
		auditor:   auditor,
		window:    window,
		logger:    logger,
		now:       time.Now,
	}
}

// Register mounts the admin endpoints. The caller gates the subtree to
// admin roles; per-region checks happen here.
func (h *Handler) Register(r chi.Router) {
	r.Get("/admin/pending", h.HandlePending)
	r.Get("/admin/overdue", h.HandleOverdue)
	r.Get("/admin/stats", h.HandleStats)
	r.Get("/admin/regions", h.HandleListRegions)
	r.Post("/admin/regions/{region}/assign", h.HandleAssign)
	r.Delete("/admin/regions/{region}/assign", h.HandleUnassign)
}

// HandlePending handles GET /admin/pending. Regional admins see their
// own region's queue; super admins pick one with ?region=.
func (h *Handler) HandlePending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := h.actor(r)

	reviewRegion := actor.Region
	if raw := r.URL.Query().Get("region"); raw != "" {
		parsed, err := id.ParseRegion(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		reviewRegion = parsed
	}
	if reviewRegion.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "region is required"))
		return
	}
	if err := policy.CanViewQueue(actor, reviewRegion); err != nil {
		httputil.WriteError(w, err)
		return
	}

	records, err := h.queue.ListPending(ctx, reviewRegion)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	now := h.now()
	resp := PendingListResponse{Region: reviewRegion.String(), Total: len(records)}
	for _, rec := range records {
		resp.Records = append(resp.Records, h.toPendingResponse(rec, now))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleOverdue handles GET /admin/overdue. The cross-region view is
// reserved for the super admin.
func (h *Handler) HandleOverdue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := policy.CanManageRegions(h.actor(r).Role); err != nil {
		httputil.WriteError(w, err)
		return
	}

	now := h.now()
	overdue, err := h.queue.ListOverdue(ctx, now)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp := OverdueListResponse{Total: len(overdue)}
	for _, item := range overdue {
		resp.Records = append(resp.Records, h.toPendingResponse(item.Record, now))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleStats handles GET /admin/stats.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := policy.CanManageRegions(h.actor(r).Role); err != nil {
		httputil.WriteError(w, err)
		return
	}

	counts, err := h.stats.CountByStatus(ctx)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "count records"))
		return
	}

	resp := StatsResponse{ByStatus: make(map[string]int, len(counts))}
	for status, count := range counts {
		resp.ByStatus[status.String()] = count
		resp.Total += count
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleListRegions handles GET /admin/regions.
func (h *Handler) HandleListRegions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := policy.CanManageRegions(h.actor(r).Role); err != nil {
		httputil.WriteError(w, err)
		return
	}

	regions, err := h.directory.ListRegions(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var resp RegionsListResponse
	for _, reg := range regions {
		entry := RegionResponse{Region: reg.String()}
		adminID, err := h.directory.AdminOf(ctx, reg)
		if err == nil {
			entry.AdminID = adminID.String()
		} else if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			httputil.WriteError(w, err)
			return
		}
		resp.Regions = append(resp.Regions, entry)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

type assignPayload struct {
	AdminID string `json:"admin_id"`
}

// HandleAssign handles POST /admin/regions/{region}/assign.
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := h.actor(r)
	if err := policy.CanManageRegions(actor.Role); err != nil {
		httputil.WriteError(w, err)
		return
	}

	reviewRegion, err := id.ParseRegion(chi.URLParam(r, "region"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	payload, err := httputil.Decode[assignPayload](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	adminID, err := id.ParseUserID(payload.AdminID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "admin_id must be a valid user id"))
		return
	}

	candidate, err := h.users.FindByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no such user"))
			return
		}
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "lookup user"))
		return
	}
	if candidate.Role != id.RoleRegionalAdmin {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "only regional admins can be assigned to a region"))
		return
	}

	if err := h.directory.Assign(ctx, reviewRegion, adminID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "region admin assigned",
		"request_id", requestcontext.RequestID(ctx),
		"region", reviewRegion.String(),
		"admin_id", adminID.String(),
	)
	h.emit(ctx, actor, audit.EventRegionAdminAssigned, reviewRegion)
	httputil.WriteJSON(w, http.StatusOK, RegionResponse{
		Region:  reviewRegion.String(),
		AdminID: adminID.String(),
	})
}

// HandleUnassign handles DELETE /admin/regions/{region}/assign.
func (h *Handler) HandleUnassign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := h.actor(r)
	if err := policy.CanManageRegions(actor.Role); err != nil {
		httputil.WriteError(w, err)
		return
	}

	reviewRegion, err := id.ParseRegion(chi.URLParam(r, "region"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.directory.Unassign(ctx, reviewRegion); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.emit(ctx, actor, audit.EventRegionAdminUnassigned, reviewRegion)
	httputil.WriteJSON(w, http.StatusOK, RegionResponse{Region: reviewRegion.String()})
}

func (h *Handler) toPendingResponse(rec *models.CattleRecord, now time.Time) PendingRecordResponse {
	return PendingRecordResponse{
		RecordID:    rec.ID.String(),
		TagID:       rec.TagID,
		OwnerID:     rec.OwnerID.String(),
		Region:      rec.Region.String(),
		SubmittedAt: rec.SubmittedAt,
		PendingFor:  rec.PendingAge(now).Round(time.Minute).String(),
		Overdue:     rec.Overdue(now, h.window),
	}
}

func (h *Handler) actor(r *http.Request) policy.Actor {
	session := requestcontext.Actor(r.Context())
	return policy.Actor{ID: session.UserID, Role: session.Role, Region: session.Region}
}

func (h *Handler) emit(ctx context.Context, actor policy.Actor, event audit.AuditEvent, reg id.Region) {
	if h.auditor == nil {
		return
	}
	err := h.auditor.Emit(ctx, audit.Event{
		Actor:     actor.ID,
		ActorRole: actor.Role,
		Region:    reg,
		Action:    string(event),
		RequestID: requestcontext.RequestID(ctx),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "audit emit failed", "action", string(event), "error", err)
	}
}
