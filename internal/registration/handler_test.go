package registration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geekskaran/cattel/internal/platform/config"
	"github.com/geekskaran/cattel/internal/queue"
	"github.com/geekskaran/cattel/internal/region"
	id "github.com/geekskaran/cattel/pkg/domain"
	"github.com/geekskaran/cattel/pkg/requestcontext"
)

func newTestRouter(t *testing.T) (*chi.Mux, *region.Directory) {
	t.Helper()
	directory := region.NewDirectory(region.NewInMemoryStore())
	require.NoError(t, directory.Seed(context.Background(), id.SeedRegions()))

	appPolicy := config.DefaultPolicy()
	store := NewInMemoryStore()
	q := queue.NewService(queue.NewInMemoryIndex(), store, directory, appPolicy.ApprovalWindow)
	service := NewService(store, newEngine(), q, directory)

	router := chi.NewRouter()
	NewHandler(service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(router)
	return router, directory
}

func submitBody() []byte {
	type img struct {
		Category    string `json:"category"`
		URI         string `json:"uri"`
		ContentType string `json:"content_type"`
		SizeBytes   int64  `json:"size_bytes"`
	}
	var images []img
	add := func(category string, n int) {
		for i := 0; i < n; i++ {
			images = append(images, img{
				Category:    category,
				URI:         "file:///tmp/cattle.jpg",
				ContentType: "image/jpeg",
				SizeBytes:   1 << 20,
			})
		}
	}
	add("muzzle", 3)
	add("face", 3)
	add("left", 3)
	add("right", 3)
	add("full_left", 1)
	add("full_right", 1)
	body, _ := json.Marshal(map[string]any{
		"tag_id": "AB1234",
		"region": "Bihar",
		"images": images,
	})
	return body
}

func asUser(r *http.Request, session requestcontext.Session) *http.Request {
	return r.WithContext(requestcontext.WithActor(r.Context(), session))
}

func TestSubmitEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	farmer := requestcontext.Session{UserID: id.NewUserID(), Role: id.RoleFarmer, Region: "Bihar"}

	t.Run("accepts a complete submission", func(t *testing.T) {
		r := asUser(httptest.NewRequest(http.MethodPost, "/cattle", bytes.NewReader(submitBody())), farmer)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)

		require.Equal(t, http.StatusCreated, w.Code)
		var resp map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "pending", resp["status"])
		assert.Equal(t, "AB1234", resp["tag_id"])
	})

	t.Run("rejects a lowercase tag", func(t *testing.T) {
		body, _ := json.Marshal(map[string]any{"tag_id": "ab1234", "region": "Bihar", "images": []any{}})
		r := asUser(httptest.NewRequest(http.MethodPost, "/cattle", bytes.NewReader(body)), farmer)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)

		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "validation_failed", resp["error"])
	})

	t.Run("requires a session", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/cattle", bytes.NewReader(submitBody()))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestApproveEndpoint(t *testing.T) {
	router, directory := newTestRouter(t)
	farmer := requestcontext.Session{UserID: id.NewUserID(), Role: id.RoleFarmer, Region: "Bihar"}
	admin := requestcontext.Session{UserID: id.NewUserID(), Role: id.RoleRegionalAdmin, Region: "Bihar"}
	require.NoError(t, directory.Assign(context.Background(), "Bihar", admin.UserID))

	r := asUser(httptest.NewRequest(http.MethodPost, "/cattle", bytes.NewReader(submitBody())), farmer)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))

	t.Run("farmer cannot approve", func(t *testing.T) {
		r := asUser(httptest.NewRequest(http.MethodPost,
			fmt.Sprintf("/cattle/%s/approve", created.ID), nil), farmer)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("region admin approves", func(t *testing.T) {
		r := asUser(httptest.NewRequest(http.MethodPost,
			fmt.Sprintf("/cattle/%s/approve", created.ID), nil), admin)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		var resp map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "approved", resp["status"])
	})

	t.Run("second approve is an invalid transition", func(t *testing.T) {
		r := asUser(httptest.NewRequest(http.MethodPost,
			fmt.Sprintf("/cattle/%s/approve", created.ID), nil), admin)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown record is not found", func(t *testing.T) {
		r := asUser(httptest.NewRequest(http.MethodPost,
			fmt.Sprintf("/cattle/%s/approve", id.NewRecordID()), nil), admin)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestTrailEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	farmer := requestcontext.Session{UserID: id.NewUserID(), Role: id.RoleFarmer, Region: "Bihar"}

	r := asUser(httptest.NewRequest(http.MethodPost, "/cattle", bytes.NewReader(submitBody())), farmer)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))

	t.Run("entries carry the actor as a UUID string", func(t *testing.T) {
		r := asUser(httptest.NewRequest(http.MethodGet,
			fmt.Sprintf("/cattle/%s/trail", created.ID), nil), farmer)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Trail []map[string]any `json:"trail"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.Len(t, resp.Trail, 1)

		entry := resp.Trail[0]
		assert.Equal(t, "submit", entry["action"])
		assert.Equal(t, "pending", entry["to"])
		actor, ok := entry["actor"].(string)
		require.True(t, ok, "actor field must encode as a string, got %T", entry["actor"])
		assert.Equal(t, farmer.UserID.String(), actor)
	})
}
