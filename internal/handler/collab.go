package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/apperror"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/auth"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/backup"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/credential"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/diagnosis"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/model"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/notify"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/response"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/store"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/weather"
)

// WeatherHandler exposes cached local conditions to the record UI.
type WeatherHandler struct {
	svc *weather.Service
}

func NewWeatherHandler(svc *weather.Service) *WeatherHandler {
	return &WeatherHandler{svc: svc}
}

func (h *WeatherHandler) Current(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Current(r.Context()))
}

// DiagnosisHandler proxies symptom descriptions to the configured LLM
// collaborator. Identity and CSRF are already checked by the middleware
// chain before a request lands here.
type DiagnosisHandler struct {
	client     *diagnosis.Client
	production bool
	logger     *slog.Logger
}

func NewDiagnosisHandler(client *diagnosis.Client, production bool, logger *slog.Logger) *DiagnosisHandler {
	return &DiagnosisHandler{client: client, production: production, logger: logger.With("component", "diagnosis")}
}

func (h *DiagnosisHandler) Diagnose(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, h.logger, h.production, err)
		return
	}
	req.Description = strings.TrimSpace(req.Description)
	if req.Description == "" {
		writeErr(w, h.logger, h.production, apperror.Validation("description is required"))
		return
	}
	if len(req.Description) > 4000 {
		writeErr(w, h.logger, h.production, apperror.Validation("description is too long"))
		return
	}

	answer, err := h.client.Diagnose(r.Context(), req.Description)
	if err == diagnosis.ErrNotConfigured {
		response.Error(w, http.StatusServiceUnavailable, "not_configured", "diagnosis service is not configured")
		return
	}
	if err != nil {
		h.logger.Error("diagnosis call", "error", err)
		response.Error(w, http.StatusBadGateway, "upstream_error", "diagnosis service unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"diagnosis": answer})
}

// PushHandler manages web push subscriptions.
type PushHandler struct {
	store      *store.Store
	push       *notify.Service
	production bool
	logger     *slog.Logger
}

func NewPushHandler(st *store.Store, push *notify.Service, production bool, logger *slog.Logger) *PushHandler {
	return &PushHandler{store: st, push: push, production: production, logger: logger.With("component", "push")}
}

func (h *PushHandler) VAPIDKey(w http.ResponseWriter, r *http.Request) {
	if h.push == nil {
		response.Error(w, http.StatusServiceUnavailable, "not_configured", "push notifications are not configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"public_key": h.push.VAPIDPublicKey()})
}

func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	if h.push == nil {
		response.Error(w, http.StatusServiceUnavailable, "not_configured", "push notifications are not configured")
		return
	}
	p, _ := auth.FromContext(r.Context())

	var req struct {
		Endpoint string `json:"endpoint"`
		P256dh   string `json:"p256dh"`
		Auth     string `json:"auth"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, h.logger, h.production, err)
		return
	}
	if req.Endpoint == "" || req.P256dh == "" || req.Auth == "" {
		writeErr(w, h.logger, h.production, apperror.Validation("endpoint, p256dh, and auth are required"))
		return
	}

	sub := model.PushSubscription{
		ID:          credential.NewID(),
		UserID:      p.UserID,
		Endpoint:    req.Endpoint,
		P256dh:      req.P256dh,
		Auth:        req.Auth,
		CreatedDate: time.Now().UTC(),
	}
	if _, err := h.store.Transact(func(st *model.State) (any, error) {
		// Re-subscribing the same endpoint replaces the old row.
		kept := st.Auth.PushSubscriptions[:0]
		for _, existing := range st.Auth.PushSubscriptions {
			if existing.UserID == p.UserID && existing.Endpoint == req.Endpoint {
				continue
			}
			kept = append(kept, existing)
		}
		st.Auth.PushSubscriptions = append(kept, sub)
		return nil, nil
	}); err != nil {
		writeErr(w, h.logger, h.production, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": sub.ID})
}

func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id := r.PathValue("id")

	if _, err := h.store.Transact(func(st *model.State) (any, error) {
		for i, sub := range st.Auth.PushSubscriptions {
			if sub.ID != id {
				continue
			}
			if sub.UserID != p.UserID && !p.IsAdmin() {
				return nil, apperror.NotFound("subscription not found")
			}
			st.Auth.PushSubscriptions = append(st.Auth.PushSubscriptions[:i], st.Auth.PushSubscriptions[i+1:]...)
			return nil, nil
		}
		return nil, apperror.NotFound("subscription not found")
	}); err != nil {
		writeErr(w, h.logger, h.production, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "subscription removed"})
}

// BackupHandler exposes the snapshot backup manager to admins.
type BackupHandler struct {
	mgr    *backup.Manager
	logger *slog.Logger
}

func NewBackupHandler(mgr *backup.Manager, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{mgr: mgr, logger: logger.With("component", "backup")}
}

func (h *BackupHandler) Now(w http.ResponseWriter, r *http.Request) {
	if !h.mgr.Enabled() {
		response.Error(w, http.StatusServiceUnavailable, "not_configured", "backups are not configured")
		return
	}
	if err := h.mgr.BackupNow(r.Context()); err != nil {
		if h.mgr.Status().InProgress {
			response.Error(w, http.StatusConflict, "conflict", "a backup is already in progress")
			return
		}
		h.logger.Error("manual backup", "error", err)
		response.Error(w, http.StatusInternalServerError, "backup_failed", "backup failed")
		return
	}
	writeJSON(w, http.StatusOK, h.mgr.Status())
}

func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.mgr.Status())
}
