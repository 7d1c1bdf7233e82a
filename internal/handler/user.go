package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/apperror"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/auth"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/authz"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/credential"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/model"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/session"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/store"
)

// UserHandler serves the user directory and admin account management.
type UserHandler struct {
	store      *store.Store
	sessions   *session.Manager
	adminEmail string
	production bool
	logger     *slog.Logger
}

func NewUserHandler(st *store.Store, sessions *session.Manager, adminEmail string, production bool, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		store:      st,
		sessions:   sessions,
		adminEmail: credential.NormalizeEmail(adminEmail),
		production: production,
		logger:     logger.With("component", "users"),
	}
}

// List is open to every authenticated user; non-admins never see suspended
// accounts and nobody sees credential material.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	users := authz.FilterUsers(p, h.store.Read().Auth.Users)
	writeJSON(w, http.StatusOK, map[string]any{
		"users": users,
		"total": len(users),
	})
}

// Update changes a user's role or account status. The configured admin
// account is immutable; suspending a user revokes their sessions.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id := r.PathValue("id")

	var req struct {
		Role          *string `json:"role"`
		AccountStatus *string `json:"account_status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, h.logger, h.production, err)
		return
	}
	if req.Role == nil && req.AccountStatus == nil {
		writeErr(w, h.logger, h.production, apperror.Validation("no fields to update"))
		return
	}
	if req.Role != nil && *req.Role != string(model.RoleAdmin) && *req.Role != string(model.RoleUser) {
		writeErr(w, h.logger, h.production, apperror.Validation("role must be admin or user"))
		return
	}
	if req.AccountStatus != nil {
		switch model.AccountStatus(*req.AccountStatus) {
		case model.StatusActive, model.StatusInvited, model.StatusSuspended:
		default:
			writeErr(w, h.logger, h.production, apperror.Validation("account_status must be active, invited, or suspended"))
			return
		}
	}

	now := time.Now().UTC()
	suspended := false
	v, err := h.store.Transact(func(st *model.State) (any, error) {
		user := st.UserByID(id)
		if user == nil {
			return nil, apperror.NotFound("user not found")
		}
		if user.Email == h.adminEmail {
			return nil, apperror.Forbidden("the primary admin account cannot be modified")
		}

		detail := ""
		if req.Role != nil && model.Role(*req.Role) != user.Role {
			user.Role = model.Role(*req.Role)
			detail = "role=" + *req.Role
		}
		if req.AccountStatus != nil && model.AccountStatus(*req.AccountStatus) != user.AccountStatus {
			user.AccountStatus = model.AccountStatus(*req.AccountStatus)
			if detail != "" {
				detail += " "
			}
			detail += "status=" + *req.AccountStatus
			suspended = user.AccountStatus == model.StatusSuspended
		}
		if detail == "" {
			return user.Public(), nil
		}

		user.UpdatedDate = now
		st.AppendEvent(model.AuthEvent{
			Time: now, Type: model.EventAccountStatus,
			UserID: user.ID, Email: user.Email,
			Detail: detail + " by " + p.Email,
		})
		return user.Public(), nil
	})
	if err != nil {
		writeErr(w, h.logger, h.production, err)
		return
	}

	if suspended {
		if err := h.sessions.RevokeAllForUser(id, ""); err != nil {
			h.logger.Error("revoke sessions of suspended user", "user_id", id, "error", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": v})
}

// Audit returns the auth event ring, newest first.
func (h *UserHandler) Audit(w http.ResponseWriter, r *http.Request) {
	events := h.store.Read().Auth.Events
	out := make([]model.AuthEvent, len(events))
	for i, ev := range events {
		out[len(events)-1-i] = ev
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events": out,
		"total":  len(out),
	})
}
