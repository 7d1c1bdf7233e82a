package handler

import (
	"log/slog"
	"net/http"
	"regexp"
	"slices"
	"time"

	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/apperror"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/auth"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/authz"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/credential"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/model"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/store"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/websocket"
)

var collectionName = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

// RecordHandler serves the generic record collections. Visibility and write
// rights come from the collection's access class; a record the caller may
// not see answers 404 so its existence is not leaked.
type RecordHandler struct {
	store      *store.Store
	hub        *websocket.Hub
	production bool
	logger     *slog.Logger
}

func NewRecordHandler(st *store.Store, hub *websocket.Hub, production bool, logger *slog.Logger) *RecordHandler {
	return &RecordHandler{
		store:      st,
		hub:        hub,
		production: production,
		logger:     logger.With("component", "records"),
	}
}

func (h *RecordHandler) collection(r *http.Request) (string, error) {
	name := r.PathValue("collection")
	if !collectionName.MatchString(name) {
		return "", apperror.Validation("invalid collection name")
	}
	return name, nil
}

func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	collection, err := h.collection(r)
	if err != nil {
		writeErr(w, h.logger, h.production, err)
		return
	}

	recs := h.store.Read().Records[collection]
	visible := authz.FilterRecords(p, authz.ClassOf(collection), recs)
	writeJSON(w, http.StatusOK, map[string]any{
		"records": visible,
		"total":   len(visible),
	})
}

func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	collection, err := h.collection(r)
	if err != nil {
		writeErr(w, h.logger, h.production, err)
		return
	}
	if !authz.CanCreate(p, authz.ClassOf(collection)) {
		writeErr(w, h.logger, h.production, apperror.Forbidden("admin role required for this collection"))
		return
	}

	var fields map[string]any
	if err := decodeJSON(r, &fields); err != nil {
		writeErr(w, h.logger, h.production, err)
		return
	}

	now := time.Now().UTC()
	rec := model.Record{
		ID:             credential.NewID(),
		CreatedDate:    now,
		UpdatedDate:    now,
		CreatedBy:      p.UserID,
		CreatedByEmail: p.Email,
		Fields:         fields,
	}
	if _, err := h.store.Transact(func(st *model.State) (any, error) {
		st.Records[collection] = append(st.Records[collection], rec)
		return nil, nil
	}); err != nil {
		writeErr(w, h.logger, h.production, err)
		return
	}

	h.hub.Broadcast(websocket.RecordMessage(collection, "created", rec.ID))
	writeJSON(w, http.StatusCreated, map[string]any{"record": rec})
}

func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	collection, err := h.collection(r)
	if err != nil {
		writeErr(w, h.logger, h.production, err)
		return
	}

	rec := h.store.Read().RecordByID(collection, r.PathValue("id"))
	if rec == nil || !authz.CanRead(p, authz.ClassOf(collection), *rec) {
		writeErr(w, h.logger, h.production, apperror.NotFound("record not found"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"record": *rec})
}

func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	collection, err := h.collection(r)
	if err != nil {
		writeErr(w, h.logger, h.production, err)
		return
	}

	var fields map[string]any
	if err := decodeJSON(r, &fields); err != nil {
		writeErr(w, h.logger, h.production, err)
		return
	}

	id := r.PathValue("id")
	class := authz.ClassOf(collection)
	now := time.Now().UTC()
	v, err := h.store.Transact(func(st *model.State) (any, error) {
		rec := st.RecordByID(collection, id)
		if rec == nil || !authz.CanRead(p, class, *rec) {
			return nil, apperror.NotFound("record not found")
		}
		if !authz.CanMutate(p, class, *rec) {
			return nil, apperror.Forbidden("you do not own this record")
		}
		rec.Fields = fields
		rec.UpdatedDate = now
		return *rec, nil
	})
	if err != nil {
		writeErr(w, h.logger, h.production, err)
		return
	}

	h.hub.Broadcast(websocket.RecordMessage(collection, "updated", id))
	writeJSON(w, http.StatusOK, map[string]any{"record": v})
}

func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	collection, err := h.collection(r)
	if err != nil {
		writeErr(w, h.logger, h.production, err)
		return
	}

	id := r.PathValue("id")
	class := authz.ClassOf(collection)
	if _, err := h.store.Transact(func(st *model.State) (any, error) {
		recs := st.Records[collection]
		i := slices.IndexFunc(recs, func(r model.Record) bool { return r.ID == id })
		if i < 0 || !authz.CanRead(p, class, recs[i]) {
			return nil, apperror.NotFound("record not found")
		}
		if !authz.CanMutate(p, class, recs[i]) {
			return nil, apperror.Forbidden("you do not own this record")
		}
		st.Records[collection] = slices.Delete(recs, i, i+1)
		return nil, nil
	}); err != nil {
		writeErr(w, h.logger, h.production, err)
		return
	}

	h.hub.Broadcast(websocket.RecordMessage(collection, "deleted", id))
	writeJSON(w, http.StatusOK, map[string]string{"message": "record deleted"})
}
