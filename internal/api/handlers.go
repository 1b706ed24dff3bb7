// Package api exposes HTTP handlers for the activity signup service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"example.com/activitysignup/internal/domain"
)

const activityNameParam = "activityName"

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
	logger  *zap.Logger
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes wires endpoints to r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", healthz)
	r.Route("/activities", func(r chi.Router) {
		r.Get("/", h.listActivities)
		r.Post("/{"+activityNameParam+"}/signup", h.signup)
		r.Delete("/{"+activityNameParam+"}/participants", h.removeParticipant)
	})
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := h.service.ListActivities(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	resp := make(ActivitiesResponse, len(activities))
	for name, activity := range activities {
		resp[name] = toActivityView(activity)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	name, email, ok := enrollmentParams(w, r)
	if !ok {
		return
	}

	msg, err := h.service.Signup(r.Context(), name, email)
	if err != nil {
		h.domainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: msg})
}

func (h *Handler) removeParticipant(w http.ResponseWriter, r *http.Request) {
	name, email, ok := enrollmentParams(w, r)
	if !ok {
		return
	}

	msg, err := h.service.Remove(r.Context(), name, email)
	if err != nil {
		h.domainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: msg})
}

// enrollmentParams extracts the decoded activity name and the email query parameter.
// It writes the error response itself and reports false when either is unusable.
func enrollmentParams(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	name, err := activityName(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed activity name")
		return "", "", false
	}

	query := r.URL.Query()
	if !query.Has("email") {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", "missing email parameter")
		return "", "", false
	}
	return name, query.Get("email"), true
}

// activityName returns the percent-decoded {activityName} segment. chi matches against
// RawPath when the request carried escapes that Path cannot represent, in which case
// the captured segment is still encoded.
func activityName(r *http.Request) (string, error) {
	raw := chi.URLParam(r, activityNameParam)
	if r.URL.RawPath == "" {
		return raw, nil
	}
	return url.PathUnescape(raw)
}

func (h *Handler) domainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusBadRequest, "conflict", err.Error())
	default:
		h.serverError(w, r, err)
	}
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "server_error", "internal server error")
}

// ActivityView is the wire representation of an activity.
type ActivityView struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// ActivitiesResponse maps activity name to its details for GET /activities.
type ActivitiesResponse map[string]ActivityView

// MessageResponse confirms a signup or removal.
type MessageResponse struct {
	Message string `json:"message"`
}

func toActivityView(a domain.Activity) ActivityView {
	participants := a.Participants
	if participants == nil {
		participants = []string{}
	}
	return ActivityView{
		Description:     a.Description,
		Schedule:        a.Schedule,
		MaxParticipants: a.MaxParticipants,
		Participants:    participants,
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, map[string]string{
		"type":   code,
		"detail": detail,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
