package doubt

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arjunvk/mentorloop/internal/identity"
	"github.com/arjunvk/mentorloop/internal/model/resource"
	doubtService "github.com/arjunvk/mentorloop/internal/service/doubt"
	sessionService "github.com/arjunvk/mentorloop/internal/service/session"
	"github.com/arjunvk/mentorloop/pkg/utils"
)

// Handler exposes the doubt-resolution cycle over HTTP.
type Handler struct {
	svc      *doubtService.Service
	sessions *sessionService.Manager
}

// New creates the doubt handler.
func New(svc *doubtService.Service, sessions *sessionService.Manager) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

// RegisterRoutes registers the doubt routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/doubts", h.handleAsk)
	r.Get("/doubts/{sessionID}", h.handleTranscript)
}

type askRequest struct {
	Message          string `json:"message"`
	SessionID        string `json:"sessionId"`
	SkipContextCheck bool   `json:"skipContextCheck"`
}

type matchedResource struct {
	Title       string `json:"title"`
	SubjectUnit string `json:"subjectUnit"`
	Subject     string `json:"subject"`
	URL         string `json:"url"`
}

type askResponse struct {
	Answer          string           `json:"answer"`
	SessionID       string           `json:"sessionId"`
	MatchedResource *matchedResource `json:"matchedResource,omitempty"`
	IsFirstResponse bool             `json:"isFirstResponse"`
	IsTopicSwitch   bool             `json:"isTopicSwitch"`
}

func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		utils.RespondErrorKind(w, http.StatusUnauthorized, "unauthenticated", "a valid credential is required")
		return
	}

	var payload askRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondErrorKind(w, http.StatusBadRequest, "invalid_input", "invalid request body")
		return
	}

	result, err := h.svc.Ask(r.Context(), doubtService.AskInput{
		UserID:         userID,
		SessionID:      payload.SessionID,
		Message:        payload.Message,
		SkipTopicCheck: payload.SkipContextCheck,
	})
	if err != nil {
		h.respondAskError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, askResponse{
		Answer:          result.Answer,
		SessionID:       result.SessionID,
		MatchedResource: toMatched(result.Resource),
		IsFirstResponse: result.FirstResponse,
		IsTopicSwitch:   result.TopicSwitch,
	})
}

func (h *Handler) respondAskError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, doubtService.ErrInvalidInput):
		utils.RespondErrorKind(w, http.StatusBadRequest, "invalid_input", "message must not be empty")
	case errors.Is(err, doubtService.ErrQuotaExceeded):
		utils.RespondErrorKind(w, http.StatusTooManyRequests, "quota_exceeded",
			fmt.Sprintf("daily limit of %d doubts reached, 0 remaining today", h.svc.QuotaLimit()))
	case errors.Is(err, doubtService.ErrSessionNotFound):
		utils.RespondErrorKind(w, http.StatusNotFound, "session_not_found", "session not found")
	default:
		utils.RespondErrorKind(w, http.StatusServiceUnavailable, "transient", "temporary failure, please retry")
	}
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		utils.RespondErrorKind(w, http.StatusUnauthorized, "unauthenticated", "a valid credential is required")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	session, turns, err := h.sessions.Transcript(r.Context(), userID, sessionID)
	if err != nil {
		if errors.Is(err, sessionService.ErrSessionNotFound) {
			utils.RespondErrorKind(w, http.StatusNotFound, "session_not_found", "session not found")
			return
		}
		utils.RespondErrorKind(w, http.StatusServiceUnavailable, "transient", "temporary failure, please retry")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"session": session,
		"turns":   turns,
	})
}

func toMatched(r *resource.Resource) *matchedResource {
	if r == nil {
		return nil
	}
	return &matchedResource{
		Title:       r.Title,
		SubjectUnit: r.UnitTitle,
		Subject:     r.Subject,
		URL:         r.URL,
	}
}
