// Package handler contains the HTTP handlers of the TechMind API.
//
// Handlers are glue: parse the request, call a service, write the response.
// They depend on small interfaces declared here rather than on concrete
// services, so tests substitute fakes without a database or a vendor API.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/techmind/internal/apperror"
	"github.com/sakif/techmind/internal/auth"
	"github.com/sakif/techmind/internal/model"
	"github.com/sakif/techmind/internal/prompt"
)

// Explainer produces explanations; implemented by service.ExplanationService.
type Explainer interface {
	Explain(ctx context.Context, term string, mode prompt.Mode) ([]model.Explanation, error)
}

// StreakTracker records and lists per-user term counts; implemented by
// service.StreakService.
type StreakTracker interface {
	RecordHit(ctx context.Context, userID, term string) (*model.Streak, error)
	ListStreaks(ctx context.Context, userID string) ([]model.Streak, error)
}

// ExplainHandler serves POST /api/explain and GET /api/streaks.
type ExplainHandler struct {
	explainer Explainer
	streaks   StreakTracker
	logger    *slog.Logger
}

func NewExplainHandler(explainer Explainer, streaks StreakTracker, logger *slog.Logger) *ExplainHandler {
	return &ExplainHandler{
		explainer: explainer,
		streaks:   streaks,
		logger:    logger,
	}
}

// ExplainRequest is the POST /api/explain body.
type ExplainRequest struct {
	Term string `json:"term"`
	Mode string `json:"mode"`
}

// HandleExplain returns a three-word explanation of a term.
//
// HTTP: POST /api/explain
// Auth: optional (OptionalAuth middleware)
//
// FLOW:
//  1. Decode {term, mode}; a missing mode means "normal", an unknown one is a 400
//  2. Ask the explanation service
//  3. Signed-in callers get the hit counted; a counting failure is logged
//     and does not fail the response
func (h *ExplainHandler) HandleExplain(w http.ResponseWriter, r *http.Request) {
	var req ExplainRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	mode, err := prompt.ParseMode(req.Mode)
	if err != nil {
		writeError(w, apperror.ValidationFailed("mode", "mode must be one of normal, fun, frustrated, kid"))
		return
	}

	result, err := h.explainer.Explain(r.Context(), req.Term, mode)
	if err != nil {
		writeError(w, err)
		return
	}

	if userID, ok := auth.UserIDFromContext(r.Context()); ok {
		if _, err := h.streaks.RecordHit(r.Context(), userID, req.Term); err != nil {
			h.logger.Error("recording streak failed",
				slog.String("userID", userID),
				slog.String("term", req.Term),
				slog.String("error", err.Error()),
			)
		}
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleListStreaks returns the caller's term streaks, most recent first.
//
// HTTP: GET /api/streaks
// Auth: required (RequireAuth middleware)
func (h *ExplainHandler) HandleListStreaks(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	streaks, err := h.streaks.ListStreaks(r.Context(), userID)
	if err != nil {
		h.logger.Error("listing streaks failed",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, streaks)
}
