package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/duelhq/duel-tracker/internal/usecase"
)

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateSession")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createSessionRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	startsAt, err := parseOptionalTime(ctx, req.StartsAt)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid starts_at: %v", usecase.ErrInvalidInput, err))
		return
	}
	endsAt, err := parseOptionalTime(ctx, req.EndsAt)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid ends_at: %v", usecase.ErrInvalidInput, err))
		return
	}

	sess, err := h.sessionService.Create(ctx, principal, usecase.CreateSessionInput{
		Name:           req.Name,
		GameMode:       req.GameMode,
		StartsAt:       startsAt,
		EndsAt:         endsAt,
		StartingRating: req.StartingRating,
		PointValue:     req.PointValue,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create session failed", "user_id", principal.UserID, "name", req.Name, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, sessionToDTO(ctx, sess))
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSessions")
	defer span.End()

	status := strings.TrimSpace(r.URL.Query().Get("status"))
	sessions, err := h.sessionService.List(ctx, status)
	if err != nil {
		h.logger.WarnContext(ctx, "list sessions failed", "status", status, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]sessionDTO, 0, len(sessions))
	for _, sess := range sessions {
		items = append(items, sessionToDTO(ctx, sess))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSession")
	defer span.End()

	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	sess, err := h.sessionService.Get(ctx, sessionID)
	if err != nil {
		h.logger.WarnContext(ctx, "get session failed", "session_id", sessionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, sessionToDTO(ctx, sess))
}

func (h *Handler) ArchiveSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ArchiveSession")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	sessionID := strings.TrimSpace(r.PathValue("sessionID"))

	sess, err := h.sessionService.Archive(ctx, principal, sessionID)
	if err != nil {
		h.logger.WarnContext(ctx, "archive session failed", "user_id", principal.UserID, "session_id", sessionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, sessionToDTO(ctx, sess))
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteSession")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	sessionID := strings.TrimSpace(r.PathValue("sessionID"))

	if err := h.sessionService.Delete(ctx, principal, sessionID); err != nil {
		h.logger.WarnContext(ctx, "delete session failed", "user_id", principal.UserID, "session_id", sessionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) JoinSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinSession")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	sessionID := strings.TrimSpace(r.PathValue("sessionID"))

	// The body is optional: ladder players can seed the tier they already
	// hold instead of starting at the floor.
	var req joinSessionRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}

	out, err := h.sessionService.Join(ctx, principal, sessionID, usecase.JoinSessionInput{
		InitialTierID:  strings.TrimSpace(req.InitialTierID),
		InitialNetWins: req.InitialNetWins,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "join session failed", "user_id", principal.UserID, "session_id", sessionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, joinSessionDTO{
		Stats:    statsToDTO(ctx, out.Stats),
		Rejoined: out.Rejoined,
	})
}

func parseOptionalTime(ctx context.Context, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}
