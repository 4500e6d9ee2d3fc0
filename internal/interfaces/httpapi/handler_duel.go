package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/duelhq/duel-tracker/internal/domain/duel"
	"github.com/duelhq/duel-tracker/internal/usecase"
)

func (h *Handler) SubmitDuel(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitDuel")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	sessionID := strings.TrimSpace(r.PathValue("sessionID"))

	var req submitDuelRequest
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

	out, err := h.duelService.Submit(ctx, principal, usecase.SubmitDuelInput{
		SessionID:      sessionID,
		PlayerDeckID:   req.PlayerDeckID,
		OpponentDeckID: req.OpponentDeckID,
		Result:         req.Result,
		CoinFlipWon:    req.CoinFlipWon,
		WentFirst:      req.WentFirst,
		PointsInput:    req.PointsInput,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit duel failed", "user_id", principal.UserID, "session_id", sessionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, submitDuelDTO{
		Duel:        duelToDTO(ctx, out.Duel),
		Stats:       statsToDTO(ctx, out.Stats),
		Progression: progressionToDTO(ctx, out.Progression),
	})
}

func (h *Handler) ListDuels(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListDuels")
	defer span.End()

	filter := duel.Filter{
		SessionID: strings.TrimSpace(r.PathValue("sessionID")),
		UserID:    strings.TrimSpace(r.URL.Query().Get("user_id")),
	}
	day, err := dateFilter(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	filter.Day = day

	duels, err := h.duelService.List(ctx, filter)
	if err != nil {
		h.logger.WarnContext(ctx, "list duels failed", "session_id", filter.SessionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]duelDTO, 0, len(duels))
	for _, d := range duels {
		items = append(items, duelToDTO(ctx, d))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) DeleteDuel(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteDuel")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	duelID := strings.TrimSpace(r.PathValue("duelID"))

	stats, err := h.duelService.Delete(ctx, principal, duelID)
	if err != nil {
		h.logger.WarnContext(ctx, "delete duel failed", "user_id", principal.UserID, "duel_id", duelID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, statsToDTO(ctx, stats))
}

func (h *Handler) RebuildSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RebuildSession")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	sessionID := strings.TrimSpace(r.PathValue("sessionID"))

	result, err := h.rebuildService.Rebuild(ctx, principal, sessionID)
	if err != nil {
		h.logger.WarnContext(ctx, "rebuild session failed", "user_id", principal.UserID, "session_id", sessionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rebuildResultDTO{
		SessionID: result.SessionID,
		Players:   result.Players,
		Rebuilt:   result.Rebuilt,
	})
}
