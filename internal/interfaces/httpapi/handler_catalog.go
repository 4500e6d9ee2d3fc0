package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/duelhq/duel-tracker/internal/usecase"
)

func (h *Handler) ListDecks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListDecks")
	defer span.End()

	decks, err := h.catalogService.ListDecks(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list decks failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]deckDTO, 0, len(decks))
	for _, d := range decks {
		items = append(items, deckToDTO(ctx, d))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateDeck")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createDeckRequest
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

	created, err := h.catalogService.CreateDeck(ctx, principal, usecase.CreateDeckInput{
		Name:     req.Name,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create deck failed", "user_id", principal.UserID, "name", req.Name, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, deckToDTO(ctx, created))
}

func (h *Handler) ListTiers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTiers")
	defer span.End()

	tiers, err := h.catalogService.ListTiers(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list tiers failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]tierDTO, 0, len(tiers))
	for _, t := range tiers {
		items = append(items, tierToDTO(ctx, t))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetMyPreference(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyPreference")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	pref, err := h.preferenceService.Get(ctx, principal)
	if err != nil {
		h.logger.WarnContext(ctx, "get preference failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, preferenceToDTO(ctx, pref))
}

func (h *Handler) UpdateMyPreference(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateMyPreference")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req updatePreferenceRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}

	pref, err := h.preferenceService.Update(ctx, principal, req.HideFromLeaderboard)
	if err != nil {
		h.logger.WarnContext(ctx, "update preference failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, preferenceToDTO(ctx, pref))
}
