package httpapi

import (
	"net/http"

	"github.com/duelhq/duel-tracker/internal/platform/ratelimit"
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/sessions", handler.ListSessions)
	mux.HandleFunc("GET /v1/sessions/{sessionID}", handler.GetSession)
	mux.HandleFunc("GET /v1/sessions/{sessionID}/duels", handler.ListDuels)
	mux.HandleFunc("GET /v1/decks", handler.ListDecks)
	mux.HandleFunc("GET /v1/tiers", handler.ListTiers)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier, submitLimiter, deleteLimiter *ratelimit.KeyedLimiter) {
	registerAuthorizedSessionRoutes(mux, handler, verifier)
	registerAuthorizedDuelRoutes(mux, handler, verifier, submitLimiter, deleteLimiter)
	registerAuthorizedReportRoutes(mux, handler, verifier)
	registerAuthorizedAccountRoutes(mux, handler, verifier)
}

func registerAuthorizedSessionRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/sessions", RequireAuth(verifier, http.HandlerFunc(handler.CreateSession)))
	mux.Handle("POST /v1/sessions/{sessionID}/archive", RequireAuth(verifier, http.HandlerFunc(handler.ArchiveSession)))
	mux.Handle("DELETE /v1/sessions/{sessionID}", RequireAuth(verifier, http.HandlerFunc(handler.DeleteSession)))
	mux.Handle("POST /v1/sessions/{sessionID}/join", RequireAuth(verifier, http.HandlerFunc(handler.JoinSession)))
	mux.Handle("POST /v1/sessions/{sessionID}/rebuild", RequireAuth(verifier, http.HandlerFunc(handler.RebuildSession)))
}

func registerAuthorizedDuelRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier, submitLimiter, deleteLimiter *ratelimit.KeyedLimiter) {
	mux.Handle("POST /v1/sessions/{sessionID}/duels", RequireAuth(verifier, RateLimit(submitLimiter, http.HandlerFunc(handler.SubmitDuel))))
	mux.Handle("DELETE /v1/duels/{duelID}", RequireAuth(verifier, RateLimit(deleteLimiter, http.HandlerFunc(handler.DeleteDuel))))
}

func registerAuthorizedReportRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/sessions/{sessionID}/reports/leaderboard", RequireAuth(verifier, http.HandlerFunc(handler.GetLeaderboard)))
	mux.Handle("GET /v1/sessions/{sessionID}/reports/matchups", RequireAuth(verifier, http.HandlerFunc(handler.GetMatchupMatrix)))
	mux.Handle("GET /v1/sessions/{sessionID}/reports/deck-winrates", RequireAuth(verifier, http.HandlerFunc(handler.GetDeckWinRates)))
	mux.Handle("GET /v1/sessions/{sessionID}/reports/overview", RequireAuth(verifier, http.HandlerFunc(handler.GetOverview)))
	mux.Handle("GET /v1/sessions/{sessionID}/reports/points-tracker", RequireAuth(verifier, http.HandlerFunc(handler.GetPointsTracker)))
	mux.Handle("GET /v1/sessions/{sessionID}/reports/coin-flip", RequireAuth(verifier, http.HandlerFunc(handler.GetCoinFlipReport)))
	mux.Handle("GET /v1/sessions/{sessionID}/reports/dates", RequireAuth(verifier, http.HandlerFunc(handler.GetDuelDates)))
	mux.Handle("GET /v1/sessions/{sessionID}/reports/summary", RequireAuth(verifier, http.HandlerFunc(handler.GetSessionSummary)))
}

func registerAuthorizedAccountRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/decks", RequireAuth(verifier, http.HandlerFunc(handler.CreateDeck)))
	mux.Handle("GET /v1/me/preferences", RequireAuth(verifier, http.HandlerFunc(handler.GetMyPreference)))
	mux.Handle("PUT /v1/me/preferences", RequireAuth(verifier, http.HandlerFunc(handler.UpdateMyPreference)))
}
