package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/duelhq/duel-tracker/internal/domain/user"
	"github.com/duelhq/duel-tracker/internal/infrastructure/repository/memory"
	"github.com/duelhq/duel-tracker/internal/platform/id"
	"github.com/duelhq/duel-tracker/internal/platform/logging"
	"github.com/duelhq/duel-tracker/internal/platform/ratelimit"
	"github.com/duelhq/duel-tracker/internal/usecase"
)

func newTestRouter(t *testing.T, principal user.Principal) http.Handler {
	t.Helper()

	duelRepo := memory.NewDuelRepository()
	statsRepo := memory.NewPlayerStatsRepository()
	sessionRepo := memory.NewSessionRepository(memory.SeedSessions(time.Now().UTC()), duelRepo, statsRepo)
	tierRepo := memory.NewTierRepository(memory.SeedTiers())
	deckRepo := memory.NewDeckRepository(memory.SeedDecks())
	prefRepo := memory.NewPreferenceRepository()
	ledger := memory.NewLedger(duelRepo, statsRepo)
	idGen := id.NewRandomGenerator()
	logger := logging.NewNop()

	handler := NewHandler(
		usecase.NewSessionService(sessionRepo, statsRepo, tierRepo, idGen),
		usecase.NewDuelService(sessionRepo, duelRepo, ledger, statsRepo, tierRepo, deckRepo, idGen),
		usecase.NewCatalogService(deckRepo, tierRepo, idGen),
		usecase.NewPreferenceService(prefRepo),
		usecase.NewReportService(sessionRepo, duelRepo, statsRepo, tierRepo, deckRepo, prefRepo),
		usecase.NewRebuildService(sessionRepo, duelRepo, statsRepo, tierRepo, 2, logger),
		logger,
	)

	verifier := stubVerifier{principal: principal}
	limiter := ratelimit.NewKeyedLimiter(0, 1)

	return NewRouter(handler, verifier, logger, nil, limiter, limiter)
}

func decodeEnvelope(t *testing.T, body []byte) map[string]any {
	t.Helper()

	var envelope map[string]any
	if err := sonic.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	return envelope
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(t, user.Principal{UserID: "user-1", Username: "yugi"})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestRouter_SubmitDuel(t *testing.T) {
	router := newTestRouter(t, user.Principal{UserID: "user-1", Username: "yugi"})

	payload := `{"player_deck_id":"deck-blue-eyes","opponent_deck_id":"deck-branded","result":"win","coin_flip_won":true,"went_first":true}`
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+memory.SessionIDLadderOpen+"/duels", strings.NewReader(payload))
	req.Header.Set("Authorization", "Bearer token-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	envelope := decodeEnvelope(t, rec.Body.Bytes())
	data, ok := envelope["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %v", envelope)
	}
	recorded, ok := data["duel"].(map[string]any)
	if !ok {
		t.Fatalf("expected duel object, got %v", data)
	}
	if got, _ := recorded["pointsChange"].(float64); got != 1 {
		t.Fatalf("expected ladder win to score +1, got %v", recorded["pointsChange"])
	}
	stats, ok := data["stats"].(map[string]any)
	if !ok {
		t.Fatalf("expected stats object, got %v", data)
	}
	if got, _ := stats["totalGames"].(float64); got != 1 {
		t.Fatalf("expected totalGames=1, got %v", stats["totalGames"])
	}
}

func TestRouter_SubmitDuel_RejectsUnknownDeck(t *testing.T) {
	router := newTestRouter(t, user.Principal{UserID: "user-1", Username: "yugi"})

	payload := `{"player_deck_id":"deck-unknown","opponent_deck_id":"deck-branded","result":"win"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+memory.SessionIDLadderOpen+"/duels", strings.NewReader(payload))
	req.Header.Set("Authorization", "Bearer token-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_SubmitDuel_RequiresAuth(t *testing.T) {
	router := newTestRouter(t, user.Principal{UserID: "user-1"})

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+memory.SessionIDLadderOpen+"/duels", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestRouter_ListSessionsIsPublic(t *testing.T) {
	router := newTestRouter(t, user.Principal{UserID: "user-1"})

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	envelope := decodeEnvelope(t, rec.Body.Bytes())
	items, ok := envelope["data"].([]any)
	if !ok || len(items) == 0 {
		t.Fatalf("expected seeded sessions, got %v", envelope["data"])
	}
}

func TestRouter_GetSession_NotFound(t *testing.T) {
	router := newTestRouter(t, user.Principal{UserID: "user-1"})

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestRouter_CreateSession_ForbiddenForNonAdmin(t *testing.T) {
	router := newTestRouter(t, user.Principal{UserID: "user-1", Username: "yugi"})

	payload := `{"name":"Weekend Cup","game_mode":"duelist_cup"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader(payload))
	req.Header.Set("Authorization", "Bearer token-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_CreateSession_AdminSucceeds(t *testing.T) {
	router := newTestRouter(t, user.Principal{UserID: "admin-1", Username: "pegasus", IsAdmin: true})

	payload := `{"name":"Weekend Cup","game_mode":"duelist_cup"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader(payload))
	req.Header.Set("Authorization", "Bearer token-admin")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec.Body.Bytes())
	data, _ := envelope["data"].(map[string]any)
	if got, _ := data["pointValue"].(float64); got != 1000 {
		t.Fatalf("expected duelist cup default point value 1000, got %v", data["pointValue"])
	}
}

func TestRouter_PreferenceRoundTrip(t *testing.T) {
	router := newTestRouter(t, user.Principal{UserID: "user-1", Username: "yugi"})

	putReq := httptest.NewRequest(http.MethodPut, "/v1/me/preferences", strings.NewReader(`{"hide_from_leaderboard":true}`))
	putReq.Header.Set("Authorization", "Bearer token-1")
	putRec := httptest.NewRecorder()
	router.ServeHTTP(putRec, putReq)

	if putRec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", putRec.Code, putRec.Body.String())
	}

	getReq := httptest.NewRequest(http.MethodGet, "/v1/me/preferences", nil)
	getReq.Header.Set("Authorization", "Bearer token-1")
	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, getReq)

	envelope := decodeEnvelope(t, getRec.Body.Bytes())
	data, _ := envelope["data"].(map[string]any)
	if got, _ := data["hideFromLeaderboard"].(bool); !got {
		t.Fatalf("expected hideFromLeaderboard=true, got %v", data)
	}
}

func TestRouter_LeaderboardRequiresAuth(t *testing.T) {
	router := newTestRouter(t, user.Principal{UserID: "user-1"})

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/"+memory.SessionIDLadderOpen+"/reports/leaderboard", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestRouter_ReportsAfterDuels(t *testing.T) {
	router := newTestRouter(t, user.Principal{UserID: "user-1", Username: "yugi"})

	submit := func(result string) {
		payload := `{"player_deck_id":"deck-blue-eyes","opponent_deck_id":"deck-branded","result":"` + result + `","coin_flip_won":true,"went_first":true}`
		req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+memory.SessionIDLadderOpen+"/duels", strings.NewReader(payload))
		req.Header.Set("Authorization", "Bearer token-1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
		}
	}
	submit("win")
	submit("win")
	submit("loss")

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/"+memory.SessionIDLadderOpen+"/reports/overview", nil)
	req.Header.Set("Authorization", "Bearer token-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec.Body.Bytes())
	data, _ := envelope["data"].(map[string]any)
	if got, _ := data["totalGames"].(float64); got != 3 {
		t.Fatalf("expected totalGames=3, got %v", data["totalGames"])
	}
	if got, _ := data["totalWins"].(float64); got != 2 {
		t.Fatalf("expected totalWins=2, got %v", data["totalWins"])
	}

	datesReq := httptest.NewRequest(http.MethodGet, "/v1/sessions/"+memory.SessionIDLadderOpen+"/reports/dates", nil)
	datesReq.Header.Set("Authorization", "Bearer token-1")
	datesRec := httptest.NewRecorder()
	router.ServeHTTP(datesRec, datesReq)

	datesEnvelope := decodeEnvelope(t, datesRec.Body.Bytes())
	dates, ok := datesEnvelope["data"].([]any)
	if !ok || len(dates) != 1 {
		t.Fatalf("expected a single duel date, got %v", datesEnvelope["data"])
	}
}

func TestRouter_JoinSession(t *testing.T) {
	router := newTestRouter(t, user.Principal{UserID: "user-1", Username: "yugi"})

	join := func(body string) map[string]any {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+memory.SessionIDLadderOpen+"/join", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer token-1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
		envelope := decodeEnvelope(t, rec.Body.Bytes())
		data, ok := envelope["data"].(map[string]any)
		if !ok {
			t.Fatalf("expected data object, got %v", envelope)
		}
		return data
	}

	first := join("")
	if got, _ := first["rejoined"].(bool); got {
		t.Fatalf("first join must not report a rejoin: %v", first)
	}
	stats, _ := first["stats"].(map[string]any)
	if got, _ := stats["tierId"].(string); got != "rookie" {
		t.Fatalf("expected floor tier seed, got %v", stats)
	}

	second := join(`{"initial_tier_id":"silver","initial_net_wins":3}`)
	if got, _ := second["rejoined"].(bool); !got {
		t.Fatalf("expected rejoined flag on second join: %v", second)
	}
	stats, _ = second["stats"].(map[string]any)
	if got, _ := stats["tierId"].(string); got != "rookie" {
		t.Fatalf("rejoin must keep the existing aggregate, got %v", stats)
	}
}

func TestRouter_JoinSession_SeedsTier(t *testing.T) {
	router := newTestRouter(t, user.Principal{UserID: "user-2", Username: "kaiba"})

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+memory.SessionIDLadderOpen+"/join", strings.NewReader(`{"initial_tier_id":"gold","initial_net_wins":2}`))
	req.Header.Set("Authorization", "Bearer token-2")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec.Body.Bytes())
	data, _ := envelope["data"].(map[string]any)
	stats, _ := data["stats"].(map[string]any)
	if got, _ := stats["tierId"].(string); got != "gold" {
		t.Fatalf("expected seeded gold tier, got %v", stats)
	}
	if got, _ := stats["netWins"].(float64); got != 2 {
		t.Fatalf("expected seeded net wins 2, got %v", stats["netWins"])
	}

	badReq := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+memory.SessionIDLadderOpen+"/join", strings.NewReader(`{"initial_tier_id":"mythic"}`))
	badReq.Header.Set("Authorization", "Bearer token-2")
	badRec := httptest.NewRecorder()
	router.ServeHTTP(badRec, badReq)
	if badRec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown tier, got %d", badRec.Code)
	}
}

func TestRouter_ReportsAcceptDateFilter(t *testing.T) {
	router := newTestRouter(t, user.Principal{UserID: "user-1", Username: "yugi"})

	payload := `{"player_deck_id":"deck-blue-eyes","opponent_deck_id":"deck-branded","result":"win"}`
	submitReq := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+memory.SessionIDLadderOpen+"/duels", strings.NewReader(payload))
	submitReq.Header.Set("Authorization", "Bearer token-1")
	submitRec := httptest.NewRecorder()
	router.ServeHTTP(submitRec, submitReq)
	if submitRec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", submitRec.Code, submitRec.Body.String())
	}

	overview := func(query string) (int, map[string]any) {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/v1/sessions/"+memory.SessionIDLadderOpen+"/reports/overview"+query, nil)
		req.Header.Set("Authorization", "Bearer token-1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		envelope := decodeEnvelope(t, rec.Body.Bytes())
		data, _ := envelope["data"].(map[string]any)
		return rec.Code, data
	}

	today := time.Now().UTC().Format("2006-01-02")
	code, data := overview("?date=" + today)
	if code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", code)
	}
	if got, _ := data["totalGames"].(float64); got != 1 {
		t.Fatalf("expected one game today, got %v", data["totalGames"])
	}

	code, data = overview("?date=1999-01-01")
	if code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", code)
	}
	if got, _ := data["totalGames"].(float64); got != 0 {
		t.Fatalf("expected no games on the empty day, got %v", data["totalGames"])
	}

	code, _ = overview("?date=not-a-day")
	if code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for malformed date, got %d", code)
	}
}
