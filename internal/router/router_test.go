package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benbeisheim/hotseat-chess/internal/config"
	"github.com/benbeisheim/hotseat-chess/internal/model"
	"github.com/benbeisheim/hotseat-chess/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

func newTestApp(t *testing.T) (*fiber.App, *service.GameService) {
	t.Helper()
	cfg := config.Default()
	cfg.Server.StaticDir = ""
	svc := service.NewGameService(service.NewGameManager(zerolog.Nop(), time.Second))
	return New(&cfg, svc, zerolog.Nop()), svc
}

func do(t *testing.T, app *fiber.App, method, path, player string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if player != "" {
		req.Header.Set("X-Player-ID", player)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	out := map[string]interface{}{}
	if len(body) > 0 && body[0] == '{' {
		if err := json.Unmarshal(body, &out); err != nil {
			t.Fatalf("decode %s: %v", body, err)
		}
	}
	return resp.StatusCode, out
}

func TestHealthz(t *testing.T) {
	app, _ := newTestApp(t)
	status, _ := do(t, app, http.MethodGet, "/healthz", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
}

func TestAPIRequiresPlayerID(t *testing.T) {
	app, _ := newTestApp(t)
	status, body := do(t, app, http.MethodPost, "/api/game/create", "")
	if status != http.StatusUnauthorized || body["error"] == nil {
		t.Fatalf("status = %d body = %v", status, body)
	}
}

func TestCreateJoinAndFetchGame(t *testing.T) {
	app, svc := newTestApp(t)

	status, body := do(t, app, http.MethodPost, "/api/game/create", "alice")
	if status != http.StatusOK {
		t.Fatalf("create status = %d", status)
	}
	gameID, _ := body["game_id"].(string)
	if gameID == "" {
		t.Fatalf("no game id in %v", body)
	}

	status, body = do(t, app, http.MethodPost, "/api/game/join/"+gameID, "alice")
	if status != http.StatusOK || body["color"] != "white" {
		t.Fatalf("join alice: %d %v", status, body)
	}
	status, body = do(t, app, http.MethodPost, "/api/game/join/"+gameID, "bob")
	if status != http.StatusOK || body["color"] != "black" {
		t.Fatalf("join bob: %d %v", status, body)
	}
	status, _ = do(t, app, http.MethodPost, "/api/game/join/"+gameID, "carol")
	if status != http.StatusConflict {
		t.Fatalf("join carol status = %d", status)
	}

	if _, err := svc.Activate(gameID, "bob", model.Square{Row: 6, Col: 4}); err != nil {
		t.Fatalf("activate: %v", err)
	}

	status, body = do(t, app, http.MethodGet, "/api/game/"+gameID, "alice")
	if status != http.StatusOK {
		t.Fatalf("state status = %d", status)
	}
	if body["turn"] != "white" || body["fen"] != "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR" {
		t.Fatalf("state = %v", body)
	}
	if moves, _ := body["validMoves"].([]interface{}); len(moves) != 2 {
		t.Fatalf("validMoves = %v", body["validMoves"])
	}
}

func TestMissingGame(t *testing.T) {
	app, _ := newTestApp(t)
	status, body := do(t, app, http.MethodGet, "/api/game/nope", "alice")
	if status != http.StatusNotFound || body["error"] != service.ErrGameNotFound.Error() {
		t.Fatalf("status = %d body = %v", status, body)
	}
}

func TestJoinMatchmakingTwice(t *testing.T) {
	app, _ := newTestApp(t)
	status, body := do(t, app, http.MethodPost, "/api/game/matchmaking/join", "alice")
	if status != http.StatusOK || body["status"] != "queued" {
		t.Fatalf("first join: %d %v", status, body)
	}
	status, _ = do(t, app, http.MethodPost, "/api/game/matchmaking/join", "alice")
	if status != http.StatusConflict {
		t.Fatalf("second join status = %d", status)
	}
}

func TestGameSocketRequiresUpgrade(t *testing.T) {
	app, _ := newTestApp(t)
	status, _ := do(t, app, http.MethodGet, "/ws/game/whatever", "alice")
	if status != http.StatusUpgradeRequired {
		t.Fatalf("status = %d", status)
	}
}

func TestSeatIDsSurviveLaterRequests(t *testing.T) {
	app, svc := newTestApp(t)

	_, body := do(t, app, http.MethodPost, "/api/game/create", "alice")
	gameID, _ := body["game_id"].(string)
	do(t, app, http.MethodPost, "/api/game/join/"+gameID, "alice")
	do(t, app, http.MethodPost, "/api/game/join/"+gameID, "bob")
	do(t, app, http.MethodGet, "/healthz", "zzzzzzzz")
	do(t, app, http.MethodPost, "/api/game/matchmaking/join", "mallory")

	st, err := svc.GetGameState(gameID)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if st.Players.White.ID != "alice" || st.Players.Black.ID != "bob" {
		t.Fatalf("seats = white %q black %q", st.Players.White.ID, st.Players.Black.ID)
	}
	if _, err := svc.Activate(gameID, "alice", model.Square{Row: 6, Col: 4}); err != nil {
		t.Fatalf("activate alice: %v", err)
	}
}
