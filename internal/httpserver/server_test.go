package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/wordmaster/internal/config"
	"github.com/robalobadob/wordmaster/internal/daily"
	"github.com/robalobadob/wordmaster/internal/game"
	"github.com/robalobadob/wordmaster/internal/store"
	"github.com/robalobadob/wordmaster/internal/words"
)

func testConfig() config.Config {
	return config.Config{
		ClientOrigin:     "http://localhost:5173",
		MaxGuesses:       6,
		JWTSecret:        "test_secret",
		PlayerTokenDays:  1,
		DailySalt:        "salt",
		AllowFixedAnswer: true,
	}
}

func newTestServer(t *testing.T, mutate func(*config.Config)) (*Server, *httptest.Server) {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	dict, err := words.New([]string{"crane", "slate", "audio", "hello", "llama"}, []string{"raise"})
	if err != nil {
		t.Fatal(err)
	}
	s := New(cfg, dict, store.NewMemoryStore())
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

// client remembers the player token handed out by the server.
type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) do(method, path string, body any, out any) *http.Response {
	c.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			c.t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	if err != nil {
		c.t.Fatal(err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if tok := resp.Header.Get(playerTokenHeader); tok != "" {
		c.token = tok
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp
}

func (c *client) newGame(body any) boardRes {
	c.t.Helper()
	var res boardRes
	if resp := c.do(http.MethodPost, "/game/new", body, &res); resp.StatusCode != http.StatusOK {
		c.t.Fatalf("POST /game/new status = %d", resp.StatusCode)
	}
	return res
}

type errRes struct {
	Error string `json:"error"`
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t, nil)
	c := &client{t: t, base: ts.URL}
	var out map[string]bool
	resp := c.do(http.MethodGet, "/health", nil, &out)
	if resp.StatusCode != http.StatusOK || !out["ok"] {
		t.Fatalf("health = %d %v", resp.StatusCode, out)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestIndex_ListsEveryRoute(t *testing.T) {
	s, ts := newTestServer(t, nil)
	c := &client{t: t, base: ts.URL}
	var out struct {
		Endpoints []string `json:"endpoints"`
	}
	if resp := c.do(http.MethodGet, "/", nil, &out); resp.StatusCode != http.StatusOK {
		t.Fatalf("index = %d", resp.StatusCode)
	}
	listed := make(map[string]bool, len(out.Endpoints))
	for _, e := range out.Endpoints {
		listed[e] = true
	}
	err := chi.Walk(s.r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if route == "/" {
			return nil
		}
		if !listed[method+" "+route] && !listed[route] {
			t.Errorf("index does not list %s %s", method, route)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestNotFound_JSON(t *testing.T) {
	_, ts := newTestServer(t, nil)
	c := &client{t: t, base: ts.URL}
	var out errRes
	if resp := c.do(http.MethodGet, "/nope", nil, &out); resp.StatusCode != http.StatusNotFound || out.Error != "not_found" {
		t.Fatalf("GET /nope = %d %+v", resp.StatusCode, out)
	}
}

func TestNewGame_IssuesPlayerToken(t *testing.T) {
	_, ts := newTestServer(t, nil)
	c := &client{t: t, base: ts.URL}
	res := c.newGame(nil)
	if c.token == "" {
		t.Fatal("no player token issued")
	}
	if res.GameID == "" || res.Board.State != game.StatePlaying {
		t.Fatalf("new game = %+v", res)
	}
	if len(res.Board.Guesses) != 6 || len(res.Board.Guesses[0]) != game.NumberLetters {
		t.Errorf("board shape = %dx%d", len(res.Board.Guesses), len(res.Board.Guesses[0]))
	}

	// The same token keeps the same identity: no new token is minted.
	tok := c.token
	resp := c.do(http.MethodGet, "/game/"+res.GameID, nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET game = %d", resp.StatusCode)
	}
	if h := resp.Header.Get(playerTokenHeader); h != "" || c.token != tok {
		t.Error("server minted a new token for a valid one")
	}
}

func TestInvalidTokenGetsNewIdentity(t *testing.T) {
	_, ts := newTestServer(t, nil)
	c := &client{t: t, base: ts.URL}
	res := c.newGame(nil)

	forged := &client{t: t, base: ts.URL, token: c.token + "x"}
	resp := forged.do(http.MethodGet, "/game/"+res.GameID, nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("forged token status = %d, want 404", resp.StatusCode)
	}
	if resp.Header.Get(playerTokenHeader) == "" {
		t.Error("forged token should be replaced with a fresh one")
	}
}

func TestFixedAnswer(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		_, ts := newTestServer(t, func(c *config.Config) { c.AllowFixedAnswer = false })
		c := &client{t: t, base: ts.URL}
		var out errRes
		if resp := c.do(http.MethodPost, "/game/new", newGameReq{Answer: "crane"}, &out); resp.StatusCode != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", resp.StatusCode)
		}
	})
	t.Run("unknown word", func(t *testing.T) {
		_, ts := newTestServer(t, nil)
		c := &client{t: t, base: ts.URL}
		var out errRes
		if resp := c.do(http.MethodPost, "/game/new", newGameReq{Answer: "zzzzz"}, &out); resp.StatusCode != http.StatusBadRequest || out.Error != "not_in_word_list" {
			t.Fatalf("status = %d %+v", resp.StatusCode, out)
		}
	})
}

func TestGuess_WinFlow(t *testing.T) {
	_, ts := newTestServer(t, nil)
	c := &client{t: t, base: ts.URL}
	g := c.newGame(newGameReq{Answer: "crane"})

	var res guessRes
	if resp := c.do(http.MethodPost, "/game/guess", guessReq{GameID: g.GameID, Guess: "slate"}, &res); resp.StatusCode != http.StatusOK {
		t.Fatalf("guess status = %d", resp.StatusCode)
	}
	want := []game.LetterStatus{game.NotInWord, game.NotInWord, game.CorrectPosition, game.NotInWord, game.CorrectPosition}
	for i := range want {
		if res.Marks[i] != want[i] {
			t.Fatalf("marks = %v, want %v", res.Marks, want)
		}
	}
	if res.State != game.StatePlaying || res.Board.CurrentAttempt != 1 {
		t.Fatalf("after first guess: %+v", res)
	}

	if resp := c.do(http.MethodPost, "/game/guess", guessReq{GameID: g.GameID, Guess: "CRANE"}, &res); resp.StatusCode != http.StatusOK {
		t.Fatalf("guess status = %d", resp.StatusCode)
	}
	if res.State != game.StateWon {
		t.Fatalf("state = %s, want won", res.State)
	}

	var out errRes
	if resp := c.do(http.MethodPost, "/game/guess", guessReq{GameID: g.GameID, Guess: "crane"}, &out); resp.StatusCode != http.StatusConflict || out.Error != "game_finished" {
		t.Errorf("guess after win = %d %+v", resp.StatusCode, out)
	}
}

func TestLetterAndCheck(t *testing.T) {
	_, ts := newTestServer(t, nil)
	c := &client{t: t, base: ts.URL}
	g := c.newGame(newGameReq{Answer: "crane"})
	base := "/game/" + g.GameID

	var out errRes
	if resp := c.do(http.MethodPost, base+"/check", nil, &out); resp.StatusCode != http.StatusBadRequest || out.Error != "incomplete_guess" {
		t.Fatalf("empty check = %d %+v", resp.StatusCode, out)
	}

	for i, l := range []string{"r", "a", "i", "s", "e"} {
		var b boardRes
		if resp := c.do(http.MethodPut, base+"/letter", letterReq{Attempt: 0, Position: i, Letter: l}, &b); resp.StatusCode != http.StatusOK {
			t.Fatalf("PUT letter %d = %d", i, resp.StatusCode)
		}
		if got := b.Board.Guesses[0][i]; got != strings.ToUpper(l) {
			t.Fatalf("cell %d = %q", i, got)
		}
	}

	var res guessRes
	if resp := c.do(http.MethodPost, base+"/check", nil, &res); resp.StatusCode != http.StatusOK {
		t.Fatalf("check = %d", resp.StatusCode)
	}
	// RAISE vs CRANE: R and A misplaced, E correct.
	want := []game.LetterStatus{game.WrongPosition, game.WrongPosition, game.NotInWord, game.NotInWord, game.CorrectPosition}
	for i := range want {
		if res.Marks[i] != want[i] {
			t.Fatalf("marks = %v, want %v", res.Marks, want)
		}
	}
	if res.Board.Keyboard["E"] != game.CorrectPosition {
		t.Errorf("keyboard E = %s", res.Board.Keyboard["E"])
	}

	tests := []struct {
		name   string
		req    letterReq
		status int
		code   string
	}{
		{"scored row", letterReq{Attempt: 0, Position: 0, Letter: "a"}, http.StatusConflict, "not_current_attempt"},
		{"bad position", letterReq{Attempt: 1, Position: 7, Letter: "a"}, http.StatusBadRequest, "bad_position"},
		{"bad letter", letterReq{Attempt: 1, Position: 0, Letter: "7"}, http.StatusBadRequest, "invalid_letter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out errRes
			resp := c.do(http.MethodPut, base+"/letter", tt.req, &out)
			if resp.StatusCode != tt.status || out.Error != tt.code {
				t.Errorf("PUT letter = %d %q, want %d %q", resp.StatusCode, out.Error, tt.status, tt.code)
			}
		})
	}
}

func TestGuess_Errors(t *testing.T) {
	_, ts := newTestServer(t, nil)
	c := &client{t: t, base: ts.URL}
	g := c.newGame(newGameReq{Answer: "crane"})

	tests := []struct {
		name   string
		body   guessReq
		status int
		code   string
	}{
		{"unknown word", guessReq{GameID: g.GameID, Guess: "zzzzz"}, http.StatusBadRequest, "not_in_word_list"},
		{"too short", guessReq{GameID: g.GameID, Guess: "cra"}, http.StatusBadRequest, "invalid_guess"},
		{"missing game", guessReq{GameID: "nope", Guess: "crane"}, http.StatusNotFound, "not_found"},
		{"no game id", guessReq{Guess: "crane"}, http.StatusBadRequest, "missing_game_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out errRes
			resp := c.do(http.MethodPost, "/game/guess", tt.body, &out)
			if resp.StatusCode != tt.status || out.Error != tt.code {
				t.Errorf("guess = %d %q, want %d %q", resp.StatusCode, out.Error, tt.status, tt.code)
			}
		})
	}
}

func TestSessionsArePrivate(t *testing.T) {
	_, ts := newTestServer(t, nil)
	alice := &client{t: t, base: ts.URL}
	bob := &client{t: t, base: ts.URL}
	g := alice.newGame(nil)
	bob.newGame(nil)

	if resp := bob.do(http.MethodGet, "/game/"+g.GameID, nil, nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("bob GET alice's game = %d, want 404", resp.StatusCode)
	}
	if resp := bob.do(http.MethodPost, "/game/guess", guessReq{GameID: g.GameID, Guess: "crane"}, nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("bob guessing alice's game = %d, want 404", resp.StatusCode)
	}
}

func TestResetAndDelete(t *testing.T) {
	_, ts := newTestServer(t, func(c *config.Config) { c.MaxGuesses = 1 })
	c := &client{t: t, base: ts.URL}
	g := c.newGame(newGameReq{Answer: "crane"})
	base := "/game/" + g.GameID

	var res guessRes
	c.do(http.MethodPost, "/game/guess", guessReq{GameID: g.GameID, Guess: "slate"}, &res)
	if res.State != game.StateLost || res.Board.RevealedAnswer != "CRANE" {
		t.Fatalf("after last guess: state %s revealed %q", res.State, res.Board.RevealedAnswer)
	}

	var b boardRes
	if resp := c.do(http.MethodPost, base+"/reset", nil, &b); resp.StatusCode != http.StatusOK {
		t.Fatalf("reset = %d", resp.StatusCode)
	}
	if b.Board.State != game.StatePlaying || b.Board.CurrentAttempt != 0 || b.Board.RevealedAnswer != "" {
		t.Errorf("board after reset = %+v", b.Board)
	}

	if resp := c.do(http.MethodDelete, base, nil, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("delete = %d", resp.StatusCode)
	}
	if resp := c.do(http.MethodGet, base, nil, nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET after delete = %d, want 404", resp.StatusCode)
	}
}

func TestDailyGame(t *testing.T) {
	s, ts := newTestServer(t, nil)
	day := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return day }
	c := &client{t: t, base: ts.URL}

	g := c.newGame(newGameReq{Daily: true})
	if g.Daily != "2026-10-19" {
		t.Fatalf("daily key = %q", g.Daily)
	}
	_, word := daily.Answer(s.dict, day, "salt")
	var res guessRes
	c.do(http.MethodPost, "/game/guess", guessReq{GameID: g.GameID, Guess: word}, &res)
	if res.State != game.StateWon {
		t.Errorf("guessing the daily word: state = %s", res.State)
	}
}

func TestRateLimit(t *testing.T) {
	_, ts := newTestServer(t, func(c *config.Config) {
		c.GuessRate = 0.001
		c.GuessBurst = 1
	})
	c := &client{t: t, base: ts.URL}
	g := c.newGame(newGameReq{Answer: "crane"})

	if resp := c.do(http.MethodPost, "/game/guess", guessReq{GameID: g.GameID, Guess: "slate"}, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("first guess = %d", resp.StatusCode)
	}
	var out errRes
	resp := c.do(http.MethodPost, "/game/guess", guessReq{GameID: g.GameID, Guess: "audio"}, &out)
	if resp.StatusCode != http.StatusTooManyRequests || out.Error != "rate_limited" {
		t.Fatalf("second guess = %d %+v, want 429", resp.StatusCode, out)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}

	// Letters are not limited.
	if resp := c.do(http.MethodPut, "/game/"+g.GameID+"/letter", letterReq{Attempt: 1, Position: 0, Letter: "a"}, nil); resp.StatusCode != http.StatusOK {
		t.Errorf("PUT letter = %d", resp.StatusCode)
	}
}

func TestWatch(t *testing.T) {
	_, ts := newTestServer(t, nil)
	c := &client{t: t, base: ts.URL}
	g := c.newGame(newGameReq{Answer: "crane"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/game/" + g.GameID + "/watch"
	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + c.token}},
	})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	var snap game.Snapshot
	if err := wsjson.Read(ctx, conn, &snap); err != nil {
		t.Fatalf("read first snapshot: %v", err)
	}
	if snap.ID != g.GameID || snap.Guesses[0][0] != "" {
		t.Fatalf("first snapshot = %+v", snap)
	}

	c.do(http.MethodPut, "/game/"+g.GameID+"/letter", letterReq{Attempt: 0, Position: 0, Letter: "c"}, nil)
	if err := wsjson.Read(ctx, conn, &snap); err != nil {
		t.Fatalf("read update: %v", err)
	}
	if snap.Guesses[0][0] != "C" {
		t.Errorf("streamed cell = %q, want C", snap.Guesses[0][0])
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

func TestWatch_DeleteEndsStream(t *testing.T) {
	_, ts := newTestServer(t, nil)
	c := &client{t: t, base: ts.URL}
	g := c.newGame(nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/game/" + g.GameID + "/watch"
	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + c.token}},
	})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	var snap game.Snapshot
	if err := wsjson.Read(ctx, conn, &snap); err != nil {
		t.Fatalf("read first snapshot: %v", err)
	}

	if resp := c.do(http.MethodDelete, "/game/"+g.GameID, nil, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("delete = %d", resp.StatusCode)
	}
	err = wsjson.Read(ctx, conn, &snap)
	if got := websocket.CloseStatus(err); got != websocket.StatusGoingAway {
		t.Fatalf("read after delete: status %v (err %v), want StatusGoingAway", got, err)
	}
}

func TestWatch_OtherPlayer(t *testing.T) {
	_, ts := newTestServer(t, nil)
	c := &client{t: t, base: ts.URL}
	g := c.newGame(nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/game/" + g.GameID + "/watch"
	_, resp, err := websocket.Dial(ctx, wsURL, nil)
	if err == nil {
		t.Fatal("dial without token succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("dial response = %v, want 404", resp)
	}
}

func TestDebugWords(t *testing.T) {
	_, ts := newTestServer(t, nil)
	c := &client{t: t, base: ts.URL}
	c.newGame(nil)
	var out map[string]int
	c.do(http.MethodGet, "/debug/words", nil, &out)
	if out["answers"] != 5 || out["allowed"] != 6 || out["sessions"] != 1 {
		t.Errorf("debug words = %v", out)
	}
}
