// internal/httpserver/routes_game.go
//
// Game endpoints. Every handler works on a session owned by the caller:
//   - POST   /game/new          → create a session (random, daily or fixed answer)
//   - POST   /game/guess        → submit a whole word
//   - GET    /game/{id}         → board snapshot
//   - PUT    /game/{id}/letter  → write one cell of the current row
//   - POST   /game/{id}/check   → score the current row
//   - POST   /game/{id}/reset   → start over in the same session
//   - DELETE /game/{id}         → drop the session

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/robalobadob/wordmaster/internal/daily"
	"github.com/robalobadob/wordmaster/internal/game"
	"github.com/robalobadob/wordmaster/internal/store"
)

// boardRes wraps a snapshot with its session id.
type boardRes struct {
	GameID string        `json:"gameId"`
	Daily  string        `json:"daily,omitempty"`
	Board  game.Snapshot `json:"board"`
}

// newGameReq is the optional body of POST /game/new.
type newGameReq struct {
	Daily  bool   `json:"daily"`
	Answer string `json:"answer"` // fixed answer, only when ALLOW_FIXED_ANSWER is set
}

// handleNewGame creates a session owned by the caller.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	_ = json.NewDecoder(r.Body).Decode(&req) // empty body means defaults

	opts := []game.Option{game.WithMaxGuesses(s.cfg.MaxGuesses), game.WithClock(s.now)}
	var dateKey string
	switch {
	case req.Answer != "":
		if !s.cfg.AllowFixedAnswer {
			writeError(w, http.StatusForbidden, "fixed_answer_disabled")
			return
		}
		if !s.dict.IsAllowed(req.Answer) {
			writeError(w, http.StatusBadRequest, "not_in_word_list")
			return
		}
		opts = append(opts, game.WithAnswer(req.Answer))
	case req.Daily:
		var word string
		dateKey, word = daily.Answer(s.dict, s.now(), s.cfg.DailySalt)
		opts = append(opts, game.WithAnswer(word))
	}

	g, err := game.New(s.dict, opts...)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("new game")
		writeError(w, http.StatusInternalServerError, "new_game_failed")
		return
	}
	sess := &store.Session{Game: g, Owner: playerID(r), Daily: dateKey, CreatedAt: s.now()}
	if err := s.store.Save(r.Context(), sess); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	zerolog.Ctx(r.Context()).Info().Str("gameId", g.ID()).Str("daily", dateKey).Msg("game started")
	writeJSON(w, http.StatusOK, boardRes{GameID: g.ID(), Daily: dateKey, Board: g.Snapshot()})
}

// guessReq is the body of POST /game/guess.
type guessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}

// guessRes reports one scored row.
type guessRes struct {
	Marks []game.LetterStatus `json:"marks"`
	State game.State          `json:"state"`
	Board game.Snapshot       `json:"board"`
}

// handleGuess submits a whole word for the session named in the body.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	sess, ok := s.ownedSession(w, r, req.GameID)
	if !ok {
		return
	}
	res, err := sess.Game.Submit(req.Guess)
	s.writeScore(w, r, sess, res, err)
}

// handleCheck scores the current row.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.ownedSession(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	res, err := sess.Game.CheckGuess()
	s.writeScore(w, r, sess, res, err)
}

func (s *Server) writeScore(w http.ResponseWriter, r *http.Request, sess *store.Session, res game.Result, err error) {
	if err != nil {
		writeGameError(w, err)
		return
	}
	if res.State.Finished() {
		zerolog.Ctx(r.Context()).Info().
			Str("gameId", sess.ID()).
			Str("state", string(res.State)).
			Int("guesses", res.Attempt+1).
			Msg("game finished")
	}
	writeJSON(w, http.StatusOK, guessRes{Marks: res.Statuses, State: res.State, Board: sess.Game.Snapshot()})
}

// handleGetGame returns the board.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.ownedSession(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, boardRes{GameID: sess.ID(), Daily: sess.Daily, Board: sess.Game.Snapshot()})
}

// letterReq is the body of PUT /game/{id}/letter.
type letterReq struct {
	Attempt  int    `json:"attempt"`
	Position int    `json:"position"`
	Letter   string `json:"letter"`
}

// handleSetLetter writes one cell of the current row.
func (s *Server) handleSetLetter(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.ownedSession(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req letterReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if err := sess.Game.SetGuess(req.Attempt, req.Position, req.Letter); err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, boardRes{GameID: sess.ID(), Daily: sess.Daily, Board: sess.Game.Snapshot()})
}

// handleReset starts a new game in the same session.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.ownedSession(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := sess.Game.ResetGame(); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("gameId", sess.ID()).Msg("reset game")
		writeError(w, http.StatusInternalServerError, "reset_failed")
		return
	}
	writeJSON(w, http.StatusOK, boardRes{GameID: sess.ID(), Daily: sess.Daily, Board: sess.Game.Snapshot()})
}

// handleDeleteGame drops the session.
func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.ownedSession(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := s.store.Delete(r.Context(), sess.ID()); err != nil && !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "delete_failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ownedSession loads a session and checks the caller owns it.
// Sessions of other players are reported as missing.
func (s *Server) ownedSession(w http.ResponseWriter, r *http.Request, id string) (*store.Session, bool) {
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing_game_id")
		return nil, false
	}
	sess, err := s.store.Get(r.Context(), id)
	if err != nil || sess.Owner != playerID(r) {
		writeError(w, http.StatusNotFound, "not_found")
		return nil, false
	}
	return sess, true
}

// writeGameError maps engine errors to status codes.
func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrGameOver):
		writeError(w, http.StatusConflict, "game_finished")
	case errors.Is(err, game.ErrNotCurrentAttempt):
		writeError(w, http.StatusConflict, "not_current_attempt")
	case errors.Is(err, game.ErrPosition):
		writeError(w, http.StatusBadRequest, "bad_position")
	case errors.Is(err, game.ErrInvalidLetter):
		writeError(w, http.StatusBadRequest, "invalid_letter")
	case errors.Is(err, game.ErrIncompleteGuess):
		writeError(w, http.StatusBadRequest, "incomplete_guess")
	case errors.Is(err, game.ErrInvalidGuess):
		writeError(w, http.StatusBadRequest, "invalid_guess")
	case errors.Is(err, game.ErrNotInWordList):
		writeError(w, http.StatusBadRequest, "not_in_word_list")
	default:
		writeError(w, http.StatusInternalServerError, "internal")
	}
}
