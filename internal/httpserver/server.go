// internal/httpserver/server.go
//
// HTTP front-end for the WordMaster engine.
// Responsibilities:
//   - Router + middleware (request IDs, access logs, panic recovery, CORS,
//     timeouts, JSON responses).
//   - Public endpoints: "/", "/health", "/debug/words".
//   - Game endpoints under /game, scoped to the calling player.
//   - Board streaming over websocket (watch.go).
//
// Notes:
//   - Every client gets a signed player token (player.go); sessions belong to
//     the player that created them and are invisible to everyone else.
//   - Sessions are held in memory only (internal/store).

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordmaster/internal/config"
	"github.com/robalobadob/wordmaster/internal/store"
	"github.com/robalobadob/wordmaster/internal/words"
)

// Server bundles router, session store, word list and settings.
type Server struct {
	r       *chi.Mux
	store   store.Store
	dict    *words.Dictionary
	cfg     config.Config
	secret  []byte
	limits  *limiterSet
	origins []string
	now     func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, dict *words.Dictionary, st store.Store) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		store:   st,
		dict:    dict,
		cfg:     cfg,
		secret:  []byte(cfg.JWTSecret),
		limits:  newLimiterSet(cfg.GuessRate, cfg.GuessBurst),
		origins: originPatterns(cfg.ClientOrigin),
		now:     time.Now,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)            // add X-Request-ID
	s.r.Use(chimw.RealIP)               // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger(log.Logger))  // zerolog access log
	s.r.Use(chimw.Recoverer)            // recover from panics
	s.r.Use(corsFrom(cfg.ClientOrigin)) // credentials-friendly CORS

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
		r.Use(jsonContentType)

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"service":"wordmaster","endpoints":["/health","POST /game/new","POST /game/guess","GET /game/{id}","PUT /game/{id}/letter","POST /game/{id}/check","POST /game/{id}/reset","DELETE /game/{id}","GET /game/{id}/watch","/debug/words"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
			a, g := s.dict.Stats()
			writeJSON(w, http.StatusOK, map[string]int{"answers": a, "allowed": g, "sessions": s.store.Len()})
		})

		// --- game ---
		r.Group(func(r chi.Router) {
			r.Use(s.withPlayer)
			r.Post("/game/new", s.handleNewGame)
			r.With(s.limitGuesses).Post("/game/guess", s.handleGuess)
			r.Get("/game/{id}", s.handleGetGame)
			r.Delete("/game/{id}", s.handleDeleteGame)
			r.Put("/game/{id}/letter", s.handleSetLetter)
			r.With(s.limitGuesses).Post("/game/{id}/check", s.handleCheck)
			r.Post("/game/{id}/reset", s.handleReset)
		})
	})

	// Long-lived; no handler timeout.
	s.r.With(s.withPlayer).Get("/game/{id}/watch", s.handleWatch)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Handler exposes the router (useful for tests).
func (s *Server) Handler() http.Handler { return s.r }

// Start serves HTTP on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down http server")
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// writeJSON encodes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes {"error": code}.
func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// originPatterns turns CLIENT_ORIGIN into websocket origin patterns (host only).
func originPatterns(origin string) []string {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return nil
	}
	return []string{u.Host}
}
