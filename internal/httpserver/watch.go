package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// writeTimeout bounds a single snapshot write to a watcher.
const writeTimeout = 5 * time.Second

// handleWatch upgrades to a websocket and streams board snapshots of the
// session until either side closes. The first frame is the current board.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.ownedSession(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	logger := zerolog.Ctx(r.Context()).With().Str("gameId", sess.ID()).Logger()

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.origins})
	if err != nil {
		logger.Warn().Err(err).Msg("accept watch")
		return
	}
	defer c.CloseNow()

	// Incoming frames are ignored; ctx ends when the peer goes away.
	ctx := c.CloseRead(r.Context())

	snaps, cancel := sess.Game.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snaps:
			if !ok {
				c.Close(websocket.StatusGoingAway, "session closed")
				return
			}
			wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, c, snap)
			wcancel()
			if err != nil {
				logger.Debug().Err(err).Msg("watch write")
				return
			}
		}
	}
}
