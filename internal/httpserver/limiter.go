package httpserver

import (
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// maxLimiters bounds the per-player limiter map; it is reset when full.
const maxLimiters = 10000

// limiterSet hands out one token bucket per player.
type limiterSet struct {
	mu    sync.Mutex
	limit rate.Limit
	burst int
	m     map[string]*rate.Limiter
}

// newLimiterSet allows perSecond requests with the given burst per player.
// perSecond <= 0 disables limiting.
func newLimiterSet(perSecond float64, burst int) *limiterSet {
	lim := rate.Limit(perSecond)
	if perSecond <= 0 {
		lim = rate.Inf
	}
	return &limiterSet{limit: lim, burst: burst, m: make(map[string]*rate.Limiter)}
}

func (l *limiterSet) allow(player string) bool {
	l.mu.Lock()
	lim, ok := l.m[player]
	if !ok {
		if len(l.m) >= maxLimiters {
			l.m = make(map[string]*rate.Limiter)
		}
		lim = rate.NewLimiter(l.limit, l.burst)
		l.m[player] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

// limitGuesses rejects guess submissions beyond the player's rate.
func (s *Server) limitGuesses(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limits.allow(playerID(r)) {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate_limited")
			return
		}
		next.ServeHTTP(w, r)
	})
}
