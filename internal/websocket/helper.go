package websocket

import (
	"net"
	"net/http"
	"strings"
	"sync"

	app_error "github.com/xenn00/collab-hub/internal/errors"
)

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// checkOrigin admits requests without an Origin header (non-browser clients),
// any origin when the allow-list holds "*", and otherwise exact matches.
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.origins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// connectionLimiter counts open connections globally and per client IP. A
// zero limit disables that check.
type connectionLimiter struct {
	mu       sync.Mutex
	maxTotal int
	maxPerIP int
	open     int
	perIP    map[string]int
}

func newConnectionLimiter(maxTotal, maxPerIP int) *connectionLimiter {
	return &connectionLimiter{
		maxTotal: maxTotal,
		maxPerIP: maxPerIP,
		perIP:    make(map[string]int),
	}
}

func (l *connectionLimiter) acquire(ip string) *app_error.AppError {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.maxTotal > 0 && l.open >= l.maxTotal {
		return app_error.NewAppError(http.StatusServiceUnavailable, "too many connections", "limit")
	}
	if l.maxPerIP > 0 && l.perIP[ip] >= l.maxPerIP {
		return app_error.NewAppError(http.StatusTooManyRequests, "too many connections from this address", "limit")
	}

	l.open++
	l.perIP[ip]++
	return nil
}

func (l *connectionLimiter) release(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.perIP[ip] <= 0 {
		return
	}
	l.open--
	l.perIP[ip]--
	if l.perIP[ip] == 0 {
		delete(l.perIP, ip)
	}
}

func (l *connectionLimiter) total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.open
}
