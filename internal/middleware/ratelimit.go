package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	clients = make(map[string]*clientLimiter)
	mu      sync.Mutex
)

func init() {
	go cleanupClients()
}

// cleanupClients drops limiters for IPs not seen in a while so the map does
// not grow without bound.
func cleanupClients() {
	for {
		time.Sleep(10 * time.Minute)

		mu.Lock()
		for ip, client := range clients {
			if time.Since(client.lastSeen) > 15*time.Minute {
				delete(clients, ip)
			}
		}
		mu.Unlock()
	}
}

// RateLimit applies a per-IP token bucket in front of next. rps is the
// sustained request rate, burst the short-term allowance.
func RateLimit(next http.Handler, rps float64, burst int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := r.Header.Get("X-Real-IP")
		if clientIP == "" {
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				clientIP = strings.TrimSpace(strings.Split(xff, ",")[0])
			}
		}
		if clientIP == "" {
			clientIP = strings.Split(r.RemoteAddr, ":")[0]
		}

		mu.Lock()
		clientData, found := clients[clientIP]
		if !found {
			clientData = &clientLimiter{
				limiter: rate.NewLimiter(rate.Limit(rps), burst),
			}
			clients[clientIP] = clientData
		}
		clientData.lastSeen = time.Now()
		limiterInstance := clientData.limiter
		mu.Unlock()

		if !limiterInstance.Allow() {
			slog.Warn("Rate limit exceeded", "ip", clientIP, "path", r.URL.Path)
			http.Error(w, "Too many requests. Please try again later.", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
