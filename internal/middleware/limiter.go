package middleware

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"epdq-gateway/internal/auth"
	"epdq-gateway/internal/logger"
	"epdq-gateway/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Rate Limit Tiers
const (
	// Operator login and gateway return callbacks (Strict)
	limitStrict = rate.Limit(2)
	burstStrict = 5

	// General (Default)
	limitGeneral = rate.Limit(10)
	burstGeneral = 20

	// Internal / trusted services
	limitInternal = rate.Limit(100)
	burstInternal = 200
)

// visitor holds the rate limiter and the last time it was seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	visitors = make(map[string]*visitor)
	mu       sync.Mutex
)

// init starts the background cleanup routine.
func init() {
	go cleanupVisitors()
}

// getVisitor retrieves or creates a rate limiter for the given key.
func getVisitor(key string, r rate.Limit, b int) *rate.Limiter {
	mu.Lock()
	defer mu.Unlock()

	v, exists := visitors[key]
	if !exists {
		limiter := rate.NewLimiter(r, b)
		visitors[key] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

// cleanupVisitors removes old entries from the visitors map to prevent memory leaks.
func cleanupVisitors() {
	for {
		time.Sleep(time.Minute)

		mu.Lock()
		for key, v := range visitors {
			if time.Since(v.lastSeen) > 3*time.Minute {
				delete(visitors, key)
			}
		}
		mu.Unlock()
	}
}

// RateLimit limits requests per caller and tier. internalKey, when set,
// lets trusted services presenting it in X-Service-Auth use the internal tier.
// trustedProxies (IPs or CIDRs) are the reverse proxies allowed to name the
// client in X-Forwarded-For; without them the peer address is the caller.
func RateLimit(internalKey string, trustedProxies ...string) func(http.Handler) http.Handler {
	trusted := parseProxies(trustedProxies)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limit, burst, tier := resolveRateTier(r, internalKey)

			var identity string
			if claims, ok := auth.ClaimsFrom(r.Context()); ok {
				identity = "operator:" + claims.Email
			} else {
				identity = "ip:" + clientIP(r, trusted)
			}

			// Same caller gets separate quotas per tier, e.g. "ip:10.0.0.1:strict".
			key := fmt.Sprintf("%s:%s", identity, tier)

			limiter := getVisitor(key, limit, burst)
			if !limiter.Allow() {
				utils.WriteJSONError(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// resolveRateTier determines which rate limit policy applies to the request.
func resolveRateTier(r *http.Request, internalKey string) (rate.Limit, int, string) {
	if internalKey != "" && r.Header.Get("X-Service-Auth") == internalKey {
		return limitInternal, burstInternal, "internal"
	}

	if isStrictPath(r.URL.Path) {
		return limitStrict, burstStrict, "strict"
	}

	return limitGeneral, burstGeneral, "general"
}

func isStrictPath(path string) bool {
	if path == "/admin/login" {
		return true
	}
	return strings.HasPrefix(path, "/gateways/") && strings.Contains(path, "/return/")
}

func parseProxies(raw []string) []netip.Prefix {
	var out []netip.Prefix
	for _, entry := range raw {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if prefix, err := netip.ParsePrefix(entry); err == nil {
			out = append(out, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			logger.L().Warn("ignoring invalid trusted proxy", zap.String("entry", entry))
			continue
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out
}

func isTrusted(ip string, trusted []netip.Prefix) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// clientIP returns the peer address, or when the peer is a trusted proxy the
// right-most X-Forwarded-For hop that is not itself a trusted proxy.
func clientIP(r *http.Request, trusted []netip.Prefix) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}
	if len(trusted) == 0 || !isTrusted(peer, trusted) {
		return peer
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if _, err := netip.ParseAddr(hop); err != nil {
			return peer
		}
		if !isTrusted(hop, trusted) {
			return hop
		}
	}
	return peer
}
