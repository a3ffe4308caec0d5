package bombarena

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter    *rate.Limiter
	violations int
	lastSeen   time.Time
}

// RateLimiter is what the handler needs from a limiter: an upgrade check per
// IP and a frame check per client with a violation ceiling.
type RateLimiter interface {
	AllowIP(ip string) bool
	AllowClient(clientID string) bool
	Exceeded(clientID string) bool
	Violations(clientID string) int
	Forget(clientID string)
	Stop()
}

var _ RateLimiter = (*RateLimiterManager)(nil)

// RateLimiterManager hands out token buckets per client and per IP and
// forgets the ones idle for longer than the entry TTL.
type RateLimiterManager struct {
	config RateLimiterConfig

	clientsMu sync.Mutex
	clients   map[string]*limiterEntry

	ipsMu sync.Mutex
	ips   map[string]*limiterEntry

	stopOnce sync.Once
	quit     chan struct{}
}

func NewRateLimiterManager(config RateLimiterConfig) *RateLimiterManager {
	rl := &RateLimiterManager{
		config:  config,
		clients: make(map[string]*limiterEntry),
		ips:     make(map[string]*limiterEntry),
		quit:    make(chan struct{}),
	}

	if config.CleanupInterval > 0 {
		go rl.cleanupLoop()
	}

	return rl
}

func (r *RateLimiterManager) Config() RateLimiterConfig {
	return r.config
}

// AllowClient reports whether the client may send one more frame. A refusal
// counts as a violation.
func (r *RateLimiterManager) AllowClient(clientID string) bool {
	if clientID == "" {
		clientID = "__empty__"
	}

	r.clientsMu.Lock()
	defer r.clientsMu.Unlock()

	entry := r.entry(r.clients, clientID, r.config.PerClientRate, r.config.PerClientBurst)
	if entry.limiter.Allow() {
		// a bucket that refilled completely forgives earlier bursts
		if entry.violations > 0 && entry.limiter.Tokens() >= float64(entry.limiter.Burst()-1) {
			entry.violations = 0
		}
		return true
	}
	entry.violations++
	return false
}

// Violations returns how many refusals the client has collected since its
// bucket was last full.
func (r *RateLimiterManager) Violations(clientID string) int {
	r.clientsMu.Lock()
	defer r.clientsMu.Unlock()

	if entry, ok := r.clients[clientID]; ok {
		return entry.violations
	}
	return 0
}

// Exceeded reports whether the client reached the violation ceiling.
func (r *RateLimiterManager) Exceeded(clientID string) bool {
	return r.config.MaxRateLimitViolations > 0 && r.Violations(clientID) >= r.config.MaxRateLimitViolations
}

// Forget drops the client's bucket once its connection is gone.
func (r *RateLimiterManager) Forget(clientID string) {
	r.clientsMu.Lock()
	delete(r.clients, clientID)
	r.clientsMu.Unlock()
}

// AllowIP reports whether ip may open one more connection.
func (r *RateLimiterManager) AllowIP(ip string) bool {
	if ip == "" {
		ip = "__unknown_ip__"
	}

	r.ipsMu.Lock()
	defer r.ipsMu.Unlock()

	return r.entry(r.ips, ip, r.config.PerIPRate, r.config.PerIPBurst).limiter.Allow()
}

func (r *RateLimiterManager) Stop() {
	r.stopOnce.Do(func() {
		close(r.quit)
	})
}

// entry must be called with the map's mutex held.
func (r *RateLimiterManager) entry(m map[string]*limiterEntry, key string, limit float64, burst int) *limiterEntry {
	e, ok := m[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(limit), burst)}
		m[key] = e
	}
	e.lastSeen = time.Now()
	return e
}

func (r *RateLimiterManager) cleanupLoop() {
	t := time.NewTicker(r.config.CleanupInterval)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			r.cleanup()
		case <-r.quit:
			return
		}
	}
}

func (r *RateLimiterManager) cleanup() {
	threshold := time.Now().Add(-r.config.EntryTTL)

	r.clientsMu.Lock()
	for k, v := range r.clients {
		if v.lastSeen.Before(threshold) {
			delete(r.clients, k)
		}
	}
	r.clientsMu.Unlock()

	r.ipsMu.Lock()
	for k, v := range r.ips {
		if v.lastSeen.Before(threshold) {
			delete(r.ips, k)
		}
	}
	r.ipsMu.Unlock()
}
