// Package ratelimit provides per-client token bucket rate limiting.
package ratelimit

import (
	"sync"
	"time"
)

type bucket struct {
	capacity float64
	rate     float64 // tokens per second
	tokens   float64
	last     time.Time
}

func newBucket(r Rule, now time.Time) *bucket {
	capacity := r.Burst
	if capacity <= 0 {
		capacity = r.Limit
	}
	return &bucket{
		capacity: float64(capacity),
		rate:     float64(r.Limit) / r.Window.Seconds(),
		tokens:   float64(capacity),
		last:     now,
	}
}

func (b *bucket) refill(now time.Time) {
	b.tokens = min(b.capacity, b.tokens+now.Sub(b.last).Seconds()*b.rate)
	b.last = now
}

// take consumes a token if one is available.
func (b *bucket) take(now time.Time) bool {
	b.refill(now)
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// untilFull is how long until the bucket is back at capacity.
func (b *bucket) untilFull() time.Duration {
	missing := b.capacity - b.tokens
	if missing <= 0 {
		return 0
	}
	return time.Duration(missing / b.rate * float64(time.Second))
}

// untilNext is how long until one token is available.
func (b *bucket) untilNext() time.Duration {
	if b.tokens >= 1 {
		return 0
	}
	return time.Duration((1 - b.tokens) / b.rate * float64(time.Second))
}

// Info describes the limit applied to one request.
type Info struct {
	Allowed    bool
	Limit      int // 0 when the request was not limited
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

type entry struct {
	b        *bucket
	lastSeen time.Time
}

// Limiter tracks one bucket per client, method and path.
type Limiter struct {
	config *Config
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*entry

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewLimiter returns a limiter for config. When limiting is enabled a cleanup
// goroutine runs until Stop is called.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = DefaultConfig(true)
	}
	l := &Limiter{
		config:  config,
		now:     time.Now,
		buckets: make(map[string]*entry),
	}
	if config.Enabled && config.CleanupInterval > 0 {
		l.stop = make(chan struct{})
		l.done = make(chan struct{})
		go l.cleanupLoop()
	}
	return l
}

// Allow reports whether a request from clientID may proceed.
func (l *Limiter) Allow(clientID, method, path string) Info {
	if !l.config.Enabled {
		return Info{Allowed: true}
	}
	rule, ok := Match(method, path, l.config.Rules)
	if !ok {
		rule = l.config.Default
	}
	if rule.Limit <= 0 || rule.Window <= 0 {
		return Info{Allowed: true}
	}

	// Prefix rules share one bucket per client.
	key := clientID + " " + method + " " + rule.Path
	if rule.Path == "" {
		key = clientID + " " + method + " " + path
	}

	now := l.now()
	l.mu.Lock()
	e, exists := l.buckets[key]
	if !exists {
		e = &entry{b: newBucket(rule, now)}
		l.buckets[key] = e
	}
	e.lastSeen = now
	allowed := e.b.take(now)
	info := Info{
		Allowed:   allowed,
		Limit:     rule.Limit,
		Remaining: int(e.b.tokens),
		ResetTime: now.Add(e.b.untilFull()),
	}
	if !allowed {
		info.RetryAfter = e.b.untilNext()
	}
	l.mu.Unlock()
	return info
}

func (l *Limiter) cleanupLoop() {
	defer close(l.done)
	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stop:
			return
		}
	}
}

// cleanup drops buckets idle for longer than IdleTTL.
func (l *Limiter) cleanup() {
	ttl := l.config.IdleTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	cutoff := l.now().Add(-ttl)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, e := range l.buckets {
		if e.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// Len returns the number of live buckets.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		if l.stop != nil {
			close(l.stop)
			<-l.done
		}
	})
}
