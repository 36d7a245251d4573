// Package cache is the in-memory protection layer in front of the
// generation gateway: a chat-scoped TTL response cache, a global
// common-response cache for small-talk, a sliding-window per-user rate
// limiter, a per-chat cooldown gate and a broadcast progress tracker. A
// janitor sweep, triggered opportunistically by any cache-touching call,
// bounds memory for processes that see unboundedly many distinct keys over
// time.
//
// The store is deliberately single-instance: there is no cross-process
// coordination and nothing survives a restart. Cache keys are derived from
// the normalized message text alone, independent of which size class or
// model would answer it; distinct model answers for the same text share
// one key space.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mitsuri-bot/mitsuri/internal/logging"
)

const (
	DefaultRateLimitWindow = 60 * time.Second
	DefaultRateLimitMax    = 10
	DefaultResponseTTL     = time.Hour
	DefaultCommonTTL       = 24 * time.Hour
	DefaultSweepInterval   = 5 * time.Minute

	// staleAfter is how long an idle cooldown or broadcast entry survives
	// before the janitor drops it.
	staleAfter = time.Hour
)

// Config holds the store's tunables. Zero values fall back to the
// defaults above.
type Config struct {
	RateLimitWindow time.Duration
	RateLimitMax    int
	ResponseTTL     time.Duration
	CommonTTL       time.Duration
	SweepInterval   time.Duration
}

func (c Config) withDefaults() Config {
	if c.RateLimitWindow <= 0 {
		c.RateLimitWindow = DefaultRateLimitWindow
	}
	if c.RateLimitMax <= 0 {
		c.RateLimitMax = DefaultRateLimitMax
	}
	if c.ResponseTTL <= 0 {
		c.ResponseTTL = DefaultResponseTTL
	}
	if c.CommonTTL <= 0 {
		c.CommonTTL = DefaultCommonTTL
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	return c
}

type entry struct {
	value     string
	expiresAt time.Time
}

// BroadcastProgress tracks delivery counters for one broadcast run.
type BroadcastProgress struct {
	Total   int
	Sent    int
	Failed  int
	Started time.Time
}

// Store owns all cache and throttle state. It is constructed once at
// process start and injected into its consumers; every sub-store has its
// own lock so concurrent chats contend only on the namespace they touch.
type Store struct {
	cfg    Config
	logger logging.Logger
	now    func() time.Time

	rateMu      sync.Mutex
	rateWindows map[int64][]time.Time

	coolMu    sync.Mutex
	cooldowns map[int64]time.Time

	respMu    sync.Mutex
	responses map[string]entry

	commonMu sync.Mutex
	common   map[string]entry

	bcastMu    sync.Mutex
	broadcasts map[string]*BroadcastProgress

	sweepMu   sync.Mutex
	lastSweep time.Time
}

// New creates an empty store.
func New(cfg Config, logger logging.Logger) *Store {
	s := &Store{
		cfg:         cfg.withDefaults(),
		logger:      logger,
		now:         time.Now,
		rateWindows: make(map[int64][]time.Time),
		cooldowns:   make(map[int64]time.Time),
		responses:   make(map[string]entry),
		common:      make(map[string]entry),
		broadcasts:  make(map[string]*BroadcastProgress),
	}
	s.lastSweep = s.now()
	logger.Info("In-memory cache initialized",
		"rate_limit_max", s.cfg.RateLimitMax,
		"rate_limit_window", s.cfg.RateLimitWindow,
		"response_ttl", s.cfg.ResponseTTL)
	return s
}

// AllowUser reports whether the user is within the sliding-window rate
// limit, and on allow records the call. Atomic per call: two concurrent
// checks for the same user never both pass when only one slot remains.
func (s *Store) AllowUser(userID int64) bool {
	now := s.now()

	s.rateMu.Lock()
	window := s.rateWindows[userID]
	kept := window[:0]
	for _, ts := range window {
		if now.Sub(ts) < s.cfg.RateLimitWindow {
			kept = append(kept, ts)
		}
	}

	allowed := len(kept) < s.cfg.RateLimitMax
	if allowed {
		kept = append(kept, now)
	}
	s.rateWindows[userID] = kept
	s.rateMu.Unlock()

	s.sweepIfDue(now)
	return allowed
}

// AllowChat reports whether the chat is out of its cooldown period, and on
// allow restarts the cooldown. Cooldowns are per chat, independent of the
// per-user rate limit.
func (s *Store) AllowChat(chatID int64, cooldown time.Duration) bool {
	now := s.now()

	s.coolMu.Lock()
	last := s.cooldowns[chatID]
	allowed := now.Sub(last) >= cooldown
	if allowed {
		s.cooldowns[chatID] = now
	}
	s.coolMu.Unlock()

	s.sweepIfDue(now)
	return allowed
}

// GetResponse returns the cached reply for a message in a chat, if one is
// stored and unexpired. Expired entries are evicted on access.
func (s *Store) GetResponse(chatID int64, message string) (string, bool) {
	now := s.now()
	key := responseKey(chatID, message)

	s.respMu.Lock()
	e, ok := s.responses[key]
	if ok && !now.Before(e.expiresAt) {
		delete(s.responses, key)
		ok = false
	}
	s.respMu.Unlock()

	s.sweepIfDue(now)
	if ok {
		s.logger.Debug("Response cache hit", "chat_id", chatID)
		return e.value, true
	}
	return "", false
}

// PutResponse caches a reply for a message in a chat.
func (s *Store) PutResponse(chatID int64, message, response string) {
	now := s.now()

	s.respMu.Lock()
	s.responses[responseKey(chatID, message)] = entry{value: response, expiresAt: now.Add(s.cfg.ResponseTTL)}
	s.respMu.Unlock()

	s.sweepIfDue(now)
}

// GetCommon returns the chat-independent cached reply for a message. The
// common namespace holds small-talk answers only; they carry a longer TTL
// because they do not depend on any conversation.
func (s *Store) GetCommon(message string) (string, bool) {
	now := s.now()
	key := messageHash(message)

	s.commonMu.Lock()
	e, ok := s.common[key]
	if ok && !now.Before(e.expiresAt) {
		delete(s.common, key)
		ok = false
	}
	s.commonMu.Unlock()

	s.sweepIfDue(now)
	if ok {
		s.logger.Debug("Common response cache hit")
		return e.value, true
	}
	return "", false
}

// PutCommon caches a chat-independent reply.
func (s *Store) PutCommon(message, response string) {
	now := s.now()

	s.commonMu.Lock()
	s.common[messageHash(message)] = entry{value: response, expiresAt: now.Add(s.cfg.CommonTTL)}
	s.commonMu.Unlock()

	s.sweepIfDue(now)
}

// StartBroadcast begins tracking delivery progress for one broadcast run.
func (s *Store) StartBroadcast(id string, total int) {
	s.bcastMu.Lock()
	s.broadcasts[id] = &BroadcastProgress{Total: total, Started: s.now()}
	s.bcastMu.Unlock()
}

// UpdateBroadcast adds to a broadcast's delivery counters.
func (s *Store) UpdateBroadcast(id string, sent, failed int) {
	s.bcastMu.Lock()
	if p, ok := s.broadcasts[id]; ok {
		p.Sent += sent
		p.Failed += failed
	}
	s.bcastMu.Unlock()
}

// Broadcast returns a snapshot of one broadcast's progress.
func (s *Store) Broadcast(id string) (BroadcastProgress, bool) {
	s.bcastMu.Lock()
	defer s.bcastMu.Unlock()
	if p, ok := s.broadcasts[id]; ok {
		return *p, true
	}
	return BroadcastProgress{}, false
}

// Close releases all state. The store must not be used afterwards.
func (s *Store) Close() {
	s.rateMu.Lock()
	s.rateWindows = nil
	s.rateMu.Unlock()
	s.coolMu.Lock()
	s.cooldowns = nil
	s.coolMu.Unlock()
	s.respMu.Lock()
	s.responses = nil
	s.respMu.Unlock()
	s.commonMu.Lock()
	s.common = nil
	s.commonMu.Unlock()
	s.bcastMu.Lock()
	s.broadcasts = nil
	s.bcastMu.Unlock()
}

// sweepIfDue runs a full cleanup pass across every namespace, at most once
// per sweep interval.
func (s *Store) sweepIfDue(now time.Time) {
	s.sweepMu.Lock()
	if now.Sub(s.lastSweep) < s.cfg.SweepInterval {
		s.sweepMu.Unlock()
		return
	}
	s.lastSweep = now
	s.sweepMu.Unlock()

	var responses, common, cooldowns, windows, broadcasts int

	s.respMu.Lock()
	for key, e := range s.responses {
		if !now.Before(e.expiresAt) {
			delete(s.responses, key)
			responses++
		}
	}
	s.respMu.Unlock()

	s.commonMu.Lock()
	for key, e := range s.common {
		if !now.Before(e.expiresAt) {
			delete(s.common, key)
			common++
		}
	}
	s.commonMu.Unlock()

	s.coolMu.Lock()
	for chatID, last := range s.cooldowns {
		if now.Sub(last) > staleAfter {
			delete(s.cooldowns, chatID)
			cooldowns++
		}
	}
	s.coolMu.Unlock()

	s.rateMu.Lock()
	for userID, window := range s.rateWindows {
		if len(window) == 0 || now.Sub(window[len(window)-1]) > 2*s.cfg.RateLimitWindow {
			delete(s.rateWindows, userID)
			windows++
		}
	}
	s.rateMu.Unlock()

	s.bcastMu.Lock()
	for id, p := range s.broadcasts {
		if now.Sub(p.Started) > staleAfter {
			delete(s.broadcasts, id)
			broadcasts++
		}
	}
	s.bcastMu.Unlock()

	if responses+common+cooldowns+windows+broadcasts > 0 {
		s.logger.Info("Cache sweep",
			"responses", responses,
			"common", common,
			"cooldowns", cooldowns,
			"rate_windows", windows,
			"broadcasts", broadcasts)
	}
}

func responseKey(chatID int64, message string) string {
	return fmt.Sprintf("response:%d:%s", chatID, messageHash(message))
}

// messageHash normalizes (lowercase, trim) and hashes a message. The hash
// is truncated to 16 hex characters; collisions at that width are
// acceptable for a best-effort cache.
func messageHash(message string) string {
	normalized := strings.ToLower(strings.TrimSpace(message))
	sum := md5.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:])[:16]
}
