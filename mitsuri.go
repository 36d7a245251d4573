// Package mitsuri wires the generation gateway together: provider chain,
// fallback orchestration, complexity routing, conversation memory and the
// in-memory protection layer. Everything is constructed once by New and
// torn down by Close; there are no package-level singletons.
package mitsuri

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mitsuri-bot/mitsuri/cache"
	"github.com/mitsuri-bot/mitsuri/config"
	"github.com/mitsuri-bot/mitsuri/internal/logging"
	"github.com/mitsuri-bot/mitsuri/llm"
	"github.com/mitsuri-bot/mitsuri/providers"
	"github.com/mitsuri-bot/mitsuri/router"
)

// ErrRateLimited is returned by Chat when the user is over their
// sliding-window budget. The transport decides how (or whether) to tell
// the user.
var ErrRateLimited = errors.New("user rate limited")

// memoryIdleAfter is how long a chat's conversation memory survives
// without activity before it is reclaimed, matching the staleness rule
// for idle cooldowns.
const memoryIdleAfter = time.Hour

// chatMemory pairs one chat's history with its last activity, so idle
// chats can be reclaimed.
type chatMemory struct {
	mem      *llm.Memory
	lastUsed time.Time
}

// Bot is the assembled gateway. Safe for concurrent use by many chat
// tasks.
type Bot struct {
	cfg        *config.Config
	logger     logging.Logger
	fallback   *llm.Fallback
	store      *cache.Store
	classifier router.Classifier

	now func() time.Time

	memMu    sync.Mutex
	memories map[int64]*chatMemory
	memSweep time.Time
}

// New constructs the bot from configuration. Providers with missing
// credentials are dropped from the chain here, logged once, and never
// attempted at runtime; an entirely empty chain is not an error until a
// generation is requested.
func New(cfg *config.Config, logger logging.Logger) (*Bot, error) {
	chain := providers.NewRegistry().BuildChain(cfg.ProviderOrder, cfg.APIKeys, logger)

	backends := make([]llm.Backend, len(chain))
	for i, p := range chain {
		backends[i] = llm.NewProviderClient(p, cfg.ProviderTimeout, cfg.RequestsPerMinute, logger)
	}

	models, fallbackPair, err := cfg.Models()
	if err != nil {
		return nil, err
	}
	resolver := router.NewResolver(models, fallbackPair)

	return &Bot{
		cfg:      cfg,
		logger:   logger,
		fallback: llm.NewFallback(backends, resolver, cfg.MaxAttempts, cfg.Backoff, logger),
		store: cache.New(cache.Config{
			RateLimitWindow: cfg.RateLimitWindow,
			RateLimitMax:    cfg.RateLimitMax,
			ResponseTTL:     cfg.CacheTTL,
			CommonTTL:       cfg.CommonCacheTTL,
			SweepInterval:   cfg.CacheSweepInterval,
		}, logger),
		classifier: router.Classifier{MaxTokens: cfg.SmallTalkMaxTokens},
		now:        time.Now,
		memories:   make(map[int64]*chatMemory),
		memSweep:   time.Now(),
	}, nil
}

// Chat processes one inbound message: classify, rate limit, consult the
// caches, and on a miss drive the fallback chain. The reply is cached and
// recorded in the chat's conversation memory. Terminal errors come back
// typed; the caller owns the single static user-facing failure message.
func (b *Bot) Chat(ctx context.Context, chatID, userID int64, userName, text string) (string, error) {
	requestID := uuid.NewString()

	if !b.store.AllowUser(userID) {
		b.logger.Info("User rate limited", "request_id", requestID, "user_id", userID)
		return "", ErrRateLimited
	}

	size := b.classifier.Classify(text)

	if size == router.SizeSmall {
		if reply, ok := b.store.GetCommon(text); ok {
			return reply, nil
		}
	}
	if reply, ok := b.store.GetResponse(chatID, text); ok {
		return reply, nil
	}

	memory, err := b.memory(chatID)
	if err != nil {
		return "", err
	}

	messages := make([]providers.Message, 0, 8)
	messages = append(messages, providers.Message{Role: providers.RoleSystem, Content: b.cfg.SystemPrompt})
	messages = append(messages, memory.Messages()...)
	messages = append(messages, providers.Message{
		Role:    providers.RoleUser,
		Content: text + " (User: " + userName + ")",
	})

	req := &llm.Request{
		Messages:    messages,
		Size:        size,
		Temperature: b.cfg.Temperature,
		MaxTokens:   b.cfg.MaxTokens,
		TopP:        b.cfg.TopP,
	}
	if err := llm.Validate(req); err != nil {
		return "", err
	}

	result, err := b.fallback.Generate(ctx, req)
	if err != nil {
		b.logger.Error("Generation failed", "request_id", requestID, "chat_id", chatID, "error", err)
		return "", err
	}
	b.logger.Info("Reply generated", "request_id", requestID, "chat_id", chatID, "provider", result.Provider, "size", size)

	memory.Add(providers.RoleUser, text)
	memory.Add(providers.RoleAssistant, result.Content)

	b.store.PutResponse(chatID, text, result.Content)
	if size == router.SizeSmall {
		b.store.PutCommon(text, result.Content)
	}
	return result.Content, nil
}

// CooldownOK reports whether a chat is allowed to trigger a reply, for
// transports that throttle group chats. Independent of the per-user rate
// limit.
func (b *Bot) CooldownOK(chatID int64) bool {
	return b.store.AllowChat(chatID, b.cfg.GroupCooldown)
}

// Cooldown checks a chat against an explicit cooldown period.
func (b *Bot) Cooldown(chatID int64, period time.Duration) bool {
	return b.store.AllowChat(chatID, period)
}

// Store exposes the protection layer for transports that need direct
// access (broadcast progress, explicit cache population).
func (b *Bot) Store() *cache.Store {
	return b.store
}

// memory returns the conversation memory for a chat, creating it on first
// use and touching its last-used time. Idle chats are reclaimed here so
// the memory map stays bounded for processes that see unboundedly many
// distinct chats over time.
func (b *Bot) memory(chatID int64) (*llm.Memory, error) {
	now := b.now()

	b.memMu.Lock()
	defer b.memMu.Unlock()

	b.sweepMemoriesLocked(now)

	if e, ok := b.memories[chatID]; ok {
		e.lastUsed = now
		return e.mem, nil
	}
	m, err := llm.NewMemory(b.cfg.HistoryMaxTokens, b.logger)
	if err != nil {
		return nil, err
	}
	b.memories[chatID] = &chatMemory{mem: m, lastUsed: now}
	return m, nil
}

// sweepMemoriesLocked drops memories for chats idle beyond
// memoryIdleAfter, at most once per sweep interval. Caller holds memMu.
func (b *Bot) sweepMemoriesLocked(now time.Time) {
	if now.Sub(b.memSweep) < b.cfg.CacheSweepInterval {
		return
	}
	b.memSweep = now

	reclaimed := 0
	for chatID, e := range b.memories {
		if now.Sub(e.lastUsed) > memoryIdleAfter {
			delete(b.memories, chatID)
			reclaimed++
		}
	}
	if reclaimed > 0 {
		b.logger.Info("Reclaimed idle chat memories", "count", reclaimed)
	}
}

// Close releases the bot's state.
func (b *Bot) Close() {
	b.store.Close()

	b.memMu.Lock()
	b.memories = nil
	b.memMu.Unlock()
}
