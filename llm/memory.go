package llm

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/mitsuri-bot/mitsuri/internal/logging"
	"github.com/mitsuri-bot/mitsuri/providers"
)

// memoryMessage is one stored turn plus its token cost.
type memoryMessage struct {
	role    providers.Role
	content string
	tokens  int
}

// Memory keeps the recent conversation history for one chat inside a token
// budget. Oldest turns are dropped first when the budget is exceeded.
// Operations are safe for concurrent use. Nothing persists beyond process
// lifetime.
type Memory struct {
	mutex       sync.Mutex
	messages    []memoryMessage
	totalTokens int
	maxTokens   int
	encoding    *tiktoken.Tiktoken
	logger      logging.Logger
}

// NewMemory creates a conversation memory with the given token budget.
// The cl100k_base encoding approximates token cost across all three
// vendors' Llama-family models closely enough for history trimming.
func NewMemory(maxTokens int, logger logging.Logger) (*Memory, error) {
	encoding, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("failed to get encoding: %w", err)
	}

	return &Memory{
		messages:  []memoryMessage{},
		maxTokens: maxTokens,
		encoding:  encoding,
		logger:    logger,
	}, nil
}

// Add appends a turn to the history, trimming oldest turns if the token
// budget is exceeded.
func (m *Memory) Add(role providers.Role, content string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	tokens := len(m.encoding.Encode(content, nil, nil))
	m.messages = append(m.messages, memoryMessage{role: role, content: content, tokens: tokens})
	m.totalTokens += tokens

	m.truncate()
	m.logger.Debug("Added message to memory", "role", role, "tokens", tokens, "total_tokens", m.totalTokens)
}

// truncate removes oldest messages until the total token count is within
// the budget. The newest message is always kept.
func (m *Memory) truncate() {
	for m.totalTokens > m.maxTokens && len(m.messages) > 1 {
		removed := m.messages[0]
		m.messages = m.messages[1:]
		m.totalTokens -= removed.tokens
		m.logger.Debug("Removed message from memory", "role", removed.role, "tokens", removed.tokens, "total_tokens", m.totalTokens)
	}
}

// Messages returns a copy of the stored history, oldest first.
func (m *Memory) Messages() []providers.Message {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	out := make([]providers.Message, len(m.messages))
	for i, msg := range m.messages {
		out[i] = providers.Message{Role: msg.role, Content: msg.content}
	}
	return out
}

// Clear discards the stored history.
func (m *Memory) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.messages = m.messages[:0]
	m.totalTokens = 0
	m.logger.Debug("Cleared memory")
}
