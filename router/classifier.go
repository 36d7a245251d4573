// Package router decides which model answers a message: a pure complexity
// classifier splits traffic into small (cheap, fast) and large (capable)
// classes, and a resolver maps a provider name and size class onto the
// concrete model id.
package router

import (
	"regexp"
	"strings"
)

// SizeClass categorizes inbound traffic for cheap-vs-capable routing.
type SizeClass int

const (
	SizeSmall SizeClass = iota
	SizeLarge
)

func (s SizeClass) String() string {
	if s == SizeSmall {
		return "small"
	}
	return "large"
}

// DefaultSmallTalkMaxTokens is the token count at or below which a message
// is always classified small.
const DefaultSmallTalkMaxTokens = 4

var (
	// Word-like and punctuation tokens.
	tokenPattern = regexp.MustCompile(`\w+|[^\w\s]`)

	// Greeting and small-talk openers, anchored at the start of the
	// trimmed message.
	smallTalkPattern = regexp.MustCompile(
		`(?i)^(hi|hello|hey|hii|yo|sup|how are you|how r u|good morning|good night|` +
			`good evening|hola|namaste|hey there|hi there|hlo|wassup|whats up|` +
			`how's it going)\b`)
)

// Classifier decides the size class of a message. It is pure, synchronous
// and call-free: it runs before any network access on every inbound
// message.
type Classifier struct {
	// MaxTokens is the small-talk token threshold. Zero means
	// DefaultSmallTalkMaxTokens.
	MaxTokens int
}

// Classify returns SizeSmall for short messages and recognized small-talk
// openers, SizeLarge for everything else.
func (c Classifier) Classify(text string) SizeClass {
	threshold := c.MaxTokens
	if threshold <= 0 {
		threshold = DefaultSmallTalkMaxTokens
	}

	if len(tokenPattern.FindAllString(text, threshold+1)) <= threshold {
		return SizeSmall
	}
	if smallTalkPattern.MatchString(strings.TrimSpace(text)) {
		return SizeSmall
	}
	return SizeLarge
}
