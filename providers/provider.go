// Package providers implements the text-generation provider interface and
// its concrete vendor implementations. The bot speaks to Groq, Cerebras and
// SambaNova, all of which expose OpenAI-compatible chat completion APIs;
// each vendor file owns its endpoint, headers, request marshalling and
// response parsing, and maps vendor failures into the shared error
// taxonomy.
package providers

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat turn. Immutable once constructed.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request carries everything a provider needs to produce one completion:
// the resolved model id, the ordered message history (oldest first) and the
// sampling parameters.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
	TopP        float64
}

// Provider is one concrete backend. Implementations prepare and parse the
// vendor wire format; the HTTP round trip itself is performed by the
// llm package so that every provider shares one transport, one timeout and
// one classification path.
type Provider interface {
	// Name returns the configuration identifier for this provider.
	Name() string

	// Endpoint returns the chat completion URL.
	Endpoint() string

	// Headers returns the HTTP headers for a request, including auth.
	Headers() map[string]string

	// PrepareRequest marshals a request into the vendor wire format.
	PrepareRequest(req *Request) ([]byte, error)

	// ParseResponse extracts the generated text from a vendor response
	// body.
	ParseResponse(body []byte) (string, error)
}

// Constructor builds a provider from its credential, failing with a
// *ConfigError when the credential is missing.
type Constructor func(apiKey string) (Provider, error)
