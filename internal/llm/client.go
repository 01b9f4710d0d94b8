package llm

import "context"

// Message is a minimal chat message sent to the completion API.
// Role must be one of: "system", "user", or "assistant".
type Message struct {
	Role    string
	Content string
}

// Client is the completion call consumed by the chat service. Complete takes
// the full assembled conversation (system prompt + windowed history + latest
// user turn) and returns one reply.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Kind classifies a completion failure. The service does not retry on any of
// them; classification exists so callers can log and render failures without
// matching on message strings.
type Kind string

const (
	KindCredential Kind = "credential"
	KindQuota      Kind = "quota"
	KindModel      Kind = "model"
	KindTransport  Kind = "transport"
)

// Error is a classified completion failure. The message keeps the upstream
// description, which the chat endpoint surfaces verbatim to the client.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }
