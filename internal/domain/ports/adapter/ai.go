package adapter

import "context"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StreamChunk is one piece of a streamed completion. A non-nil Err terminates
// the stream; the channel is closed afterwards.
type StreamChunk struct {
	Text string
	Err  error
}

// AIServiceAdapter abstracts the completion provider used by the generation
// surface.
type AIServiceAdapter interface {
	StreamChat(ctx context.Context, model string, messages []Message) (<-chan StreamChunk, error)
	CountTokens(ctx context.Context, model string, messages []Message) (int, error)
}
