// File: internal/usecase/generation_uc.go
package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/synapse-ai/cortex/internal/domain"
	"github.com/synapse-ai/cortex/internal/domain/model"
	"github.com/synapse-ai/cortex/internal/domain/ports/adapter"
)

// GenerationEvent is one element of a completion stream: either a chunk in
// OpenAI wire format or a terminal error.
type GenerationEvent struct {
	Chunk *model.ChatCompletionChunk
	Err   error
}

// GenerationUseCase streams chat completions. The transport layer turns the
// event channel into SSE.
type GenerationUseCase interface {
	StreamCompletion(ctx context.Context, req *model.ChatCompletionRequest) (<-chan GenerationEvent, error)
}

var _ GenerationUseCase = (*generationUC)(nil)

type generationUC struct {
	ai           adapter.AIServiceAdapter
	defaultModel string
	log          *zerolog.Logger
}

// NewGenerationUseCase accepts a nil adapter; streaming then reports
// domain.ErrGenerationUnavailable so the transport can answer 503.
func NewGenerationUseCase(ai adapter.AIServiceAdapter, defaultModel string, log *zerolog.Logger) *generationUC {
	return &generationUC{ai: ai, defaultModel: defaultModel, log: log}
}

func (g *generationUC) StreamCompletion(ctx context.Context, req *model.ChatCompletionRequest) (<-chan GenerationEvent, error) {
	if g.ai == nil {
		return nil, domain.ErrGenerationUnavailable
	}
	if len(req.Messages) == 0 {
		return nil, domain.ErrInvalidArgument
	}

	modelName := req.Model
	if modelName == "" {
		modelName = g.defaultModel
	}

	chunks, err := g.ai.StreamChat(ctx, modelName, convertMessages(req.Messages))
	if err != nil {
		return nil, err
	}

	completionID := "chatcmpl-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	created := time.Now().Unix()

	out := make(chan GenerationEvent)
	go func() {
		defer close(out)

		// First chunk announces the assistant role.
		out <- GenerationEvent{Chunk: roleChunk(completionID, created, modelName)}

		for c := range chunks {
			if c.Err != nil {
				g.log.Error().Err(c.Err).Str("model", modelName).Msg("generation stream failed")
				out <- GenerationEvent{Err: c.Err}
				return
			}
			if c.Text == "" {
				continue
			}
			out <- GenerationEvent{Chunk: contentChunk(completionID, created, modelName, c.Text)}
		}

		out <- GenerationEvent{Chunk: stopChunk(completionID, created, modelName)}
	}()
	return out, nil
}

// convertMessages folds the system prompt into the first user message, the
// shape both providers accept.
func convertMessages(msgs []model.ChatMessage) []adapter.Message {
	var systemPrompt string
	for _, m := range msgs {
		if m.Role == model.RoleSystem {
			systemPrompt = m.Content.Resolve()
			break
		}
	}

	out := make([]adapter.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == model.RoleSystem {
			continue
		}
		content := m.Content.Resolve()
		if m.Role == model.RoleUser && systemPrompt != "" && len(out) == 0 {
			content = systemPrompt + "\n\n" + content
			systemPrompt = ""
		}
		out = append(out, adapter.Message{Role: string(m.Role), Content: content})
	}
	return out
}

func roleChunk(id string, created int64, modelName string) *model.ChatCompletionChunk {
	return &model.ChatCompletionChunk{
		ID:      id,
		Object:  "chat.completion.chunk",
		Created: created,
		Model:   modelName,
		Choices: []model.ChatCompletionChoice{{Delta: model.ChatCompletionDelta{Role: "assistant"}}},
	}
}

func contentChunk(id string, created int64, modelName, text string) *model.ChatCompletionChunk {
	return &model.ChatCompletionChunk{
		ID:      id,
		Object:  "chat.completion.chunk",
		Created: created,
		Model:   modelName,
		Choices: []model.ChatCompletionChoice{{Delta: model.ChatCompletionDelta{Content: text}}},
	}
}

func stopChunk(id string, created int64, modelName string) *model.ChatCompletionChunk {
	stop := "stop"
	return &model.ChatCompletionChunk{
		ID:      id,
		Object:  "chat.completion.chunk",
		Created: created,
		Model:   modelName,
		Choices: []model.ChatCompletionChoice{{FinishReason: &stop}},
	}
}
