package adapter

import (
	"context"
	"time"
)

type EpisodeSource string

const (
	EpisodeSourceMessage EpisodeSource = "message"
	EpisodeSourceText    EpisodeSource = "text"
)

// EpisodeInput is one unit of text handed to the extraction engine.
type EpisodeInput struct {
	Name              string
	Body              string
	Source            EpisodeSource
	SourceDescription string
	GroupID           string
	ReferenceTime     time.Time
}

// ExtractionResult reports what the engine added to the graph.
type ExtractionResult struct {
	NodesCreated int
	EdgesCreated int
	EpisodeID    string
}

// ExtractionEngine mutates the knowledge graph from episode text. Failures
// are opaque; callers record the message, they do not inspect sub-kinds.
type ExtractionEngine interface {
	AddEpisode(ctx context.Context, ep EpisodeInput) (ExtractionResult, error)
}
