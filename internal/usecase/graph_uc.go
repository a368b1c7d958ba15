// File: internal/usecase/graph_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/synapse-ai/cortex/internal/domain"
	"github.com/synapse-ai/cortex/internal/domain/model"
	"github.com/synapse-ai/cortex/internal/domain/ports/adapter"
	"github.com/synapse-ai/cortex/internal/domain/ports/repository"
)

// GraphUseCase serves the explorer visualization and natural-language memory
// corrections. Corrections go through the extraction engine rather than
// direct CRUD on the graph, so embeddings and temporal integrity survive:
// the engine invalidates outdated edges and creates new ones.
type GraphUseCase interface {
	Explore(ctx context.Context, groupID string) (*model.GraphView, error)
	Correct(ctx context.Context, groupID, correctionText string) error
}

var _ GraphUseCase = (*graphUC)(nil)

type graphUC struct {
	graph  repository.GraphReader
	engine adapter.ExtractionEngine
	log    *zerolog.Logger
}

func NewGraphUseCase(graph repository.GraphReader, engine adapter.ExtractionEngine, log *zerolog.Logger) *graphUC {
	return &graphUC{graph: graph, engine: engine, log: log}
}

func (g *graphUC) Explore(ctx context.Context, groupID string) (*model.GraphView, error) {
	nodes, err := g.graph.FetchGraphNodes(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("fetch graph nodes: %w", err)
	}
	links, err := g.graph.FetchGraphLinks(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("fetch graph links: %w", err)
	}
	if nodes == nil {
		nodes = []model.GraphNode{}
	}
	if links == nil {
		links = []model.GraphLink{}
	}
	return &model.GraphView{Nodes: nodes, Links: links}, nil
}

func (g *graphUC) Correct(ctx context.Context, groupID, correctionText string) error {
	if groupID == "" || correctionText == "" {
		return fmt.Errorf("%w: group id and correction text are required", domain.ErrInvalidArgument)
	}

	g.log.Info().Str("group_id", groupID).Msg("applying memory correction")
	_, err := g.engine.AddEpisode(ctx, adapter.EpisodeInput{
		Name:              "user_memory_correction",
		Body:              correctionText,
		Source:            adapter.EpisodeSourceText,
		SourceDescription: "User-initiated memory correction via Memory Explorer",
		GroupID:           groupID,
		ReferenceTime:     time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("apply correction: %w", err)
	}
	g.log.Info().Str("group_id", groupID).Msg("memory correction applied")
	return nil
}
