package repository

import (
	"context"

	"github.com/synapse-ai/cortex/internal/domain/model"
)

// GraphReader issues parameterized read queries against the knowledge graph.
// Every call is an independent unit of work; no transaction spans calls.
type GraphReader interface {
	// FetchEntityDefinitions returns entities in the group that are connected
	// to at least one other entity, have a non-empty summary and degree >=
	// minDegree, ordered by degree descending.
	FetchEntityDefinitions(ctx context.Context, groupID string, minDegree int) ([]model.EntityDefinition, error)

	// FetchRelationshipFacts returns currently-valid directed edges between
	// entities in the group, excluding edges touching episodic nodes, ordered
	// by validity timestamp descending.
	FetchRelationshipFacts(ctx context.Context, groupID string) ([]model.RelationshipFact, error)

	// FetchGraphNodes / FetchGraphLinks feed the explorer visualization.
	FetchGraphNodes(ctx context.Context, groupID string) ([]model.GraphNode, error)
	FetchGraphLinks(ctx context.Context, groupID string) ([]model.GraphLink, error)
}
