// File: internal/infra/neo4j/gateway.go
package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/synapse-ai/cortex/internal/domain/model"
	"github.com/synapse-ai/cortex/internal/domain/ports/repository"
)

// Cypher: entity definitions ordered by connectivity (most connected first).
const fetchEntitiesQuery = `
MATCH (n:Entity)-[r:RELATES_TO]-(other:Entity)
WHERE n <> other
  AND n.group_id = $group_id
  AND n.summary IS NOT NULL
  AND n.summary <> ""
WITH n, count(r) AS degree
WHERE degree >= $min_degree
RETURN n.name AS name, n.summary AS summary, degree
ORDER BY degree DESC
`

// Cypher: currently-valid relationships with temporal context, excluding
// episodic nodes.
const fetchRelationshipsQuery = `
MATCH (source:Entity)-[r:RELATES_TO]->(target:Entity)
WHERE r.group_id = $group_id
  AND (r.invalid_at IS NULL OR r.invalid_at > datetime())
  AND NOT 'Episode' IN labels(source)
  AND NOT 'Episode' IN labels(target)
RETURN
    source.name AS source_name,
    r.name AS relation_name,
    target.name AS target_name,
    r.fact AS fact,
    r.valid_at AS valid_at,
    r.invalid_at AS invalid_at
ORDER BY r.valid_at DESC
`

// Cypher: entity nodes with connection count for explorer sizing.
const fetchGraphNodesQuery = `
MATCH (n:Entity)-[r:RELATES_TO]-(other:Entity)
WHERE n <> other
  AND n.group_id = $group_id
  AND n.summary IS NOT NULL
  AND n.summary <> ""
WITH n, count(r) AS degree
RETURN n.uuid AS id, n.name AS name, degree AS val, n.summary AS summary
ORDER BY degree DESC
`

const fetchGraphLinksQuery = `
MATCH (source:Entity)-[r:RELATES_TO]->(target:Entity)
WHERE r.group_id = $group_id
  AND (r.invalid_at IS NULL OR r.invalid_at > datetime())
  AND NOT 'Episode' IN labels(source)
  AND NOT 'Episode' IN labels(target)
RETURN source.uuid AS source, target.uuid AS target,
       r.name AS label, r.fact AS fact
`

var _ repository.GraphReader = (*Gateway)(nil)

// Gateway executes the read queries against Neo4j. Each query runs as an
// independent unit of work; no transaction spans calls.
type Gateway struct {
	driver neo4j.DriverWithContext
}

func NewGateway(ctx context.Context, uri, user, password string) (*Gateway, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("neo4j connectivity: %w", err)
	}
	return &Gateway{driver: driver}, nil
}

func (g *Gateway) Close(ctx context.Context) error {
	return g.driver.Close(ctx)
}

func (g *Gateway) FetchEntityDefinitions(ctx context.Context, groupID string, minDegree int) ([]model.EntityDefinition, error) {
	records, err := g.read(ctx, fetchEntitiesQuery, map[string]any{
		"group_id":   groupID,
		"min_degree": minDegree,
	})
	if err != nil {
		return nil, err
	}

	defs := make([]model.EntityDefinition, 0, len(records))
	for _, rec := range records {
		defs = append(defs, model.EntityDefinition{
			Name:    recString(rec, "name"),
			Summary: recString(rec, "summary"),
			Degree:  recInt(rec, "degree"),
		})
	}
	return defs, nil
}

func (g *Gateway) FetchRelationshipFacts(ctx context.Context, groupID string) ([]model.RelationshipFact, error) {
	records, err := g.read(ctx, fetchRelationshipsQuery, map[string]any{"group_id": groupID})
	if err != nil {
		return nil, err
	}

	rels := make([]model.RelationshipFact, 0, len(records))
	for _, rec := range records {
		rels = append(rels, model.RelationshipFact{
			SourceName:   recString(rec, "source_name"),
			RelationName: recString(rec, "relation_name"),
			TargetName:   recString(rec, "target_name"),
			Fact:         recString(rec, "fact"),
			ValidAt:      recTimestamp(rec, "valid_at"),
			InvalidAt:    recTimestamp(rec, "invalid_at"),
		})
	}
	return rels, nil
}

func (g *Gateway) FetchGraphNodes(ctx context.Context, groupID string) ([]model.GraphNode, error) {
	records, err := g.read(ctx, fetchGraphNodesQuery, map[string]any{"group_id": groupID})
	if err != nil {
		return nil, err
	}

	nodes := make([]model.GraphNode, 0, len(records))
	for _, rec := range records {
		id := recString(rec, "id")
		name := recString(rec, "name")
		if id == "" || name == "" {
			continue
		}
		nodes = append(nodes, model.GraphNode{
			ID:      id,
			Name:    name,
			Val:     recInt(rec, "val"),
			Summary: recString(rec, "summary"),
		})
	}
	return nodes, nil
}

func (g *Gateway) FetchGraphLinks(ctx context.Context, groupID string) ([]model.GraphLink, error) {
	records, err := g.read(ctx, fetchGraphLinksQuery, map[string]any{"group_id": groupID})
	if err != nil {
		return nil, err
	}

	links := make([]model.GraphLink, 0, len(records))
	for _, rec := range records {
		source := recString(rec, "source")
		target := recString(rec, "target")
		if source == "" || target == "" {
			continue
		}
		label := recString(rec, "label")
		if label == "" {
			label = "RELATES_TO"
		}
		links = append(links, model.GraphLink{
			Source: source,
			Target: target,
			Label:  label,
			Fact:   recString(rec, "fact"),
		})
	}
	return links, nil
}

func (g *Gateway) read(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	result, err := neo4j.ExecuteQuery(ctx, g.driver, query, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithReadersRouting())
	if err != nil {
		return nil, fmt.Errorf("neo4j query: %w", err)
	}
	return result.Records, nil
}

func recString(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

func recInt(rec *neo4j.Record, key string) int {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return 0
	}
	n, _ := v.(int64)
	return int(n)
}

// recTimestamp renders a temporal property as RFC3339; empty means absent.
func recTimestamp(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}
