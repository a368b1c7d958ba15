// File: internal/usecase/hydration_uc.go
package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/synapse-ai/cortex/internal/domain/model"
	"github.com/synapse-ai/cortex/internal/domain/ports/repository"
	"github.com/synapse-ai/cortex/internal/infra/metrics"
)

// DefaultMinDegree is the minimum connection count for an entity to be
// included in the compilation; filters long-tail noise.
const DefaultMinDegree = 2

// HydrationUseCase builds the textual knowledge compilation for a user from
// current graph state. Every call recomputes from the graph; nothing is
// cached, so the result is always consistent with the graph at call time.
type HydrationUseCase interface {
	BuildUserKnowledge(ctx context.Context, userID string) (string, error)
}

var _ HydrationUseCase = (*hydrationUC)(nil)

type hydrationUC struct {
	graph     repository.GraphReader
	minDegree int
	log       *zerolog.Logger
}

func NewHydrationUseCase(graph repository.GraphReader, minDegree int, log *zerolog.Logger) *hydrationUC {
	if minDegree <= 0 {
		minDegree = DefaultMinDegree
	}
	return &hydrationUC{graph: graph, minDegree: minDegree, log: log}
}

// BuildUserKnowledge is a pure function of the two query results plus the
// configured degree threshold. An empty string means "no knowledge yet" and
// is not an error.
func (h *hydrationUC) BuildUserKnowledge(ctx context.Context, userID string) (string, error) {
	defs, err := h.graph.FetchEntityDefinitions(ctx, userID, h.minDegree)
	if err != nil {
		return "", fmt.Errorf("fetch entity definitions: %w", err)
	}
	rels, err := h.graph.FetchRelationshipFacts(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("fetch relationship facts: %w", err)
	}

	defLines := h.formatDefinitions(defs)
	relLines := formatRelationships(rels)

	if len(defLines) == 0 && len(relLines) == 0 {
		return "", nil
	}

	out := formatCompilation(defLines, relLines)
	metrics.ObserveHydration(len(out))
	return out, nil
}

func (h *hydrationUC) formatDefinitions(defs []model.EntityDefinition) []string {
	lines := make([]string, 0, len(defs))
	for _, d := range defs {
		// The query already filters, but the guard keeps the invariant local.
		if d.Name == "" || d.Summary == "" || d.Degree < h.minDegree {
			continue
		}
		lines = append(lines, fmt.Sprintf("- **%s**: %s", d.Name, d.Summary))
	}
	return lines
}

func formatRelationships(rels []model.RelationshipFact) []string {
	lines := make([]string, 0, len(rels))
	for _, r := range rels {
		if r.SourceName == "" || r.TargetName == "" {
			continue
		}

		line := fmt.Sprintf("- %s %s %s", r.SourceName, formatRelationName(r.RelationName), r.TargetName)
		if r.Fact != "" {
			line += fmt.Sprintf(": %q", r.Fact)
		}

		var temporal []string
		if r.ValidAt != "" {
			temporal = append(temporal, "valid_at: "+r.ValidAt)
		}
		if r.InvalidAt != "" {
			temporal = append(temporal, "invalid_at: "+r.InvalidAt)
		}
		if len(temporal) > 0 {
			line += " [" + strings.Join(temporal, ", ") + "]"
		}

		lines = append(lines, line)
	}
	return lines
}

// formatRelationName converts a relation name to a readable verb,
// e.g. WORKS_WITH -> "works with".
func formatRelationName(name string) string {
	if name == "" {
		return "relates to"
	}
	return strings.ToLower(strings.ReplaceAll(name, "_", " "))
}

func formatCompilation(definitions, relationships []string) string {
	var sections []string

	if len(definitions) > 0 {
		sections = append(sections,
			"#### 1. CONCEPTUAL DEFINITIONS & IDENTITY ####\n"+
				"# (Understanding what these concepts mean specifically for this user)\n"+
				strings.Join(definitions, "\n"))
	}
	if len(relationships) > 0 {
		sections = append(sections,
			"#### 2. RELATIONAL DYNAMICS & CAUSALITY ####\n"+
				"# (How these concepts interact and evolve over time)\n"+
				strings.Join(relationships, "\n"))
	}
	if len(sections) == 0 {
		return ""
	}

	content := strings.Join(sections, "\n\n")

	totalChars := 0
	for _, d := range definitions {
		totalChars += len(d)
	}
	for _, r := range relationships {
		totalChars += len(r)
	}
	estTokens := totalChars / 4

	stats := fmt.Sprintf("\n\n### STATS ###\n# Definitions: %d | Relations: %d | Est. Tokens: ~%d",
		len(definitions), len(relationships), estTokens)

	return content + stats
}
