package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/synapse-ai/cortex/internal/domain/model"
)

func newHydration(graph *fakeGraph, minDegree int) *hydrationUC {
	log := zerolog.Nop()
	return NewHydrationUseCase(graph, minDegree, &log)
}

func TestBuildEmptyWhenGraphEmpty(t *testing.T) {
	uc := newHydration(&fakeGraph{}, 2)

	out, err := uc.BuildUserKnowledge(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("BuildUserKnowledge: %v", err)
	}
	if out != "" {
		t.Errorf("compilation = %q, want empty string", out)
	}
}

func TestBuildPassesGroupAndDegree(t *testing.T) {
	graph := &fakeGraph{}
	uc := newHydration(graph, 3)

	if _, err := uc.BuildUserKnowledge(context.Background(), "user-7"); err != nil {
		t.Fatalf("BuildUserKnowledge: %v", err)
	}
	if graph.gotGroupID != "user-7" {
		t.Errorf("group id = %q, want user-7", graph.gotGroupID)
	}
	if graph.gotMinDegree != 3 {
		t.Errorf("min degree = %d, want 3", graph.gotMinDegree)
	}
}

func TestBuildDefinitionsSection(t *testing.T) {
	graph := &fakeGraph{defs: []model.EntityDefinition{
		{Name: "Rust", Summary: "Primary language at work", Degree: 5},
		{Name: "Skiing", Summary: "Weekend hobby", Degree: 2},
	}}
	uc := newHydration(graph, 2)

	out, err := uc.BuildUserKnowledge(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("BuildUserKnowledge: %v", err)
	}

	if !strings.Contains(out, "#### 1. CONCEPTUAL DEFINITIONS & IDENTITY ####") {
		t.Error("definitions header missing")
	}
	if !strings.Contains(out, "- **Rust**: Primary language at work") {
		t.Errorf("definition line missing:\n%s", out)
	}
	if strings.Contains(out, "#### 2. RELATIONAL DYNAMICS") {
		t.Error("relationships header present with no relationships")
	}
	if !strings.Contains(out, "### STATS ###") {
		t.Error("stats footer missing")
	}
}

func TestBuildDegreeFilterBoundary(t *testing.T) {
	graph := &fakeGraph{defs: []model.EntityDefinition{
		{Name: "Kept", Summary: "at threshold", Degree: 2},
		{Name: "Dropped", Summary: "below threshold", Degree: 1},
	}}
	uc := newHydration(graph, 2)

	out, err := uc.BuildUserKnowledge(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("BuildUserKnowledge: %v", err)
	}
	if !strings.Contains(out, "**Kept**") {
		t.Error("entity at min degree missing from output")
	}
	if strings.Contains(out, "**Dropped**") {
		t.Error("entity below min degree present in output")
	}
}

func TestRelationNameFormatting(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"WORKS_WITH", "works with"},
		{"", "relates to"},
		{"LIVES_IN", "lives in"},
		{"KNOWS", "knows"},
	}
	for _, c := range cases {
		if got := formatRelationName(c.in); got != c.want {
			t.Errorf("formatRelationName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestBuildRelationshipLines(t *testing.T) {
	graph := &fakeGraph{rels: []model.RelationshipFact{
		{SourceName: "Alice", RelationName: "WORKS_WITH", TargetName: "Bob", Fact: "They pair on the compiler", ValidAt: "2026-01-02T00:00:00Z"},
		{SourceName: "Alice", RelationName: "", TargetName: "Go"},
		{SourceName: "Alice", RelationName: "LIVED_IN", TargetName: "Berlin", ValidAt: "2024-01-01T00:00:00Z", InvalidAt: "2026-12-01T00:00:00Z"},
	}}
	uc := newHydration(graph, 2)

	out, err := uc.BuildUserKnowledge(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("BuildUserKnowledge: %v", err)
	}

	wantLines := []string{
		`- Alice works with Bob: "They pair on the compiler" [valid_at: 2026-01-02T00:00:00Z]`,
		"- Alice relates to Go",
		"- Alice lived in Berlin [valid_at: 2024-01-01T00:00:00Z, invalid_at: 2026-12-01T00:00:00Z]",
	}
	for _, want := range wantLines {
		if !strings.Contains(out, want) {
			t.Errorf("missing line %q in:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "#### 2. RELATIONAL DYNAMICS & CAUSALITY ####") {
		t.Error("relationships header missing")
	}
}

func TestBuildStatsFooter(t *testing.T) {
	defLine := "- **Rust**: Primary language at work"
	relLine := "- Alice relates to Go"
	graph := &fakeGraph{
		defs: []model.EntityDefinition{{Name: "Rust", Summary: "Primary language at work", Degree: 4}},
		rels: []model.RelationshipFact{{SourceName: "Alice", TargetName: "Go"}},
	}
	uc := newHydration(graph, 2)

	out, err := uc.BuildUserKnowledge(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("BuildUserKnowledge: %v", err)
	}

	estTokens := (len(defLine) + len(relLine)) / 4
	want := fmt.Sprintf("### STATS ###\n# Definitions: 1 | Relations: 1 | Est. Tokens: ~%d", estTokens)
	if !strings.Contains(out, want) {
		t.Errorf("stats footer wrong, want %q in:\n%s", want, out)
	}
}

func TestBuildPropagatesQueryFailure(t *testing.T) {
	boom := errors.New("bolt connection refused")
	uc := newHydration(&fakeGraph{defsErr: boom}, 2)

	if _, err := uc.BuildUserKnowledge(context.Background(), "user-1"); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped %v", err, boom)
	}
}
