package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/synapse-ai/cortex/internal/domain"
	"github.com/synapse-ai/cortex/internal/domain/model"
	"github.com/synapse-ai/cortex/internal/domain/ports/adapter"
)

func TestExploreReturnsNodesAndLinks(t *testing.T) {
	log := zerolog.Nop()
	graph := &fakeGraph{
		nodes: []model.GraphNode{{ID: "n1", Name: "Rust", Val: 4, Summary: "language"}},
		links: []model.GraphLink{{Source: "n1", Target: "n2", Label: "RELATES_TO", Fact: "daily driver"}},
	}
	uc := NewGraphUseCase(graph, &fakeEngine{}, &log)

	view, err := uc.Explore(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Explore: %v", err)
	}
	if len(view.Nodes) != 1 || len(view.Links) != 1 {
		t.Errorf("view = %+v", view)
	}
}

func TestExploreEmptyGraphYieldsEmptySlices(t *testing.T) {
	log := zerolog.Nop()
	uc := NewGraphUseCase(&fakeGraph{}, &fakeEngine{}, &log)

	view, err := uc.Explore(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Explore: %v", err)
	}
	// JSON must render [] rather than null for the frontend.
	if view.Nodes == nil || view.Links == nil {
		t.Error("nil slices in empty view")
	}
}

func TestCorrectFeedsEngineEpisode(t *testing.T) {
	log := zerolog.Nop()
	engine := &fakeEngine{}
	uc := NewGraphUseCase(&fakeGraph{}, engine, &log)

	before := time.Now().UTC()
	if err := uc.Correct(context.Background(), "user-1", "I moved from Berlin to Lisbon"); err != nil {
		t.Fatalf("Correct: %v", err)
	}

	ep := engine.lastInput(t)
	if ep.Name != "user_memory_correction" {
		t.Errorf("episode name = %q", ep.Name)
	}
	if ep.Source != adapter.EpisodeSourceText {
		t.Errorf("source = %q", ep.Source)
	}
	if ep.GroupID != "user-1" {
		t.Errorf("group id = %q", ep.GroupID)
	}
	if ep.Body != "I moved from Berlin to Lisbon" {
		t.Errorf("body = %q", ep.Body)
	}
	if ep.ReferenceTime.Before(before) {
		t.Errorf("reference time %s predates the call", ep.ReferenceTime)
	}
}

func TestCorrectValidatesInput(t *testing.T) {
	log := zerolog.Nop()
	uc := NewGraphUseCase(&fakeGraph{}, &fakeEngine{}, &log)

	if err := uc.Correct(context.Background(), "", "text"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
	if err := uc.Correct(context.Background(), "user-1", ""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestCorrectWrapsEngineFailure(t *testing.T) {
	log := zerolog.Nop()
	boom := errors.New("graphiti unavailable")
	uc := NewGraphUseCase(&fakeGraph{}, &fakeEngine{err: boom}, &log)

	if err := uc.Correct(context.Background(), "user-1", "fix it"); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped %v", err, boom)
	}
}
