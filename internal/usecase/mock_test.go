package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/synapse-ai/cortex/internal/domain/model"
	"github.com/synapse-ai/cortex/internal/domain/ports/adapter"
)

// ---- Fakes ----

type fakeGraph struct {
	defs    []model.EntityDefinition
	rels    []model.RelationshipFact
	nodes   []model.GraphNode
	links   []model.GraphLink
	defsErr error
	relsErr error

	gotGroupID   string
	gotMinDegree int
}

func (f *fakeGraph) FetchEntityDefinitions(ctx context.Context, groupID string, minDegree int) ([]model.EntityDefinition, error) {
	f.gotGroupID = groupID
	f.gotMinDegree = minDegree
	return f.defs, f.defsErr
}

func (f *fakeGraph) FetchRelationshipFacts(ctx context.Context, groupID string) ([]model.RelationshipFact, error) {
	return f.rels, f.relsErr
}

func (f *fakeGraph) FetchGraphNodes(ctx context.Context, groupID string) ([]model.GraphNode, error) {
	return f.nodes, nil
}

func (f *fakeGraph) FetchGraphLinks(ctx context.Context, groupID string) ([]model.GraphLink, error) {
	return f.links, nil
}

type fakeEngine struct {
	mu     sync.Mutex
	calls  int64
	inputs []adapter.EpisodeInput
	result adapter.ExtractionResult
	err    error
}

func (f *fakeEngine) AddEpisode(ctx context.Context, ep adapter.EpisodeInput) (adapter.ExtractionResult, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, ep)
	f.mu.Unlock()
	atomic.AddInt64(&f.calls, 1)
	return f.result, f.err
}

func (f *fakeEngine) callCount() int {
	return int(atomic.LoadInt64(&f.calls))
}

func (f *fakeEngine) lastInput(t *testing.T) adapter.EpisodeInput {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.inputs) == 0 {
		t.Fatal("extraction engine was never called")
	}
	return f.inputs[len(f.inputs)-1]
}

type fakeHydration struct {
	compilation string
	err         error
	calls       int64
}

func (f *fakeHydration) BuildUserKnowledge(ctx context.Context, userID string) (string, error) {
	atomic.AddInt64(&f.calls, 1)
	return f.compilation, f.err
}

type fakeAI struct {
	chunks []adapter.StreamChunk
	err    error
}

func (f *fakeAI) StreamChat(ctx context.Context, model string, messages []adapter.Message) (<-chan adapter.StreamChunk, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(chan adapter.StreamChunk, len(f.chunks))
	for _, c := range f.chunks {
		out <- c
	}
	close(out)
	return out, nil
}

func (f *fakeAI) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	return 0, nil
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func textContent(s string) model.Content {
	return model.Content{Text: s}
}
