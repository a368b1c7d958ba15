package web

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/synapse-ai/cortex/internal/domain/model"
	"github.com/synapse-ai/cortex/internal/usecase"
)

type fakeIngestion struct {
	acceptRes *usecase.AcceptResult
	acceptErr error
	pollRes   *usecase.PollResult
	pollErr   error

	gotAccept *model.IngestRequest
	gotJobID  string
}

func (f *fakeIngestion) Accept(ctx context.Context, req *model.IngestRequest) (*usecase.AcceptResult, error) {
	f.gotAccept = req
	return f.acceptRes, f.acceptErr
}

func (f *fakeIngestion) Poll(ctx context.Context, jobID string) (*usecase.PollResult, error) {
	f.gotJobID = jobID
	return f.pollRes, f.pollErr
}

type fakeHydration struct {
	compilation string
	err         error
	gotUserID   string
}

func (f *fakeHydration) BuildUserKnowledge(ctx context.Context, userID string) (string, error) {
	f.gotUserID = userID
	return f.compilation, f.err
}

type fakeGraph struct {
	view       *model.GraphView
	exploreErr error
	correctErr error

	gotGroupID    string
	gotCorrection string
}

func (f *fakeGraph) Explore(ctx context.Context, groupID string) (*model.GraphView, error) {
	f.gotGroupID = groupID
	if f.exploreErr != nil {
		return nil, f.exploreErr
	}
	if f.view != nil {
		return f.view, nil
	}
	return &model.GraphView{Nodes: []model.GraphNode{}, Links: []model.GraphLink{}}, nil
}

func (f *fakeGraph) Correct(ctx context.Context, groupID, correctionText string) error {
	f.gotGroupID = groupID
	f.gotCorrection = correctionText
	return f.correctErr
}

type fakeGeneration struct {
	events []usecase.GenerationEvent
	err    error
}

func (f *fakeGeneration) StreamCompletion(ctx context.Context, req *model.ChatCompletionRequest) (<-chan usecase.GenerationEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(chan usecase.GenerationEvent, len(f.events))
	for _, ev := range f.events {
		out <- ev
	}
	close(out)
	return out, nil
}

const testSecret = "test-secret"

type serverFixture struct {
	server     *Server
	ingestion  *fakeIngestion
	hydration  *fakeHydration
	graph      *fakeGraph
	generation *fakeGeneration
}

func newServerFixture() *serverFixture {
	log := zerolog.Nop()
	f := &serverFixture{
		ingestion:  &fakeIngestion{},
		hydration:  &fakeHydration{},
		graph:      &fakeGraph{},
		generation: &fakeGeneration{},
	}
	f.server = NewServer(f.ingestion, f.hydration, f.graph, f.generation, ServerOptions{
		APISecret: testSecret,
		Auth:      NewAuthManager("session-secret", false, time.Hour),
	}, &log)
	return f
}
