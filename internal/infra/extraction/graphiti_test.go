package extraction

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/synapse-ai/cortex/internal/domain/ports/adapter"
)

func testEpisode() adapter.EpisodeInput {
	return adapter.EpisodeInput{
		Name:              "session_sess-1",
		Body:              "User: hi\n\nAssistant: hello",
		Source:            adapter.EpisodeSourceMessage,
		SourceDescription: "Chat conversation",
		GroupID:           "user-1",
		ReferenceTime:     time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestAddEpisodeRequestAndResponse(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"nodes_created": 3,
			"edges_created": 5,
			"episode_uuid":  "ep-42",
		})
	}))
	defer srv.Close()

	c, err := NewGraphitiClient(srv.URL, "key-1", time.Second)
	if err != nil {
		t.Fatalf("NewGraphitiClient: %v", err)
	}

	res, err := c.AddEpisode(context.Background(), testEpisode())
	if err != nil {
		t.Fatalf("AddEpisode: %v", err)
	}

	if gotPath != "/episodes" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer key-1" {
		t.Errorf("auth = %q", gotAuth)
	}
	if gotBody["name"] != "session_sess-1" || gotBody["group_id"] != "user-1" {
		t.Errorf("request body = %v", gotBody)
	}
	if gotBody["source"] != "message" {
		t.Errorf("source = %v", gotBody["source"])
	}
	if gotBody["reference_time"] != "2026-08-01T12:00:00Z" {
		t.Errorf("reference_time = %v", gotBody["reference_time"])
	}

	if res.NodesCreated != 3 || res.EdgesCreated != 5 || res.EpisodeID != "ep-42" {
		t.Errorf("result = %+v", res)
	}
}

func TestAddEpisodeHTTPErrorCarriesExcerpt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"detail":"gemini rate limited"}`))
	}))
	defer srv.Close()

	c, _ := NewGraphitiClient(srv.URL, "", time.Second)
	_, err := c.AddEpisode(context.Background(), testEpisode())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "502") || !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("err = %v", err)
	}
}

func TestNewGraphitiClientRequiresBaseURL(t *testing.T) {
	if _, err := NewGraphitiClient("", "", time.Second); err == nil {
		t.Error("expected error for empty base url")
	}
}
