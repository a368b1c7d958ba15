// File: internal/infra/extraction/graphiti.go
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/synapse-ai/cortex/internal/domain/ports/adapter"
)

// Compile-time assurance this client satisfies the port
var _ adapter.ExtractionEngine = (*GraphitiClient)(nil)

// GraphitiClient calls the extraction service's add-episode endpoint. The
// service owns all graph mutation; this process only reads the graph.
type GraphitiClient struct {
	base   string
	apiKey string
	client *http.Client
}

func NewGraphitiClient(baseURL, apiKey string, timeout time.Duration) (*GraphitiClient, error) {
	if baseURL == "" {
		return nil, errors.New("graphiti: empty base url")
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &GraphitiClient{
		base:   strings.TrimRight(baseURL, "/"),
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
	}, nil
}

type episodeRequest struct {
	Name              string `json:"name"`
	EpisodeBody       string `json:"episode_body"`
	Source            string `json:"source"`
	SourceDescription string `json:"source_description"`
	GroupID           string `json:"group_id"`
	ReferenceTime     string `json:"reference_time"`
}

type episodeResponse struct {
	NodesCreated int    `json:"nodes_created"`
	EdgesCreated int    `json:"edges_created"`
	EpisodeUUID  string `json:"episode_uuid"`
}

func (c *GraphitiClient) AddEpisode(ctx context.Context, ep adapter.EpisodeInput) (adapter.ExtractionResult, error) {
	body := episodeRequest{
		Name:              ep.Name,
		EpisodeBody:       ep.Body,
		Source:            string(ep.Source),
		SourceDescription: ep.SourceDescription,
		GroupID:           ep.GroupID,
		ReferenceTime:     ep.ReferenceTime.UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(body)
	if err != nil {
		return adapter.ExtractionResult{}, fmt.Errorf("graphiti: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/episodes", bytes.NewReader(b))
	if err != nil {
		return adapter.ExtractionResult{}, fmt.Errorf("graphiti: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return adapter.ExtractionResult{}, fmt.Errorf("graphiti: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return adapter.ExtractionResult{}, fmt.Errorf("graphiti http %d: %s", resp.StatusCode, strings.TrimSpace(string(excerpt)))
	}

	var out episodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return adapter.ExtractionResult{}, fmt.Errorf("graphiti: decode response: %w", err)
	}
	return adapter.ExtractionResult{
		NodesCreated: out.NodesCreated,
		EdgesCreated: out.EdgesCreated,
		EpisodeID:    out.EpisodeUUID,
	}, nil
}
