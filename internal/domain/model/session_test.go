package model

import (
	"encoding/json"
	"testing"
)

func TestContentUnmarshalString(t *testing.T) {
	var c Content
	if err := json.Unmarshal([]byte(`"hello world"`), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Text != "hello world" || c.Parts != nil {
		t.Errorf("content = %+v", c)
	}
	if c.Resolve() != "hello world" {
		t.Errorf("Resolve() = %q", c.Resolve())
	}
}

func TestContentUnmarshalParts(t *testing.T) {
	raw := `[
		{"type": "text", "text": "look at this"},
		{"type": "image_url", "image_url": {"url": "https://example.com/cat.png"}}
	]`
	var c Content
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(c.Parts) != 2 {
		t.Fatalf("parts = %+v", c.Parts)
	}
	if c.Parts[0].Type != ContentPartText || c.Parts[0].Text != "look at this" {
		t.Errorf("part 0 = %+v", c.Parts[0])
	}
	if c.Parts[1].Type != ContentPartImage || c.Parts[1].ImageURL != "https://example.com/cat.png" {
		t.Errorf("part 1 = %+v", c.Parts[1])
	}

	want := "look at this\n[image: https://example.com/cat.png]"
	if got := c.Resolve(); got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}
}

func TestContentUnmarshalRejectsUnknownPartType(t *testing.T) {
	var c Content
	err := json.Unmarshal([]byte(`[{"type": "audio", "text": "x"}]`), &c)
	if err == nil {
		t.Error("expected error for unknown part type")
	}
}

func TestContentMarshalRoundTrip(t *testing.T) {
	c := Content{Parts: []ContentPart{
		{Type: ContentPartText, Text: "hi"},
		{Type: ContentPartImage, ImageURL: "https://example.com/a.png"},
	}}
	b, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Content
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Resolve() != c.Resolve() {
		t.Errorf("round trip changed content: %q vs %q", back.Resolve(), c.Resolve())
	}
}

func TestIngestRequestDecodesMixedContent(t *testing.T) {
	raw := `{
		"userId": "user-1",
		"sessionId": "sess-1",
		"jobId": "job-1",
		"messages": [
			{"role": "user", "content": "plain text", "timestamp": 1700000000000},
			{"role": "assistant", "content": [{"type": "text", "text": "structured"}]}
		],
		"metadata": {"sessionStartedAt": 1700000000000, "sessionEndedAt": 1700000060000, "messageCount": 2}
	}`
	var req IngestRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.JobID != "job-1" || len(req.Messages) != 2 {
		t.Fatalf("request = %+v", req)
	}
	if req.Messages[0].Content.Resolve() != "plain text" {
		t.Errorf("message 0 = %q", req.Messages[0].Content.Resolve())
	}
	if req.Messages[1].Content.Resolve() != "structured" {
		t.Errorf("message 1 = %q", req.Messages[1].Content.Resolve())
	}
	if req.Metadata.SessionEndedAt != 1700000060000 {
		t.Errorf("sessionEndedAt = %d", req.Metadata.SessionEndedAt)
	}
}

func TestRoleLabel(t *testing.T) {
	if RoleUser.Label() != "User" {
		t.Errorf("user label = %q", RoleUser.Label())
	}
	if RoleAssistant.Label() != "Assistant" {
		t.Errorf("assistant label = %q", RoleAssistant.Label())
	}
}
