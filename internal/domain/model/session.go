package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Label returns the display label used when formatting an episode body.
func (r Role) Label() string {
	if r == RoleUser {
		return "User"
	}
	return "Assistant"
}

// ContentPart is one piece of a multimodal message body.
type ContentPartType string

const (
	ContentPartText  ContentPartType = "text"
	ContentPartImage ContentPartType = "image_url"
)

type ContentPart struct {
	Type     ContentPartType
	Text     string
	ImageURL string
}

// Content is either a plain string or a list of typed parts. The variant is
// resolved explicitly at decode time rather than by runtime type inspection.
type Content struct {
	Text  string
	Parts []ContentPart
}

func (c *Content) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Text = s
		c.Parts = nil
		return nil
	}

	var raw []struct {
		Type     string `json:"type"`
		Text     string `json:"text"`
		ImageURL struct {
			URL string `json:"url"`
		} `json:"image_url"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("content must be a string or a part list: %w", err)
	}

	parts := make([]ContentPart, 0, len(raw))
	for _, p := range raw {
		switch ContentPartType(p.Type) {
		case ContentPartText:
			parts = append(parts, ContentPart{Type: ContentPartText, Text: p.Text})
		case ContentPartImage:
			parts = append(parts, ContentPart{Type: ContentPartImage, ImageURL: p.ImageURL.URL})
		default:
			return fmt.Errorf("unknown content part type %q", p.Type)
		}
	}
	c.Text = ""
	c.Parts = parts
	return nil
}

func (c Content) MarshalJSON() ([]byte, error) {
	if c.Parts == nil {
		return json.Marshal(c.Text)
	}
	raw := make([]map[string]any, 0, len(c.Parts))
	for _, p := range c.Parts {
		switch p.Type {
		case ContentPartImage:
			raw = append(raw, map[string]any{"type": "image_url", "image_url": map[string]string{"url": p.ImageURL}})
		default:
			raw = append(raw, map[string]any{"type": "text", "text": p.Text})
		}
	}
	return json.Marshal(raw)
}

// Resolve flattens the content to plain text. Image parts contribute a
// placeholder so their presence is not lost silently.
func (c Content) Resolve() string {
	if c.Parts == nil {
		return c.Text
	}
	var b strings.Builder
	for i, p := range c.Parts {
		if i > 0 {
			b.WriteString("\n")
		}
		switch p.Type {
		case ContentPartImage:
			b.WriteString("[image: " + p.ImageURL + "]")
		default:
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// IngestMessage is a single message from a finished chat session.
type IngestMessage struct {
	Role      Role    `json:"role"`
	Content   Content `json:"content"`
	Timestamp int64   `json:"timestamp"` // unix millis
}

type IngestMetadata struct {
	SessionStartedAt int64 `json:"sessionStartedAt"` // unix millis
	SessionEndedAt   int64 `json:"sessionEndedAt"`   // unix millis
	MessageCount     int   `json:"messageCount"`
}

// IngestRequest is the session payload submitted for knowledge extraction.
// JobID is caller-supplied and doubles as the idempotency key.
type IngestRequest struct {
	UserID    string          `json:"userId"`
	SessionID string          `json:"sessionId"`
	JobID     string          `json:"jobId"`
	Messages  []IngestMessage `json:"messages"`
	Metadata  IngestMetadata  `json:"metadata"`
}
