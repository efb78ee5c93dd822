// Package aiclient is a thin client for the hosted generative-AI
// service backing the chat, anomaly and substitute-suggestion panels.
// It shapes request context, posts JSON, and validates only the shape
// of what comes back; all detection and reasoning happens remotely.
package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrBadResponse is returned when the service answers with a shape the
// caller cannot use. It is deliberately generic: the user-facing
// affordance is "try again", not a diagnostic. No automatic retry
// happens here.
var ErrBadResponse = errors.New("ai service returned an unusable response")

// Client calls the AI service.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	Skip    bool
}

// New creates a client. Skip enables canned responses for development
// without the service.
func New(baseURL, apiKey string, skip bool) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Skip:    skip,
		HTTP: &http.Client{
			Timeout: 30 * time.Second, // generation can take a while
		},
	}
}

// ChatReply is a single assistant turn.
type ChatReply struct {
	Text string `json:"text"`
}

// Chat sends a free-text prompt with optional context and returns the
// assistant reply.
func (c *Client) Chat(ctx context.Context, prompt, contextText string) (*ChatReply, error) {
	if c.Skip {
		return &ChatReply{Text: "mock reply"}, nil
	}
	if prompt == "" {
		return nil, fmt.Errorf("prompt required")
	}

	var out ChatReply
	if err := c.post(ctx, "/v1/chat", map[string]string{
		"prompt":  prompt,
		"context": contextText,
	}, &out); err != nil {
		return nil, err
	}
	if out.Text == "" {
		return nil, ErrBadResponse
	}
	return &out, nil
}

// EmotionResult labels a captured face.
type EmotionResult struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// LabelEmotion asks the service to classify the emotion on a captured
// frame referenced by URL.
func (c *Client) LabelEmotion(ctx context.Context, imageURL string) (*EmotionResult, error) {
	if c.Skip {
		return &EmotionResult{Label: "neutral", Confidence: 0.9}, nil
	}
	if imageURL == "" {
		return nil, fmt.Errorf("image url required")
	}

	var out EmotionResult
	if err := c.post(ctx, "/v1/emotion", map[string]string{"image_url": imageURL}, &out); err != nil {
		return nil, err
	}
	if out.Label == "" {
		return nil, ErrBadResponse
	}
	return &out, nil
}

// Anomaly is one flagged pattern in an attendance summary.
type Anomaly struct {
	RollNumber  string `json:"roll_number"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

// AnomalyReport is the service's analysis of an attendance summary.
type AnomalyReport struct {
	Anomalies []Anomaly `json:"anomalies"`
	Summary   string    `json:"summary"`
}

// AnalyzeAnomalies submits an attendance summary for pattern analysis.
func (c *Client) AnalyzeAnomalies(ctx context.Context, summary string) (*AnomalyReport, error) {
	if c.Skip {
		return &AnomalyReport{Summary: "no anomalies detected (mock)"}, nil
	}
	if summary == "" {
		return nil, fmt.Errorf("summary required")
	}

	var out AnomalyReport
	if err := c.post(ctx, "/v1/anomalies", map[string]string{"summary": summary}, &out); err != nil {
		return nil, err
	}
	if out.Summary == "" && out.Anomalies == nil {
		return nil, ErrBadResponse
	}
	return &out, nil
}

// SubstituteRequest describes a slot that needs covering.
type SubstituteRequest struct {
	Subject    string   `json:"subject"`
	Department string   `json:"department"`
	DayOfWeek  int      `json:"day_of_week"`
	StartTime  string   `json:"start_time"`
	Available  []string `json:"available_teacher_ids"`
}

// SubstituteSuggestion is the service's pick for a vacant slot.
type SubstituteSuggestion struct {
	TeacherID string `json:"teacher_id"`
	Rationale string `json:"rationale"`
}

// SuggestSubstitute asks the service to pick a substitute from the
// available teachers.
func (c *Client) SuggestSubstitute(ctx context.Context, req SubstituteRequest) (*SubstituteSuggestion, error) {
	if c.Skip {
		pick := "none"
		if len(req.Available) > 0 {
			pick = req.Available[0]
		}
		return &SubstituteSuggestion{TeacherID: pick, Rationale: "first available (mock)"}, nil
	}
	if len(req.Available) == 0 {
		return nil, fmt.Errorf("no available teachers to choose from")
	}

	var out SubstituteSuggestion
	if err := c.post(ctx, "/v1/substitute", req, &out); err != nil {
		return nil, err
	}
	if out.TeacherID == "" {
		return nil, ErrBadResponse
	}
	return &out, nil
}

// Health checks if the AI service is available.
func (c *Client) Health(ctx context.Context) error {
	if c.Skip {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("ai service unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("ai service unhealthy: %s", resp.Status)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("ai service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ai service error %s: %s", resp.Status, string(bodyBytes))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return nil
}
