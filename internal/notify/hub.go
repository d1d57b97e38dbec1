package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/marinerstack/mariner-guard/internal/models"
)

// HubClient posts notifications to an HTTP notification hub. A publish sends
// the notification body under its key; a clear sends an explicit null for the
// same key, which the hub contract defines as "remove this notification".
type HubClient struct {
	baseURL    string
	path       string
	httpClient *http.Client
}

// NewHubClient constructs a sink targeting the configured hub.
func NewHubClient(baseURL, path string, timeout time.Duration) *HubClient {
	return &HubClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		path:    path,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type hubEnvelope struct {
	Key string `json:"key"`
	// Notification is a pointer so a clear serializes as a literal null.
	Notification *models.Notification `json:"notification"`
}

// Publish delivers one notification record.
func (c *HubClient) Publish(ctx context.Context, n models.Notification) error {
	if c == nil || c.baseURL == "" {
		return fmt.Errorf("notification hub not configured")
	}
	return c.post(ctx, hubEnvelope{Key: n.Key, Notification: &n})
}

// Clear publishes the null absence signal for a key.
func (c *HubClient) Clear(ctx context.Context, key string) error {
	if c == nil || c.baseURL == "" {
		return fmt.Errorf("notification hub not configured")
	}
	return c.post(ctx, hubEnvelope{Key: key, Notification: nil})
}

func (c *HubClient) post(ctx context.Context, envelope hubEnvelope) error {
	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("hub rejected %s: status %d: %s", envelope.Key, resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	return nil
}
