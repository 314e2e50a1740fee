// Package notify pushes the finished digest through the templated
// messaging API.
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

	"newsbrief/internal/digest"
)

// Config configures the push client.
type Config struct {
	Endpoint   string
	Token      string
	TemplateID string
	Timeout    time.Duration
}

// Client posts template messages to the messaging API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient builds a client from configuration.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Send posts the template record's positional fields in the fixed order the
// template expects: date, then point1..point8, then link1..link8.
func (c *Client) Send(ctx context.Context, record digest.TemplateRecord) error {
	if c.cfg.Endpoint == "" || c.cfg.Token == "" {
		return fmt.Errorf("notify client misconfigured")
	}

	variables := map[string]string{
		"date": record.Date,
	}
	for i := 0; i < digest.PointCount; i++ {
		variables[fmt.Sprintf("point%d", i+1)] = record.Points[i]
		variables[fmt.Sprintf("link%d", i+1)] = record.Links[i]
	}

	body, err := json.Marshal(map[string]any{
		"template_id": c.cfg.TemplateID,
		"variables":   variables,
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("messaging error %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}
	return nil
}
