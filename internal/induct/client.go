// Package induct implements the client for the external innovation-workflow
// acceptance API.
package induct

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Idea is the acceptance payload. Description carries pre-rendered HTML.
type Idea struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Client talks to the external acceptance API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New creates a client for the given API base URL, e.g. "https://api.induct.no".
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateIdea posts an idea under the given tenant client id and returns the
// external object id assigned by the acceptance system.
func (c *Client) CreateIdea(ctx context.Context, clientID string, idea Idea) (string, error) {
	payload, err := json.Marshal(idea)
	if err != nil {
		return "", err
	}

	u := fmt.Sprintf("%s/v1/%s/initiatives/ideas", c.BaseURL, clientID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("induct: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("induct: create idea failed with status %d", resp.StatusCode)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("induct: decode: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("induct: response carried no object id")
	}
	return created.ID, nil
}
