package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dojosearch/dojosearch/internal/models"
)

// StreamClient resolves media identifiers through a stream-CDN signing API.
// The CDN issues time-limited playback URLs per asset.
type StreamClient struct {
	baseURL string
	token   string
	urlTTL  time.Duration
	client  *http.Client
}

var _ Resolver = (*StreamClient)(nil)

// NewStreamClient creates a CDN media resolver.
func NewStreamClient(baseURL, token string, urlTTL time.Duration, timeout time.Duration) (*StreamClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("media base URL required")
	}
	return &StreamClient{
		baseURL: baseURL,
		token:   token,
		urlTTL:  urlTTL,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type signRequest struct {
	TTLSeconds int `json:"ttl_seconds"`
}

type signResponse struct {
	URL       string     `json:"url"`
	Title     string     `json:"title,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Resolve requests a signed URL for the asset.
func (c *StreamClient) Resolve(ctx context.Context, id string, kind models.MediaKind) (models.MediaRef, error) {
	reqBody := signRequest{TTLSeconds: int(c.urlTTL.Seconds())}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return models.MediaRef{}, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/media/%s/sign", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return models.MediaRef{}, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return models.MediaRef{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return models.MediaRef{}, fmt.Errorf("CDN error (status %d): %s", resp.StatusCode, string(body))
	}

	var signed signResponse
	if err := json.NewDecoder(resp.Body).Decode(&signed); err != nil {
		return models.MediaRef{}, fmt.Errorf("decode response: %w", err)
	}
	if signed.URL == "" {
		return models.MediaRef{}, fmt.Errorf("CDN returned empty URL for %s", id)
	}

	return models.MediaRef{
		ID:        id,
		Kind:      kind,
		URL:       signed.URL,
		Title:     signed.Title,
		ExpiresAt: signed.ExpiresAt,
	}, nil
}
