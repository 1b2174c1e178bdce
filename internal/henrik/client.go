package henrik

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.henrikdev.xyz/valorant"

// ErrNoMatch means the API had no custom match for the player. The
// validator treats it as "skip this participant", not a failure.
var ErrNoMatch = errors.New("no recent custom match")

// Client handles HenrikDev Valorant API requests.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used in tests.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = base }
}

// WithTimeout overrides the HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// NewClient creates a new HenrikDev API client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// historyResponse wraps the match history payload.
type historyResponse struct {
	Data []Match `json:"data"`
}

// LatestCustomMatch fetches the player's single most recent custom-mode
// match. It makes exactly one request and never retries; a non-2xx
// status or an empty history both come back as ErrNoMatch.
func (c *Client) LatestCustomMatch(ctx context.Context, region, platform, puuid string) (*Match, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("no API key configured")
	}

	endpoint := fmt.Sprintf("%s/v4/by-puuid/matches/%s/%s/%s?mode=custom&size=1",
		c.baseURL, url.PathEscape(region), url.PathEscape(platform), url.PathEscape(puuid))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch match history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: API returned status %d", ErrNoMatch, resp.StatusCode)
	}

	var history historyResponse
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(history.Data) == 0 {
		return nil, ErrNoMatch
	}

	return &history.Data[0], nil
}
