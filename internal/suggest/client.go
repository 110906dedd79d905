package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/lbraga/studytrack/internal/logger"
)

// Client talks to the external resource-suggestion service. Responses
// are treated as an opaque catalog; the service's internals are not
// our concern.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        logger.Default().WithPrefix("suggest"),
	}
}

// Suggestion is one catalog entry returned by the service.
type Suggestion struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Type          string  `json:"type"`
	Description   string  `json:"description"`
	Platform      string  `json:"platform"`
	Difficulty    string  `json:"difficulty"`
	EstimatedTime float64 `json:"estimated_time"`
	IsFree        bool    `json:"is_free"`
}

func (c *Client) Suggestions(ctx context.Context, topic string, limit int) ([]Suggestion, error) {
	log := logger.FromContext(ctx).WithPrefix("suggest").WithField("topic", topic)

	q := url.Values{}
	q.Set("topic", topic)
	q.Set("limit", strconv.Itoa(limit))
	endpoint := fmt.Sprintf("%s/v1/suggestions?%s", c.baseURL, q.Encode())

	log.Debug("fetching suggestions from: %s", endpoint)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		log.Error("failed to create request: %v", err)
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("failed to fetch suggestions: %v", err)
		return nil, err
	}
	defer resp.Body.Close()

	log.Debug("suggestions response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("suggestions request failed: status=%d, body=%s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("suggestions status %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Suggestions []Suggestion `json:"suggestions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		log.Error("failed to decode suggestions response: %v", err)
		return nil, err
	}

	log.Info("fetched %d suggestions for topic %s", len(payload.Suggestions), topic)
	return payload.Suggestions, nil
}
