// Package trenord is a client for Trenord's store-management API, the
// secondary source used to enrich and repair Trenord-operated trains.
package trenord

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MarcoBuster/railway-opendata/internal/railapi"
)

// DefaultBaseURL is the production Trenord endpoint root.
const DefaultBaseURL = "https://admin.trenord.it/store-management-api/mia/"

// Client performs requests against a Trenord-compatible API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries uint64
}

// NewClient builds a Client. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, timeout time.Duration, maxRetries int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: uint64(maxRetries),
	}
}

// Train fetches every journey document Trenord knows for a train number.
// An unknown number yields an empty slice, not an error.
func (c *Client) Train(ctx context.Context, number int) ([]TrainDocument, error) {
	url := fmt.Sprintf("%strain/%d", c.baseURL, number)
	body, err := railapi.Get(ctx, c.httpClient, url, c.maxRetries)
	if err != nil {
		return nil, err
	}
	var docs []TrainDocument
	if err := json.Unmarshal(body, &docs); err != nil {
		return nil, fmt.Errorf("train %d: %w", number, err)
	}
	return docs, nil
}
