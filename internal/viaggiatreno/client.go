// Package viaggiatreno is a client for the ViaggiaTreno REST API, the
// primary source of station and train data.
//
// The API is semi-documented: endpoints are GET requests keyed by a method
// name plus positional path parameters, and failures come back either as a
// non-200 status or as a 200 whose body contains "Error".
package viaggiatreno

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MarcoBuster/railway-opendata/internal/railapi"
)

// DefaultBaseURL is the production ViaggiaTreno endpoint root.
const DefaultBaseURL = "http://www.viaggiatreno.it/infomobilita/resteasy/viaggiatreno/"

// departuresTimeLayout is the peculiar wall-clock format the partenze
// endpoint expects as its second path parameter.
const departuresTimeLayout = "Mon Jan 02 2006 15:04:05"

// Client performs requests against a ViaggiaTreno-compatible API.
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

// raw performs a GET of {base}/{method}/{param1}/{param2}/... and returns
// the raw response body.
func (c *Client) raw(ctx context.Context, method string, params ...any) ([]byte, error) {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, fmt.Sprint(p))
	}
	url := c.baseURL + method + "/" + strings.Join(parts, "/")
	return railapi.Get(ctx, c.httpClient, url, c.maxRetries)
}

// RegionCode looks up the region a station belongs to. This is the
// authoritative source for region codes; elencoStazioni responses may
// disagree with it.
func (c *Client) RegionCode(ctx context.Context, stationCode string) (int, error) {
	body, err := c.raw(ctx, "regione", stationCode)
	if err != nil {
		return 0, err
	}
	code, err := strconv.Atoi(strings.TrimSpace(string(body)))
	if err != nil {
		return 0, fmt.Errorf("regione %s: unparsable region code: %w", stationCode, err)
	}
	return code, nil
}

// StationDetail fetches the full record of a single station.
func (c *Client) StationDetail(ctx context.Context, stationCode string, regionCode int) (StationRecord, error) {
	var rec StationRecord
	body, err := c.raw(ctx, "dettaglioStazione", stationCode, regionCode)
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(body, &rec); err != nil {
		return rec, fmt.Errorf("dettaglioStazione %s: %w", stationCode, err)
	}
	return rec, nil
}

// StationsByRegion fetches every station record tagged with a region,
// placeholder entries included; filtering is up to the caller.
func (c *Client) StationsByRegion(ctx context.Context, regionCode int) ([]StationRecord, error) {
	body, err := c.raw(ctx, "elencoStazioni", regionCode)
	if err != nil {
		return nil, err
	}
	var recs []StationRecord
	if err := json.Unmarshal(body, &recs); err != nil {
		return nil, fmt.Errorf("elencoStazioni %d: %w", regionCode, err)
	}
	return recs, nil
}

// Departures lists the trains currently departing from a station.
func (c *Client) Departures(ctx context.Context, stationCode string, when time.Time) ([]DepartureRecord, error) {
	body, err := c.raw(ctx, "partenze", stationCode, when.Format(departuresTimeLayout))
	if err != nil {
		return nil, err
	}
	var recs []DepartureRecord
	if err := json.Unmarshal(body, &recs); err != nil {
		return nil, fmt.Errorf("partenze %s: %w", stationCode, err)
	}
	return recs, nil
}

// TrainStatus fetches the full detail of one train. departureMidnight must
// be midnight of the departure date in the train's timezone; the endpoint
// keys trains by (origin, number, departure epoch).
func (c *Client) TrainStatus(ctx context.Context, originCode string, trainNumber int, departureMidnight time.Time) (TrainStatus, error) {
	var status TrainStatus
	body, err := c.raw(ctx, "andamentoTreno", originCode, trainNumber, departureMidnight.UnixMilli())
	if err != nil {
		return status, err
	}
	if err := json.Unmarshal(body, &status); err != nil {
		return status, fmt.Errorf("andamentoTreno %s/%d: %w", originCode, trainNumber, err)
	}
	return status, nil
}
