// Package railapi contains the HTTP plumbing shared by the ViaggiaTreno and
// Trenord clients: a GET helper with bounded exponential retry and the
// common request-failure convention of both upstreams.
package railapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/cenkalti/backoff/v4"
)

// RequestError is returned for any upstream response that does not count as
// a success: a non-200 status, or a 200 whose body carries an "Error"
// marker (ViaggiaTreno reports some failures that way).
type RequestError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	body := e.Body
	if len(body) > 120 {
		body = body[:120] + "..."
	}
	return fmt.Sprintf("request %s failed: status %d: %q", e.URL, e.StatusCode, body)
}

// NoContent reports whether the failure is the upstream's "no content"
// signal, which callers treat as "this entity has no detail" rather than as
// an actual error.
func (e *RequestError) NoContent() bool {
	return e.StatusCode == http.StatusNoContent
}

// IsNoContent reports whether err is a RequestError carrying the
// "no content" signal.
func IsNoContent(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.NoContent()
}

// retryableStatus lists the statuses worth retrying: transient upstream
// overload or the WAF tantrums ViaggiaTreno occasionally throws.
var retryableStatus = map[int]bool{
	http.StatusForbidden:           true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Get fetches url, retrying transport failures and retryable statuses with
// exponential backoff up to maxRetries extra attempts. Every other failure
// is permanent for this request and surfaces immediately as *RequestError.
func Get(ctx context.Context, client *http.Client, url string, maxRetries uint64) ([]byte, error) {
	op := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusOK || bytes.Contains(body, []byte("Error")) {
			reqErr := &RequestError{URL: url, StatusCode: resp.StatusCode, Body: string(body)}
			if retryableStatus[resp.StatusCode] {
				return nil, reqErr
			}
			return nil, backoff.Permanent(reqErr)
		}

		return body, nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	return backoff.RetryWithData(op, b)
}
