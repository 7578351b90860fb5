package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Client is a thin HTTP client for the task REST API. Authenticated calls
// go through an oauth2.Transport that attaches the session's bearer token;
// login and registration use a plain client. Calls are never retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
	plain      *http.Client
}

// NewClient creates a client rooted at baseURL (e.g. http://localhost:8000).
// tokens supplies the bearer token for every authenticated request.
func NewClient(baseURL string, tokens oauth2.TokenSource, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &oauth2.Transport{
				Source: tokens,
				Base:   http.DefaultTransport,
			},
		},
		plain: &http.Client{Timeout: timeout},
	}
}

// do builds the request, classifies the response status and decodes the
// JSON body into result when one is expected.
func (c *Client) do(
	ctx context.Context,
	hc *http.Client,
	method string,
	path string,
	body interface{},
	result interface{},
) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return &AuthError{Message: "Not authenticated"}
		}
		return &NetworkError{Op: fmt.Sprintf("%s %s", method, path), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: "reading response body", Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return &AuthError{
			StatusCode: resp.StatusCode,
			Message:    parseDetail(respBody),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ValidationError{
			StatusCode: resp.StatusCode,
			Detail:     parseDetail(respBody),
		}
	}

	// No content to parse (e.g. 204).
	if result == nil || resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
	}

	return nil
}
