package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/abelbrown/dashtable/internal/params"
)

// StatusError is a non-2xx response from a remote collection.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP error: %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("HTTP error: %d %s: %s", e.Code, http.StatusText(e.Code), e.Body)
}

// HTTPSource fetches pages from a JSON list endpoint, passing params as
// the query string. Requests are throttled so a user paging quickly
// cannot flood the server.
type HTTPSource struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

// NewHTTPSource returns a Source for <baseURL>/api/<resource>.
func NewHTTPSource(baseURL, resource string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		endpoint: strings.TrimRight(baseURL, "/") + "/api/" + resource,
		client:   &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Every(100*time.Millisecond), 4),
	}
}

// Fetch requests the page described by p.
func (s *HTTPSource) Fetch(ctx context.Context, p params.RequestParams) (Page, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return Page{}, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+p.Encode().Encode(), nil)
	if err != nil {
		return Page{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "dashtable/0.1")

	resp, err := s.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Page{}, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var page Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return Page{}, fmt.Errorf("parse response: %w", err)
	}
	return page, nil
}
