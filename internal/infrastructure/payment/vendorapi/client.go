// Package vendorapi is the JSON-over-HTTPS client shared by the vendor
// adapters that have no official Go SDK.
package vendorapi

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

	"github.com/floradex/billing/internal/domain/payment"
	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
)

const (
	DefaultTimeout  = 30 * time.Second
	maxResponseSize = 1 << 20
	maxErrorSnippet = 512
)

// StatusError is a non-2xx vendor response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err carries a 404 vendor response.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// StatusCode returns the vendor status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// Request describes one vendor call. Body is JSON-encoded unless Form is
// set.
type Request struct {
	Method  string
	Path    string
	Header  http.Header
	Body    any
	Form    string
	Out     any
	Context string
}

// Client sends requests for one provider. It never retries; a failed call
// surfaces as a PROVIDER_ERROR for the caller to report.
type Client struct {
	provider vo.Provider
	http     *http.Client
}

func NewClient(provider vo.Provider, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		provider: provider,
		http:     &http.Client{Timeout: timeout},
	}
}

// Do sends req to baseURL+req.Path and decodes a 2xx body into req.Out.
func (c *Client) Do(ctx context.Context, baseURL string, req Request) error {
	var body io.Reader
	contentType := ""
	switch {
	case req.Form != "":
		body = strings.NewReader(req.Form)
		contentType = "application/x-www-form-urlencoded"
	case req.Body != nil:
		buf, err := json.Marshal(req.Body)
		if err != nil {
			return payment.NewProviderError(c.provider, "failed to encode "+req.Context, err)
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, strings.TrimRight(baseURL, "/")+req.Path, body)
	if err != nil {
		return payment.NewProviderError(c.provider, "failed to build "+req.Context, err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return payment.NewProviderError(c.provider, req.Context+" request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return payment.NewProviderError(c.provider, "failed to read "+req.Context+" response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(raw)
		if len(snippet) > maxErrorSnippet {
			snippet = snippet[:maxErrorSnippet]
		}
		return payment.NewProviderError(c.provider, req.Context+" failed",
			&StatusError{StatusCode: resp.StatusCode, Body: snippet})
	}

	if req.Out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, req.Out); err != nil {
			return payment.NewProviderError(c.provider, "failed to decode "+req.Context+" response", err)
		}
	}
	return nil
}
