package midtrans

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	mt "github.com/midtrans/midtrans-go"

	"github.com/floradex/billing/internal/shared/logger"
)

const maxResponseSize = 1 << 20

// httpClient implements mt.HttpClient. It enforces our timeout, honours a
// base URL override and turns Midtrans' in-body status codes into errors.
type httpClient struct {
	http     *http.Client
	override *url.URL
	logger   logger.Interface
}

var _ mt.HttpClient = (*httpClient)(nil)

func newHTTPClient(baseURL string, timeout time.Duration, log logger.Interface) *httpClient {
	c := &httpClient{http: &http.Client{Timeout: timeout}, logger: log}
	if baseURL != "" {
		if u, err := url.Parse(baseURL); err == nil {
			c.override = u
		}
	}
	return c
}

func (c *httpClient) Call(method, rawURL string, apiKey *string, options *mt.ConfigOptions, body io.Reader, result interface{}) *mt.Error {
	target, err := c.rewrite(rawURL)
	if err != nil {
		return &mt.Error{Message: "invalid request url", RawError: err}
	}

	req, err := http.NewRequest(method, target, body)
	if err != nil {
		return &mt.Error{Message: "failed to build request", RawError: err}
	}
	if options != nil && options.Ctx != nil {
		req = req.WithContext(options.Ctx)
	}
	if apiKey != nil {
		req.SetBasicAuth(*apiKey, "")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if options != nil && options.PaymentIdempotencyKey != nil {
		req.Header.Set("Idempotency-Key", *options.PaymentIdempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &mt.Error{Message: "request failed", RawError: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &mt.Error{Message: "failed to read response", StatusCode: resp.StatusCode, RawError: err}
	}
	c.logger.Debugw("midtrans call", "method", method, "path", req.URL.Path, "status", resp.StatusCode)

	if resp.StatusCode >= 300 {
		return &mt.Error{Message: snippet(raw), StatusCode: resp.StatusCode}
	}

	// Core API answers 200 with the real outcome in status_code.
	var envelope struct {
		StatusCode    string `json:"status_code"`
		StatusMessage string `json:"status_message"`
	}
	if json.Unmarshal(raw, &envelope) == nil && envelope.StatusCode != "" {
		if code, err := strconv.Atoi(envelope.StatusCode); err == nil && code >= 300 && code != 407 {
			return &mt.Error{Message: envelope.StatusMessage, StatusCode: code}
		}
	}

	if result != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, result); err != nil {
			return &mt.Error{Message: "failed to decode response", StatusCode: resp.StatusCode, RawError: err}
		}
	}
	return nil
}

func (c *httpClient) rewrite(rawURL string) (string, error) {
	if c.override == nil {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	u.Scheme = c.override.Scheme
	u.Host = c.override.Host
	u.Path = strings.TrimRight(c.override.Path, "/") + u.Path
	return u.String(), nil
}

func snippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 512 {
		s = s[:512]
	}
	return s
}
