// Package client is a Go client for the scheduled reports API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JonMunkholm/reportkit/internal/core"
)

// XSRFValue is sent in the kbn-xsrf header of mutating calls.
const XSRFValue = "reporting"

// DefaultTimeout bounds a single API call.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// APIError is returned for non-2xx responses.
type APIError struct {
	Status  int
	Code    string
	Message string
	Action  string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client calls a reportkit server. Requests are never retried.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithAPIKey sends key in the X-API-Key header.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// New creates a client for the server at baseURL, e.g. http://localhost:8080.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL %q must use http or https", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CreateScheduledReport submits req and returns the stored record.
func (c *Client) CreateScheduledReport(ctx context.Context, req core.CreateScheduledReportRequest) (core.ScheduledReport, error) {
	var report core.ScheduledReport
	err := c.do(ctx, http.MethodPut, "/api/scheduled_reports/create", req, &report)
	return report, err
}

// ListScheduledReports returns every scheduled report, oldest first.
func (c *Client) ListScheduledReports(ctx context.Context) ([]core.ScheduledReport, error) {
	var reports []core.ScheduledReport
	err := c.do(ctx, http.MethodGet, "/api/scheduled_reports", nil, &reports)
	return reports, err
}

// GetScheduledReport returns one scheduled report.
func (c *Client) GetScheduledReport(ctx context.Context, id string) (core.ScheduledReport, error) {
	var report core.ScheduledReport
	err := c.do(ctx, http.MethodGet, "/api/scheduled_reports/"+url.PathEscape(id), nil, &report)
	return report, err
}

// DeleteScheduledReport removes one scheduled report.
func (c *Client) DeleteScheduledReport(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/scheduled_reports/"+url.PathEscape(id), nil, nil)
}

// Example returns the server time reported by the example route.
func (c *Client) Example(ctx context.Context) (time.Time, error) {
	var resp struct {
		Time string `json:"time"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/scheduled_reports/example", nil, &resp); err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, resp.Time)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse example time %q: %w", resp.Time, err)
	}
	return t, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("kbn-xsrf", XSRFValue)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	apiErr := &APIError{Status: resp.StatusCode}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Action  string `json:"action"`
		Code    string `json:"code"`
	}
	if json.Unmarshal(data, &body) == nil {
		apiErr.Code = body.Code
		apiErr.Action = body.Action
		apiErr.Message = body.Message
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
