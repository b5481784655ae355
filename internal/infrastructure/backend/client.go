package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mutitpay-storefront/internal/domain"
	"mutitpay-storefront/pkg/logger"

	"github.com/goccy/go-json"
)

// maxErrorBody bounds how much of a failed response is kept for the error message
const maxErrorBody = 4 << 10

// APIError is a non-2xx answer from the commerce API
type APIError struct {
	Status  int
	Message string
	Body    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

// UserMessage is the message the API meant for the end user, if any
func (e *APIError) UserMessage() string {
	return e.Message
}

// Unwrap lets callers match on the domain sentinels
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrUnauthorized
	}
	if e.Status >= 500 {
		return domain.ErrBackendUnavailable
	}
	return nil
}

// Client talks JSON to the commerce REST API
type Client struct {
	baseURL      string
	mediaBaseURL string
	http         *http.Client
}

func NewClient(baseURL, mediaBaseURL string, timeout time.Duration) *Client {
	return NewClientWithHTTP(baseURL, mediaBaseURL, &http.Client{Timeout: timeout})
}

func NewClientWithHTTP(baseURL, mediaBaseURL string, hc *http.Client) *Client {
	baseURL = strings.TrimSuffix(baseURL, "/")
	mediaBaseURL = strings.TrimSuffix(mediaBaseURL, "/")
	if mediaBaseURL == "" {
		mediaBaseURL = baseURL
	}
	return &Client{baseURL: baseURL, mediaBaseURL: mediaBaseURL, http: hc}
}

// request is one API call. Body is JSON encoded unless Raw is set.
type request struct {
	method      string
	path        string
	query       url.Values
	body        any
	raw         io.Reader
	contentType string
	token       string
}

func (c *Client) do(ctx context.Context, req request, out any) error {
	data, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.method, req.path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, req request) ([]byte, error) {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	contentType := req.contentType
	switch {
	case req.raw != nil:
		body = req.raw
	case req.body != nil:
		payload, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", req.method, req.path, err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		logger.BackendCall(ctx, req.method, req.path, 0, time.Since(start), err)
		return nil, fmt.Errorf("%s %s: %w: %v", req.method, req.path, domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.BackendCall(ctx, req.method, req.path, resp.StatusCode, time.Since(start), err)
		return nil, fmt.Errorf("%s %s: read body: %w: %v", req.method, req.path, domain.ErrBackendUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(data)}
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		apiErr.Body = string(data)
		logger.BackendCall(ctx, req.method, req.path, resp.StatusCode, time.Since(start), apiErr)
		return nil, apiErr
	}

	logger.BackendCall(ctx, req.method, req.path, resp.StatusCode, time.Since(start), nil)
	return data, nil
}

// errorMessage pulls a human message out of the usual DRF error shapes
func errorMessage(data []byte) string {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return ""
	}
	for _, key := range []string{"error", "detail", "message", "error_message"} {
		if s, ok := obj[key].(string); ok && s != "" {
			return s
		}
	}
	// field errors: {"name": ["This field is required."]}
	for field, v := range obj {
		if list, ok := v.([]any); ok && len(list) > 0 {
			if s, ok := list[0].(string); ok {
				return field + ": " + s
			}
		}
	}
	return ""
}

// IsAPIStatus reports whether err is an APIError with the given status
func IsAPIStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// listEnvelope is the paginated DRF shape
type listEnvelope[T any] struct {
	Count   int64 `json:"count"`
	Results []T   `json:"results"`
}

// decodeList accepts a bare JSON array or a {count, results} envelope
func decodeList[T any](data []byte) ([]T, int64, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, 0, nil
	}
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, 0, err
		}
		return items, int64(len(items)), nil
	}
	var env listEnvelope[T]
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, 0, err
	}
	if env.Count == 0 {
		env.Count = int64(len(env.Results))
	}
	return env.Results, env.Count, nil
}

func (c *Client) getList(ctx context.Context, req request) ([]byte, error) {
	req.method = http.MethodGet
	return c.send(ctx, req)
}

// mediaURL resolves a relative media path against the media base URL
func (c *Client) mediaURL(p string) string {
	if p == "" || strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") || strings.HasPrefix(p, "data:") {
		return p
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return c.mediaBaseURL + p
}
