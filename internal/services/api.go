// API service for making HTTP requests to the watchmark server
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/watchmark/internal/shared"
)

// DefaultBaseURL is the address of a locally running `watchmark serve`.
const DefaultBaseURL = "http://127.0.0.1:5000"

// APIService performs raw HTTP requests against the library server.
type APIService struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIService creates a new API service instance for the library server.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// BaseURL returns the server address requests are sent to.
func (a *APIService) BaseURL() string {
	return a.baseURL
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
}

// Decode unmarshals the response body into v.
func (r *APIResponse) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Err returns an [*APIError] for non-2xx responses and for 2xx responses whose
// JSON body carries a non-empty "error" field. It returns nil otherwise.
func (r *APIResponse) Err() error {
	var body struct {
		Error string `json:"error"`
	}
	hasError := json.Unmarshal(r.Body, &body) == nil && body.Error != ""

	if r.StatusCode >= 200 && r.StatusCode < 300 {
		if hasError {
			return &APIError{StatusCode: r.StatusCode, Message: body.Error}
		}
		return nil
	}

	apiErr := &APIError{StatusCode: r.StatusCode}
	if r.IsJSON && hasError {
		apiErr.Message = body.Error
	} else {
		apiErr.Message = http.StatusText(r.StatusCode)
	}
	return apiErr
}

// APIError is an error reported by the server in an {"error": "..."} body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap lets callers match any server error with [shared.ErrAPIRequest].
func (e *APIError) Unwrap() error {
	return shared.ErrAPIRequest
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.do(ctx, http.MethodPost, path, data)
}

// PostJSON marshals v and posts it to path.
func (a *APIService) PostJSON(ctx context.Context, path string, v any) (*APIResponse, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return a.Post(ctx, path, data)
}

// Delete performs a DELETE request to the specified path and returns the raw response.
func (a *APIService) Delete(ctx context.Context, path string) (*APIResponse, error) {
	return a.do(ctx, http.MethodDelete, path, nil)
}

// Health checks that the server answers its liveness endpoint.
func (a *APIService) Health(ctx context.Context) error {
	resp, err := a.Get(ctx, "/healthz")
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	if err := resp.Err(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	return nil
}

// VideoURL returns the streaming URL for the video at the absolute filesystem path.
func (a *APIService) VideoURL(path string) string {
	return a.baseURL + PathURL("/api/video", path)
}

// PathURL appends an absolute filesystem path to prefix, escaping each segment.
func PathURL(prefix, path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return (&url.URL{Path: prefix + path}).EscapedPath()
}

// QueryURL returns path with params encoded as its query string.
func QueryURL(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}
	return path + "?" + params.Encode()
}

func (a *APIService) do(ctx context.Context, method, path string, data []byte) (*APIResponse, error) {
	fullURL := a.baseURL + path

	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       respBody,
		IsJSON:     json.Valid(respBody),
	}, nil
}
