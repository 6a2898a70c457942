package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/desertthunder/watchmark/internal/shared"
	tu "github.com/desertthunder/watchmark/internal/testing"
)

func TestAPIService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			customClient := &http.Client{}
			srv := NewAPIService("http://example.com/", customClient)

			if srv.baseURL != "http://example.com" {
				t.Errorf("expected baseURL 'http://example.com', got %s", srv.baseURL)
			}
			if srv.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
		})

		t.Run("With Empty BaseURL", func(t *testing.T) {
			srv := NewAPIService("", nil)

			if srv.BaseURL() != DefaultBaseURL {
				t.Errorf("expected default baseURL %s, got %s", DefaultBaseURL, srv.BaseURL())
			}
		})

		t.Run("With Nil Client", func(t *testing.T) {
			srv := NewAPIService("http://example.com", nil)

			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("Successful Request With JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				if r.URL.Path != "/test" {
					t.Errorf("expected path '/test', got %s", r.URL.Path)
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(map[string]string{"status": "success"})
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			resp, err := srv.Get(context.Background(), "/test")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.StatusCode != http.StatusOK {
				t.Errorf("expected status 200, got %d", resp.StatusCode)
			}
			if !resp.IsJSON {
				t.Error("expected response to be JSON")
			}

			var data map[string]string
			if err := resp.Decode(&data); err != nil || data["status"] != "success" {
				t.Errorf("expected decoded status, got %v, %v", data, err)
			}
		})

		t.Run("Successful Request With Non-JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/plain")
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("plain text response"))
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			resp, err := srv.Get(context.Background(), "/test")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.IsJSON {
				t.Error("expected response to not be JSON")
			}
			if string(resp.Body) != "plain text response" {
				t.Errorf("expected body 'plain text response', got %s", string(resp.Body))
			}
		})

		t.Run("Failed Request Creation", func(t *testing.T) {
			srv := NewAPIService("http://example.com", nil)
			_, err := srv.Get(context.Background(), "/test\x00invalid")

			if err == nil {
				t.Fatal("expected error for invalid URL")
			}
			if !strings.Contains(err.Error(), "failed to create request") {
				t.Errorf("expected 'failed to create request' error, got %v", err)
			}
		})

		t.Run("Failed HTTP Request", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed")),
			}

			srv := NewAPIService("http://example.com", client)
			_, err := srv.Get(context.Background(), "/test")

			if err == nil {
				t.Fatal("expected error for failed request")
			}
			if !strings.Contains(err.Error(), "request failed") {
				t.Errorf("expected 'request failed' error, got %v", err)
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     http.Header{},
				}, nil),
			}

			srv := NewAPIService("http://example.com", client)
			_, err := srv.Get(context.Background(), "/test")

			if err == nil {
				t.Fatal("expected error for failed body read")
			}
			if !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected 'failed to read response' error, got %v", err)
			}
		})

		t.Run("With Canceled Context", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			srv := NewAPIService(server.URL, nil)
			if _, err := srv.Get(ctx, "/test"); err == nil {
				t.Error("expected error for canceled context")
			}
		})
	})

	t.Run("Post", func(t *testing.T) {
		t.Run("Sends JSON", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST method, got %s", r.Method)
				}
				if r.Header.Get("Content-Type") != "application/json" {
					t.Errorf("expected Content-Type 'application/json', got %s", r.Header.Get("Content-Type"))
				}

				body, _ := io.ReadAll(r.Body)
				var data map[string]string
				if err := json.Unmarshal(body, &data); err != nil {
					t.Errorf("failed to unmarshal request body: %v", err)
				}
				if data["test"] != "data" {
					t.Errorf("expected request data 'test:data', got %v", data)
				}

				w.WriteHeader(http.StatusCreated)
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			resp, err := srv.PostJSON(context.Background(), "/test", map[string]string{"test": "data"})

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.StatusCode != http.StatusCreated {
				t.Errorf("expected status 201, got %d", resp.StatusCode)
			}
		})

		t.Run("Unencodable Body", func(t *testing.T) {
			srv := NewAPIService("http://example.com", nil)
			if _, err := srv.PostJSON(context.Background(), "/test", make(chan int)); err == nil {
				t.Error("expected encode error")
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				t.Errorf("expected DELETE method, got %s", r.Method)
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		resp, err := NewAPIService(server.URL, nil).Delete(context.Background(), "/thing")
		if err != nil || resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %v, %v", resp, err)
		}
	})

	t.Run("Health", func(t *testing.T) {
		healthy := tu.NewRecordingServer(t, map[string]http.HandlerFunc{
			"GET /healthz": tu.JSONHandler(http.StatusOK, map[string]string{"status": "ok"}),
		})
		if err := NewAPIService(healthy.URL, nil).Health(context.Background()); err != nil {
			t.Errorf("expected healthy, got %v", err)
		}

		broken := tu.NewRecordingServer(t, nil)
		err := NewAPIService(broken.URL, nil).Health(context.Background())
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestAPIResponseErr(t *testing.T) {
	tests := []struct {
		name    string
		resp    APIResponse
		wantErr string
	}{
		{"Success", APIResponse{StatusCode: 200}, ""},
		{"JSON Error Body", APIResponse{StatusCode: 400, Body: []byte(`{"error":"Invalid folder path"}`), IsJSON: true}, "Invalid folder path"},
		{"Plain Body", APIResponse{StatusCode: 500, Body: []byte("oops")}, "Internal Server Error"},
		{"Error Body With OK Status", APIResponse{StatusCode: 200, Body: []byte(`{"error":"Invalid folder path"}`), IsJSON: true}, "Invalid folder path"},
		{"Empty Error With OK Status", APIResponse{StatusCode: 200, Body: []byte(`{"error":""}`), IsJSON: true}, ""},
		{"Array With OK Status", APIResponse{StatusCode: 200, Body: []byte(`[{"error":"x"}]`), IsJSON: true}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.resp.Err()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}

			if err == nil || err.Error() != tt.wantErr {
				t.Fatalf("expected %q, got %v", tt.wantErr, err)
			}
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Error("expected error to match ErrAPIRequest")
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.StatusCode != tt.resp.StatusCode {
				t.Errorf("expected APIError with status %d", tt.resp.StatusCode)
			}
		})
	}
}

func TestURLs(t *testing.T) {
	srv := NewAPIService("http://localhost:5000", nil)

	if got := srv.VideoURL("/media/My Show/ep 1.mp4"); got != "http://localhost:5000/api/video/media/My%20Show/ep%201.mp4" {
		t.Errorf("unexpected video URL %s", got)
	}
	if got := PathURL("/api/folder-history", "media/a"); got != "/api/folder-history/media/a" {
		t.Errorf("expected leading slash to be added, got %s", got)
	}
	if got := QueryURL("/api/progress", url.Values{"video_path": {"/a b.mp4"}}); got != "/api/progress?video_path=%2Fa+b.mp4" {
		t.Errorf("unexpected query URL %s", got)
	}
	if got := QueryURL("/x", nil); got != "/x" {
		t.Errorf("expected bare path, got %s", got)
	}
}
