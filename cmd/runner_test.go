package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/watchmark/internal/models"
	"github.com/desertthunder/watchmark/internal/services"
	"github.com/desertthunder/watchmark/internal/shared"
	tu "github.com/desertthunder/watchmark/internal/testing"
)

func newTestRunner(t *testing.T, handlers map[string]http.HandlerFunc) (*Runner, *bytes.Buffer, *tu.RecordingServer) {
	t.Helper()
	srv := tu.NewRecordingServer(t, handlers)
	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config: shared.DefaultConfig(),
		API:    services.NewAPIService(srv.URL, srv.Client()),
		Logger: shared.NewLogger(&bytes.Buffer{}),
		Output: output,
	})
	return runner, output, srv
}

func run(t *testing.T, runner *Runner, args ...string) error {
	t.Helper()
	return runner.App().Run(context.Background(), append([]string{"watchmark"}, args...))
}

func selection() models.Selection {
	notes := "good intro"
	return models.Selection{
		Folder:     "/media/course",
		FolderName: "course",
		Count:      2,
		Videos: []models.Video{
			{Path: "/media/course/01.mp4", Filename: "01.mp4", DisplayName: "01", Progress: &models.Progress{Position: 96000, Duration: 100000, Percent: 96}, Remarks: &notes},
			{Path: "/media/course/02.mp4", Filename: "02.mp4", DisplayName: "02"},
		},
	}
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			api := &services.APIService{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "custom.toml",
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				API:        api,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.configPath != "custom.toml" {
				t.Errorf("expected configPath 'custom.toml', got %q", runner.configPath)
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.api != api {
				t.Error("expected api to be set")
			}
		})

		t.Run("with nil dependencies uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config != nil {
				t.Error("expected config to be loaded lazily")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to stdout")
			}
			if runner.httpClient == nil || runner.httpClient.Timeout == 0 {
				t.Error("expected default httpClient with a timeout")
			}
		})
	})

	t.Run("before", func(t *testing.T) {
		t.Run("loads config from --config", func(t *testing.T) {
			srv := tu.NewRecordingServer(t, map[string]http.HandlerFunc{
				"GET /api/folder-history": tu.JSONHandler(http.StatusOK, map[string]any{"folders": []any{}}),
			})

			path := filepath.Join(t.TempDir(), "config.toml")
			conf := "[client]\nserver_url = \"" + srv.URL + "\"\n"
			if err := os.WriteFile(path, []byte(conf), 0644); err != nil {
				t.Fatal(err)
			}

			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(&bytes.Buffer{}), Output: output})
			if err := run(t, runner, "--config", path, "history", "list"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if runner.config.Client.ServerURL != srv.URL {
				t.Errorf("expected server url %q, got %q", srv.URL, runner.config.Client.ServerURL)
			}
			if runner.api.BaseURL() != srv.URL {
				t.Errorf("expected api base url %q, got %q", srv.URL, runner.api.BaseURL())
			}
			if len(srv.Requests()) != 1 {
				t.Errorf("expected 1 request, got %d", len(srv.Requests()))
			}
		})

		t.Run("missing config file falls back to defaults", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "missing.toml")
			runner := NewRunner(RunnerOpts{ConfigPath: path, Logger: shared.NewLogger(&bytes.Buffer{}), Output: &bytes.Buffer{}})

			if _, err := runner.before(context.Background(), runner.App()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if runner.config.Client.ServerURL != shared.DefaultConfig().Client.ServerURL {
				t.Errorf("expected default server url, got %q", runner.config.Client.ServerURL)
			}
		})

		t.Run("invalid config is an error", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte("[server]\nport = 0\n"), 0644); err != nil {
				t.Fatal(err)
			}

			runner := NewRunner(RunnerOpts{ConfigPath: path, Logger: shared.NewLogger(&bytes.Buffer{})})
			_, err := runner.before(context.Background(), runner.App())
			if !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			expected := "{\n  \"key\": \"value\"\n}\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			expected := "{\"key\":\"value\"}\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			w := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &w})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes formatted text", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("%d videos in %s\n", 3, "course"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if output.String() != "3 videos in course\n" {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("writePlainln wraps in newlines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlainln("done"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if output.String() != "\ndone\n" {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writePlain("text"); err == nil {
				t.Error("expected error")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		want := []string{"setup", "serve", "tui", "history", "clear-completed", "export", "doctor", "api"}
		if len(commands) != len(want) {
			t.Fatalf("expected %d commands, got %d", len(want), len(commands))
		}
		for i, name := range want {
			if commands[i].Name != name {
				t.Errorf("command %d: expected %q, got %q", i, name, commands[i].Name)
			}
		}
	})
}

func TestHistory(t *testing.T) {
	folders := map[string]any{
		"folders": []models.Folder{
			{Path: "/media/course", Name: "course", AccessCount: 3},
			{Path: "/media/talks", Name: "talks", AccessCount: 1},
		},
	}

	t.Run("list prints folders", func(t *testing.T) {
		runner, output, _ := newTestRunner(t, map[string]http.HandlerFunc{
			"GET /api/folder-history": tu.JSONHandler(http.StatusOK, folders),
		})

		if err := run(t, runner, "history", "list"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := output.String()
		for _, s := range []string{"Folder history", " 1. course", "/media/course", " 2. talks"} {
			if !strings.Contains(out, s) {
				t.Errorf("expected output to contain %q, got:\n%s", s, out)
			}
		}
	})

	t.Run("list as JSON", func(t *testing.T) {
		runner, output, _ := newTestRunner(t, map[string]http.HandlerFunc{
			"GET /api/folder-history": tu.JSONHandler(http.StatusOK, folders),
		})

		if err := run(t, runner, "history", "list", "--json"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got []models.Folder
		if err := json.Unmarshal(output.Bytes(), &got); err != nil {
			t.Fatalf("output is not JSON: %v", err)
		}
		if len(got) != 2 || got[0].Path != "/media/course" {
			t.Errorf("unexpected folders %+v", got)
		}
	})

	t.Run("empty history", func(t *testing.T) {
		runner, output, _ := newTestRunner(t, map[string]http.HandlerFunc{
			"GET /api/folder-history": tu.JSONHandler(http.StatusOK, map[string]any{"folders": []any{}}),
		})

		if err := run(t, runner, "history", "list"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "No folders in history") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("remove sends DELETE", func(t *testing.T) {
		runner, output, srv := newTestRunner(t, map[string]http.HandlerFunc{
			"DELETE /api/folder-history/media/talks": tu.JSONHandler(http.StatusOK, map[string]bool{"success": true}),
		})

		if err := run(t, runner, "history", "remove", "/media/talks"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		reqs := srv.Requests()
		if len(reqs) != 1 || reqs[0].Method != http.MethodDelete {
			t.Fatalf("expected one DELETE, got %+v", reqs)
		}
		if !strings.Contains(output.String(), "Removed /media/talks") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("remove without path", func(t *testing.T) {
		runner, _, srv := newTestRunner(t, nil)

		err := run(t, runner, "history", "remove")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if len(srv.Requests()) != 0 {
			t.Error("expected no requests")
		}
	})
}

func TestClearCompleted(t *testing.T) {
	t.Run("reports removed count", func(t *testing.T) {
		runner, output, srv := newTestRunner(t, map[string]http.HandlerFunc{
			"POST /api/clear-completed": tu.JSONHandler(http.StatusOK, map[string]any{"success": true, "removed": 4}),
		})

		if err := run(t, runner, "clear-completed"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "Cleared progress of 4 watched videos") {
			t.Errorf("unexpected output %q", output.String())
		}
		if len(srv.Requests()) != 1 {
			t.Errorf("expected 1 request, got %d", len(srv.Requests()))
		}
	})

	t.Run("server error", func(t *testing.T) {
		runner, _, _ := newTestRunner(t, map[string]http.HandlerFunc{
			"POST /api/clear-completed": tu.JSONHandler(http.StatusInternalServerError, map[string]string{"error": "database is locked"}),
		})

		err := run(t, runner, "clear-completed")
		var apiErr *services.APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %v", err)
		}
		if apiErr.StatusCode != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", apiErr.StatusCode)
		}
	})
}

func TestExport(t *testing.T) {
	t.Run("last folder to stdout", func(t *testing.T) {
		runner, output, _ := newTestRunner(t, map[string]http.HandlerFunc{
			"GET /api/last-folder": tu.JSONHandler(http.StatusOK, selection()),
		})

		if err := run(t, runner, "export", "--format", "md", "--output", "-"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := output.String()
		for _, s := range []string{"course", "- [x]", "- [ ]", "good intro"} {
			if !strings.Contains(out, s) {
				t.Errorf("expected output to contain %q, got:\n%s", s, out)
			}
		}
	})

	t.Run("selects --folder and writes a file", func(t *testing.T) {
		runner, output, srv := newTestRunner(t, map[string]http.HandlerFunc{
			"POST /api/select-folder": tu.JSONHandler(http.StatusOK, selection()),
		})
		path := filepath.Join(t.TempDir(), "course.csv")

		if err := run(t, runner, "export", "-f", "csv", "--folder", "/media/course", "-o", path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		reqs := srv.Requests()
		if len(reqs) != 1 || reqs[0].Body["folder_path"] != "/media/course" {
			t.Errorf("unexpected requests %+v", reqs)
		}

		tu.AssertFileExists(t, path)
		content := tu.MustReadFile(t, path)
		if !strings.HasPrefix(content, "Path,Name,Status") {
			t.Errorf("unexpected csv header: %q", content)
		}
		if !strings.Contains(output.String(), "Exported 2 videos (1 watched)") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("no folder selected", func(t *testing.T) {
		runner, _, _ := newTestRunner(t, map[string]http.HandlerFunc{
			"GET /api/last-folder": tu.JSONHandler(http.StatusOK, map[string]any{}),
		})

		err := run(t, runner, "export", "-o", "-")
		if !errors.Is(err, shared.ErrNoFolderSelected) {
			t.Errorf("expected ErrNoFolderSelected, got %v", err)
		}
	})

	t.Run("all history folders", func(t *testing.T) {
		sel := selection()
		runner, output, srv := newTestRunner(t, map[string]http.HandlerFunc{
			"GET /api/folder-history": tu.JSONHandler(http.StatusOK, map[string]any{
				"folders": []models.Folder{{Path: "/media/course", Name: "course"}},
			}),
			"GET /api/folder": tu.JSONHandler(http.StatusOK, sel),
		})
		dir := t.TempDir()

		if err := run(t, runner, "export", "--all", "-f", "txt", "-o", dir); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, req := range srv.Requests() {
			if req.Method != http.MethodGet {
				t.Errorf("expected read-only requests, got %s %s", req.Method, req.Path)
			}
		}
		tu.AssertFileExists(t, filepath.Join(dir, "01_course_videos.txt"))
		tu.AssertFileExists(t, filepath.Join(dir, "export_manifest.json"))
		if !strings.Contains(output.String(), "Exported 1 of 1 folders") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("all rejects stdout", func(t *testing.T) {
		runner, _, _ := newTestRunner(t, nil)

		err := run(t, runner, "export", "--all", "-o", "-")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("invalid format", func(t *testing.T) {
		runner, _, srv := newTestRunner(t, nil)

		err := run(t, runner, "export", "--format", "xlsx")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if len(srv.Requests()) != 0 {
			t.Error("expected no requests")
		}
	})
}

func TestAPI(t *testing.T) {
	t.Run("get prints JSON", func(t *testing.T) {
		runner, output, _ := newTestRunner(t, map[string]http.HandlerFunc{
			"GET /api/videos": tu.JSONHandler(http.StatusOK, map[string]any{"videos": []any{}}),
		})

		if err := run(t, runner, "api", "get", "--json", "/api/videos"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if output.String() != "{\"videos\":[]}\n" {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("get reports error status", func(t *testing.T) {
		runner, _, _ := newTestRunner(t, nil)

		err := run(t, runner, "api", "get", "/api/nope")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("post rejects invalid JSON", func(t *testing.T) {
		runner, _, srv := newTestRunner(t, nil)

		err := run(t, runner, "api", "post", "--data", "{not json", "/api/remarks")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if len(srv.Requests()) != 0 {
			t.Error("expected no requests")
		}
	})

	t.Run("post sends body", func(t *testing.T) {
		runner, _, srv := newTestRunner(t, map[string]http.HandlerFunc{
			"POST /api/clear-completed": tu.JSONHandler(http.StatusOK, map[string]any{"removed": 0}),
		})

		if err := run(t, runner, "api", "post", "--data", `{"dry":true}`, "/api/clear-completed"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		reqs := srv.Requests()
		if len(reqs) != 1 || reqs[0].Body["dry"] != true {
			t.Errorf("unexpected requests %+v", reqs)
		}
	})

	t.Run("dump collects endpoints and errors", func(t *testing.T) {
		runner, output, _ := newTestRunner(t, map[string]http.HandlerFunc{
			"GET /healthz":            tu.JSONHandler(http.StatusOK, map[string]string{"status": "ok"}),
			"GET /api/folder-history": tu.JSONHandler(http.StatusOK, map[string]any{"folders": []any{}}),
		})

		if err := run(t, runner, "api", "dump"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var dump struct {
			Health map[string]string  `json:"health"`
			Errors []map[string]string `json:"errors"`
		}
		if err := json.Unmarshal(output.Bytes(), &dump); err != nil {
			t.Fatalf("output is not JSON: %v", err)
		}
		if dump.Health["status"] != "ok" {
			t.Errorf("unexpected health %+v", dump.Health)
		}
		if len(dump.Errors) != 1 || dump.Errors[0]["endpoint"] != "/api/last-folder" {
			t.Errorf("expected one error for /api/last-folder, got %+v", dump.Errors)
		}
	})
}
