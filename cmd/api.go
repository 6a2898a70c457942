package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/watchmark/internal/services"
	"github.com/desertthunder/watchmark/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet makes a direct GET request to the server
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path is required", shared.ErrMissingArgument)
	}

	r.logger.Info("GET request", "path", path)

	resp, err := r.api.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return r.writeResponse(resp, !cmd.Bool("json"))
}

// APIPost makes a direct POST request to the server
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	data := cmd.String("data")

	if path == "" {
		return fmt.Errorf("%w: path is required", shared.ErrMissingArgument)
	}
	if data == "" {
		data = "{}"
	}

	var jsonTest any
	if err := json.Unmarshal([]byte(data), &jsonTest); err != nil {
		return fmt.Errorf("%w: data is not valid JSON: %v", shared.ErrInvalidInput, err)
	}

	r.logger.Info("POST request", "path", path)

	resp, err := r.api.Post(ctx, path, []byte(data))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return r.writeResponse(resp, true)
}

// APIDump fetches and displays the server state.
func (r *Runner) APIDump(ctx context.Context, cmd *cli.Command) error {
	type DumpData struct {
		Health     any   `json:"health"`
		History    any   `json:"history,omitempty"`
		LastFolder any   `json:"last_folder,omitempty"`
		Errors     []any `json:"errors,omitempty"`
	}

	dump := DumpData{Errors: []any{}}
	for _, endpoint := range []struct {
		path   string
		target *any
	}{
		{"/healthz", &dump.Health},
		{"/api/folder-history", &dump.History},
		{"/api/last-folder", &dump.LastFolder},
	} {
		var data any
		if err := r.fetch(ctx, endpoint.path, &data); err != nil {
			dump.Errors = append(dump.Errors, map[string]string{"endpoint": endpoint.path, "error": err.Error()})
			r.logger.Warn("failed to fetch", "endpoint", endpoint.path, "error", err)
			continue
		}
		*endpoint.target = data
	}

	return r.writeJSON(dump, cmd.Bool("pretty"))
}

func (r *Runner) fetch(ctx context.Context, path string, v any) error {
	resp, err := r.api.Get(ctx, path)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}
	return resp.Decode(v)
}

// writeResponse prints a response body, re-indenting JSON when pretty is set.
func (r *Runner) writeResponse(resp *services.APIResponse, pretty bool) error {
	if err := resp.Err(); err != nil {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		var data any
		if err := resp.Decode(&data); err == nil {
			return r.writeJSON(data, pretty)
		}
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}
