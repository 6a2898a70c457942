package services

import (
	"context"
	"net/url"

	"github.com/charmbracelet/log"
)

// SavedProgress is the stored playback state of a video. Position and Duration are in milliseconds;
// Duration is 0 when unknown.
type SavedProgress struct {
	Position int64   `json:"position"`
	Duration int64   `json:"duration"`
	Remarks  *string `json:"remarks"`
}

// Empty reports whether there is no usable saved position.
func (p SavedProgress) Empty() bool {
	return p.Position <= 0 || p.Duration <= 0
}

// ProgressClient reads and writes per-video progress and notes.
//
// Reads fail soft and writes are logged, so a flaky server never interrupts playback.
type ProgressClient struct {
	client
}

// NewProgressClient creates a ProgressClient on top of api.
func NewProgressClient(api *APIService, logger *log.Logger) *ProgressClient {
	return &ProgressClient{client: newClient(api, logger)}
}

// GetProgress returns the saved progress for path, or the zero value when none exists or the request fails.
func (c *ProgressClient) GetProgress(ctx context.Context, path string) SavedProgress {
	var resp struct {
		Position int64   `json:"position"`
		Duration *int64  `json:"duration"`
		Remarks  *string `json:"remarks"`
	}

	q := QueryURL("/api/progress", url.Values{"video_path": {path}})
	if err := c.getJSON(ctx, q, &resp); err != nil {
		c.logger.Warn("failed to load progress", "path", path, "error", err)
		return SavedProgress{}
	}

	p := SavedProgress{Position: resp.Position, Remarks: resp.Remarks}
	if resp.Duration != nil {
		p.Duration = *resp.Duration
	}
	return p
}

// SaveProgress stores the position for path. Failures are logged and returned, never retried.
func (c *ProgressClient) SaveProgress(ctx context.Context, path string, position, duration int64) error {
	body := map[string]any{"video_path": path, "position": position, "duration": nil}
	if duration > 0 {
		body["duration"] = duration
	}

	if err := c.postJSON(ctx, "/api/progress", body, nil); err != nil {
		c.logger.Warn("failed to save progress", "path", path, "error", err)
		return err
	}
	return nil
}

// SaveRemark stores the note for path. Failures are logged and returned, never retried.
func (c *ProgressClient) SaveRemark(ctx context.Context, path, text string) error {
	body := map[string]string{"video_path": path, "remark": text}
	if err := c.postJSON(ctx, "/api/remarks", body, nil); err != nil {
		c.logger.Warn("failed to save remark", "path", path, "error", err)
		return err
	}
	return nil
}

// GetRemark returns the note for path, or "" when none exists or the request fails.
func (c *ProgressClient) GetRemark(ctx context.Context, path string) string {
	var resp struct {
		Remark *string `json:"remark"`
	}

	q := QueryURL("/api/remarks", url.Values{"video_path": {path}})
	if err := c.getJSON(ctx, q, &resp); err != nil {
		c.logger.Warn("failed to load remark", "path", path, "error", err)
		return ""
	}
	if resp.Remark == nil {
		return ""
	}
	return *resp.Remark
}

// ClearCompleted removes the progress of every video watched past the completion threshold.
func (c *ProgressClient) ClearCompleted(ctx context.Context) (int64, error) {
	var resp struct {
		Removed int64 `json:"removed"`
	}
	if err := c.postJSON(ctx, "/api/clear-completed", struct{}{}, &resp); err != nil {
		c.logger.Warn("failed to clear completed", "error", err)
		return 0, err
	}
	return resp.Removed, nil
}
