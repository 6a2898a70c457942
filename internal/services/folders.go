package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/watchmark/internal/models"
	"github.com/desertthunder/watchmark/internal/shared"
)

// FolderClient browses directories and manages the active folder and its history.
type FolderClient struct {
	client
}

// NewFolderClient creates a FolderClient on top of api.
func NewFolderClient(api *APIService, logger *log.Logger) *FolderClient {
	return &FolderClient{client: newClient(api, logger)}
}

// Browse lists the subdirectories of path. An empty path browses the server's home directory.
func (c *FolderClient) Browse(ctx context.Context, path string) (models.Listing, error) {
	q := "/api/browse"
	if path != "" {
		q = QueryURL(q, url.Values{"path": {path}})
	}

	var listing models.Listing
	if err := c.getJSON(ctx, q, &listing); err != nil {
		return models.Listing{}, fmt.Errorf("browse %s: %w", path, err)
	}
	return listing, nil
}

// SelectFolder makes path the active folder and returns its videos.
//
// A rejected selection returns the server's message as an [*APIError].
func (c *FolderClient) SelectFolder(ctx context.Context, path string) (*models.Selection, error) {
	var sel models.Selection
	if err := c.postJSON(ctx, "/api/select-folder", map[string]string{"folder_path": path}, &sel); err != nil {
		return nil, err
	}
	return &sel, nil
}

// LastFolder restores the most recently selected folder. It returns nil when there is none.
func (c *FolderClient) LastFolder(ctx context.Context) (*models.Selection, error) {
	var sel models.Selection
	if err := c.getJSON(ctx, "/api/last-folder", &sel); err != nil {
		return nil, err
	}
	if sel.Folder == "" {
		return nil, nil
	}
	return &sel, nil
}

// Folder lists the videos of path without selecting it.
func (c *FolderClient) Folder(ctx context.Context, path string) (*models.Selection, error) {
	var sel models.Selection
	if err := c.getJSON(ctx, QueryURL("/api/folder", url.Values{"path": {path}}), &sel); err != nil {
		return nil, fmt.Errorf("folder %s: %w", path, err)
	}
	return &sel, nil
}

// Videos re-lists the active folder.
func (c *FolderClient) Videos(ctx context.Context) ([]models.Video, error) {
	var resp struct {
		Videos []models.Video `json:"videos"`
	}
	if err := c.getJSON(ctx, "/api/videos", &resp); err != nil {
		return nil, err
	}
	return resp.Videos, nil
}

// ListHistory returns the folder history, or nil when the request fails.
func (c *FolderClient) ListHistory(ctx context.Context) []models.Folder {
	var resp struct {
		Folders []models.Folder `json:"folders"`
	}
	if err := c.getJSON(ctx, "/api/folder-history", &resp); err != nil {
		c.logger.Warn("failed to load folder history", "error", err)
		return nil
	}
	return resp.Folders
}

// RemoveFromHistory deletes path from the folder history. The active folder is unaffected.
func (c *FolderClient) RemoveFromHistory(ctx context.Context, path string) error {
	resp, err := c.api.Delete(ctx, PathURL("/api/folder-history", path))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return resp.Err()
}
