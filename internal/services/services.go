// package services contains the HTTP clients the player uses to talk to the library server
package services

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/watchmark/internal/shared"
)

// client is shared by [ProgressClient] and [FolderClient].
type client struct {
	api    *APIService
	logger *log.Logger
}

func newClient(api *APIService, logger *log.Logger) client {
	if api == nil {
		api = NewAPIService("", nil)
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return client{api: api, logger: logger}
}

// getJSON performs a GET and decodes a successful response into v.
func (c client) getJSON(ctx context.Context, path string, v any) error {
	resp, err := c.api.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if err := resp.Err(); err != nil {
		return err
	}
	return resp.Decode(v)
}

// postJSON posts body and decodes a successful response into v when v is non-nil.
func (c client) postJSON(ctx context.Context, path string, body, v any) error {
	resp, err := c.api.PostJSON(ctx, path, body)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if err := resp.Err(); err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	return resp.Decode(v)
}
