package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/watchmark/internal/server"
	"github.com/desertthunder/watchmark/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the library server until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port != 0 {
		cfg.Port = port
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	logger := shared.WithLogger(r.logger, "component", "server")
	api := server.NewAPI(server.APIOpts{
		DB:      db,
		Library: r.config.Library,
		Logger:  logger,
	})
	router := server.NewAPIRouter(api, cfg.RateLimit, cfg.Burst, logger)

	return server.Serve(ctx, cfg.Addr(), router, logger)
}
