// Command admin provides moderation utilities for a socialvibe store.
package main

import (
	"context"
	"fmt"
	"os"

	"socialvibe/internal/bootstrap"
	"socialvibe/internal/config"
	"socialvibe/internal/models"
	"socialvibe/internal/observability"
)

func main() {
	open := func(ctx context.Context) (*bootstrap.Runtime, error) {
		cfg, err := config.LoadConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return bootstrap.InitRuntime(ctx, cfg)
	}

	// Every log line of one invocation shares a correlation id.
	ctx := observability.WithCorrelationID(context.Background(), models.NewID())
	if err := newRootCmd(open).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
