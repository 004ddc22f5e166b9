package main

import (
	"context"
	"log/slog"

	"github.com/nmcassa/letterboxdpy-sub000/cmd/letterboxd-cli/commands"
	"github.com/nmcassa/letterboxdpy-sub000/lib/telemetry"
)

func main() {
	ctx := context.Background()

	telemetry.InitSlog(false)
	tel, err := telemetry.SetupFromEnv(ctx, "letterboxd-cli")
	if err != nil {
		slog.Warn("failed to set up telemetry", "err", err)
	} else {
		defer tel.Shutdown(ctx)
	}

	commands.ExecuteContext(ctx)
}
