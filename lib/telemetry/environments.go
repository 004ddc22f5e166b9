package telemetry

import (
	"context"
	"os"
	"testing"

	"github.com/nmcassa/letterboxdpy-sub000/lib/configutil"
)

var setupTestEnvironments = map[string]bool{}

// SetupForTesting sets up slog and telemetry in a testing environment,
// ensuring that it isn't set up more than once per service name. When no
// telemetry.json5 exists anywhere up the tree, providers stay in-process.
func SetupForTesting(t testing.TB, serviceName string) func() {
	if setupTestEnvironments[serviceName] {
		return func() {}
	}
	setupTestEnvironments[serviceName] = true

	InitSlog(true)
	tel, err := SetupFromEnv(context.Background(), serviceName)
	if err != nil {
		t.Fatal(err)
	}
	return func() {
		err := tel.Shutdown(context.Background())
		if err != nil {
			t.Fatal(err)
		}
	}
}

// SetupFromEnv searches up the filesystem from the cwd for a telemetry.json5
// file and uses it to set up telemetry. A missing file is not an error, it
// just means nothing gets exported.
func SetupFromEnv(ctx context.Context, serviceName string) (Telemetry, error) {
	config, err := configutil.ReadRecursively[Config]("telemetry.json5")
	if err != nil && !os.IsNotExist(err) {
		return Telemetry{}, err
	}
	return Setup(ctx, serviceName, config)
}
