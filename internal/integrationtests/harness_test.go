package integration_tests

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/bnkrebuild/internal/app"
	"github.com/specialistvlad/bnkrebuild/internal/testutil"
)

// HarnessResult holds the outcome of one application run.
type HarnessResult struct {
	LogOutput string
	Scripts   string
	Err       error
	App       *app.App
}

// RunIntegrationTest writes files into a temporary bank directory, builds the
// App on it and runs it. Startup panics are reported as Err.
func RunIntegrationTest(t *testing.T, files map[string]string, cfg app.Config) (result *HarnessResult) {
	t.Helper()

	cfg.BankPaths = []string{testutil.WriteFiles(t, files)}
	cfg.LogLevel = "debug"
	cfg.LogFormat = "text"
	config, err := app.NewConfig(cfg)
	require.NoError(t, err, "test config should be valid")

	logBuffer := &testutil.SafeBuffer{}
	scripts := &testutil.SafeBuffer{}
	result = &HarnessResult{}

	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("application startup panicked: %v", r)
		}
		result.LogOutput = logBuffer.String()
		result.Scripts = scripts.String()
		if os.Getenv("BNK_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), result.LogOutput)
		}
	}()

	result.App = app.NewApp(logBuffer, config, app.WithScriptWriter(scripts))
	result.Err = result.App.Run(context.Background())
	return result
}
