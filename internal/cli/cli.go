package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/specialistvlad/bnkrebuild/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// idList collects object ids given as repeated flags or comma lists.
type idList []uint32

func (l *idList) String() string {
	parts := make([]string, len(*l))
	for i, id := range *l {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}

func (l *idList) Set(value string) error {
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid object id %q", part)
		}
		*l = append(*l, uint32(id))
	}
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("bnkrebuild", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
bnkrebuild - Rebuilds playback scripts from SoundBank object dumps.

Usage:
  bnkrebuild [options] [BANK_PATH...]

Arguments:
  BANK_PATH
    A bank dump (.hcl or .hcl.zst) or a directory containing dumps.

Options:
`)
		flagSet.PrintDefaults()
	}

	var roots idList
	banksFlag := flagSet.String("banks", "", "Comma-separated bank dump files or directories.")
	filterFlag := flagSet.String("filter", "", "Path to a filter policy file.")
	outFlag := flagSet.String("out", "", "Directory for generated scripts. Scripts go to stdout when empty.")
	compressFlag := flagSet.Bool("compress", false, "Write zstd-compressed scripts. Requires -out.")
	publishURLFlag := flagSet.String("publish-url", "", "socket.io endpoint to publish scripts to.")
	publishNSFlag := flagSet.String("publish-namespace", "/", "socket.io namespace for published scripts.")
	publishEventFlag := flagSet.String("publish-event", app.DefaultPublishEvent, "socket.io event name for published scripts.")
	publishInsecureFlag := flagSet.Bool("publish-insecure", false, "Skip TLS certificate verification when publishing.")
	abortFlag := flagSet.String("abort", "root", "Failure granularity. Options: 'root' or 'subtree'.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flagSet.Var(&roots, "root", "Object id to generate. Repeatable or comma-separated. Defaults to every event.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	var paths []string
	for _, p := range strings.Split(*banksFlag, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	paths = append(paths, flagSet.Args()...)
	slog.Debug("Bank paths determined.", "paths", paths)

	if len(paths) == 0 {
		slog.Debug("No bank path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		BankPaths:        paths,
		FilterPath:       *filterFlag,
		OutputDir:        *outFlag,
		Compress:         *compressFlag,
		PublishURL:       *publishURLFlag,
		PublishNamespace: *publishNSFlag,
		PublishEvent:     *publishEventFlag,
		PublishInsecure:  *publishInsecureFlag,
		LogFormat:        logFormat,
		LogLevel:         logLevel,
		AbortMode:        strings.ToLower(*abortFlag),
		Roots:            roots,
		HealthcheckPort:  *healthPortFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
