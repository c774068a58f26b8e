package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/bnkrebuild/internal/bankdump"
	"github.com/specialistvlad/bnkrebuild/internal/bnode"
	"github.com/specialistvlad/bnkrebuild/internal/ctxlog"
	"github.com/specialistvlad/bnkrebuild/internal/filter"
	"github.com/specialistvlad/bnkrebuild/internal/publish"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	scriptW    io.Writer
	logger     *slog.Logger
	config     *Config
	index      *bnode.Index
	filter     *filter.Policy
	sink       publish.Sink
	httpServer *http.Server
	progress   progress
}

// Option customizes an App at construction.
type Option func(*App)

// WithSink publishes scripts to s instead of dialing Config.PublishURL.
func WithSink(s publish.Sink) Option {
	return func(a *App) { a.sink = s }
}

// WithScriptWriter sends scripts to w when no OutputDir is configured.
// The default is the App's log writer.
func WithScriptWriter(w io.Writer) Option {
	return func(a *App) { a.scriptW = w }
}

// NewApp is the constructor for the main application. It loads and indexes
// every bank dump and the filter policy. Load failures are fatal startup
// errors and panic.
func NewApp(outW io.Writer, cfg *Config, opts ...Option) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	banks, err := bankdump.Load(ctx, cfg.BankPaths...)
	if err != nil {
		panic(fmt.Errorf("failed to load bank dumps: %w", err))
	}
	if len(banks) == 0 {
		panic(fmt.Errorf("no bank dumps found in %v", cfg.BankPaths))
	}
	index, err := bnode.NewIndex(banks...)
	if err != nil {
		panic(fmt.Errorf("failed to index banks: %w", err))
	}
	logger.Debug("Banks indexed.", "banks", len(banks))

	var policy *filter.Policy
	if cfg.FilterPath != "" {
		if policy, err = filter.Load(ctx, cfg.FilterPath); err != nil {
			panic(err)
		}
	}

	a := &App{
		outW:    outW,
		scriptW: outW,
		logger:  logger,
		config:  cfg,
		index:   index,
		filter:  policy,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Index returns the loaded records. This is primarily for testing.
func (a *App) Index() *bnode.Index {
	return a.index
}
