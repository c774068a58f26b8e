package app

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/bnkrebuild/internal/rebuild"
)

// DefaultPublishEvent is the socket.io event scripts are emitted on.
const DefaultPublishEvent = "script"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	BankPaths  []string // dump files or directories
	FilterPath string   // optional filter policy file
	OutputDir  string   // scripts are written to the App's writer when empty
	Compress   bool

	PublishURL       string
	PublishNamespace string
	PublishEvent     string
	PublishInsecure  bool

	LogFormat       string
	LogLevel        string
	AbortMode       string
	Roots           []uint32 // explicit root ids; every event when empty
	HealthcheckPort int
}

func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.BankPaths) == 0 {
		return nil, errors.New("BankPaths is a required configuration field and cannot be empty")
	}

	switch rebuild.AbortMode(cfg.AbortMode) {
	case "":
		cfg.AbortMode = string(rebuild.AbortRoot)
	case rebuild.AbortRoot, rebuild.AbortSubtree:
	default:
		return nil, fmt.Errorf("invalid abort mode %q: must be 'root' or 'subtree'", cfg.AbortMode)
	}

	if cfg.Compress && cfg.OutputDir == "" {
		return nil, errors.New("Compress requires OutputDir")
	}
	if cfg.PublishURL != "" && cfg.PublishEvent == "" {
		cfg.PublishEvent = DefaultPublishEvent
	}
	if cfg.HealthcheckPort < 0 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}

	return &cfg, nil
}
