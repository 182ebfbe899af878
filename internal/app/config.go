package app

import (
	"errors"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	RigPath string // hcl files

	// HostURL is the socket.io address of the scene bridge. Empty builds
	// into an in-memory scene (dry run).
	HostURL            string
	HostNamespace      string
	InsecureSkipVerify bool
	CallTimeout        time.Duration

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.RigPath == "" {
		return nil, errors.New("RigPath is a required configuration field and cannot be empty")
	}
	if cfg.CallTimeout < 0 {
		return nil, errors.New("CallTimeout cannot be negative")
	}
	return &cfg, nil
}
