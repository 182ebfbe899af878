package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/riglab/internal/config"
	"github.com/vk/riglab/internal/ctxlog"
	"github.com/vk/riglab/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	model    *config.Model
}

// NewApp is the constructor for the main application. It loads and
// validates the rig description and returns a fully initialized App with
// its own isolated logger and registry.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(appConfig, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, appConfig.RigPath)
	if err != nil {
		// A failure to load config is a fatal startup error.
		panic(fmt.Errorf("failed to load rig description: %w", err))
	}
	logger.Debug("Rig description loaded.", "solvers", len(model.Solvers))

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All solver modules registered.", "count", len(modules), "classes", reg.Classnames())

	if err := reg.ValidateModel(ctx, model); err != nil {
		// The rig asks for something the compiled modules cannot build.
		panic(err)
	}
	logger.Debug("Rig validation passed.")

	return &App{
		outW:     outW,
		logger:   logger,
		config:   appConfig,
		registry: reg,
		model:    model,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the loaded rig description.
func (a *App) Model() *config.Model {
	return a.model
}

// Logger returns the application's logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}
