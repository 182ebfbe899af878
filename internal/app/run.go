package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/riglab/internal/config"
	"github.com/vk/riglab/internal/ctxlog"
	"github.com/vk/riglab/internal/naming"
	"github.com/vk/riglab/internal/scene"
	"github.com/vk/riglab/internal/solver"
)

var (
	// ErrUnknownNode is returned when a rig references a scene node by a
	// name the host does not know.
	ErrUnknownNode = errors.New("app: unknown scene node")
	// ErrUnknownParam is returned when a solver block sets a parameter its
	// solver does not expose.
	ErrUnknownParam = errors.New("app: unknown solver parameter")
)

// Run builds every solver of the rig description on g, in declaration
// order. A failure destroys the solvers already built by this call.
func (a *App) Run(ctx context.Context, g scene.Graph) ([]*solver.Solver, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	env := solver.NewEnv(g)
	if err := configureNaming(env.Naming, a.model.Naming); err != nil {
		return nil, err
	}

	built := make([]*solver.Solver, 0, len(a.model.Solvers))
	for _, def := range a.model.Solvers {
		s, err := a.build(ctx, env, def)
		if err != nil {
			a.rollback(ctx, built)
			return nil, fmt.Errorf("%s: solver %q: %w", def.DeclRange, def.Name, err)
		}
		built = append(built, s)
	}

	if len(built) == 0 {
		a.logger.Warn("No solvers declared, nothing to build.")
	}
	a.logger.Info("Rig built.", "solvers", len(built))
	return built, nil
}

func configureNaming(m *naming.Manager, cfg *config.Naming) error {
	if cfg == nil {
		return nil
	}
	if cfg.Rule != "" {
		if err := m.SetRule(naming.Rule(cfg.Rule)); err != nil {
			return err
		}
	}
	for role, suffix := range cfg.Suffixes {
		m.SetSuffix(role, suffix)
	}
	return nil
}

func (a *App) build(ctx context.Context, env solver.Env, def *config.Solver) (*solver.Solver, error) {
	g := env.Graph
	logger := ctxlog.FromContext(ctx).With("solver", def.Name, "class", def.Class)

	v, ok := a.registry.Lookup(def.Class)
	if !ok {
		return nil, fmt.Errorf("%w: %q", solver.ErrUnknownClass, def.Class)
	}

	skeleton := make([]scene.NodeID, len(def.Chain))
	for i, name := range def.Chain {
		id, ok := g.FindByName(ctx, name)
		if !ok {
			return nil, fmt.Errorf("%w: chain joint %q", ErrUnknownNode, name)
		}
		skeleton[i] = id
	}

	opts := []solver.Option{solver.WithName(def.Name), solver.WithSide(def.Side)}
	if def.Parent != "" {
		parent, ok := g.FindByName(ctx, def.Parent)
		if !ok {
			return nil, fmt.Errorf("%w: parent %q", ErrUnknownNode, def.Parent)
		}
		opts = append(opts, solver.WithParent(parent))
	}

	s, err := solver.New(ctx, env, v, skeleton, opts...)
	if err != nil {
		return nil, err
	}

	if err := applyParams(ctx, s, def); err != nil {
		if derr := s.Destroy(ctx); derr != nil {
			logger.Error("Failed to remove partially configured solver.", "error", derr)
		}
		return nil, err
	}
	logger.Debug("Solver configured.", "joints", len(skeleton), "params", len(def.Params))
	return s, nil
}

// applyParams sets the initial state and the declared input values.
// blendweight addresses the base blend weight; any other name must be an
// input added by the variant.
func applyParams(ctx context.Context, s *solver.Solver, def *config.Solver) error {
	g := s.Env.Graph
	for name, value := range def.Params {
		ref := s.Input.Extra[name]
		if name == scene.ParamBlendWeight {
			ref = s.Input.BlendWeight
		}
		if ref.IsZero() {
			return fmt.Errorf("%w: %q", ErrUnknownParam, name)
		}
		if err := g.SetParam(ctx, ref, value); err != nil {
			return fmt.Errorf("setting %s: %w", name, err)
		}
	}
	if def.Active != nil {
		if err := s.SetState(ctx, *def.Active); err != nil {
			return fmt.Errorf("setting initial state: %w", err)
		}
	}
	return nil
}

func (a *App) rollback(ctx context.Context, built []*solver.Solver) {
	for i := len(built) - 1; i >= 0; i-- {
		if err := built[i].Destroy(ctx); err != nil {
			a.logger.Error("Failed to remove solver during rollback.", "solver", built[i].Name, "error", err)
		}
	}
}
