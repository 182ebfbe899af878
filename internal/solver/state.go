package solver

import (
	"context"
	"fmt"

	"github.com/vk/riglab/internal/manipulator"
	"github.com/vk/riglab/internal/scene"
	"github.com/zclconf/go-cty/cty"
)

func (s *Solver) mustHaveActive() {
	if s.Input.Active.IsZero() || s.Input.BlendWeight.IsZero() {
		panic(fmt.Sprintf("solver %q: state accessed before its active input exists", s.Name))
	}
}

// State reports whether the solver participates, that is whether its blend
// weight is nonzero. It panics when the active input does not exist.
func (s *Solver) State(ctx context.Context) (bool, error) {
	s.mustHaveActive()
	w, err := scene.Float(ctx, s.Env.Graph, s.Input.BlendWeight)
	if err != nil {
		return false, err
	}
	return w != 0, nil
}

// SetState sets the blend weight and the active flag together. When the
// active flag cannot be written the previous blend weight is put back. It
// panics when the active input does not exist.
func (s *Solver) SetState(ctx context.Context, on bool) error {
	s.mustHaveActive()
	g := s.Env.Graph
	prev, err := g.Param(ctx, s.Input.BlendWeight)
	if err != nil {
		return fmt.Errorf("reading blend weight: %w", err)
	}
	weight := 0.0
	if on {
		weight = 1
	}
	if err := g.SetParam(ctx, s.Input.BlendWeight, cty.NumberFloatVal(weight)); err != nil {
		return fmt.Errorf("setting blend weight: %w", err)
	}
	if err := g.SetParam(ctx, s.Input.Active, cty.BoolVal(on)); err != nil {
		if rerr := g.SetParam(ctx, s.Input.BlendWeight, prev); rerr != nil {
			return fmt.Errorf("setting active: %w (blend weight left at %v: %v)", err, weight, rerr)
		}
		return fmt.Errorf("setting active: %w", err)
	}
	return nil
}

// Snap disables the solver, snaps every animation control to its reference
// and restores the previous state. The state is restored even when a snap
// fails; the first failure is returned.
func (s *Solver) Snap(ctx context.Context) (err error) {
	prev, err := s.State(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := s.SetState(ctx, prev); rerr != nil && err == nil {
			err = rerr
		}
	}()
	if err := s.SetState(ctx, false); err != nil {
		return err
	}

	for _, anim := range s.Input.Anim {
		name, err := s.Env.Graph.Name(ctx, anim)
		if err != nil {
			return fmt.Errorf("snapping control: %w", err)
		}
		m, err := s.Manipulator(ctx, name)
		if err != nil {
			return err
		}
		if err := m.Snap(ctx); err != nil {
			return fmt.Errorf("snapping %s: %w", name, err)
		}
	}
	return nil
}

// Manipulator returns the wrapper of the control named name, creating and
// caching it on first use.
func (s *Solver) Manipulator(ctx context.Context, name string) (*manipulator.Manipulator, error) {
	if m, ok := s.manipulators[name]; ok {
		return m, nil
	}
	id, ok := s.Env.Graph.FindByName(ctx, name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", scene.ErrNodeNotFound, name)
	}
	m, err := manipulator.FromAnim(ctx, s.Env.Graph, s.Env.Naming, id)
	if err != nil {
		return nil, err
	}
	s.manipulators[name] = m
	return m, nil
}

// Destroy deletes the solver scaffold and everything below it.
func (s *Solver) Destroy(ctx context.Context) error {
	if err := s.Env.Graph.Delete(ctx, s.Root); err != nil {
		return fmt.Errorf("destroying solver %s: %w", s.Name, err)
	}
	return nil
}
