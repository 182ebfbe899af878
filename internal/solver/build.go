package solver

import (
	"context"
	"fmt"

	"github.com/vk/riglab/internal/ctxlog"
	"github.com/vk/riglab/internal/expr"
	"github.com/vk/riglab/internal/naming"
	"github.com/vk/riglab/internal/scene"
	"github.com/zclconf/go-cty/cty"
)

// Build runs the construction pipeline on the scaffold. An invalid chain
// returns ErrInvalidChain before anything is created.
func (s *Solver) Build(ctx context.Context, skeleton []scene.NodeID) error {
	if !s.variant.Validate(skeleton) {
		return fmt.Errorf("%w: %s rejected a chain of %d joints", ErrInvalidChain, s.Classname, len(skeleton))
	}
	g := s.Env.Graph
	logger := ctxlog.FromContext(ctx)
	s.Input.Skeleton = append([]scene.NodeID(nil), skeleton...)

	limit := len(skeleton) - 1
	for i, joint := range skeleton {
		for _, name := range []string{scene.ParamCnsScl, scene.ParamPivotActive, scene.ParamPivotCompActive} {
			if err := g.SetParam(ctx, scene.Kine(joint, name), cty.False); err != nil {
				return fmt.Errorf("preparing joint %d: %w", i, err)
			}
		}
		if i >= limit {
			continue
		}
		tm, err := g.AddNode(ctx, s.Output.Root, scene.KindNull)
		if err != nil {
			return fmt.Errorf("creating output %d: %w", i, err)
		}
		if err := g.SetName(ctx, tm, s.Env.Naming.QN(ctx, s.Name, naming.RoleRig, naming.WithIndex(i), naming.WithSide(s.Side))); err != nil {
			return fmt.Errorf("naming output %d: %w", i, err)
		}
		s.Output.TM = append(s.Output.TM, tm)
	}
	s.Hide(s.Output.TM...)
	logger.Debug("Created output drivers.", "count", len(s.Output.TM))

	if err := s.customInputs(ctx); err != nil {
		return err
	}
	if err := s.createAnim(ctx); err != nil {
		return err
	}
	if err := s.variant.CustomBuild(ctx, s); err != nil {
		return fmt.Errorf("custom build: %w", err)
	}

	rev, err := s.Reversed(ctx)
	if err != nil {
		return err
	}
	logger.Debug("Wiring output constraints.", "reversed", rev)
	if rev {
		err = s.ConnectReverse(ctx, true)
	} else {
		err = s.Connect(ctx, true)
	}
	if err != nil {
		return err
	}

	if err := s.Style(ctx); err != nil {
		return err
	}
	if err := s.Flush(ctx); err != nil {
		return err
	}
	return g.Refresh(ctx)
}

// customInputs adds the active and blendweight parameters, once, then runs
// the variant hook.
func (s *Solver) customInputs(ctx context.Context) error {
	g := s.Env.Graph
	if s.Input.Parameters == "" {
		s.Input.Parameters = GroupInput
	}
	var err error
	if s.Input.Active.IsZero() {
		if s.Input.Active, err = g.AddParam(ctx, s.Input.Root, s.Input.Parameters, scene.ParamActive, scene.BoolParam(true)); err != nil {
			return fmt.Errorf("adding active input: %w", err)
		}
	}
	if s.Input.BlendWeight.IsZero() {
		if s.Input.BlendWeight, err = g.AddParam(ctx, s.Input.Root, s.Input.Parameters, scene.ParamBlendWeight, scene.FloatParam(1, 0, 1)); err != nil {
			return fmt.Errorf("adding blendweight input: %w", err)
		}
	}
	if err := s.variant.CustomInputs(ctx, s); err != nil {
		return fmt.Errorf("custom inputs: %w", err)
	}
	return nil
}

// createAnim fits the helper curve through the chain and runs the variant
// hook.
func (s *Solver) createAnim(ctx context.Context) error {
	g := s.Env.Graph
	curve, err := s.Env.Chain.ChainToCurve(ctx, s.Input.Skeleton, s.Helper.Root)
	if err != nil {
		return fmt.Errorf("fitting curve: %w", err)
	}
	if err := g.SetName(ctx, curve, s.Env.Naming.QN(ctx, s.Name, naming.RoleCurve, naming.WithSide(s.Side))); err != nil {
		return fmt.Errorf("naming curve: %w", err)
	}
	s.Helper.Curve = curve
	s.Hide(curve)

	if err := s.variant.CustomAnim(ctx, s); err != nil {
		return fmt.Errorf("custom anim: %w", err)
	}
	return nil
}

// Connect constrains every joint but the last to its output driver.
func (s *Solver) Connect(ctx context.Context, compensate bool) error {
	return s.connect(ctx, s.Input.Skeleton[:len(s.Input.Skeleton)-1], compensate)
}

// ConnectReverse constrains every joint but the first to its output driver.
func (s *Solver) ConnectReverse(ctx context.Context, compensate bool) error {
	return s.connect(ctx, s.Input.Skeleton[1:], compensate)
}

func (s *Solver) connect(ctx context.Context, joints []scene.NodeID, compensate bool) error {
	g := s.Env.Graph
	sources := map[string]scene.ParamRef{
		scene.ParamActive:      s.Input.Active,
		scene.ParamBlendWeight: s.Input.BlendWeight,
	}
	for i, joint := range joints {
		cns, err := g.AddConstraint(ctx, joint, scene.ConstraintPose, s.Output.TM[i], compensate)
		if err != nil {
			return fmt.Errorf("constraining joint %s: %w", scene.MustName(ctx, g, joint), err)
		}
		for name, src := range sources {
			if err := s.Drive(ctx, scene.Cns(cns, name), src); err != nil {
				return err
			}
		}
	}
	return nil
}

// Drive binds dst to a live expression reading src.
func (s *Solver) Drive(ctx context.Context, dst, src scene.ParamRef) error {
	source, err := s.Ref(ctx, src)
	if err != nil {
		return err
	}
	if err := s.Env.Graph.SetExpression(ctx, dst, source); err != nil {
		return fmt.Errorf("driving %s.%s: %w", dst.Group, dst.Name, err)
	}
	return nil
}

// Ref renders a parameter reference for use inside an expression.
func (s *Solver) Ref(ctx context.Context, ref scene.ParamRef) (string, error) {
	addr, err := ref.Address(ctx, s.Env.Graph)
	if err != nil {
		return "", err
	}
	return expr.Ref(addr), nil
}

// Style hides every helper node and links the visibility of the animation
// controls to the blend weight.
func (s *Solver) Style(ctx context.Context) error {
	g := s.Env.Graph
	seen := make(map[scene.NodeID]struct{}, len(s.Helper.Hidden))
	for _, id := range s.Helper.Hidden {
		if _, done := seen[id]; done {
			continue
		}
		seen[id] = struct{}{}
		if err := g.SetParam(ctx, scene.ViewVis(id), cty.False); err != nil {
			return fmt.Errorf("hiding %s: %w", scene.MustName(ctx, g, id), err)
		}
	}
	for _, anim := range s.Input.Anim {
		if err := s.Drive(ctx, scene.ViewVis(anim), s.Input.BlendWeight); err != nil {
			return err
		}
	}
	return nil
}

// Reversed reports whether the joints should be wired from the last one.
// The first joint's depth is compared with the mean depth of the others;
// a first joint at most as deep as the mean wires forward.
func (s *Solver) Reversed(ctx context.Context) (bool, error) {
	sk := s.Input.Skeleton
	if len(sk) < 2 {
		return false, nil
	}
	first, err := s.Env.Chain.Depth(ctx, sk[0])
	if err != nil {
		return false, err
	}
	var sum int
	for _, j := range sk[1:] {
		d, err := s.Env.Chain.Depth(ctx, j)
		if err != nil {
			return false, err
		}
		sum += d
	}
	// first <= sum/n without integer division.
	return first*len(sk[1:]) > sum, nil
}
