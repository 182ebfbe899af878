package ik

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/vk/riglab/internal/chain"
	"github.com/vk/riglab/internal/ctxlog"
	"github.com/vk/riglab/internal/expr"
	"github.com/vk/riglab/internal/manipulator"
	"github.com/vk/riglab/internal/naming"
	"github.com/vk/riglab/internal/scene"
	"github.com/vk/riglab/internal/solver"
	"github.com/zclconf/go-cty/cty"
	"gonum.org/v1/gonum/floats"
)

// Classname is the registry key of the IK variant.
const Classname = "IK"

// Parameter names added by the IK variant.
const (
	ParamStretch  = "stretch"
	ParamSquash   = "squash"
	ParamSSFactor = "ss_factor"
)

// Control indices in Input.Anim.
const (
	AnimRoot = iota
	AnimPole
	AnimEffector
)

// IK is the IK limb variant.
type IK struct{}

var _ solver.Variant = (*IK)(nil)

// New creates the IK variant.
func New() *IK { return &IK{} }

// Classname implements solver.Variant.
func (*IK) Classname() string { return Classname }

// Validate requires at least two joints.
func (*IK) Validate(skeleton []scene.NodeID) bool { return len(skeleton) >= 2 }

// CustomInputs adds the stretch and squash switches. Squash is only on by
// default for two-joint chains.
func (*IK) CustomInputs(ctx context.Context, s *solver.Solver) error {
	g := s.Env.Graph
	if s.Input.Extra == nil {
		s.Input.Extra = make(map[string]scene.ParamRef)
	}
	for _, name := range []string{ParamStretch, ParamSquash} {
		if !s.Input.Extra[name].IsZero() {
			continue
		}
		ref, err := g.AddParam(ctx, s.Input.Root, s.Input.Parameters, name, scene.BoolParam(name == ParamStretch))
		if err != nil {
			return fmt.Errorf("adding %s input: %w", name, err)
		}
		s.Input.Extra[name] = ref
	}
	squash := len(s.Input.Skeleton) == 2
	return g.SetParam(ctx, s.Input.Extra[ParamSquash], cty.BoolVal(squash))
}

// CustomAnim creates the root, pole and effector controls and aligns them
// to the chain.
func (*IK) CustomAnim(ctx context.Context, s *solver.Solver) error {
	g := s.Env.Graph
	sk := s.Input.Skeleton
	colors := ColorsFor(s.Side)

	root, err := manipulator.New(ctx, g, s.Env.Naming, s.Input.Root)
	if err != nil {
		return err
	}
	if err := root.SetOwner(ctx, manipulator.Owner{Obj: scene.MustName(ctx, g, s.Root), Class: s.Classname}); err != nil {
		return err
	}
	if err := root.SetIcon(ctx, manipulator.Icon{Shape: ShapeIK, Color: colors.Primary, Size: 1}); err != nil {
		return err
	}
	dups, err := root.Duplicate(ctx, 2)
	if err != nil {
		return err
	}
	eff, pole := dups[0], dups[1]

	firstJoint, err := g.Name(ctx, sk[0])
	if err != nil {
		return err
	}
	poleIcon := manipulator.Icon{Shape: ShapeUp, Color: colors.Secondary, Size: PoleIconSize, Connect: firstJoint}
	if err := pole.SetIcon(ctx, poleIcon); err != nil {
		return err
	}

	for i, ctrl := range []*manipulator.Manipulator{root, pole, eff} {
		if err := ctrl.Rename(ctx, s.Name, i, s.Side); err != nil {
			return err
		}
		s.Hide(ctrl.Orient, ctrl.Zero, ctrl.Space)
	}

	points, segments, err := s.Env.Chain.CurveData(ctx, s.Helper.Curve)
	if err != nil {
		return err
	}
	if len(sk) > 2 {
		if err := root.AlignMatrix4(ctx, points[0]); err != nil {
			return err
		}
		if err := eff.AlignMatrix4(ctx, points[len(points)-1]); err != nil {
			return err
		}
	} else {
		if err := root.Align(ctx, sk[0]); err != nil {
			return err
		}
		if err := eff.Align(ctx, sk[len(sk)-1]); err != nil {
			return err
		}
	}
	if err := pole.Align(ctx, root.Anim); err != nil {
		return err
	}
	if err := pole.Translate(ctx, mgl64.Vec3{0, -segments[0], 0}); err != nil {
		return err
	}

	s.Input.Anim = []scene.NodeID{root.Anim, pole.Anim, eff.Anim}
	ctxlog.FromContext(ctx).Debug("Created IK controls.", "pole_offset", segments[0])
	return nil
}

// CustomBuild builds the IK chain, wires it to the controls and the output
// drivers, corrects its roll and installs the stretch/squash expressions.
func (v *IK) CustomBuild(ctx context.Context, s *solver.Solver) error {
	g := s.Env.Graph
	logger := ctxlog.FromContext(ctx)
	anim := s.Input.Anim

	ch, err := v.ikChain(ctx, s)
	if err != nil {
		return err
	}

	if _, err := g.AddConstraint(ctx, ch.Root, scene.ConstraintPosition, anim[AnimRoot], false); err != nil {
		return fmt.Errorf("constraining chain root: %w", err)
	}
	if _, err := g.AddConstraint(ctx, ch.Effector, scene.ConstraintPosition, anim[AnimEffector], false); err != nil {
		return fmt.Errorf("constraining chain effector: %w", err)
	}
	for i, bone := range ch.Bones {
		if _, err := g.AddConstraint(ctx, s.Output.TM[i], scene.ConstraintPose, bone, false); err != nil {
			return fmt.Errorf("constraining output %d: %w", i, err)
		}
	}

	first := ch.Bones[0]
	res, err := v.correctRoll(ctx, s, first)
	if err != nil {
		return err
	}
	logger.Debug("Roll search finished.", "angle", res.Angle, "converged", res.Converged)

	if s.Helper.Extra == nil {
		s.Helper.Extra = make(map[string]scene.ParamRef)
	}
	if s.Helper.Extra[ParamSSFactor].IsZero() {
		if s.Helper.Parameters == "" {
			s.Helper.Parameters = solver.GroupHelper
		}
		ref, err := g.AddParam(ctx, s.Helper.Root, s.Helper.Parameters, ParamSSFactor, scene.FloatParam(1, 0, 999))
		if err != nil {
			return fmt.Errorf("adding %s: %w", ParamSSFactor, err)
		}
		s.Helper.Extra[ParamSSFactor] = ref
	}
	ssFactor := s.Helper.Extra[ParamSSFactor]

	_, segments, err := s.Env.Chain.CurveData(ctx, s.Helper.Curve)
	if err != nil {
		return err
	}
	rootName, err := g.Name(ctx, anim[AnimRoot])
	if err != nil {
		return err
	}
	effName, err := g.Name(ctx, anim[AnimEffector])
	if err != nil {
		return err
	}
	ratio := expr.Ratio(expr.Distance(rootName, effName), floats.Sum(segments))
	if err := g.SetExpression(ctx, ssFactor, ratio); err != nil {
		return fmt.Errorf("binding %s: %w", ParamSSFactor, err)
	}

	refs := make([]string, 0, 3)
	for _, ref := range []scene.ParamRef{ssFactor, s.Input.Extra[ParamStretch], s.Input.Extra[ParamSquash]} {
		r, err := s.Ref(ctx, ref)
		if err != nil {
			return err
		}
		refs = append(refs, r)
	}
	if err := g.SetExpression(ctx, scene.Kine(first, scene.ParamSclX), expr.StretchSquash(refs[0], refs[1], refs[2])); err != nil {
		return fmt.Errorf("binding stretch/squash: %w", err)
	}

	sk := s.Input.Skeleton
	for i, ref := range []scene.NodeID{sk[0], sk[0], sk[len(sk)-1]} {
		name, err := g.Name(ctx, anim[i])
		if err != nil {
			return err
		}
		m, err := s.Manipulator(ctx, name)
		if err != nil {
			return err
		}
		if err := m.SnapRef(ctx, ref); err != nil {
			return err
		}
	}
	return nil
}

// ikChain converts the helper curve into a named, hidden jointed chain.
func (*IK) ikChain(ctx context.Context, s *solver.Solver) (*chain.Chain, error) {
	g := s.Env.Graph
	nm := s.Env.Naming
	c, err := s.Env.Chain.CurveToChain(ctx, s.Helper.Curve, s.Helper.Root)
	if err != nil {
		return nil, fmt.Errorf("building IK chain: %w", err)
	}
	side := naming.WithSide(s.Side)
	if err := g.SetName(ctx, c.Root, nm.QN(ctx, s.Name+"Root", naming.RoleJoint, side)); err != nil {
		return nil, err
	}
	if err := g.SetName(ctx, c.Effector, nm.QN(ctx, s.Name+"Eff", naming.RoleJoint, side)); err != nil {
		return nil, err
	}
	for i, bone := range c.Bones {
		if err := g.SetName(ctx, bone, nm.QN(ctx, s.Name, naming.RoleJoint, naming.WithIndex(i), side)); err != nil {
			return nil, err
		}
	}
	s.Hide(c.Bones...)
	s.Hide(c.Root, c.Effector)
	return c, nil
}

// correctRoll orients the first bone towards the pole control and searches
// the roll that restores its previous world transform.
func (*IK) correctRoll(ctx context.Context, s *solver.Solver, bone scene.NodeID) (RollResult, error) {
	g := s.Env.Graph
	before, err := g.GlobalTransform(ctx, bone)
	if err != nil {
		return RollResult{}, err
	}
	boneName, err := g.Name(ctx, bone)
	if err != nil {
		return RollResult{}, err
	}
	poleName, err := g.Name(ctx, s.Input.Anim[AnimPole])
	if err != nil {
		return RollResult{}, err
	}
	if err := g.ApplyOp(ctx, scene.OpSkeletonUpVector, strings.Join([]string{boneName, poleName}, ";")); err != nil {
		return RollResult{}, fmt.Errorf("orienting %s: %w", boneName, err)
	}

	read := func() (mgl64.Mat4, error) { return g.GlobalTransform(ctx, bone) }
	setRoll := func(deg float64) error { return g.SetParam(ctx, scene.Roll(bone), cty.NumberFloatVal(deg)) }
	return SearchRoll(read, setRoll, before)
}
