package ik_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/riglab/internal/manipulator"
	"github.com/vk/riglab/internal/memscene"
	"github.com/vk/riglab/internal/registry"
	"github.com/vk/riglab/internal/scene"
	"github.com/vk/riglab/internal/solver"
	"github.com/vk/riglab/internal/testutil"
	"github.com/vk/riglab/modules/ik"
	"github.com/zclconf/go-cty/cty"
)

type rig struct {
	ctx      context.Context
	graph    *memscene.Store
	skeleton []scene.NodeID
	solver   *solver.Solver
}

func buildIK(t *testing.T, positions []mgl64.Vec3, opts ...solver.Option) rig {
	t.Helper()
	ctx := testutil.Context(t)
	g := memscene.New()
	skeleton := testutil.BuildSkeleton(t, g, g.Root(ctx), "bind", true, positions...)

	opts = append([]solver.Option{solver.WithName("arm")}, opts...)
	s, err := solver.New(ctx, solver.NewEnv(g), ik.New(), skeleton, opts...)
	require.NoError(t, err)
	return rig{ctx: ctx, graph: g, skeleton: skeleton, solver: s}
}

func (r rig) node(t *testing.T, name string) scene.NodeID {
	t.Helper()
	id, ok := r.graph.FindByName(r.ctx, name)
	require.True(t, ok, "node %s", name)
	return id
}

func (r rig) boolParam(t *testing.T, ref scene.ParamRef) bool {
	t.Helper()
	v, err := scene.Bool(r.ctx, r.graph, ref)
	require.NoError(t, err)
	return v
}

func (r rig) world(t *testing.T, id scene.NodeID) mgl64.Mat4 {
	t.Helper()
	m, err := r.graph.GlobalTransform(r.ctx, id)
	require.NoError(t, err)
	return m
}

func TestValidate(t *testing.T) {
	v := ik.New()
	for n, want := range map[int]bool{0: false, 1: false, 2: true, 3: true, 6: true} {
		assert.Equal(t, want, v.Validate(make([]scene.NodeID, n)), "chain of %d joints", n)
	}
}

func TestNew_RejectedChainLeavesSceneUntouched(t *testing.T) {
	ctx := testutil.Context(t)
	g := memscene.New()
	skeleton := testutil.BuildSkeleton(t, g, g.Root(ctx), "bind", true, testutil.StraightChain(1)...)
	before := g.Len()

	s, err := solver.New(ctx, solver.NewEnv(g), ik.New(), skeleton)
	require.ErrorIs(t, err, solver.ErrInvalidChain)
	assert.Nil(t, s)
	assert.Equal(t, before, g.Len())

	s, err = solver.New(ctx, solver.NewEnv(g), ik.New(), nil)
	require.ErrorIs(t, err, solver.ErrInvalidChain)
	assert.Nil(t, s)
	assert.Equal(t, before, g.Len())
}

func TestCustomInputs_Defaults(t *testing.T) {
	for _, n := range []int{2, 3, 4} {
		r := buildIK(t, testutil.StraightChain(n))
		extra := r.solver.Input.Extra

		assert.True(t, r.boolParam(t, extra[ik.ParamStretch]), "stretch for %d joints", n)
		assert.Equal(t, n == 2, r.boolParam(t, extra[ik.ParamSquash]), "squash for %d joints", n)
		assert.Len(t, r.solver.Output.TM, n-1)
	}
}

func TestCustomAnim_Controls(t *testing.T) {
	r := buildIK(t, testutil.StraightChain(3), solver.WithSide("L"))
	anim := r.solver.Input.Anim
	require.Len(t, anim, 3)

	for i, want := range []string{"arm_L_0_ANM", "arm_L_1_ANM", "arm_L_2_ANM"} {
		name, err := r.graph.Name(r.ctx, anim[i])
		require.NoError(t, err)
		assert.Equal(t, want, name)
	}

	icons := make([]manipulator.Icon, 3)
	for i, a := range anim {
		m, err := manipulator.FromAnim(r.ctx, r.graph, r.solver.Env.Naming, a)
		require.NoError(t, err)
		icons[i], err = m.Icon(r.ctx)
		require.NoError(t, err)

		owner, ok, err := m.Owner(r.ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, manipulator.Owner{Obj: "armRoot_L_GRP", Class: ik.Classname}, owner)
	}
	assert.Equal(t, manipulator.Icon{Shape: ik.ShapeIK, Color: "blue", Size: 1}, icons[ik.AnimRoot])
	assert.Equal(t, manipulator.Icon{Shape: ik.ShapeUp, Color: "cyan", Size: ik.PoleIconSize, Connect: "bind_0_JNT"}, icons[ik.AnimPole])
	assert.Equal(t, icons[ik.AnimRoot], icons[ik.AnimEffector])

	root := r.world(t, anim[ik.AnimRoot])
	testutil.AssertVec3Near(t, mgl64.Vec3{0, 0, 0}, scene.Translation(root))
	eff := r.world(t, anim[ik.AnimEffector])
	testutil.AssertVec3Near(t, mgl64.Vec3{2, 0, 0}, scene.Translation(eff))
	pole := r.world(t, anim[ik.AnimPole])
	testutil.AssertVec3Near(t, mgl64.Vec3{0, -1, 0}, scene.Translation(pole), "pole sits one segment below the root")
}

func TestCustomAnim_TwoJointsAlignToJoints(t *testing.T) {
	positions := []mgl64.Vec3{{1, 1, 0}, {1, 4, 0}}
	r := buildIK(t, positions, solver.WithSide("R"))
	anim := r.solver.Input.Anim

	assert.True(t, ik.Equal(r.world(t, r.skeleton[0]), r.world(t, anim[ik.AnimRoot])))
	assert.True(t, ik.Equal(r.world(t, r.skeleton[1]), r.world(t, anim[ik.AnimEffector])))

	m, err := manipulator.FromAnim(r.ctx, r.graph, r.solver.Env.Naming, anim[ik.AnimPole])
	require.NoError(t, err)
	icon, err := m.Icon(r.ctx)
	require.NoError(t, err)
	assert.Equal(t, "pink", icon.Color)
}

func TestCustomBuild_RollCorrection(t *testing.T) {
	for name, positions := range map[string][]mgl64.Vec3{
		"straight": testutil.StraightChain(3),
		"bent":     testutil.BentChain(4),
	} {
		t.Run(name, func(t *testing.T) {
			r := buildIK(t, positions)
			bone := r.node(t, "arm_0_JNT")

			roll, err := scene.Float(r.ctx, r.graph, scene.Roll(bone))
			require.NoError(t, err)
			assert.Equal(t, 180.0, roll)
			assert.True(t, ik.Equal(r.world(t, r.skeleton[0]), r.world(t, bone)),
				"the roll cancels the up-vector twist")

			for i, tm := range r.solver.Output.TM {
				bone := r.node(t, fmt.Sprintf("arm_%d_JNT", i))
				assert.True(t, ik.Equal(r.world(t, bone), r.world(t, tm)), "output %d follows its bone", i)
			}
		})
	}
}

func TestCustomBuild_StretchSquash(t *testing.T) {
	testCases := []struct {
		name    string
		joints  int
		stretch bool
		squash  bool
		effX    float64
		want    float64
	}{
		{"rest length is neutral", 3, true, false, 2, 1},
		{"stretch only lengthens", 3, true, false, 4, 2},
		{"stretch only does not shorten", 3, true, false, 1, 1},
		{"squash only shortens", 3, false, true, 1, 0.5},
		{"squash only does not lengthen", 3, false, true, 4, 1},
		{"both pass through long", 3, true, true, 4, 2},
		{"both pass through short", 3, true, true, 1, 0.5},
		{"neither is rigid", 3, false, false, 4, 1},
		{"two joints squash by default", 2, true, true, 0.5, 0.5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := buildIK(t, testutil.StraightChain(tc.joints))
			extra := r.solver.Input.Extra
			require.NoError(t, r.graph.SetParam(r.ctx, extra[ik.ParamStretch], cty.BoolVal(tc.stretch)))
			require.NoError(t, r.graph.SetParam(r.ctx, extra[ik.ParamSquash], cty.BoolVal(tc.squash)))

			eff := r.solver.Input.Anim[ik.AnimEffector]
			require.NoError(t, r.graph.SetGlobalTransform(r.ctx, eff, mgl64.Translate3D(tc.effX, 0, 0)))

			bone := r.node(t, "arm_0_JNT")
			got, err := scene.Float(r.ctx, r.graph, scene.Kine(bone, scene.ParamSclX))
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestCustomBuild_ScaleFactorParameter(t *testing.T) {
	r := buildIK(t, testutil.StraightChain(3))
	ref := r.solver.Helper.Extra[ik.ParamSSFactor]
	require.False(t, ref.IsZero())
	assert.Equal(t, r.solver.Helper.Root, ref.Node)
	assert.Equal(t, solver.GroupHelper, ref.Group)

	def, err := r.graph.ParamDef(r.ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, 0.0, def.Min)
	assert.Equal(t, 999.0, def.Max)

	source, ok, err := r.graph.Expression(r.ctx, ref)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `ctr_dist("arm_0_ANM", "arm_2_ANM") / 2`, source)

	f, err := scene.Float(r.ctx, r.graph, ref)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, f, 1e-9)
}

func TestStyle_HidesChainAndControlScaffold(t *testing.T) {
	r := buildIK(t, testutil.BentChain(3))

	hidden := make(map[scene.NodeID]bool)
	for _, id := range r.solver.Helper.Hidden {
		hidden[id] = true
		assert.False(t, r.boolParam(t, scene.ViewVis(id)), "%s stays visible", scene.MustName(r.ctx, r.graph, id))
	}
	for _, name := range []string{"armRoot_JNT", "armEff_JNT", "arm_0_JNT", "arm_1_JNT", "arm_0_SPC", "arm_1_ZERO", "arm_2_ORI"} {
		assert.True(t, hidden[r.node(t, name)], "%s is hidden", name)
	}
	for _, a := range r.solver.Input.Anim {
		assert.False(t, hidden[a])
		assert.True(t, r.boolParam(t, scene.ViewVis(a)))
	}
}

func TestSnap_ControlsFollowReferences(t *testing.T) {
	r := buildIK(t, testutil.BentChain(4))
	anim := r.solver.Input.Anim
	for _, a := range anim {
		require.NoError(t, r.graph.SetGlobalTransform(r.ctx, a, mgl64.Translate3D(10, 10, 10)))
	}

	require.NoError(t, r.solver.Snap(r.ctx))

	state, err := r.solver.State(r.ctx)
	require.NoError(t, err)
	assert.True(t, state)

	first := scene.Translation(r.world(t, r.skeleton[0]))
	last := scene.Translation(r.world(t, r.skeleton[3]))
	testutil.AssertVec3Near(t, first, scene.Translation(r.world(t, anim[ik.AnimRoot])))
	testutil.AssertVec3Near(t, first, scene.Translation(r.world(t, anim[ik.AnimPole])))
	testutil.AssertVec3Near(t, last, scene.Translation(r.world(t, anim[ik.AnimEffector])))
}

func TestModule_Register(t *testing.T) {
	r := registry.New()
	(&ik.Module{}).Register(r)

	v, ok := r.Lookup(ik.Classname)
	require.True(t, ok)
	assert.IsType(t, &ik.IK{}, v)
}
