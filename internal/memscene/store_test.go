package memscene

import (
	"context"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/riglab/internal/scene"
	"github.com/zclconf/go-cty/cty"
)

// addNamed is a helper that creates a named node under parent.
func addNamed(t *testing.T, s *Store, parent scene.NodeID, kind scene.NodeKind, name string) scene.NodeID {
	t.Helper()
	ctx := context.Background()
	id, err := s.AddNode(ctx, parent, kind)
	require.NoError(t, err)
	require.NoError(t, s.SetName(ctx, id, name))
	return id
}

func assertMatrixNear(t *testing.T, want, got mgl64.Mat4) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-6, "component %d: want %v got %v", i, want, got)
	}
}

func TestAddNode_DefaultsAndLookup(t *testing.T) {
	s := New()
	ctx := context.Background()

	id := addNamed(t, s, s.Root(ctx), scene.KindJoint, "hip_JNT")

	found, ok := s.FindByName(ctx, "hip_JNT")
	require.True(t, ok)
	assert.Equal(t, id, found)

	kind, err := s.Kind(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, scene.KindJoint, kind)

	roll, err := scene.Float(ctx, s, scene.Roll(id))
	require.NoError(t, err)
	assert.Equal(t, 0.0, roll)

	vis, err := scene.Bool(ctx, s, scene.ViewVis(id))
	require.NoError(t, err)
	assert.True(t, vis)

	parent, err := s.Parent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, s.Root(ctx), parent)
	assert.Equal(t, 2, s.Len())
}

func TestAddNode_UnknownParent(t *testing.T) {
	s := New()
	_, err := s.AddNode(context.Background(), "missing", scene.KindNull)
	require.ErrorIs(t, err, scene.ErrNodeNotFound)
}

func TestSetName_Rules(t *testing.T) {
	s := New()
	ctx := context.Background()
	a := addNamed(t, s, s.Root(ctx), scene.KindNull, "a_GRP")
	b, err := s.AddNode(ctx, s.Root(ctx), scene.KindNull)
	require.NoError(t, err)

	require.ErrorIs(t, s.SetName(ctx, b, "a_GRP"), scene.ErrNameTaken)
	require.ErrorIs(t, s.SetName(ctx, b, "1bad"), scene.ErrInvalidName)
	require.NoError(t, s.SetName(ctx, a, "a_GRP"), "renaming to the current name is allowed")

	require.NoError(t, s.SetName(ctx, a, "renamed_GRP"))
	_, ok := s.FindByName(ctx, "a_GRP")
	assert.False(t, ok)
}

func TestDelete_RemovesSubtreeAndDependentConstraints(t *testing.T) {
	s := New()
	ctx := context.Background()
	root := s.Root(ctx)

	group := addNamed(t, s, root, scene.KindNull, "group_GRP")
	child := addNamed(t, s, group, scene.KindNull, "child_NUL")
	outside := addNamed(t, s, root, scene.KindNull, "outside_NUL")
	cns, err := s.AddConstraint(ctx, outside, scene.ConstraintPose, child, false)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, group))

	assert.False(t, s.Exists(ctx, group))
	assert.False(t, s.Exists(ctx, child))
	assert.False(t, s.Exists(ctx, cns))
	assert.True(t, s.Exists(ctx, outside))

	children, err := s.Children(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, []scene.NodeID{outside}, children)
	require.Error(t, s.Delete(ctx, root))
}

func TestParams_CoercionAndRange(t *testing.T) {
	s := New()
	ctx := context.Background()
	n := addNamed(t, s, s.Root(ctx), scene.KindNull, "props_NUL")

	weight, err := s.AddParam(ctx, n, "Input_Parameters", "blendweight", scene.FloatParam(1, 0, 1))
	require.NoError(t, err)
	active, err := s.AddParam(ctx, n, "Input_Parameters", "active", scene.BoolParam(true))
	require.NoError(t, err)

	_, err = s.AddParam(ctx, n, "Input_Parameters", "active", scene.BoolParam(false))
	require.ErrorIs(t, err, scene.ErrParamExists)

	require.NoError(t, s.SetParam(ctx, weight, cty.NumberFloatVal(4)))
	f, err := scene.Float(ctx, s, weight)
	require.NoError(t, err)
	assert.Equal(t, 1.0, f, "values are clamped to the declared range")

	require.NoError(t, s.SetParam(ctx, active, cty.NumberIntVal(0)))
	b, err := scene.Bool(ctx, s, active)
	require.NoError(t, err)
	assert.False(t, b, "numbers are cast to the bool kind")

	_, err = s.Param(ctx, scene.ParamRef{Node: n, Group: "Input_Parameters", Name: "missing"})
	require.ErrorIs(t, err, scene.ErrParamNotFound)
}

func TestExpressions_AreLive(t *testing.T) {
	s := New()
	ctx := context.Background()
	src := addNamed(t, s, s.Root(ctx), scene.KindNull, "src_NUL")
	dst := addNamed(t, s, s.Root(ctx), scene.KindNull, "dst_NUL")

	weight, err := s.AddParam(ctx, src, "Input_Parameters", "blendweight", scene.FloatParam(1, 0, 1))
	require.NoError(t, err)

	require.NoError(t, s.SetExpression(ctx, scene.ViewVis(dst), "src_NUL.Input_Parameters.blendweight"))

	vis, err := scene.Bool(ctx, s, scene.ViewVis(dst))
	require.NoError(t, err)
	assert.True(t, vis)

	require.NoError(t, s.SetParam(ctx, weight, cty.NumberIntVal(0)))
	vis, err = scene.Bool(ctx, s, scene.ViewVis(dst))
	require.NoError(t, err)
	assert.False(t, vis, "the expression is re-evaluated on every read")

	source, ok, err := s.Expression(ctx, scene.ViewVis(dst))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "src_NUL.Input_Parameters.blendweight", source)

	require.ErrorIs(t, s.SetParam(ctx, scene.ViewVis(dst), cty.True), scene.ErrParamDriven)
}

func TestExpressions_RejectUnresolvableReference(t *testing.T) {
	s := New()
	ctx := context.Background()
	n := addNamed(t, s, s.Root(ctx), scene.KindNull, "n_NUL")

	require.Error(t, s.SetExpression(ctx, scene.ViewVis(n), "nobody.Input_Parameters.active"))

	_, ok, err := s.Expression(ctx, scene.ViewVis(n))
	require.NoError(t, err)
	assert.False(t, ok, "a failed bind leaves the parameter static")
}

func TestExpressions_Distance(t *testing.T) {
	s := New()
	ctx := context.Background()
	a := addNamed(t, s, s.Root(ctx), scene.KindNull, "a_NUL")
	b := addNamed(t, s, s.Root(ctx), scene.KindNull, "b_NUL")
	require.NoError(t, s.SetGlobalTransform(ctx, b, mgl64.Translate3D(3, 4, 0)))

	factor, err := s.AddParam(ctx, a, "Helper_Parameters", "ss_factor", scene.FloatParam(1, 0, 999))
	require.NoError(t, err)
	require.NoError(t, s.SetExpression(ctx, factor, `ctr_dist("a_NUL", "b_NUL") / 5`))

	f, err := scene.Float(ctx, s, factor)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, f, 1e-9)

	require.NoError(t, s.SetGlobalTransform(ctx, b, mgl64.Translate3D(6, 8, 0)))
	f, err = scene.Float(ctx, s, factor)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, f, 1e-9)
}

func TestTransforms_HierarchyAndScale(t *testing.T) {
	s := New()
	ctx := context.Background()
	parent := addNamed(t, s, s.Root(ctx), scene.KindNull, "parent_NUL")
	child := addNamed(t, s, parent, scene.KindNull, "child_NUL")

	require.NoError(t, s.SetLocalTransform(ctx, parent, mgl64.Translate3D(1, 0, 0)))
	require.NoError(t, s.SetLocalTransform(ctx, child, mgl64.Translate3D(0, 2, 0)))

	w, err := s.GlobalTransform(ctx, child)
	require.NoError(t, err)
	assertMatrixNear(t, mgl64.Translate3D(1, 2, 0), w)

	require.NoError(t, s.SetGlobalTransform(ctx, child, mgl64.Translate3D(5, 5, 5)))
	local, err := s.LocalTransform(ctx, child)
	require.NoError(t, err)
	assertMatrixNear(t, mgl64.Translate3D(4, 5, 5), local)

	require.NoError(t, s.SetParam(ctx, scene.Kine(parent, scene.ParamSclX), cty.NumberIntVal(2)))
	w, err = s.GlobalTransform(ctx, parent)
	require.NoError(t, err)
	assertMatrixNear(t, mgl64.Translate3D(1, 0, 0).Mul4(mgl64.Scale3D(2, 1, 1)), w)
}

func TestConstraints_PoseWithCompensationAndBlend(t *testing.T) {
	s := New()
	ctx := context.Background()
	driven := addNamed(t, s, s.Root(ctx), scene.KindNull, "driven_NUL")
	driver := addNamed(t, s, s.Root(ctx), scene.KindNull, "driver_NUL")
	require.NoError(t, s.SetGlobalTransform(ctx, driven, mgl64.Translate3D(0, 1, 0)))

	cns, err := s.AddConstraint(ctx, driven, scene.ConstraintPose, driver, true)
	require.NoError(t, err)

	w, err := s.GlobalTransform(ctx, driven)
	require.NoError(t, err)
	assertMatrixNear(t, mgl64.Translate3D(0, 1, 0), w)

	require.NoError(t, s.SetGlobalTransform(ctx, driver, mgl64.Translate3D(10, 0, 0)))
	w, err = s.GlobalTransform(ctx, driven)
	require.NoError(t, err)
	assertMatrixNear(t, mgl64.Translate3D(10, 1, 0), w)

	require.NoError(t, s.SetParam(ctx, scene.Cns(cns, scene.ParamBlendWeight), cty.NumberFloatVal(0.5)))
	w, err = s.GlobalTransform(ctx, driven)
	require.NoError(t, err)
	assertMatrixNear(t, mgl64.Translate3D(5, 1, 0), w)

	require.NoError(t, s.SetParam(ctx, scene.Cns(cns, scene.ParamActive), cty.False))
	w, err = s.GlobalTransform(ctx, driven)
	require.NoError(t, err)
	assertMatrixNear(t, mgl64.Translate3D(0, 1, 0), w)
}

func TestConstraints_PositionKeepsRotation(t *testing.T) {
	s := New()
	ctx := context.Background()
	driven := addNamed(t, s, s.Root(ctx), scene.KindNull, "driven_NUL")
	driver := addNamed(t, s, s.Root(ctx), scene.KindNull, "driver_NUL")
	rot := mgl64.HomogRotate3DZ(mgl64.DegToRad(90))
	require.NoError(t, s.SetGlobalTransform(ctx, driven, rot))
	require.NoError(t, s.SetGlobalTransform(ctx, driver, mgl64.Translate3D(2, 3, 4).Mul4(mgl64.HomogRotate3DX(1))))

	_, err := s.AddConstraint(ctx, driven, scene.ConstraintPosition, driver, false)
	require.NoError(t, err)

	w, err := s.GlobalTransform(ctx, driven)
	require.NoError(t, err)
	assertMatrixNear(t, mgl64.Translate3D(2, 3, 4).Mul4(rot), w)

	_, err = s.AddConstraint(ctx, driven, scene.ConstraintPose, driven, false)
	require.Error(t, err)
}

func TestApplyOp_UpVectorTwistsTowardPole(t *testing.T) {
	s := New()
	ctx := context.Background()
	bone := addNamed(t, s, s.Root(ctx), scene.KindJoint, "bone_JNT")
	pole := addNamed(t, s, s.Root(ctx), scene.KindNull, "pole_NUL")
	require.NoError(t, s.SetGlobalTransform(ctx, pole, mgl64.Translate3D(1, -3, 0)))

	before, err := s.GlobalTransform(ctx, bone)
	require.NoError(t, err)

	require.NoError(t, s.ApplyOp(ctx, scene.OpSkeletonUpVector, "bone_JNT;pole_NUL"))

	after, err := s.GlobalTransform(ctx, bone)
	require.NoError(t, err)
	assertMatrixNear(t, before.Mul4(mgl64.HomogRotate3DX(mgl64.DegToRad(180))), after)

	// A half turn of roll cancels the twist.
	require.NoError(t, s.SetParam(ctx, scene.Roll(bone), cty.NumberIntVal(180)))
	restored, err := s.GlobalTransform(ctx, bone)
	require.NoError(t, err)
	assertMatrixNear(t, before, restored)

	require.ErrorIs(t, s.ApplyOp(ctx, "Explode"), scene.ErrUnknownOp)
	require.Error(t, s.ApplyOp(ctx, scene.OpSkeletonUpVector, "bone_JNT"))
}

func TestDataAndRefresh(t *testing.T) {
	s := New()
	ctx := context.Background()
	n := addNamed(t, s, s.Root(ctx), scene.KindNull, "data_NUL")

	_, ok, err := s.Data(ctx, n, "Solver_Data")
	require.NoError(t, err)
	assert.False(t, ok)

	payload := []byte("classname: IK\n")
	require.NoError(t, s.SetData(ctx, n, "Solver_Data", payload))
	payload[0] = 'X'

	got, ok, err := s.Data(ctx, n, "Solver_Data")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "classname: IK\n", string(got), "stored data is copied")

	require.NoError(t, s.Refresh(ctx))
	require.NoError(t, s.Refresh(ctx))
	assert.Equal(t, 2, s.Refreshes())
}
