package manipulator_test

import (
	"context"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/riglab/internal/manipulator"
	"github.com/vk/riglab/internal/memscene"
	"github.com/vk/riglab/internal/naming"
	"github.com/vk/riglab/internal/scene"
	"github.com/vk/riglab/internal/testutil"
)

func setup(t *testing.T) (context.Context, *memscene.Store, *manipulator.Manipulator) {
	t.Helper()
	ctx := testutil.Context(t)
	g := memscene.New()
	m, err := manipulator.New(ctx, g, naming.New(g), g.Root(ctx))
	require.NoError(t, err)
	return ctx, g, m
}

func TestNew_HierarchyAndIcon(t *testing.T) {
	ctx, g, m := setup(t)

	chain := []scene.NodeID{g.Root(ctx), m.Space, m.Zero, m.Orient, m.Anim}
	for i := 1; i < len(chain); i++ {
		parent, err := g.Parent(ctx, chain[i])
		require.NoError(t, err)
		assert.Equal(t, chain[i-1], parent)
	}

	icon, err := m.Icon(ctx)
	require.NoError(t, err)
	assert.Equal(t, manipulator.DefaultIcon, icon)

	want := manipulator.Icon{Shape: "sphere", Color: "blue", Size: 0.25, Connect: "arm_0_JNT"}
	require.NoError(t, m.SetIcon(ctx, want))
	icon, err = m.Icon(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, icon)
}

func TestDuplicate_CopiesIconOwnerAndAlignment(t *testing.T) {
	ctx, g, m := setup(t)
	require.NoError(t, m.SetIcon(ctx, manipulator.Icon{Shape: "ring", Color: "red", Size: 2}))
	require.NoError(t, m.SetOwner(ctx, manipulator.Owner{Obj: "arm_GRP", Class: "IK"}))
	require.NoError(t, m.AlignMatrix4(ctx, mgl64.Translate3D(1, 2, 3)))

	dups, err := m.Duplicate(ctx, 2)
	require.NoError(t, err)
	require.Len(t, dups, 2)

	for _, d := range dups {
		icon, err := d.Icon(ctx)
		require.NoError(t, err)
		assert.Equal(t, "ring", icon.Shape)

		owner, ok, err := d.Owner(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, manipulator.Owner{Obj: "arm_GRP", Class: "IK"}, owner)

		w, err := g.GlobalTransform(ctx, d.Anim)
		require.NoError(t, err)
		testutil.AssertMat4Near(t, mgl64.Translate3D(1, 2, 3), w)
		assert.NotEqual(t, m.Anim, d.Anim)
	}
}

func TestAlignAndTranslate(t *testing.T) {
	ctx, g, m := setup(t)
	target, err := g.AddNode(ctx, g.Root(ctx), scene.KindNull)
	require.NoError(t, err)
	rot := mgl64.Translate3D(0, 0, 5).Mul4(mgl64.HomogRotate3DZ(mgl64.DegToRad(90)))
	require.NoError(t, g.SetGlobalTransform(ctx, target, rot))

	require.NoError(t, m.Align(ctx, target))
	w, err := g.GlobalTransform(ctx, m.Anim)
	require.NoError(t, err)
	testutil.AssertMat4Near(t, rot, w)

	// Local Y of the rotated frame is world -X.
	require.NoError(t, m.Translate(ctx, mgl64.Vec3{0, -2, 0}))
	w, err = g.GlobalTransform(ctx, m.Anim)
	require.NoError(t, err)
	testutil.AssertVec3Near(t, mgl64.Vec3{2, 0, 5}, scene.Translation(w))
}

func TestRename(t *testing.T) {
	ctx, g, m := setup(t)
	require.NoError(t, m.Rename(ctx, "arm", 1, "L"))

	for id, want := range map[scene.NodeID]string{
		m.Space:  "arm_L_1_SPC",
		m.Zero:   "arm_L_1_ZERO",
		m.Orient: "arm_L_1_ORI",
		m.Anim:   "arm_L_1_ANM",
	} {
		name, err := g.Name(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, name)
	}
}

func TestSnap(t *testing.T) {
	ctx, g, m := setup(t)
	require.ErrorIs(t, m.Snap(ctx), manipulator.ErrNoSnapRef)

	joint, err := g.AddNode(ctx, g.Root(ctx), scene.KindJoint)
	require.NoError(t, err)
	require.NoError(t, g.SetGlobalTransform(ctx, joint, mgl64.Translate3D(4, 0, 0)))
	require.NoError(t, m.AlignMatrix4(ctx, mgl64.Translate3D(0, 1, 0)))

	require.NoError(t, m.SnapRef(ctx, joint))
	require.NoError(t, m.Snap(ctx))

	w, err := g.GlobalTransform(ctx, m.Anim)
	require.NoError(t, err)
	testutil.AssertMat4Near(t, mgl64.Translate3D(4, 0, 0), w)

	require.NoError(t, g.Delete(ctx, joint))
	require.ErrorIs(t, m.Snap(ctx), scene.ErrNodeNotFound)
}

func TestFromAnim(t *testing.T) {
	ctx, g, m := setup(t)

	got, err := manipulator.FromAnim(ctx, g, naming.New(g), m.Anim)
	require.NoError(t, err)
	assert.Equal(t, m.Space, got.Space)
	assert.Equal(t, m.Zero, got.Zero)
	assert.Equal(t, m.Orient, got.Orient)

	_, err = manipulator.FromAnim(ctx, g, naming.New(g), m.Zero)
	require.ErrorIs(t, err, manipulator.ErrNotManipulator)
}
