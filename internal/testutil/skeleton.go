package testutil

import (
	"fmt"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
	"github.com/vk/riglab/internal/chain"
	"github.com/vk/riglab/internal/scene"
)

// BuildSkeleton creates one joint per position under parent, each oriented
// towards the next with chain.Frame. When nested is set every joint is the
// child of the previous one, otherwise all joints are siblings. Joints are
// named <prefix>_<i>_JNT.
func BuildSkeleton(t *testing.T, g scene.Graph, parent scene.NodeID, prefix string, nested bool, positions ...mgl64.Vec3) []scene.NodeID {
	t.Helper()
	ctx := Context(t)

	joints := make([]scene.NodeID, 0, len(positions))
	p := parent
	for i, pos := range positions {
		dir := mgl64.Vec3{1, 0, 0}
		switch {
		case i+1 < len(positions):
			dir = positions[i+1].Sub(pos)
		case i > 0:
			dir = pos.Sub(positions[i-1])
		}

		id, err := g.AddNode(ctx, p, scene.KindJoint)
		require.NoError(t, err)
		require.NoError(t, g.SetName(ctx, id, fmt.Sprintf("%s_%d_JNT", prefix, i)))
		require.NoError(t, g.SetGlobalTransform(ctx, id, chain.Frame(pos, dir)))

		joints = append(joints, id)
		if nested {
			p = id
		}
	}
	return joints
}

// StraightChain returns n positions spaced one unit apart along +X.
func StraightChain(n int) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, n)
	for i := range out {
		out[i] = mgl64.Vec3{float64(i), 0, 0}
	}
	return out
}

// BentChain returns an arm-like chain of n positions that zig-zags in the
// XY plane.
func BentChain(n int) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, n)
	for i := range out {
		y := 0.0
		if i%2 == 1 {
			y = 0.5
		}
		out[i] = mgl64.Vec3{float64(i) * 2, y, 0}
	}
	return out
}
