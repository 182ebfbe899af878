package chain

import (
	"github.com/go-gl/mathgl/mgl64"
)

const frameEpsilon = 1e-9

// WorldUp is the reference up axis used to orient frames.
var WorldUp = mgl64.Vec3{0, 1, 0}

// Frame returns a transform located at origin whose X axis points along dir.
// Z is perpendicular to both X and WorldUp and Y completes a right-handed
// basis. When dir is parallel to WorldUp, Z falls back to the world Z axis.
// A zero dir yields an unrotated frame.
func Frame(origin, dir mgl64.Vec3) mgl64.Mat4 {
	if dir.Len() < frameEpsilon {
		return mgl64.Translate3D(origin[0], origin[1], origin[2])
	}
	x := dir.Normalize()
	z := x.Cross(WorldUp)
	if z.Len() < frameEpsilon {
		z = mgl64.Vec3{0, 0, 1}
	}
	z = z.Normalize()
	y := z.Cross(x)

	return mgl64.Mat4FromCols(
		x.Vec4(0),
		y.Vec4(0),
		z.Vec4(0),
		origin.Vec4(1),
	)
}

// framePoints orients every point towards the next one; the last point keeps
// the direction of the last segment.
func framePoints(points []mgl64.Vec3) []mgl64.Mat4 {
	out := make([]mgl64.Mat4, len(points))
	for i, p := range points {
		var dir mgl64.Vec3
		switch {
		case i+1 < len(points):
			dir = points[i+1].Sub(p)
		case i > 0:
			dir = p.Sub(points[i-1])
		default:
			dir = mgl64.Vec3{1, 0, 0}
		}
		out[i] = Frame(p, dir)
	}
	return out
}
