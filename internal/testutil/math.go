package testutil

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

// NearDelta is the absolute per-component tolerance of the transform
// assertions. mgl64's ApproxEqual is relative and rejects rounding noise
// next to zero.
const NearDelta = 1e-9

// AssertVec3Near checks every component of got against want.
func AssertVec3Near(t *testing.T, want, got mgl64.Vec3, msgAndArgs ...any) bool {
	t.Helper()
	ok := true
	for i := range want {
		ok = assert.InDelta(t, want[i], got[i], NearDelta, msgAndArgs...) && ok
	}
	return ok
}

// AssertMat4Near checks every component of got against want.
func AssertMat4Near(t *testing.T, want, got mgl64.Mat4, msgAndArgs ...any) bool {
	t.Helper()
	ok := true
	for i := range want {
		ok = assert.InDelta(t, want[i], got[i], NearDelta, msgAndArgs...) && ok
	}
	return ok
}
