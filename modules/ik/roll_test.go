package ik_test

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/riglab/modules/ik"
)

func TestEqual(t *testing.T) {
	testCases := []struct {
		name  string
		base  mgl64.Mat4
		delta float64
		want  bool
	}{
		{"identical", mgl64.Translate3D(1, 2, 3), 0, true},
		{"below tolerance", mgl64.Translate3D(1, 2, 3), 0.0009, true},
		// Component 13 is zero, so the difference is exactly the tolerance.
		{"at tolerance", mgl64.Ident4(), ik.Tolerance, false},
		{"negative at tolerance", mgl64.Ident4(), -ik.Tolerance, false},
		{"just above tolerance", mgl64.Translate3D(1, 2, 3), 0.0011, false},
		{"above tolerance", mgl64.Translate3D(1, 2, 3), 0.002, false},
		{"negative below tolerance", mgl64.Translate3D(1, 2, 3), -0.0009, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			other := tc.base
			other[13] += tc.delta
			assert.Equal(t, tc.want, ik.Equal(tc.base, other))
		})
	}
}

func TestSearchRoll_ImmediateExit(t *testing.T) {
	ref := mgl64.Ident4()
	sets := 0

	res, err := ik.SearchRoll(
		func() (mgl64.Mat4, error) { return ref, nil },
		func(float64) error { sets++; return nil },
		ref,
	)
	require.NoError(t, err)
	assert.Equal(t, ik.RollResult{Angle: 0, Converged: true}, res)
	assert.Zero(t, sets)
}

func TestSearchRoll_BoundedWithoutConvergence(t *testing.T) {
	var applied []float64

	res, err := ik.SearchRoll(
		func() (mgl64.Mat4, error) { return mgl64.Translate3D(9, 9, 9), nil },
		func(deg float64) error { applied = append(applied, deg); return nil },
		mgl64.Ident4(),
	)
	require.NoError(t, err)
	assert.False(t, res.Converged)
	assert.Equal(t, 450.0, res.Angle, "stops at the first roll above 360")
	assert.Equal(t, []float64{90, 180, 270, 360, 450}, applied)
	assert.Len(t, applied, ik.MaxRollSteps)
}

func TestSearchRoll_ConvergesOnHalfTurn(t *testing.T) {
	ref := mgl64.Ident4()
	roll := 0.0
	twist := 180.0

	res, err := ik.SearchRoll(
		func() (mgl64.Mat4, error) { return mgl64.HomogRotate3DX(mgl64.DegToRad(twist + roll)), nil },
		func(deg float64) error { roll = deg; return nil },
		ref,
	)
	require.NoError(t, err)
	assert.Equal(t, ik.RollResult{Angle: 180, Converged: true}, res)
}

func TestSearchRoll_PropagatesErrors(t *testing.T) {
	boom := errors.New("host unavailable")

	_, err := ik.SearchRoll(
		func() (mgl64.Mat4, error) { return mgl64.Mat4{}, boom },
		func(float64) error { return nil },
		mgl64.Ident4(),
	)
	require.ErrorIs(t, err, boom)

	_, err = ik.SearchRoll(
		func() (mgl64.Mat4, error) { return mgl64.Translate3D(1, 0, 0), nil },
		func(float64) error { return boom },
		mgl64.Ident4(),
	)
	require.ErrorIs(t, err, boom)
}
