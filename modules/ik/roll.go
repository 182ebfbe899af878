package ik

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Tolerance is the largest per-component difference at which two
// transforms are considered equal.
const Tolerance = 0.001

// Roll search bounds, in degrees.
const (
	RollStep  = 90.0
	RollBound = 360.0
	// MaxRollSteps is the number of roll values tried after the initial
	// check.
	MaxRollSteps = int(RollBound/RollStep) + 1
)

// Equal reports whether every component of a and b differs by less than
// Tolerance.
func Equal(a, b mgl64.Mat4) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) >= Tolerance {
			return false
		}
	}
	return true
}

// RollResult is the outcome of a roll search. Angle is the last roll value
// applied; it is only a correction when Converged is set.
type RollResult struct {
	Angle     float64
	Converged bool
}

// SearchRoll steps a roll channel by RollStep until the transform returned
// by read equals reference. The search gives up after the first roll above
// RollBound and leaves that roll applied.
func SearchRoll(read func() (mgl64.Mat4, error), setRoll func(degrees float64) error, reference mgl64.Mat4) (RollResult, error) {
	angle := 0.0
	for step := 1; step <= MaxRollSteps; step++ {
		cur, err := read()
		if err != nil {
			return RollResult{Angle: angle}, err
		}
		if Equal(cur, reference) {
			return RollResult{Angle: angle, Converged: true}, nil
		}
		angle = float64(step) * RollStep
		if err := setRoll(angle); err != nil {
			return RollResult{Angle: angle}, err
		}
	}
	return RollResult{Angle: angle}, nil
}
