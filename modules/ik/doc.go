// Package ik implements the IK limb solver.
//
// The solver drives a chain of two or more joints with three controls: a
// root, a pole and an effector. It builds its own IK chain along the fitted
// curve, cancels the twist introduced by orienting that chain towards the
// pole, and scales the first bone with a live stretch/squash expression
// derived from the distance between the root and effector controls.
package ik
