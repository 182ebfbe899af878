// Package chain converts joint chains to fitted curves and back.
//
// A curve is a scene node of kind scene.KindCurve whose control points are
// stored, in world space, in the node's data bag under CurveDataKey. Every
// transform this package creates is oriented with Frame, so a chain rebuilt
// from a curve lines up with the skeleton the curve was fitted to.
package chain
