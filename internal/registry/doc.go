// Package registry provides the central "glue" for the solver variants.
//
// The Registry maps the classnames used in rig descriptions (e.g. the "IK"
// label of a `solver "IK" "arm"` block) to the compiled variants that
// implement them. Variant packages contribute entries through the Module
// interface.
//
// During application startup, the registry is populated and then validated
// against the loaded rig description, so a misspelt classname fails before
// anything is built in the scene.
package registry
