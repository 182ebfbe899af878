// Package app wires a rig description to a scene host. It loads and
// validates the description, connects to the host (or a preview scene) and
// builds every declared solver.
package app
