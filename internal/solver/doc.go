// Package solver implements the generic lifecycle shared by every rig
// solver.
//
// A Solver owns a scaffold subtree in the scene: a root group with input,
// output and helper groups below it. New validates the joint chain before
// touching the scene, creates the scaffold and runs Build, which:
//
//   - hands the joints' scale and pivot compensation over to constraints,
//   - creates one output driver per joint except the last,
//   - adds the active/blendweight inputs, then the variant's inputs,
//   - fits a curve through the chain, then lets the variant create its
//     animation controls and its kinematic network,
//   - constrains the joints to the drivers, forward or reversed depending
//     on the hierarchy (see Reversed),
//   - hides helper nodes and links control visibility to the blend weight.
//
// Concrete solvers plug into the pipeline through the Variant interface.
// The solver's state is persisted as a YAML record in the data bag of its
// root node so Load can rebuild a live wrapper later.
package solver
