// Package memscene provides an in-memory implementation of the scene.Graph
// host contract.
//
// # Purpose
//
// The rig builders only talk to a scene.Graph. This package gives them a host
// that lives entirely in process so that a full solver build can be executed
// and inspected in tests, or used headless to validate a rig description
// before it is sent to a real application.
//
// # What Is Evaluated
//
// The store evaluates just enough of a real host to make a build observable:
//
//   - **Hierarchy:** world = parent world * local * joint roll * local scale
//   - **Expressions:** HCL expressions bound to parameters are re-evaluated on
//     every read (see package expr for the language)
//   - **Constraints:** Position and Pose constraints with compensation offsets,
//     driven by their active/blendweight parameters
//   - **SkeletonUpVector:** a one-shot twist that turns a bone's Y axis toward a
//     pole node
//
// It is not a production evaluation engine: there is no IK solve, no caching
// and no dependency ordering beyond on-demand recursion.
//
// # Concurrency Model
//
// A single sync.RWMutex guards the node table. Reads that evaluate expressions
// hold the read lock for the whole evaluation; all internal helpers assume the
// lock is already held.
package memscene
