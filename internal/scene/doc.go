// Package scene defines the contract between the rig builders and the host
// application that owns the live scene graph.
//
// # Why Scene Package Exists
//
// Rig construction never touches host objects directly. Every node, parameter,
// constraint and expression is created through a Graph that is injected into
// the component doing the work, so the same solver code runs against the
// in-memory host used by tests (memscene) and against a remote DCC bridge
// (remotescene).
//
// # Handles
//
// Nodes are addressed by opaque NodeID handles obtained from the Graph.
// Display names are separate from handles: a node keeps its handle when
// renamed, and names are only used when building fully qualified parameter
// names for expressions (see ParamRef.FullName).
//
// # Built-in Parameters
//
// Every node exposes the GroupKine and GroupVisibility groups; joints also
// expose GroupJoint. Constraints are nodes of KindConstraint whose GroupCns
// parameters (active, blendweight) can be driven by expressions.
package scene
