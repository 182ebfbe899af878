package scene

import (
	"context"

	"github.com/zclconf/go-cty/cty"
)

// Graph is the host scene graph service. All calls are synchronous; an
// implementation either completes the mutation or returns an error.
type Graph interface {
	// Root returns the scene root every other node descends from.
	Root(ctx context.Context) NodeID
	// AddNode creates a child node of the given kind under parent.
	AddNode(ctx context.Context, parent NodeID, kind NodeKind) (NodeID, error)
	// Delete removes a node and all of its descendants.
	Delete(ctx context.Context, id NodeID) error
	Exists(ctx context.Context, id NodeID) bool
	Kind(ctx context.Context, id NodeID) (NodeKind, error)
	Parent(ctx context.Context, id NodeID) (NodeID, error)
	Children(ctx context.Context, id NodeID) ([]NodeID, error)

	Name(ctx context.Context, id NodeID) (string, error)
	SetName(ctx context.Context, id NodeID, name string) error
	// FindByName resolves a display name to its node handle.
	FindByName(ctx context.Context, name string) (NodeID, bool)

	// AddParam adds a custom parameter to a property group of a node,
	// creating the group on first use.
	AddParam(ctx context.Context, node NodeID, group, name string, def ParamDef) (ParamRef, error)
	ParamDef(ctx context.Context, ref ParamRef) (ParamDef, error)
	// Param returns the current value, evaluating a bound expression if any.
	Param(ctx context.Context, ref ParamRef) (cty.Value, error)
	SetParam(ctx context.Context, ref ParamRef, value cty.Value) error
	// SetExpression binds a live expression to a parameter. The host
	// re-evaluates it every time the parameter is read.
	SetExpression(ctx context.Context, ref ParamRef, source string) error
	// Expression returns the expression bound to a parameter, if any.
	Expression(ctx context.Context, ref ParamRef) (string, bool, error)

	// AddConstraint constrains node to target. With compensate set the
	// current offset between the two is preserved.
	AddConstraint(ctx context.Context, node NodeID, kind ConstraintKind, target NodeID, compensate bool) (NodeID, error)

	GlobalTransform(ctx context.Context, id NodeID) (Matrix4, error)
	SetGlobalTransform(ctx context.Context, id NodeID, m Matrix4) error
	LocalTransform(ctx context.Context, id NodeID) (Matrix4, error)
	SetLocalTransform(ctx context.Context, id NodeID, m Matrix4) error

	// ApplyOp invokes a named built-in host operation.
	ApplyOp(ctx context.Context, op string, args ...string) error

	// SetData and Data access the opaque persisted key/value bag of a node.
	SetData(ctx context.Context, id NodeID, key string, value []byte) error
	Data(ctx context.Context, id NodeID, key string) ([]byte, bool, error)

	// Refresh asks the host to redraw its viewports.
	Refresh(ctx context.Context) error
}
