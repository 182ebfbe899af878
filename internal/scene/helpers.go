package scene

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zclconf/go-cty/cty"
)

// Kine addresses a built-in kinematic parameter of a node.
func Kine(node NodeID, name string) ParamRef {
	return ParamRef{Node: node, Group: GroupKine, Name: name}
}

// ViewVis addresses the viewport visibility of a node.
func ViewVis(node NodeID) ParamRef {
	return ParamRef{Node: node, Group: GroupVisibility, Name: ParamViewVis}
}

// Roll addresses the roll of a joint.
func Roll(joint NodeID) ParamRef {
	return ParamRef{Node: joint, Group: GroupJoint, Name: ParamRoll}
}

// Cns addresses a parameter of a constraint node.
func Cns(constraint NodeID, name string) ParamRef {
	return ParamRef{Node: constraint, Group: GroupCns, Name: name}
}

// Bool reads a parameter as a boolean. Numbers are true when nonzero.
func Bool(ctx context.Context, g Graph, ref ParamRef) (bool, error) {
	v, err := g.Param(ctx, ref)
	if err != nil {
		return false, err
	}
	return AsBool(v)
}

// Float reads a parameter as a float. Booleans read as 0 or 1.
func Float(ctx context.Context, g Graph, ref ParamRef) (float64, error) {
	v, err := g.Param(ctx, ref)
	if err != nil {
		return 0, err
	}
	return AsFloat(v)
}

// AsBool casts a known, non-null cty value to a boolean.
func AsBool(v cty.Value) (bool, error) {
	if v.IsNull() || !v.IsKnown() {
		return false, fmt.Errorf("cannot read unknown or null value as bool")
	}
	switch v.Type() {
	case cty.Bool:
		return v.True(), nil
	case cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return f != 0, nil
	default:
		return false, fmt.Errorf("cannot read %s as bool", v.Type().FriendlyName())
	}
}

// AsFloat casts a known, non-null cty value to a float.
func AsFloat(v cty.Value) (float64, error) {
	if v.IsNull() || !v.IsKnown() {
		return 0, fmt.Errorf("cannot read unknown or null value as number")
	}
	switch v.Type() {
	case cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return f, nil
	case cty.Bool:
		if v.True() {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("cannot read %s as number", v.Type().FriendlyName())
	}
}

// Translation extracts the translation column of a transform.
func Translation(m Matrix4) mgl64.Vec3 {
	return m.Col(3).Vec3()
}

// MustName returns the display name of a node or an error-annotated
// placeholder. It is intended for log attributes only.
func MustName(ctx context.Context, g Graph, id NodeID) string {
	name, err := g.Name(ctx, id)
	if err != nil {
		return "<" + string(id) + ">"
	}
	return name
}
