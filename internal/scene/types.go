package scene

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/vk/riglab/internal/nodeid"
	"github.com/zclconf/go-cty/cty"
)

// Sentinel errors returned by Graph implementations.
var (
	ErrNodeNotFound  = errors.New("scene: node not found")
	ErrParamNotFound = errors.New("scene: parameter not found")
	ErrParamExists   = errors.New("scene: parameter already exists")
	ErrNameTaken     = errors.New("scene: name already in use")
	ErrInvalidName   = errors.New("scene: invalid node name")
	ErrUnknownOp     = errors.New("scene: unknown operation")
	ErrParamDriven   = errors.New("scene: parameter is driven by an expression")
)

// NodeID is an opaque handle to a node owned by the host.
type NodeID string

// NodeKind classifies nodes created by the rig builders.
type NodeKind int

const (
	// KindNull is a transform-only node (groups, drivers, controls).
	KindNull NodeKind = iota
	// KindJoint is a bone of a skeleton or an IK chain.
	KindJoint
	// KindChainRoot is the root of a jointed chain.
	KindChainRoot
	// KindEffector is the end effector of a jointed chain.
	KindEffector
	// KindCurve is a fitted curve.
	KindCurve
	// KindConstraint is a constraint attached to its parent node.
	KindConstraint
)

func (k NodeKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindJoint:
		return "joint"
	case KindChainRoot:
		return "chainroot"
	case KindEffector:
		return "effector"
	case KindCurve:
		return "curve"
	case KindConstraint:
		return "constraint"
	default:
		return "unknown"
	}
}

// ConstraintKind names the constraint types the rig builders emit.
type ConstraintKind string

const (
	// ConstraintPosition drives world translation only.
	ConstraintPosition ConstraintKind = "Position"
	// ConstraintPose drives the full world transform.
	ConstraintPose ConstraintKind = "Pose"
)

// Built-in property groups and parameters.
const (
	GroupKine       = "kine"
	GroupVisibility = "visibility"
	GroupJoint      = "joint"
	GroupCns        = "cns"

	ParamCnsScl          = "cnsscl"
	ParamPivotActive     = "pivotactive"
	ParamPivotCompActive = "pivotcompactive"
	ParamSclX            = "sclx"
	ParamSclY            = "scly"
	ParamSclZ            = "sclz"
	ParamViewVis         = "viewvis"
	ParamRoll            = "roll"
	ParamActive          = "active"
	ParamBlendWeight     = "blendweight"
)

// OpSkeletonUpVector orients a chain bone towards a pole node. Arguments are
// the bone and the pole as a single "bone;pole" string of node names.
const OpSkeletonUpVector = "SkeletonUpVector"

// ParamKind is the storage type of a parameter.
type ParamKind int

const (
	ParamBool ParamKind = iota
	ParamFloat
	ParamString
)

// CtyType returns the cty type used to carry values of this kind.
func (k ParamKind) CtyType() cty.Type {
	switch k {
	case ParamBool:
		return cty.Bool
	case ParamFloat:
		return cty.Number
	default:
		return cty.String
	}
}

// ParamDef declares a parameter: its kind, default value and numeric range.
// Min and Max are ignored for non-float parameters; Min == Max means unbounded.
type ParamDef struct {
	Kind    ParamKind
	Default cty.Value
	Min     float64
	Max     float64
}

// BoolParam declares a boolean parameter.
func BoolParam(def bool) ParamDef {
	return ParamDef{Kind: ParamBool, Default: cty.BoolVal(def)}
}

// FloatParam declares a ranged float parameter.
func FloatParam(def, min, max float64) ParamDef {
	return ParamDef{Kind: ParamFloat, Default: cty.NumberFloatVal(def), Min: min, Max: max}
}

// StringParam declares a string parameter.
func StringParam(def string) ParamDef {
	return ParamDef{Kind: ParamString, Default: cty.StringVal(def)}
}

// ParamRef addresses a parameter on a node.
type ParamRef struct {
	Node  NodeID `yaml:"node"`
	Group string `yaml:"group"`
	Name  string `yaml:"name"`
}

// IsZero reports whether the reference is unset.
func (r ParamRef) IsZero() bool {
	return r.Node == "" && r.Group == "" && r.Name == ""
}

// Address resolves the fully qualified address of the parameter using the
// current display name of its node.
func (r ParamRef) Address(ctx context.Context, g Graph) (*nodeid.Address, error) {
	name, err := g.Name(ctx, r.Node)
	if err != nil {
		return nil, fmt.Errorf("resolving parameter %s.%s: %w", r.Group, r.Name, err)
	}
	return nodeid.ForParam(name, r.Group, r.Name), nil
}

// FullName is the string form of Address.
func (r ParamRef) FullName(ctx context.Context, g Graph) (string, error) {
	addr, err := r.Address(ctx, g)
	if err != nil {
		return "", err
	}
	return addr.String(), nil
}

// Matrix4 is a 16-component column-major world or local transform.
type Matrix4 = mgl64.Mat4
