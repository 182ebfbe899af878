package remotescene

import (
	"encoding/base64"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/vk/riglab/internal/scene"
	"github.com/zclconf/go-cty/cty"
)

// valueToWire converts a cty.Value to its JSON-compatible form.
func valueToWire(val cty.Value) (any, error) {
	if !val.IsKnown() || val.IsNull() {
		return nil, nil
	}
	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Number:
		f, _ := val.AsBigFloat().Float64()
		return f, nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			w, err := valueToWire(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = w
		}
		return out, nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		out := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			w, err := valueToWire(v)
			if err != nil {
				return nil, err
			}
			out = append(out, w)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
}

// valueFromWire converts decoded JSON back to a cty.Value.
func valueFromWire(data any) (cty.Value, error) {
	switch v := data.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case string:
		return cty.StringVal(v), nil
	case float64:
		return cty.NumberFloatVal(v), nil
	case bool:
		return cty.BoolVal(v), nil
	case map[string]any:
		attrs := make(map[string]cty.Value, len(v))
		for key, raw := range v {
			val, err := valueFromWire(raw)
			if err != nil {
				return cty.NilVal, err
			}
			attrs[key] = val
		}
		return cty.ObjectVal(attrs), nil
	case []any:
		elems := make([]cty.Value, 0, len(v))
		for _, raw := range v {
			val, err := valueFromWire(raw)
			if err != nil {
				return cty.NilVal, err
			}
			elems = append(elems, val)
		}
		return cty.TupleVal(elems), nil
	}
	return cty.NilVal, fmt.Errorf("unsupported wire type %T", data)
}

func matrixToWire(m mgl64.Mat4) []any {
	out := make([]any, len(m))
	for i, f := range m {
		out[i] = f
	}
	return out
}

func matrixFromWire(data any) (mgl64.Mat4, error) {
	var m mgl64.Mat4
	raw, ok := data.([]any)
	if !ok || len(raw) != len(m) {
		return m, fmt.Errorf("matrix must be an array of %d numbers, got %T", len(m), data)
	}
	for i, c := range raw {
		f, ok := c.(float64)
		if !ok {
			return m, fmt.Errorf("matrix component %d is %T, not a number", i, c)
		}
		m[i] = f
	}
	return m, nil
}

func refToWire(ref scene.ParamRef) map[string]any {
	return map[string]any{"node": string(ref.Node), "group": ref.Group, "name": ref.Name}
}

func refFromWire(data any) (scene.ParamRef, error) {
	raw, ok := data.(map[string]any)
	if !ok {
		return scene.ParamRef{}, fmt.Errorf("parameter reference must be an object, got %T", data)
	}
	a := args(raw)
	node, err := a.str("node")
	if err != nil {
		return scene.ParamRef{}, err
	}
	group, err := a.str("group")
	if err != nil {
		return scene.ParamRef{}, err
	}
	name, err := a.str("name")
	if err != nil {
		return scene.ParamRef{}, err
	}
	return scene.ParamRef{Node: scene.NodeID(node), Group: group, Name: name}, nil
}

func defToWire(def scene.ParamDef) (map[string]any, error) {
	dflt, err := valueToWire(def.Default)
	if err != nil {
		return nil, err
	}
	return map[string]any{"kind": float64(def.Kind), "default": dflt, "min": def.Min, "max": def.Max}, nil
}

func defFromWire(data any) (scene.ParamDef, error) {
	raw, ok := data.(map[string]any)
	if !ok {
		return scene.ParamDef{}, fmt.Errorf("parameter definition must be an object, got %T", data)
	}
	a := args(raw)
	kind, err := a.num("kind")
	if err != nil {
		return scene.ParamDef{}, err
	}
	def := scene.ParamDef{Kind: scene.ParamKind(kind)}
	if def.Min, err = a.num("min"); err != nil {
		return scene.ParamDef{}, err
	}
	if def.Max, err = a.num("max"); err != nil {
		return scene.ParamDef{}, err
	}
	dflt, err := valueFromWire(raw["default"])
	if err != nil {
		return scene.ParamDef{}, err
	}
	// Numbers arrive as float64 whatever the declared kind; the kind decides.
	if !dflt.IsNull() {
		if def.Kind == scene.ParamBool && dflt.Type() == cty.Number {
			f, _ := dflt.AsBigFloat().Float64()
			dflt = cty.BoolVal(f != 0)
		}
	} else {
		dflt = cty.NullVal(def.Kind.CtyType())
	}
	def.Default = dflt
	return def, nil
}

func bytesToWire(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func bytesFromWire(data any) ([]byte, error) {
	s, ok := data.(string)
	if !ok {
		return nil, fmt.Errorf("data payload must be a string, got %T", data)
	}
	return base64.StdEncoding.DecodeString(s)
}

func idsToWire(ids []scene.NodeID) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func idsFromWire(data any) ([]scene.NodeID, error) {
	if data == nil {
		return nil, nil
	}
	raw, ok := data.([]any)
	if !ok {
		return nil, fmt.Errorf("node list must be an array, got %T", data)
	}
	out := make([]scene.NodeID, len(raw))
	for i, r := range raw {
		s, ok := r.(string)
		if !ok {
			return nil, fmt.Errorf("node %d is %T, not a string", i, r)
		}
		out[i] = scene.NodeID(s)
	}
	return out, nil
}

// args reads typed request arguments.
type args map[string]any

func (a args) str(key string) (string, error) {
	v, ok := a[key].(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string, got %T", key, a[key])
	}
	return v, nil
}

func (a args) id(key string) (scene.NodeID, error) {
	s, err := a.str(key)
	return scene.NodeID(s), err
}

func (a args) num(key string) (float64, error) {
	v, ok := a[key].(float64)
	if !ok {
		return 0, fmt.Errorf("argument %q must be a number, got %T", key, a[key])
	}
	return v, nil
}

func (a args) boolean(key string) (bool, error) {
	v, ok := a[key].(bool)
	if !ok {
		return false, fmt.Errorf("argument %q must be a boolean, got %T", key, a[key])
	}
	return v, nil
}

func (a args) strs(key string) ([]string, error) {
	if a[key] == nil {
		return nil, nil
	}
	raw, ok := a[key].([]any)
	if !ok {
		return nil, fmt.Errorf("argument %q must be an array, got %T", key, a[key])
	}
	out := make([]string, len(raw))
	for i, r := range raw {
		s, ok := r.(string)
		if !ok {
			return nil, fmt.Errorf("argument %q[%d] must be a string, got %T", key, i, r)
		}
		out[i] = s
	}
	return out, nil
}
