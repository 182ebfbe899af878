package memscene

import (
	"context"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/vk/riglab/internal/expr"
	"github.com/vk/riglab/internal/nodeid"
	"github.com/vk/riglab/internal/scene"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// maxEvalDepth bounds recursive expression and constraint evaluation.
const maxEvalDepth = 256

// AddParam adds a custom parameter.
func (s *Store) AddParam(ctx context.Context, id scene.NodeID, group, name string, def scene.ParamDef) (scene.ParamRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.get(id)
	if err != nil {
		return scene.ParamRef{}, err
	}
	if !nodeid.ValidName(group) || !nodeid.ValidName(name) {
		return scene.ParamRef{}, fmt.Errorf("%w: %s.%s", scene.ErrInvalidName, group, name)
	}
	key := paramKey(group, name)
	if _, exists := n.params[key]; exists {
		return scene.ParamRef{}, fmt.Errorf("%w: %s.%s", scene.ErrParamExists, n.name, key)
	}
	val, err := coerce(def, def.Default)
	if err != nil {
		return scene.ParamRef{}, fmt.Errorf("default of %s.%s: %w", n.name, key, err)
	}
	n.params[key] = &param{def: def, value: val}
	return scene.ParamRef{Node: id, Group: group, Name: name}, nil
}

func (s *Store) lookupParam(ref scene.ParamRef) (*node, *param, error) {
	n, err := s.get(ref.Node)
	if err != nil {
		return nil, nil, err
	}
	p, ok := n.params[paramKey(ref.Group, ref.Name)]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s.%s.%s", scene.ErrParamNotFound, n.name, ref.Group, ref.Name)
	}
	return n, p, nil
}

// ParamDef returns the parameter declaration.
func (s *Store) ParamDef(ctx context.Context, ref scene.ParamRef) (scene.ParamDef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, p, err := s.lookupParam(ref)
	if err != nil {
		return scene.ParamDef{}, err
	}
	return p.def, nil
}

// Param returns the current parameter value.
func (s *Store) Param(ctx context.Context, ref scene.ParamRef) (cty.Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, p, err := s.lookupParam(ref)
	if err != nil {
		return cty.NilVal, err
	}
	return s.paramValue(p, 0)
}

// SetParam sets a static value. Values are cast to the parameter kind and
// clamped to its range.
func (s *Store) SetParam(ctx context.Context, ref scene.ParamRef, value cty.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, p, err := s.lookupParam(ref)
	if err != nil {
		return err
	}
	if p.expr != nil {
		return fmt.Errorf("%w: %s.%s.%s", scene.ErrParamDriven, n.name, ref.Group, ref.Name)
	}
	val, err := coerce(p.def, value)
	if err != nil {
		return fmt.Errorf("setting %s.%s.%s: %w", n.name, ref.Group, ref.Name, err)
	}
	p.value = val
	return nil
}

// SetExpression binds a live expression. The expression is evaluated once
// at bind time so that unresolvable references fail immediately.
func (s *Store) SetExpression(ctx context.Context, ref scene.ParamRef, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, p, err := s.lookupParam(ref)
	if err != nil {
		return err
	}
	parsed, err := expr.Parse(source)
	if err != nil {
		return err
	}
	candidate := &param{def: p.def, value: p.value, source: source, expr: parsed}
	if _, err := s.paramValue(candidate, 0); err != nil {
		return fmt.Errorf("binding expression to %s.%s.%s: %w", n.name, ref.Group, ref.Name, err)
	}
	*p = *candidate
	return nil
}

// Expression returns the bound expression source.
func (s *Store) Expression(ctx context.Context, ref scene.ParamRef) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, p, err := s.lookupParam(ref)
	if err != nil {
		return "", false, err
	}
	return p.source, p.expr != nil, nil
}

// paramValue returns the static value or evaluates the bound expression.
func (s *Store) paramValue(p *param, depth int) (cty.Value, error) {
	if p.expr == nil {
		return p.value, nil
	}
	if depth > maxEvalDepth {
		return cty.NilVal, fmt.Errorf("expression evaluation exceeded depth %d", maxEvalDepth)
	}
	resolve := func(addr *nodeid.Address) (cty.Value, error) {
		return s.resolveAddress(addr, depth+1)
	}
	position := func(name string) (v mgl64.Vec3, err error) {
		id, ok := s.names[name]
		if !ok {
			return v, fmt.Errorf("%w: %q", scene.ErrNodeNotFound, name)
		}
		w, err := s.world(id, depth+1)
		if err != nil {
			return v, err
		}
		return scene.Translation(w), nil
	}
	val, err := expr.Evaluate(p.expr, resolve, expr.Functions(position))
	if err != nil {
		return cty.NilVal, err
	}
	return coerce(p.def, val)
}

func (s *Store) resolveAddress(addr *nodeid.Address, depth int) (cty.Value, error) {
	if len(addr.Path) != 3 {
		return cty.NilVal, fmt.Errorf("%w: %s is not a parameter address", scene.ErrParamNotFound, addr)
	}
	id, ok := s.names[addr.Node()]
	if !ok {
		return cty.NilVal, fmt.Errorf("%w: %q", scene.ErrNodeNotFound, addr.Node())
	}
	_, p, err := s.lookupParam(scene.ParamRef{Node: id, Group: addr.Path[1].Name, Name: addr.Path[2].Name})
	if err != nil {
		return cty.NilVal, err
	}
	return s.paramValue(p, depth)
}

// floatOf reads a parameter as float while the lock is held.
func (s *Store) floatOf(ref scene.ParamRef, depth int) (float64, error) {
	_, p, err := s.lookupParam(ref)
	if err != nil {
		return 0, err
	}
	v, err := s.paramValue(p, depth)
	if err != nil {
		return 0, err
	}
	return scene.AsFloat(v)
}

// boolOf reads a parameter as bool while the lock is held.
func (s *Store) boolOf(ref scene.ParamRef, depth int) (bool, error) {
	_, p, err := s.lookupParam(ref)
	if err != nil {
		return false, err
	}
	v, err := s.paramValue(p, depth)
	if err != nil {
		return false, err
	}
	return scene.AsBool(v)
}

// coerce casts v to the parameter kind, clamping floats into range.
func coerce(def scene.ParamDef, v cty.Value) (cty.Value, error) {
	switch def.Kind {
	case scene.ParamBool:
		b, err := scene.AsBool(v)
		if err != nil {
			return cty.NilVal, err
		}
		return cty.BoolVal(b), nil
	case scene.ParamFloat:
		f, err := scene.AsFloat(v)
		if err != nil {
			return cty.NilVal, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return cty.NilVal, fmt.Errorf("value %v is not finite", f)
		}
		if def.Min < def.Max {
			f = math.Max(def.Min, math.Min(def.Max, f))
		}
		return cty.NumberFloatVal(f), nil
	default:
		if v.IsNull() || !v.IsKnown() {
			return cty.NilVal, fmt.Errorf("cannot read unknown or null value as string")
		}
		str, err := convert.Convert(v, cty.String)
		if err != nil {
			return cty.NilVal, err
		}
		return str, nil
	}
}
