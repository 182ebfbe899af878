package manipulator

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/vk/riglab/internal/ctxlog"
	"github.com/vk/riglab/internal/naming"
	"github.com/vk/riglab/internal/scene"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// Data bag keys and the icon parameter group.
const (
	OwnerKey   = "Manipulator_Owner"
	SnapRefKey = "Manipulator_SnapRef"

	GroupIcon    = "icon"
	ParamShape   = "shape"
	ParamColor   = "color"
	ParamSize    = "size"
	ParamConnect = "connect"
)

var (
	// ErrNoSnapRef is returned by Snap when no reference was registered.
	ErrNoSnapRef = errors.New("manipulator: no snap reference")
	// ErrNotManipulator is returned by FromAnim for nodes that are not the
	// anim node of a manipulator.
	ErrNotManipulator = errors.New("manipulator: node is not a manipulator anim")
)

// Icon describes how a control is drawn. Connect names the node the icon
// draws a link line to, if any.
type Icon struct {
	Shape   string
	Color   string
	Size    float64
	Connect string
}

// DefaultIcon is the icon a new manipulator starts with.
var DefaultIcon = Icon{Shape: "cube", Color: "yellow", Size: 1}

// Owner tags a control with the solver that created it.
type Owner struct {
	Obj   string `yaml:"obj"`
	Class string `yaml:"class"`
}

// Manipulator wraps the node hierarchy of one control.
type Manipulator struct {
	graph scene.Graph
	namer naming.Namer

	Space  scene.NodeID
	Zero   scene.NodeID
	Orient scene.NodeID
	Anim   scene.NodeID
}

// New creates a manipulator under parent with the default icon.
func New(ctx context.Context, g scene.Graph, namer naming.Namer, parent scene.NodeID) (*Manipulator, error) {
	m := &Manipulator{graph: g, namer: namer}
	p := parent
	for _, slot := range []*scene.NodeID{&m.Space, &m.Zero, &m.Orient, &m.Anim} {
		id, err := g.AddNode(ctx, p, scene.KindNull)
		if err != nil {
			return nil, fmt.Errorf("creating manipulator: %w", err)
		}
		*slot = id
		p = id
	}

	defs := []struct {
		name string
		def  scene.ParamDef
	}{
		{ParamShape, scene.StringParam(DefaultIcon.Shape)},
		{ParamColor, scene.StringParam(DefaultIcon.Color)},
		{ParamSize, scene.FloatParam(DefaultIcon.Size, 0, 0)},
		{ParamConnect, scene.StringParam("")},
	}
	for _, d := range defs {
		if _, err := g.AddParam(ctx, m.Anim, GroupIcon, d.name, d.def); err != nil {
			return nil, fmt.Errorf("creating icon parameters: %w", err)
		}
	}
	ctxlog.FromContext(ctx).Debug("Created manipulator.", "anim", scene.MustName(ctx, g, m.Anim))
	return m, nil
}

// FromAnim rebuilds the wrapper of an existing manipulator from its anim
// node.
func FromAnim(ctx context.Context, g scene.Graph, namer naming.Namer, anim scene.NodeID) (*Manipulator, error) {
	if _, err := g.ParamDef(ctx, iconRef(anim, ParamShape)); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotManipulator, scene.MustName(ctx, g, anim))
	}
	m := &Manipulator{graph: g, namer: namer, Anim: anim}
	cur := anim
	for _, slot := range []*scene.NodeID{&m.Orient, &m.Zero, &m.Space} {
		p, err := g.Parent(ctx, cur)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotManipulator, err)
		}
		*slot = p
		cur = p
	}
	return m, nil
}

func iconRef(anim scene.NodeID, name string) scene.ParamRef {
	return scene.ParamRef{Node: anim, Group: GroupIcon, Name: name}
}

// Duplicate creates n copies of the manipulator next to it, with the same
// alignment, icon and owner.
func (m *Manipulator) Duplicate(ctx context.Context, n int) ([]*Manipulator, error) {
	parent, err := m.graph.Parent(ctx, m.Space)
	if err != nil {
		return nil, err
	}
	icon, err := m.Icon(ctx)
	if err != nil {
		return nil, err
	}
	owner, hasOwner, err := m.Owner(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*Manipulator, 0, n)
	for i := 0; i < n; i++ {
		dup, err := New(ctx, m.graph, m.namer, parent)
		if err != nil {
			return nil, err
		}
		for _, pair := range [][2]scene.NodeID{{m.Space, dup.Space}, {m.Zero, dup.Zero}, {m.Orient, dup.Orient}, {m.Anim, dup.Anim}} {
			local, err := m.graph.LocalTransform(ctx, pair[0])
			if err != nil {
				return nil, err
			}
			if err := m.graph.SetLocalTransform(ctx, pair[1], local); err != nil {
				return nil, err
			}
		}
		if err := dup.SetIcon(ctx, icon); err != nil {
			return nil, err
		}
		if hasOwner {
			if err := dup.SetOwner(ctx, owner); err != nil {
				return nil, err
			}
		}
		out = append(out, dup)
	}
	return out, nil
}

// Icon reads the icon settings.
func (m *Manipulator) Icon(ctx context.Context) (Icon, error) {
	var icon Icon
	for _, s := range []struct {
		name string
		dst  *string
	}{
		{ParamShape, &icon.Shape},
		{ParamColor, &icon.Color},
		{ParamConnect, &icon.Connect},
	} {
		v, err := m.graph.Param(ctx, iconRef(m.Anim, s.name))
		if err != nil {
			return icon, err
		}
		*s.dst = v.AsString()
	}
	size, err := scene.Float(ctx, m.graph, iconRef(m.Anim, ParamSize))
	if err != nil {
		return icon, err
	}
	icon.Size = size
	return icon, nil
}

// SetIcon writes the icon settings.
func (m *Manipulator) SetIcon(ctx context.Context, icon Icon) error {
	values := map[string]cty.Value{
		ParamShape:   cty.StringVal(icon.Shape),
		ParamColor:   cty.StringVal(icon.Color),
		ParamSize:    cty.NumberFloatVal(icon.Size),
		ParamConnect: cty.StringVal(icon.Connect),
	}
	for name, v := range values {
		if err := m.graph.SetParam(ctx, iconRef(m.Anim, name), v); err != nil {
			return fmt.Errorf("setting icon %s: %w", name, err)
		}
	}
	return nil
}

// Owner returns the owner tag, if one was set.
func (m *Manipulator) Owner(ctx context.Context) (Owner, bool, error) {
	var o Owner
	raw, ok, err := m.graph.Data(ctx, m.Anim, OwnerKey)
	if err != nil || !ok {
		return o, false, err
	}
	if err := yaml.Unmarshal(raw, &o); err != nil {
		return o, false, fmt.Errorf("decoding owner tag: %w", err)
	}
	return o, true, nil
}

// SetOwner stores the owner tag.
func (m *Manipulator) SetOwner(ctx context.Context, o Owner) error {
	raw, err := yaml.Marshal(&o)
	if err != nil {
		return fmt.Errorf("encoding owner tag: %w", err)
	}
	return m.graph.SetData(ctx, m.Anim, OwnerKey, raw)
}

// Align places the control on the world transform of target.
func (m *Manipulator) Align(ctx context.Context, target scene.NodeID) error {
	w, err := m.graph.GlobalTransform(ctx, target)
	if err != nil {
		return fmt.Errorf("aligning manipulator: %w", err)
	}
	return m.AlignMatrix4(ctx, w)
}

// AlignMatrix4 moves the space node to w and clears the offsets below it.
func (m *Manipulator) AlignMatrix4(ctx context.Context, w scene.Matrix4) error {
	if err := m.graph.SetGlobalTransform(ctx, m.Space, w); err != nil {
		return err
	}
	for _, id := range []scene.NodeID{m.Zero, m.Orient, m.Anim} {
		if err := m.graph.SetLocalTransform(ctx, id, mgl64.Ident4()); err != nil {
			return err
		}
	}
	return nil
}

// Translate offsets the zero node along its own axes.
func (m *Manipulator) Translate(ctx context.Context, v mgl64.Vec3) error {
	local, err := m.graph.LocalTransform(ctx, m.Zero)
	if err != nil {
		return err
	}
	return m.graph.SetLocalTransform(ctx, m.Zero, local.Mul4(mgl64.Translate3D(v[0], v[1], v[2])))
}

// Rename gives every node of the hierarchy a convention name.
func (m *Manipulator) Rename(ctx context.Context, base string, index int, side string) error {
	for _, n := range []struct {
		id   scene.NodeID
		role string
	}{
		{m.Space, naming.RoleSpace},
		{m.Zero, naming.RoleZero},
		{m.Orient, naming.RoleOrient},
		{m.Anim, naming.RoleAnim},
	} {
		name := m.namer.QN(ctx, base, n.role, naming.WithIndex(index), naming.WithSide(side))
		if err := m.graph.SetName(ctx, n.id, name); err != nil {
			return fmt.Errorf("renaming manipulator: %w", err)
		}
	}
	return nil
}

// SnapRef registers the node Snap aligns the control to.
func (m *Manipulator) SnapRef(ctx context.Context, ref scene.NodeID) error {
	return m.graph.SetData(ctx, m.Anim, SnapRefKey, []byte(ref))
}

// Snap moves the anim node onto the current world transform of its snap
// reference.
func (m *Manipulator) Snap(ctx context.Context) error {
	raw, ok, err := m.graph.Data(ctx, m.Anim, SnapRefKey)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSnapRef, scene.MustName(ctx, m.graph, m.Anim))
	}
	w, err := m.graph.GlobalTransform(ctx, scene.NodeID(raw))
	if err != nil {
		return fmt.Errorf("snapping %s: %w", scene.MustName(ctx, m.graph, m.Anim), err)
	}
	return m.graph.SetGlobalTransform(ctx, m.Anim, w)
}
