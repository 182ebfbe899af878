package memscene

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/hashicorp/hcl/v2"
	"github.com/vk/riglab/internal/nodeid"
	"github.com/vk/riglab/internal/scene"
	"github.com/zclconf/go-cty/cty"
)

// rootName is the display name of the scene root.
const rootName = "Scene_Root"

type param struct {
	def    scene.ParamDef
	value  cty.Value
	source string
	expr   hcl.Expression
}

type constraint struct {
	kind   scene.ConstraintKind
	target scene.NodeID
	offset mgl64.Mat4
}

type node struct {
	id       scene.NodeID
	name     string
	kind     scene.NodeKind
	parent   scene.NodeID
	children []scene.NodeID

	local mgl64.Mat4
	// twist is the up-vector rotation about local X in degrees, applied
	// before roll.
	twist float64

	params map[string]*param
	data   map[string][]byte
	cns    *constraint
}

// Store is the in-memory scene graph.
type Store struct {
	mu    sync.RWMutex
	nodes map[scene.NodeID]*node
	names map[string]scene.NodeID
	root  scene.NodeID

	refreshes int
}

var _ scene.Graph = (*Store)(nil)

// New creates an empty scene containing only the root node.
func New() *Store {
	s := &Store{
		nodes: make(map[scene.NodeID]*node),
		names: make(map[string]scene.NodeID),
	}
	s.root = s.newNode("", scene.KindNull)
	s.rename(s.nodes[s.root], rootName)
	return s
}

func paramKey(group, name string) string {
	return group + "." + name
}

// newNode creates and registers a node. Caller must hold the write lock.
func (s *Store) newNode(parent scene.NodeID, kind scene.NodeKind) scene.NodeID {
	id := scene.NodeID(uuid.NewString())
	n := &node{
		id:     id,
		kind:   kind,
		parent: parent,
		local:  mgl64.Ident4(),
		params: make(map[string]*param),
		data:   make(map[string][]byte),
	}
	n.name = fmt.Sprintf("%s_%s", kind, strings.ReplaceAll(string(id), "-", ""))
	s.names[n.name] = id

	builtins := []struct {
		group, name string
		def         scene.ParamDef
	}{
		{scene.GroupKine, scene.ParamCnsScl, scene.BoolParam(true)},
		{scene.GroupKine, scene.ParamPivotActive, scene.BoolParam(true)},
		{scene.GroupKine, scene.ParamPivotCompActive, scene.BoolParam(true)},
		{scene.GroupKine, scene.ParamSclX, scene.FloatParam(1, 0, 0)},
		{scene.GroupKine, scene.ParamSclY, scene.FloatParam(1, 0, 0)},
		{scene.GroupKine, scene.ParamSclZ, scene.FloatParam(1, 0, 0)},
		{scene.GroupVisibility, scene.ParamViewVis, scene.BoolParam(true)},
	}
	for _, b := range builtins {
		n.params[paramKey(b.group, b.name)] = &param{def: b.def, value: b.def.Default}
	}
	if kind == scene.KindJoint {
		def := scene.FloatParam(0, 0, 0)
		n.params[paramKey(scene.GroupJoint, scene.ParamRoll)] = &param{def: def, value: def.Default}
	}
	if kind == scene.KindConstraint {
		active := scene.BoolParam(true)
		weight := scene.FloatParam(1, 0, 1)
		n.params[paramKey(scene.GroupCns, scene.ParamActive)] = &param{def: active, value: active.Default}
		n.params[paramKey(scene.GroupCns, scene.ParamBlendWeight)] = &param{def: weight, value: weight.Default}
	}

	s.nodes[id] = n
	if p, ok := s.nodes[parent]; ok {
		p.children = append(p.children, id)
	}
	return id
}

func (s *Store) get(id scene.NodeID) (*node, error) {
	n, ok := s.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", scene.ErrNodeNotFound, id)
	}
	return n, nil
}

func (s *Store) rename(n *node, name string) {
	delete(s.names, n.name)
	n.name = name
	s.names[name] = n.id
}

// uniqueName returns base, or base followed by the first free counter.
func (s *Store) uniqueName(base string) string {
	if _, taken := s.names[base]; !taken {
		return base
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s%d", base, i)
		if _, taken := s.names[candidate]; !taken {
			return candidate
		}
	}
}

// Root returns the scene root.
func (s *Store) Root(ctx context.Context) scene.NodeID {
	return s.root
}

// AddNode creates a child node under parent.
func (s *Store) AddNode(ctx context.Context, parent scene.NodeID, kind scene.NodeKind) (scene.NodeID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.get(parent); err != nil {
		return "", err
	}
	if kind == scene.KindConstraint {
		return "", fmt.Errorf("constraint nodes are created with AddConstraint")
	}
	return s.newNode(parent, kind), nil
}

// Delete removes a node, its descendants and every constraint targeting them.
func (s *Store) Delete(ctx context.Context, id scene.NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == s.root {
		return fmt.Errorf("the scene root cannot be deleted")
	}
	n, err := s.get(id)
	if err != nil {
		return err
	}

	doomed := make(map[scene.NodeID]struct{})
	s.collect(n, doomed)
	for _, other := range s.nodes {
		if other.cns == nil {
			continue
		}
		if _, hit := doomed[other.cns.target]; hit {
			s.collect(other, doomed)
		}
	}

	for did := range doomed {
		dn := s.nodes[did]
		if p, ok := s.nodes[dn.parent]; ok {
			p.children = removeID(p.children, did)
		}
		delete(s.names, dn.name)
	}
	for did := range doomed {
		delete(s.nodes, did)
	}
	return nil
}

func (s *Store) collect(n *node, into map[scene.NodeID]struct{}) {
	into[n.id] = struct{}{}
	for _, c := range n.children {
		s.collect(s.nodes[c], into)
	}
}

func removeID(ids []scene.NodeID, id scene.NodeID) []scene.NodeID {
	out := ids[:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

// Exists reports whether the handle refers to a live node.
func (s *Store) Exists(ctx context.Context, id scene.NodeID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.nodes[id]
	return ok
}

// Kind returns the node kind.
func (s *Store) Kind(ctx context.Context, id scene.NodeID) (scene.NodeKind, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := s.get(id)
	if err != nil {
		return 0, err
	}
	return n.kind, nil
}

// Parent returns the parent handle; the root has no parent.
func (s *Store) Parent(ctx context.Context, id scene.NodeID) (scene.NodeID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := s.get(id)
	if err != nil {
		return "", err
	}
	if n.parent == "" {
		return "", fmt.Errorf("%w: %s has no parent", scene.ErrNodeNotFound, n.name)
	}
	return n.parent, nil
}

// Children returns the direct children in creation order.
func (s *Store) Children(ctx context.Context, id scene.NodeID) ([]scene.NodeID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return append([]scene.NodeID(nil), n.children...), nil
}

// Name returns the display name.
func (s *Store) Name(ctx context.Context, id scene.NodeID) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := s.get(id)
	if err != nil {
		return "", err
	}
	return n.name, nil
}

// SetName renames a node. Names are unique and must be valid identifiers.
func (s *Store) SetName(ctx context.Context, id scene.NodeID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.get(id)
	if err != nil {
		return err
	}
	if !nodeid.ValidName(name) {
		return fmt.Errorf("%w: %q", scene.ErrInvalidName, name)
	}
	if owner, taken := s.names[name]; taken && owner != id {
		return fmt.Errorf("%w: %q", scene.ErrNameTaken, name)
	}
	s.rename(n, name)
	return nil
}

// FindByName resolves a display name.
func (s *Store) FindByName(ctx context.Context, name string) (scene.NodeID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.names[name]
	return id, ok
}

// SetData stores a copy of value under key.
func (s *Store) SetData(ctx context.Context, id scene.NodeID, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.get(id)
	if err != nil {
		return err
	}
	n.data[key] = append([]byte(nil), value...)
	return nil
}

// Data returns a copy of the value stored under key.
func (s *Store) Data(ctx context.Context, id scene.NodeID, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := s.get(id)
	if err != nil {
		return nil, false, err
	}
	v, ok := n.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Refresh records a viewport refresh request.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshes++
	return nil
}

// Refreshes returns how many times Refresh was called.
func (s *Store) Refreshes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshes
}

// Len returns the number of live nodes, root included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}
