package naming

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/vk/riglab/internal/ctxlog"
	"github.com/vk/riglab/internal/scene"
)

// Rule selects how tokens are assembled into a name.
type Rule string

const (
	// Rule3DObject produces Base_Side_Index_SUFFIX names for scene objects.
	Rule3DObject Rule = "3dobject"
	// RuleProperty produces lower-case base_side_index names for properties.
	RuleProperty Rule = "property"
)

// Role tokens understood by the default suffix table.
const (
	RoleGroup  = "group"
	RoleRig    = "rig"
	RoleJoint  = "jnt"
	RoleCurve  = "curve"
	RoleAnim   = "anim"
	RoleZero   = "zero"
	RoleSpace  = "space"
	RoleOrient = "orient"
	RoleNull   = "null"
)

// DefaultSuffixes is the role to suffix table a new Manager starts with.
var DefaultSuffixes = map[string]string{
	RoleGroup:  "GRP",
	RoleRig:    "RIG",
	RoleJoint:  "JNT",
	RoleCurve:  "CRV",
	RoleAnim:   "ANM",
	RoleZero:   "ZERO",
	RoleSpace:  "SPC",
	RoleOrient: "ORI",
	RoleNull:   "NUL",
}

// Namer is the naming service consumed by the rig builders.
type Namer interface {
	QN(ctx context.Context, base, role string, opts ...Option) string
}

// Manager resolves qualified names against a scene graph.
type Manager struct {
	graph    scene.Graph
	rule     Rule
	suffixes map[string]string
}

var _ Namer = (*Manager)(nil)

// New creates a manager using Rule3DObject and the default suffix table.
func New(g scene.Graph) *Manager {
	m := &Manager{graph: g, rule: Rule3DObject, suffixes: make(map[string]string, len(DefaultSuffixes))}
	for role, suffix := range DefaultSuffixes {
		m.suffixes[role] = suffix
	}
	return m
}

// Rule returns the active rule.
func (m *Manager) Rule() Rule { return m.rule }

// SetRule switches the active rule.
func (m *Manager) SetRule(r Rule) error {
	switch r {
	case Rule3DObject, RuleProperty:
		m.rule = r
		return nil
	default:
		return fmt.Errorf("unknown naming rule %q", r)
	}
}

// SetSuffix overrides or adds the suffix used for a role.
func (m *Manager) SetSuffix(role, suffix string) {
	m.suffixes[role] = suffix
}

// Suffix returns the suffix for a role. Unknown roles use the upper-cased
// role token.
func (m *Manager) Suffix(role string) string {
	if s, ok := m.suffixes[role]; ok {
		return s
	}
	return strings.ToUpper(role)
}

type options struct {
	index *int
	side  string
}

// Option customises a single QN call.
type Option func(*options)

// WithIndex adds an index token.
func WithIndex(i int) Option {
	return func(o *options) { o.index = &i }
}

// WithSide adds a side token (for example "L", "R" or "C"). An empty side
// is ignored.
func WithSide(side string) Option {
	return func(o *options) { o.side = side }
}

// QN returns a unique qualified name for the given tokens.
func (m *Manager) QN(ctx context.Context, base, role string, opts ...Option) string {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	name := m.format(base, role, o)
	for i := 1; m.taken(ctx, name); i++ {
		name = m.format(base+strconv.Itoa(i), role, o)
	}
	ctxlog.FromContext(ctx).Debug("Resolved qualified name.", "base", base, "role", role, "name", name)
	return name
}

func (m *Manager) taken(ctx context.Context, name string) bool {
	if m.graph == nil {
		return false
	}
	_, ok := m.graph.FindByName(ctx, name)
	return ok
}

func (m *Manager) format(base, role string, o options) string {
	parts := []string{base}
	if o.side != "" {
		parts = append(parts, o.side)
	}
	if o.index != nil {
		parts = append(parts, strconv.Itoa(*o.index))
	}
	if m.rule == RuleProperty {
		return strings.ToLower(strings.Join(parts, "_"))
	}
	return strings.Join(append(parts, m.Suffix(role)), "_")
}
