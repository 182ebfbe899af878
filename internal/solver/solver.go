package solver

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/riglab/internal/chain"
	"github.com/vk/riglab/internal/ctxlog"
	"github.com/vk/riglab/internal/manipulator"
	"github.com/vk/riglab/internal/naming"
	"github.com/vk/riglab/internal/scene"
	"gopkg.in/yaml.v3"
)

// DataKey is the data bag key of the persisted solver record.
const DataKey = "Solver_Data"

// Parameter groups created by the base solver.
const (
	GroupInput  = "Input_Parameters"
	GroupHelper = "Helper_Parameters"
)

var (
	// ErrInvalidChain is returned when a joint chain fails validation.
	// Nothing is created in the scene in that case.
	ErrInvalidChain = errors.New("solver: invalid joint chain")
	// ErrNoSolverData is returned by Load for nodes without a solver record.
	ErrNoSolverData = errors.New("solver: node carries no solver data")
	// ErrUnknownClass is returned by Load when no variant serves the
	// recorded classname.
	ErrUnknownClass = errors.New("solver: unknown solver class")
)

// Env bundles the collaborators a solver is built with. One Env is used for
// a single build session.
type Env struct {
	Graph  scene.Graph
	Naming *naming.Manager
	Chain  chain.Utility
}

// NewEnv creates an Env with a fresh naming manager and a scene-backed
// chain utility.
func NewEnv(g scene.Graph) Env {
	return Env{Graph: g, Naming: naming.New(g), Chain: chain.New(g)}
}

// Input groups the nodes and parameters the solver reads from.
type Input struct {
	Root        scene.NodeID              `yaml:"root"`
	Parameters  string                    `yaml:"parameters,omitempty"`
	Active      scene.ParamRef            `yaml:"active"`
	BlendWeight scene.ParamRef            `yaml:"blendweight"`
	Skeleton    []scene.NodeID            `yaml:"skeleton"`
	Anim        []scene.NodeID            `yaml:"anim"`
	Extra       map[string]scene.ParamRef `yaml:"extra,omitempty"`
}

// Output groups the generated driver nodes, one per joint except the last.
type Output struct {
	Root scene.NodeID   `yaml:"root"`
	TM   []scene.NodeID `yaml:"tm"`
}

// Helper groups the nodes and parameters private to the solver.
type Helper struct {
	Root       scene.NodeID              `yaml:"root"`
	Hidden     []scene.NodeID            `yaml:"hidden"`
	Curve      scene.NodeID              `yaml:"curve"`
	Parameters string                    `yaml:"parameters,omitempty"`
	Extra      map[string]scene.ParamRef `yaml:"extra,omitempty"`
}

// Solver is a live rig solver bound to its scaffold in the scene.
type Solver struct {
	Env     Env
	variant Variant

	Classname string
	Name      string
	Side      string
	Root      scene.NodeID

	Input  Input
	Output Output
	Helper Helper

	manipulators map[string]*manipulator.Manipulator
}

type record struct {
	Classname string `yaml:"classname"`
	Name      string `yaml:"name"`
	Side      string `yaml:"side,omitempty"`
	Input     Input  `yaml:"input"`
	Output    Output `yaml:"output"`
	Helper    Helper `yaml:"helper"`
}

type options struct {
	name   string
	side   string
	parent scene.NodeID
}

// Option customises New.
type Option func(*options)

// WithName sets the solver name. It defaults to the variant classname.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithSide sets the side token used when naming controls and chains.
func WithSide(side string) Option {
	return func(o *options) { o.side = side }
}

// WithParent sets the scene node the scaffold is created under. It
// defaults to the scene root.
func WithParent(parent scene.NodeID) Option {
	return func(o *options) { o.parent = parent }
}

// New validates the chain, creates the solver scaffold under the parent and
// builds the solver. When validation fails it returns ErrInvalidChain and
// leaves the scene untouched. Any later failure deletes the scaffold again.
func New(ctx context.Context, env Env, v Variant, skeleton []scene.NodeID, opts ...Option) (_ *Solver, err error) {
	if !v.Validate(skeleton) {
		return nil, fmt.Errorf("%w: %s rejected a chain of %d joints", ErrInvalidChain, v.Classname(), len(skeleton))
	}
	o := options{name: v.Classname()}
	for _, opt := range opts {
		opt(&o)
	}
	g := env.Graph
	if o.parent == "" {
		o.parent = g.Root(ctx)
	}

	s := &Solver{
		Env:          env,
		variant:      v,
		Classname:    v.Classname(),
		Name:         o.name,
		Side:         o.side,
		manipulators: make(map[string]*manipulator.Manipulator),
	}
	ctx = ctxlog.WithSolver(ctx, s.Name, s.Classname)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Creating solver scaffold.", "joints", len(skeleton))

	if s.Root, err = g.AddNode(ctx, o.parent, scene.KindNull); err != nil {
		return nil, fmt.Errorf("creating solver root: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if derr := g.Delete(ctx, s.Root); derr != nil {
			logger.Error("Failed to remove scaffold of failed solver.", "error", derr)
			return
		}
		logger.Debug("Removed scaffold of failed solver.")
	}()
	for _, slot := range []*scene.NodeID{&s.Output.Root, &s.Helper.Root, &s.Input.Root} {
		if *slot, err = g.AddNode(ctx, s.Root, scene.KindNull); err != nil {
			return nil, fmt.Errorf("creating solver scaffold: %w", err)
		}
	}

	for _, n := range []struct {
		id     scene.NodeID
		suffix string
	}{
		{s.Root, "Root"},
		{s.Output.Root, "Output"},
		{s.Helper.Root, "Helper"},
		{s.Input.Root, "Input"},
	} {
		name := env.Naming.QN(ctx, s.Name+n.suffix, naming.RoleGroup, naming.WithSide(s.Side))
		if err := g.SetName(ctx, n.id, name); err != nil {
			return nil, fmt.Errorf("naming solver scaffold: %w", err)
		}
	}
	s.Helper.Hidden = append(s.Helper.Hidden, s.Root, s.Input.Root, s.Output.Root, s.Helper.Root)

	if err := s.Flush(ctx); err != nil {
		return nil, err
	}
	if err := s.Build(ctx, skeleton); err != nil {
		return nil, fmt.Errorf("building solver %s: %w", s.Name, err)
	}
	if err := s.Flush(ctx); err != nil {
		return nil, err
	}
	logger.Info("Solver created.", "root", scene.MustName(ctx, g, s.Root))
	return s, nil
}

// Load rebuilds a live solver from the record stored on an existing solver
// root. resolve maps the recorded classname to its variant.
func Load(ctx context.Context, env Env, root scene.NodeID, resolve func(classname string) (Variant, bool)) (*Solver, error) {
	raw, ok, err := env.Graph.Data(ctx, root, DataKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSolverData, scene.MustName(ctx, env.Graph, root))
	}
	var rec record
	if err := yaml.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decoding solver data: %w", err)
	}
	v, ok := resolve(rec.Classname)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, rec.Classname)
	}
	return &Solver{
		Env:          env,
		variant:      v,
		Classname:    rec.Classname,
		Name:         rec.Name,
		Side:         rec.Side,
		Root:         root,
		Input:        rec.Input,
		Output:       rec.Output,
		Helper:       rec.Helper,
		manipulators: make(map[string]*manipulator.Manipulator),
	}, nil
}

// Flush writes the solver record to the data bag of the root node.
func (s *Solver) Flush(ctx context.Context) error {
	raw, err := yaml.Marshal(&record{
		Classname: s.Classname,
		Name:      s.Name,
		Side:      s.Side,
		Input:     s.Input,
		Output:    s.Output,
		Helper:    s.Helper,
	})
	if err != nil {
		return fmt.Errorf("encoding solver data: %w", err)
	}
	if err := s.Env.Graph.SetData(ctx, s.Root, DataKey, raw); err != nil {
		return fmt.Errorf("storing solver data: %w", err)
	}
	return nil
}

// Variant returns the concrete solver implementation.
func (s *Solver) Variant() Variant { return s.variant }

// Hide appends nodes to the hidden list. Style turns their viewport
// visibility off.
func (s *Solver) Hide(ids ...scene.NodeID) {
	s.Helper.Hidden = append(s.Helper.Hidden, ids...)
}
