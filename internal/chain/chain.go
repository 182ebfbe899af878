package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/vk/riglab/internal/ctxlog"
	"github.com/vk/riglab/internal/scene"
	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"
)

// CurveDataKey is the data bag key holding the control points of a curve.
const CurveDataKey = "Curve_Points"

// ErrNotACurve is returned when a node carries no curve points.
var ErrNotACurve = errors.New("chain: node is not a fitted curve")

// Chain is a jointed chain built from a curve: a root, one bone per curve
// segment and an effector at the last point.
type Chain struct {
	Root     scene.NodeID
	Bones    []scene.NodeID
	Effector scene.NodeID
}

// Utility is the curve and chain toolbox used by the solvers.
type Utility interface {
	// ChainToCurve fits a curve through the world positions of the joints.
	ChainToCurve(ctx context.Context, skeleton []scene.NodeID, parent scene.NodeID) (scene.NodeID, error)
	// CurveToChain builds a jointed chain along the curve points.
	CurveToChain(ctx context.Context, curve, parent scene.NodeID) (*Chain, error)
	// CurveData returns the oriented curve points and per-segment lengths.
	CurveData(ctx context.Context, curve scene.NodeID) ([]mgl64.Mat4, []float64, error)
	// Depth returns the number of ancestors of a node.
	Depth(ctx context.Context, node scene.NodeID) (int, error)
}

type curveRecord struct {
	Points [][]float64 `yaml:"points"`
}

// SceneUtility implements Utility on top of a scene graph.
type SceneUtility struct {
	graph scene.Graph
}

var _ Utility = (*SceneUtility)(nil)

// New creates a SceneUtility.
func New(g scene.Graph) *SceneUtility {
	return &SceneUtility{graph: g}
}

// ChainToCurve creates a curve node under parent whose control points are
// the current world positions of the skeleton joints.
func (u *SceneUtility) ChainToCurve(ctx context.Context, skeleton []scene.NodeID, parent scene.NodeID) (scene.NodeID, error) {
	if len(skeleton) == 0 {
		return "", fmt.Errorf("cannot fit a curve through an empty chain")
	}
	rec := curveRecord{Points: make([][]float64, 0, len(skeleton))}
	for _, joint := range skeleton {
		m, err := u.graph.GlobalTransform(ctx, joint)
		if err != nil {
			return "", fmt.Errorf("reading joint position: %w", err)
		}
		p := scene.Translation(m)
		rec.Points = append(rec.Points, []float64{p[0], p[1], p[2]})
	}
	raw, err := yaml.Marshal(&rec)
	if err != nil {
		return "", fmt.Errorf("encoding curve points: %w", err)
	}

	curve, err := u.graph.AddNode(ctx, parent, scene.KindCurve)
	if err != nil {
		return "", fmt.Errorf("creating curve: %w", err)
	}
	if err := u.graph.SetData(ctx, curve, CurveDataKey, raw); err != nil {
		return "", fmt.Errorf("storing curve points: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Fitted curve through chain.", "points", len(rec.Points))
	return curve, nil
}

func (u *SceneUtility) points(ctx context.Context, curve scene.NodeID) ([]mgl64.Vec3, error) {
	raw, ok, err := u.graph.Data(ctx, curve, CurveDataKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotACurve, scene.MustName(ctx, u.graph, curve))
	}
	var rec curveRecord
	if err := yaml.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decoding curve points: %w", err)
	}
	out := make([]mgl64.Vec3, len(rec.Points))
	for i, p := range rec.Points {
		if len(p) != 3 {
			return nil, fmt.Errorf("curve point %d has %d components", i, len(p))
		}
		out[i] = mgl64.Vec3{p[0], p[1], p[2]}
	}
	return out, nil
}

// CurveData returns the curve points as oriented transforms and the length
// of every segment between consecutive points.
func (u *SceneUtility) CurveData(ctx context.Context, curve scene.NodeID) ([]mgl64.Mat4, []float64, error) {
	pts, err := u.points(ctx, curve)
	if err != nil {
		return nil, nil, err
	}
	segments := make([]float64, 0, len(pts))
	for i := 0; i+1 < len(pts); i++ {
		segments = append(segments, floats.Distance(pts[i][:], pts[i+1][:], 2))
	}
	return framePoints(pts), segments, nil
}

// CurveToChain builds a chain root, one bone per segment and an effector
// under parent.
func (u *SceneUtility) CurveToChain(ctx context.Context, curve, parent scene.NodeID) (*Chain, error) {
	pts, err := u.points(ctx, curve)
	if err != nil {
		return nil, err
	}
	if len(pts) < 2 {
		return nil, fmt.Errorf("a chain needs at least 2 curve points, got %d", len(pts))
	}
	frames := framePoints(pts)

	place := func(p scene.NodeID, kind scene.NodeKind, m mgl64.Mat4) (scene.NodeID, error) {
		id, err := u.graph.AddNode(ctx, p, kind)
		if err != nil {
			return "", err
		}
		if err := u.graph.SetGlobalTransform(ctx, id, m); err != nil {
			return "", err
		}
		return id, nil
	}

	c := &Chain{}
	if c.Root, err = place(parent, scene.KindChainRoot, frames[0]); err != nil {
		return nil, fmt.Errorf("creating chain root: %w", err)
	}
	prev := c.Root
	for i := 0; i+1 < len(pts); i++ {
		bone, err := place(prev, scene.KindJoint, frames[i])
		if err != nil {
			return nil, fmt.Errorf("creating bone %d: %w", i, err)
		}
		c.Bones = append(c.Bones, bone)
		prev = bone
	}
	if c.Effector, err = place(c.Root, scene.KindEffector, frames[len(frames)-1]); err != nil {
		return nil, fmt.Errorf("creating effector: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Built chain from curve.", "bones", len(c.Bones))
	return c, nil
}

// Depth counts the ancestors of node up to the scene root.
func (u *SceneUtility) Depth(ctx context.Context, node scene.NodeID) (int, error) {
	root := u.graph.Root(ctx)
	depth := 0
	for cur := node; cur != root; depth++ {
		p, err := u.graph.Parent(ctx, cur)
		if err != nil {
			return 0, fmt.Errorf("computing depth: %w", err)
		}
		cur = p
	}
	return depth, nil
}
