package memscene

import (
	"context"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/vk/riglab/internal/scene"
)

const scaleEpsilon = 1e-12

// modifiers returns the roll and local scale applied after the stored local
// transform.
func (s *Store) modifiers(n *node, depth int) (mgl64.Mat4, error) {
	m := mgl64.Ident4()
	if n.kind == scene.KindJoint {
		roll, err := s.floatOf(scene.Roll(n.id), depth)
		if err != nil {
			return m, err
		}
		m = m.Mul4(mgl64.HomogRotate3DX(mgl64.DegToRad(n.twist + roll)))
	}
	var scl [3]float64
	for i, name := range []string{scene.ParamSclX, scene.ParamSclY, scene.ParamSclZ} {
		v, err := s.floatOf(scene.Kine(n.id, name), depth)
		if err != nil {
			return m, err
		}
		scl[i] = v
	}
	return m.Mul4(mgl64.Scale3D(scl[0], scl[1], scl[2])), nil
}

// unconstrained returns the world transform ignoring the node's own
// constraints (parents are fully evaluated).
func (s *Store) unconstrained(n *node, depth int) (mgl64.Mat4, error) {
	parent := mgl64.Ident4()
	if n.parent != "" {
		pw, err := s.world(n.parent, depth+1)
		if err != nil {
			return parent, err
		}
		parent = pw
	}
	mods, err := s.modifiers(n, depth)
	if err != nil {
		return parent, err
	}
	return parent.Mul4(n.local).Mul4(mods), nil
}

// world evaluates the world transform of a node. Caller holds a lock.
func (s *Store) world(id scene.NodeID, depth int) (mgl64.Mat4, error) {
	if depth > maxEvalDepth {
		return mgl64.Ident4(), fmt.Errorf("transform evaluation exceeded depth %d", maxEvalDepth)
	}
	n, err := s.get(id)
	if err != nil {
		return mgl64.Ident4(), err
	}
	w, err := s.unconstrained(n, depth)
	if err != nil {
		return w, err
	}
	return s.applyConstraints(n, w, depth)
}

func (s *Store) applyConstraints(n *node, w mgl64.Mat4, depth int) (mgl64.Mat4, error) {
	for _, cid := range n.children {
		c := s.nodes[cid]
		if c.cns == nil {
			continue
		}
		active, err := s.boolOf(scene.Cns(cid, scene.ParamActive), depth+1)
		if err != nil {
			return w, err
		}
		weight, err := s.floatOf(scene.Cns(cid, scene.ParamBlendWeight), depth+1)
		if err != nil {
			return w, err
		}
		if !active || weight <= 0 {
			continue
		}
		weight = math.Min(weight, 1)

		tw, err := s.world(c.cns.target, depth+1)
		if err != nil {
			return w, err
		}
		target := tw.Mul4(c.cns.offset)

		wt, wq, ws := decompose(w)
		tt, tq, ts := decompose(target)
		t := wt.Add(tt.Sub(wt).Mul(weight))

		switch c.cns.kind {
		case scene.ConstraintPosition:
			w = compose(t, wq, ws)
		case scene.ConstraintPose:
			scl := ws
			cnsScl, err := s.boolOf(scene.Kine(n.id, scene.ParamCnsScl), depth+1)
			if err != nil {
				return w, err
			}
			if cnsScl {
				scl = ws.Add(ts.Sub(ws).Mul(weight))
			}
			w = compose(t, mgl64.QuatSlerp(wq, tq, weight), scl)
		}
	}
	return w, nil
}

// decompose splits an affine transform into translation, rotation and scale.
func decompose(m mgl64.Mat4) (mgl64.Vec3, mgl64.Quat, mgl64.Vec3) {
	cols := [3]mgl64.Vec3{m.Col(0).Vec3(), m.Col(1).Vec3(), m.Col(2).Vec3()}
	var scl mgl64.Vec3
	for i, c := range cols {
		scl[i] = c.Len()
		if scl[i] < scaleEpsilon {
			scl[i] = 1
		}
		cols[i] = c.Mul(1 / scl[i])
	}
	rot := mgl64.Mat3FromCols(cols[0], cols[1], cols[2])
	return m.Col(3).Vec3(), mgl64.Mat4ToQuat(rot.Mat4()), scl
}

func compose(t mgl64.Vec3, q mgl64.Quat, scl mgl64.Vec3) mgl64.Mat4 {
	return mgl64.Translate3D(t[0], t[1], t[2]).Mul4(q.Normalize().Mat4()).Mul4(mgl64.Scale3D(scl[0], scl[1], scl[2]))
}

// GlobalTransform evaluates the world transform of a node.
func (s *Store) GlobalTransform(ctx context.Context, id scene.NodeID) (scene.Matrix4, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.world(id, 0)
}

// SetGlobalTransform stores the local transform that places the node at m
// when its constraints are inactive.
func (s *Store) SetGlobalTransform(ctx context.Context, id scene.NodeID, m scene.Matrix4) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.get(id)
	if err != nil {
		return err
	}
	parent := mgl64.Ident4()
	if n.parent != "" {
		if parent, err = s.world(n.parent, 0); err != nil {
			return err
		}
	}
	mods, err := s.modifiers(n, 0)
	if err != nil {
		return err
	}
	n.local = parent.Inv().Mul4(m).Mul4(mods.Inv())
	return nil
}

// LocalTransform returns the stored local transform, roll and scale excluded.
func (s *Store) LocalTransform(ctx context.Context, id scene.NodeID) (scene.Matrix4, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := s.get(id)
	if err != nil {
		return mgl64.Ident4(), err
	}
	return n.local, nil
}

// SetLocalTransform replaces the stored local transform.
func (s *Store) SetLocalTransform(ctx context.Context, id scene.NodeID, m scene.Matrix4) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.get(id)
	if err != nil {
		return err
	}
	n.local = m
	return nil
}

// AddConstraint attaches a constraint node to node. With compensate set the
// current world offset between node and target is preserved.
func (s *Store) AddConstraint(ctx context.Context, id scene.NodeID, kind scene.ConstraintKind, target scene.NodeID, compensate bool) (scene.NodeID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.get(id)
	if err != nil {
		return "", err
	}
	if _, err := s.get(target); err != nil {
		return "", err
	}
	if kind != scene.ConstraintPosition && kind != scene.ConstraintPose {
		return "", fmt.Errorf("unsupported constraint kind %q", kind)
	}
	if id == target {
		return "", fmt.Errorf("node %s cannot be constrained to itself", n.name)
	}

	offset := mgl64.Ident4()
	if compensate {
		nw, err := s.world(id, 0)
		if err != nil {
			return "", err
		}
		tw, err := s.world(target, 0)
		if err != nil {
			return "", err
		}
		if kind == scene.ConstraintPosition {
			delta := scene.Translation(tw.Inv().Mul4(nw))
			offset = mgl64.Translate3D(delta[0], delta[1], delta[2])
		} else {
			offset = tw.Inv().Mul4(nw)
		}
	}

	cid := s.newNode(id, scene.KindConstraint)
	s.nodes[cid].cns = &constraint{kind: kind, target: target, offset: offset}
	s.rename(s.nodes[cid], s.uniqueName(fmt.Sprintf("%s_%sCns", n.name, kind)))
	return cid, nil
}
