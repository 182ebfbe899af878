package memscene

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/vk/riglab/internal/scene"
)

// ApplyOp runs a built-in operation.
func (s *Store) ApplyOp(ctx context.Context, op string, args ...string) error {
	switch op {
	case scene.OpSkeletonUpVector:
		if len(args) != 1 {
			return fmt.Errorf("%s expects a single \"bone;pole\" argument", op)
		}
		parts := strings.Split(args[0], ";")
		if len(parts) != 2 {
			return fmt.Errorf("%s: malformed argument %q", op, args[0])
		}
		return s.upVector(parts[0], parts[1])
	default:
		return fmt.Errorf("%w: %s", scene.ErrUnknownOp, op)
	}
}

// upVector twists a joint about its own X axis so that its Y axis points
// at the pole, as seen in the plane perpendicular to the bone.
func (s *Store) upVector(boneName, poleName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	boneID, ok := s.names[boneName]
	if !ok {
		return fmt.Errorf("%w: %q", scene.ErrNodeNotFound, boneName)
	}
	poleID, ok := s.names[poleName]
	if !ok {
		return fmt.Errorf("%w: %q", scene.ErrNodeNotFound, poleName)
	}
	bone := s.nodes[boneID]
	if bone.kind != scene.KindJoint {
		return fmt.Errorf("%s: %s is not a joint", scene.OpSkeletonUpVector, boneName)
	}

	bw, err := s.world(boneID, 0)
	if err != nil {
		return err
	}
	pw, err := s.world(poleID, 0)
	if err != nil {
		return err
	}

	x := bw.Col(0).Vec3().Normalize()
	y := bw.Col(1).Vec3().Normalize()
	toPole := scene.Translation(pw).Sub(scene.Translation(bw))
	desired := toPole.Sub(x.Mul(toPole.Dot(x)))
	if desired.Len() < 1e-9 {
		// Pole on the bone axis: orientation is undefined, leave it alone.
		return nil
	}
	desired = desired.Normalize()

	delta := math.Atan2(x.Dot(y.Cross(desired)), y.Dot(desired))
	bone.twist += mgl64.RadToDeg(delta)
	return nil
}
