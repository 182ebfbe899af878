package solver

import (
	"context"

	"github.com/vk/riglab/internal/scene"
)

// Variant is the capability interface a concrete solver implements.
type Variant interface {
	// Classname identifies the variant in the registry and the persisted
	// solver record.
	Classname() string
	// Validate reports whether the chain is structurally acceptable. It runs
	// before any scene mutation.
	Validate(skeleton []scene.NodeID) bool
	// CustomInputs adds variant parameters after the base inputs exist.
	CustomInputs(ctx context.Context, s *Solver) error
	// CustomAnim creates animation controls after the curve is fitted.
	CustomAnim(ctx context.Context, s *Solver) error
	// CustomBuild creates the variant's kinematic network before the
	// generic constraint wiring.
	CustomBuild(ctx context.Context, s *Solver) error
}

// Hooks provides no-op defaults for variants to embed.
type Hooks struct{}

// Validate accepts any non-empty chain.
func (Hooks) Validate(skeleton []scene.NodeID) bool { return len(skeleton) > 0 }

func (Hooks) CustomInputs(context.Context, *Solver) error { return nil }

func (Hooks) CustomAnim(context.Context, *Solver) error { return nil }

func (Hooks) CustomBuild(context.Context, *Solver) error { return nil }
