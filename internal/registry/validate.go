package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/riglab/internal/config"
	"github.com/vk/riglab/internal/ctxlog"
	"github.com/vk/riglab/internal/naming"
	"github.com/vk/riglab/internal/scene"
)

// ValidateModel checks a rig description against the registered variants:
// every solver class must be registered, every chain must pass its
// variant's structural validation, and the naming rule must be known.
func (r *Registry) ValidateModel(ctx context.Context, model *config.Model) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	if model.Naming != nil && model.Naming.Rule != "" {
		if err := naming.New(nil).SetRule(naming.Rule(model.Naming.Rule)); err != nil {
			errs = append(errs, err.Error())
		}
	}

	for _, def := range model.Solvers {
		v, ok := r.Lookup(def.Class)
		if !ok {
			errs = append(errs, fmt.Sprintf("%s: solver '%s' uses unknown class '%s' (registered: %s)",
				def.DeclRange, def.Name, def.Class, strings.Join(r.Classnames(), ", ")))
			continue
		}
		// Handles are not known yet; names stand in for them since variants
		// only inspect the chain shape.
		chain := make([]scene.NodeID, len(def.Chain))
		for i, name := range def.Chain {
			chain[i] = scene.NodeID(name)
		}
		if !v.Validate(chain) {
			errs = append(errs, fmt.Sprintf("%s: solver '%s' of class '%s' rejects a chain of %d joints",
				def.DeclRange, def.Name, def.Class, len(def.Chain)))
			continue
		}
		logger.Debug("Solver definition validated.", "solver", def.Name, "class", def.Class)
	}

	if len(errs) > 0 {
		return fmt.Errorf("rig validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
