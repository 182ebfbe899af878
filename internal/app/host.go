package app

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/vk/riglab/internal/chain"
	"github.com/vk/riglab/internal/ctxlog"
	"github.com/vk/riglab/internal/memscene"
	"github.com/vk/riglab/internal/remotescene"
	"github.com/vk/riglab/internal/scene"
)

// Connect opens the scene host selected by the configuration. The returned
// close function releases the connection.
//
// Without a host URL the rig is previewed in an in-memory scene in which
// every joint and parent the rig refers to is stubbed out.
func (a *App) Connect(ctx context.Context) (scene.Graph, func() error, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	if a.config.HostURL == "" {
		a.logger.Info("No host configured, previewing in an in-memory scene.")
		g := memscene.New()
		if err := a.stubScene(ctx, g); err != nil {
			return nil, nil, fmt.Errorf("preparing preview scene: %w", err)
		}
		return g, func() error { return nil }, nil
	}

	opts := []remotescene.DialOption{remotescene.WithNamespace(a.config.HostNamespace)}
	if a.config.InsecureSkipVerify {
		opts = append(opts, remotescene.WithInsecureSkipVerify())
	}
	if a.config.CallTimeout > 0 {
		opts = append(opts, remotescene.WithCallTimeout(a.config.CallTimeout))
	}
	caller, err := remotescene.Dial(ctx, a.config.HostURL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to scene host: %w", err)
	}
	return remotescene.NewClient(caller), caller.Close, nil
}

// stubScene creates the parents and joint chains the rig refers to. Each
// chain is laid out along X with a slight zigzag, one chain per Z offset.
func (a *App) stubScene(ctx context.Context, g scene.Graph) error {
	root := g.Root(ctx)
	for i, def := range a.model.Solvers {
		if def.Parent != "" {
			if _, err := stubNode(ctx, g, root, def.Parent, scene.KindNull, mgl64.Ident4()); err != nil {
				return err
			}
		}

		parent := root
		for j, name := range def.Chain {
			pos := mgl64.Vec3{float64(j), 0.25 * float64(j%2), 2 * float64(i)}
			next := pos.Add(mgl64.Vec3{1, 0.25 * float64(1-2*(j%2)), 0})
			id, err := stubNode(ctx, g, parent, name, scene.KindJoint, chain.Frame(pos, next.Sub(pos)))
			if err != nil {
				return err
			}
			parent = id
		}
	}
	return nil
}

func stubNode(ctx context.Context, g scene.Graph, parent scene.NodeID, name string, kind scene.NodeKind, world mgl64.Mat4) (scene.NodeID, error) {
	if id, ok := g.FindByName(ctx, name); ok {
		return id, nil
	}
	id, err := g.AddNode(ctx, parent, kind)
	if err != nil {
		return "", err
	}
	if err := g.SetName(ctx, id, name); err != nil {
		return "", err
	}
	if err := g.SetGlobalTransform(ctx, id, world); err != nil {
		return "", err
	}
	ctxlog.FromContext(ctx).Debug("Stubbed preview node.", "name", name, "kind", kind.String())
	return id, nil
}
