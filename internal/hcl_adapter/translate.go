package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/riglab/internal/config"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

func translateNaming(nb *NamingBlock) *config.Naming {
	n := &config.Naming{Suffixes: make(map[string]string, len(nb.Roles))}
	if nb.Rule != nil {
		n.Rule = *nb.Rule
	}
	for _, r := range nb.Roles {
		n.Suffixes[r.Name] = r.Suffix
	}
	return n
}

func translateSolver(ctx context.Context, evalCtx *hcl.EvalContext, sb *SolverBlock) (*config.Solver, error) {
	def := &config.Solver{
		Class:     sb.Class,
		Name:      sb.Name,
		Side:      sb.Side,
		Chain:     sb.Chain,
		Parent:    sb.Parent,
		DeclRange: sb.DeclRange,
	}
	if err := translateActive(ctx, evalCtx, sb, def); err != nil {
		return nil, err
	}
	if err := translateParams(ctx, evalCtx, sb, def); err != nil {
		return nil, err
	}
	return def, nil
}

func translateActive(ctx context.Context, evalCtx *hcl.EvalContext, sb *SolverBlock, def *config.Solver) error {
	if !isExprDefined(ctx, sb.Active, "active") {
		return nil
	}
	val, diags := sb.Active.Value(evalCtx)
	if diags.HasErrors() {
		return fmt.Errorf("invalid active value for solver '%s': %w", sb.Name, diags)
	}
	if val.IsNull() {
		return nil
	}
	b, err := convert.Convert(val, cty.Bool)
	if err != nil {
		return fmt.Errorf("%s: active of solver '%s' must be a bool: %w", sb.Active.Range(), sb.Name, err)
	}
	active := b.True()
	def.Active = &active
	return nil
}

func translateParams(ctx context.Context, evalCtx *hcl.EvalContext, sb *SolverBlock, def *config.Solver) error {
	if !isExprDefined(ctx, sb.Params, "params") {
		return nil
	}
	val, diags := sb.Params.Value(evalCtx)
	if diags.HasErrors() {
		return fmt.Errorf("invalid params for solver '%s': %w", sb.Name, diags)
	}
	if val.IsNull() {
		return nil
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return fmt.Errorf("%s: params of solver '%s' must be an object, got %s", sb.Params.Range(), sb.Name, val.Type().FriendlyName())
	}
	def.Params = make(map[string]cty.Value, val.LengthInt())
	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		def.Params[k.AsString()] = v
	}
	return nil
}
