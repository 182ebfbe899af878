package expr

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// FuncDistance is the host function returning the distance between the
// world positions of two nodes.
const FuncDistance = "ctr_dist"

// PositionFunc resolves a node display name to its world position.
type PositionFunc func(name string) (mgl64.Vec3, error)

// Functions returns the function table available to driver expressions.
func Functions(position PositionFunc) map[string]function.Function {
	return map[string]function.Function{
		"abs":        stdlib.AbsoluteFunc,
		"max":        stdlib.MaxFunc,
		"min":        stdlib.MinFunc,
		FuncDistance: DistanceFunc(position),
	}
}

// DistanceFunc builds the ctr_dist function on top of a position resolver.
func DistanceFunc(position PositionFunc) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "from", Type: cty.String},
			{Name: "to", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.Number),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			from, err := position(args[0].AsString())
			if err != nil {
				return cty.UnknownVal(cty.Number), fmt.Errorf("%s: %w", FuncDistance, err)
			}
			to, err := position(args[1].AsString())
			if err != nil {
				return cty.UnknownVal(cty.Number), fmt.Errorf("%s: %w", FuncDistance, err)
			}
			return cty.NumberFloatVal(to.Sub(from).Len()), nil
		},
	})
}
