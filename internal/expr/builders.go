package expr

import (
	"fmt"
	"strconv"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/vk/riglab/internal/nodeid"
	"github.com/zclconf/go-cty/cty"
)

// Ref renders a parameter address as a bare traversal.
func Ref(addr *nodeid.Address) string {
	return string(hclwrite.TokensForTraversal(addr.Traversal()).Bytes())
}

// Distance renders the world-space distance between two nodes, given by
// display name, as a call to the host distance function.
func Distance(from, to string) string {
	return fmt.Sprintf("%s(%s, %s)", FuncDistance, quote(from), quote(to))
}

// Ratio renders `numerator / denominator` with a literal denominator.
func Ratio(numerator string, denominator float64) string {
	return fmt.Sprintf("%s / %s", numerator, Number(denominator))
}

// StretchSquash renders the conditional that turns a raw scale factor into
// the value applied to a bone:
//
//	stretch and squash: factor, unclamped
//	stretch only:       max(factor, 1)
//	squash only:        min(factor, 1)
//	neither:            1
func StretchSquash(factor, stretch, squash string) string {
	return fmt.Sprintf(
		"(%[2]s && %[3]s) ? %[1]s : (%[2]s ? max(%[1]s, 1) : (%[3]s ? min(%[1]s, 1) : 1))",
		factor, stretch, squash,
	)
}

// Number renders a float literal.
func Number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func quote(s string) string {
	return string(hclwrite.TokensForValue(cty.StringVal(s)).Bytes())
}
