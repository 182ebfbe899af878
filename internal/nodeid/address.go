package nodeid

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// String serializes the Address into its canonical path string representation.
func (a *Address) String() string {
	if a == nil {
		return ""
	}

	var sb strings.Builder
	for i, segment := range a.Path {
		if i > 0 {
			sb.WriteRune('.')
		}
		sb.WriteString(segment.Name)
		if segment.Index != -1 {
			sb.WriteString(fmt.Sprintf("[%d]", segment.Index))
		}
	}

	return sb.String()
}

// Equal checks for deep equality between two Address pointers.
func (a *Address) Equal(other *Address) bool {
	if a == nil || other == nil {
		return a == other
	}
	return reflect.DeepEqual(a.Path, other.Path)
}

// Traversal converts the address into the absolute HCL traversal used to
// reference it from an expression.
func (a *Address) Traversal() hcl.Traversal {
	if a == nil || len(a.Path) == 0 {
		return nil
	}
	var tr hcl.Traversal
	for i, segment := range a.Path {
		if i == 0 {
			tr = append(tr, hcl.TraverseRoot{Name: segment.Name})
		} else {
			tr = append(tr, hcl.TraverseAttr{Name: segment.Name})
		}
		if segment.HasIndex() {
			tr = append(tr, hcl.TraverseIndex{Key: cty.NumberIntVal(int64(segment.Index))})
		}
	}
	return tr
}

// FromTraversal is the inverse of Traversal. Only root, attribute and whole
// number index steps are accepted.
func FromTraversal(tr hcl.Traversal) (*Address, error) {
	if len(tr) == 0 {
		return nil, fmt.Errorf("traversal cannot be empty")
	}

	addr := &Address{}
	for _, step := range tr {
		switch s := step.(type) {
		case hcl.TraverseRoot:
			addr.Path = append(addr.Path, NewPathSegment(s.Name))
		case hcl.TraverseAttr:
			addr.Path = append(addr.Path, NewPathSegment(s.Name))
		case hcl.TraverseIndex:
			if len(addr.Path) == 0 || s.Key.Type() != cty.Number {
				return nil, fmt.Errorf("unsupported index step in traversal")
			}
			bf := s.Key.AsBigFloat()
			if !bf.IsInt() {
				return nil, fmt.Errorf("index must be a whole number")
			}
			idx, _ := bf.Int64()
			addr.Path[len(addr.Path)-1].Index = int(idx)
		default:
			return nil, fmt.Errorf("unsupported traversal step %T", step)
		}
	}
	return addr, nil
}
