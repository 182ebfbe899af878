package nodeid

// PathSegment represents a single component of an address path, e.g., `name` or `name[index]`.
type PathSegment struct {
	Name  string
	Index int // -1 indicates no index is present.
}

// NewPathSegment creates a new path segment without an index.
func NewPathSegment(name string) PathSegment {
	return PathSegment{Name: name, Index: -1}
}

// NewPathSegmentWithIndex creates a new path segment that includes an index.
func NewPathSegmentWithIndex(name string, index int) PathSegment {
	return PathSegment{Name: name, Index: index}
}

// HasIndex returns true if the path segment has an explicit index.
func (ps PathSegment) HasIndex() bool {
	return ps.Index != -1
}

// Address is the structured representation of a fully qualified scene name.
type Address struct {
	Path []PathSegment
}

// ForParam builds the address of a parameter living in a property group of a node.
func ForParam(node, group, param string) *Address {
	return &Address{Path: []PathSegment{
		NewPathSegment(node),
		NewPathSegment(group),
		NewPathSegment(param),
	}}
}

// ForNode builds the single-segment address of a node.
func ForNode(node string) *Address {
	return &Address{Path: []PathSegment{NewPathSegment(node)}}
}

// Node returns the first segment name, which is always the owning node.
func (a *Address) Node() string {
	if a == nil || len(a.Path) == 0 {
		return ""
	}
	return a.Path[0].Name
}

// Leaf returns the last segment name.
func (a *Address) Leaf() string {
	if a == nil || len(a.Path) == 0 {
		return ""
	}
	return a.Path[len(a.Path)-1].Name
}
