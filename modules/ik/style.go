package ik

// Icon shapes of the IK controls.
const (
	ShapeIK = "cube"
	ShapeUp = "sphere"
)

// PoleIconSize is the icon size of the pole control.
const PoleIconSize = 0.25

// SideColors holds the primary (root and effector) and secondary (pole)
// control colors of a side.
type SideColors struct {
	Primary   string
	Secondary string
}

var sideColors = map[string]SideColors{
	"L": {Primary: "blue", Secondary: "cyan"},
	"R": {Primary: "red", Secondary: "pink"},
	"C": {Primary: "yellow", Secondary: "orange"},
}

// ColorsFor returns the control colors of a side. Unknown and empty sides
// use the center colors.
func ColorsFor(side string) SideColors {
	if c, ok := sideColors[side]; ok {
		return c
	}
	return sideColors["C"]
}
