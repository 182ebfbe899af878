// Package naming turns semantic tokens into unique, convention-compliant
// node names.
//
// A Manager is created per build session and holds the active Rule and the
// role suffix table. Uniqueness is checked against the scene graph the
// manager was built with: when a candidate name is already taken, a numeric
// counter is appended to the base token until a free name is found.
//
//	m := naming.New(graph)
//	m.QN(ctx, "arm", naming.RoleJoint, naming.WithIndex(0), naming.WithSide("L"))
//	// arm_L_0_JNT
package naming
