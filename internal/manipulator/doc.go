// Package manipulator builds the interactive proxy controls animators move.
//
// A manipulator is a four node hierarchy: space, zero, orient and anim.
// The space node is aligned to the rig, zero and orient absorb offsets, and
// anim is the node that carries keys. Icon settings live as parameters of
// the "icon" group on the anim node, and the owner tag and snap reference
// live in the anim node's data bag, so a wrapper can be rebuilt from the
// anim node alone with FromAnim.
package manipulator
