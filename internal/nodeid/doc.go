/*
Package nodeid provides a structured representation for fully qualified scene
names: a node name followed by the property group and parameter it addresses,
e.g. `arm_L_Input_GRP.Input_Parameters.blendweight`.

The same address is used in two places: as the key the host stores parameters
under, and as the variable traversal inside live driver expressions. Keeping
the formatting, parsing and traversal conversion here guarantees the two never
drift apart.
*/
package nodeid
