// Package xyz parses extended-XYZ molecular-dynamics trajectories.
//
// Each frame in the file is a header line holding the atom count, a comment
// line (usually carrying Lattice="..." and energy=...), and one line per atom:
//
//	2
//	Lattice="10 0 0 0 10 0 0 0 10" Properties=species:S:1:pos:R:3:forces:R:3 energy=-1.5
//	H 0.0 0.0 0.0 0.1 0.1 0.1
//	O 1.0 1.0 1.0 0.2 0.2 0.2
//
// Lines are classified by content rather than position, so [Parse] tolerates
// blank lines and stray comments between frames. Energies are collected in a
// separate pass and attached to frames in order.
package xyz
