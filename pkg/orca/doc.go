// Package orca assembles ORCA input documents.
//
// A document is built from declarative pieces: a leading "!" directive line
// (method, basis, grid, convergence, job keywords, solvent, extras) and a set
// of named sections (%pal, %MaxCore, %tddft, %scf, %moinp, %NEB, %compound).
// Three document shapes are supported:
//
//   - Single: one directive line, control sections, optional literal blocks,
//     then the geometry-binding line.
//   - Compound: a shared resource header followed by a %compound block whose
//     stages each carry their own directive line. Only the first stage binds
//     the geometry.
//   - NEB: a nudged-elastic-band document referencing start, end and an
//     optional transition-state guess geometry.
//
// Rendering is pure. WriteDocument composes the full text in memory before a
// single write, so callers never observe a partially written input.
package orca
