// Package relation implements sparse relations over opaque entity identifiers: ordered tuple sets
// with set semantics, the linear operators selection and projection, the bilinear equi-join, and
// inverted indices keyed by a fixed column prefix.
//
// Relations are the storage format of every topology relation set (IU, OU, IM, OM, SQ, FIX, QT,
// DBSQ, CAPS) and of the index sets derived from them. They are built once and then read
// concurrently, never mutated after construction.
//
// Key components:
//   - Set: an insertion-ordered tuple set of fixed arity.
//   - Operator: interface for relational operators (σ, π, ⋈).
//   - Index: a hash index from a column prefix to the matching tuples.
//
// Example usage:
//
//	im, _ := relation.FromTuples("IM", 3, relation.Tuple{"mix1", "m1", "naphtha"})
//	byUnitBatch := im.IndexBy(0, 1)
//	inputs := byUnitBatch.Lookup("mix1", "m1")
package relation
