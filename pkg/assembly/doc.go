// Package assembly turns a validated topology store into a solver-ready model: it allocates one
// variable per element of every expanded index set, instantiates the constraint families per unit
// variant, batch, stream, property and time period, and assembles the profit objective.
//
// Constraint families are independent of each other: each one reads the store, the index and the
// variable handles and produces its own list of constraints. The Builder runs them concurrently
// once all variables are declared and merges the results in a fixed family order, so repeated
// builds of the same case yield identical models.
//
// Families skip every combination the topology does not support. A combination that is supported
// but degenerate (a zero yield-coefficient sum, a zero normalization) is skipped as well and
// counted in the Skipped statistics of the model.
package assembly
