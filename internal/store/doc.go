// Package store defines the storage-agnostic contracts for data persistence:
// the generic Repository, the filter predicate tree used to scope queries,
// the per-entity Schema mapping, transactions, and the error kinds every
// backend translates its failures into. Concrete backends live under
// internal/platform.
package store
