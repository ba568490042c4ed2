// Package memory provides an in-process implementation of the storage
// contracts in internal/store. It honours the same filter, ordering,
// uniqueness and error semantics as the postgres package and is selected
// with database.driver=memory for local development and end-to-end tests.
package memory
