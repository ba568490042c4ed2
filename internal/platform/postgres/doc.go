// Package postgres provides the PostgreSQL implementation of the storage
// contracts defined in internal/store: a generic, schema-driven repository,
// the statistics repository, error translation, and the embedded schema
// migrations applied by goose.
package postgres
