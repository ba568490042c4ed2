// Package service orchestrates the application's use cases. Services combine
// the caller identity resolved by the auth package with the store
// repositories, running each operation in a single transaction.
package service
