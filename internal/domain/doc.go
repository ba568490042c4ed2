// Package domain holds the two tenant entities, Client and Post, with their
// construction rules and validation errors. It has no storage or HTTP
// dependencies.
package domain
