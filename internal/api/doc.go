// Package api holds the HTTP handlers for the clients and posts resources.
// Handlers decode and validate requests, call the services with the
// authenticated caller taken from the request context, and map service
// errors to status codes and safe messages.
package api
