// Package auth turns presented credentials into caller identities. It holds
// the keyed token codec used to store client credentials, the bearer-token
// authenticator that resolves a credential to its client, and the master-key
// guard for administrative routes.
package auth
