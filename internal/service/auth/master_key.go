package auth

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MasterKeyGuard checks presented master keys against a fixed whitelist.
// Whitelist entries are either plaintext keys or bcrypt hashes produced by
// cmd/hash-generator.
type MasterKeyGuard struct {
	plain  [][]byte
	hashes [][]byte
}

// NewMasterKeyGuard creates a guard for keys. At least one key is required.
func NewMasterKeyGuard(keys []string) (*MasterKeyGuard, error) {
	g := &MasterKeyGuard{}
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, err := bcrypt.Cost([]byte(k)); err == nil {
			g.hashes = append(g.hashes, []byte(k))
			continue
		}
		g.plain = append(g.plain, []byte(k))
	}
	if len(g.plain) == 0 && len(g.hashes) == 0 {
		return nil, errors.New("at least one master key is required")
	}
	return g, nil
}

// Check fails with ErrAuthenticationRequired when presented is empty and
// ErrAuthenticationFailed when it matches no whitelisted key.
func (g *MasterKeyGuard) Check(presented string) error {
	if presented == "" {
		return ErrAuthenticationRequired
	}

	candidate := []byte(presented)

	// Every plaintext key is compared, matched or not.
	matched := 0
	for _, k := range g.plain {
		matched |= subtle.ConstantTimeCompare(k, candidate)
	}
	if matched == 1 {
		return nil
	}

	for _, h := range g.hashes {
		if bcrypt.CompareHashAndPassword(h, candidate) == nil {
			return nil
		}
	}
	return ErrAuthenticationFailed
}
