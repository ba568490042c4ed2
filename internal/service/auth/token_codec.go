package auth

import (
	"fmt"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/quill-api/internal/config"
	"github.com/phrazzld/quill-api/internal/domain"
)

// tokenClaim is the claim that carries the plaintext credential.
const tokenClaim = "token"

// minKeyLength mirrors the config validation so a codec can never be built
// with a weak key.
const minKeyLength = 32

// TokenCodec converts client credentials to and from their stored form.
//
// Encode is deterministic for a given key, so a presented credential can be
// looked up by equality on its encoded form. Decode fails with ErrInvalidToken
// for anything Encode did not produce under the same key.
type TokenCodec interface {
	Encode(plaintext string) (string, error)
	Decode(encoded string) (string, error)
}

// hmacTokenCodec signs credentials as HS256 JWTs without time-based claims.
type hmacTokenCodec struct {
	key []byte
}

// Ensure hmacTokenCodec implements TokenCodec interface
var _ TokenCodec = (*hmacTokenCodec)(nil)

// NewTokenCodec creates a TokenCodec keyed by cfg.EncryptionKey.
func NewTokenCodec(cfg config.AuthConfig) (TokenCodec, error) {
	if len(cfg.EncryptionKey) < minKeyLength {
		return nil, fmt.Errorf("encryption key must be at least %d characters", minKeyLength)
	}

	key := make([]byte, len(cfg.EncryptionKey))
	copy(key, cfg.EncryptionKey)
	return &hmacTokenCodec{key: key}, nil
}

// Encode implements TokenCodec.Encode. Plaintext must be valid UTF-8: JSON
// claims would otherwise replace invalid bytes and Decode could not return
// the original value.
func (c *hmacTokenCodec) Encode(plaintext string) (string, error) {
	if !utf8.ValidString(plaintext) {
		return "", domain.NewValidationError("token", "must be valid UTF-8")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{tokenClaim: plaintext})
	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token with HMAC-SHA256: %w", err)
	}
	return signed, nil
}

// Decode implements TokenCodec.Decode.
func (c *hmacTokenCodec) Decode(encoded string) (string, error) {
	token, err := jwt.Parse(
		encoded,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return c.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		// Non-canonical base64 would let distinct strings verify as the same token.
		jwt.WithStrictDecoding(),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	plaintext, ok := claims[tokenClaim].(string)
	if !ok {
		return "", ErrInvalidToken
	}
	return plaintext, nil
}
