package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxClientNameLength bounds the display name of a client.
const MaxClientNameLength = 255

// Validation errors for Client
var (
	ErrEmptyClientID     = NewValidationError("id", "cannot be empty")
	ErrEmptyClientName   = NewValidationError("name", "cannot be empty")
	ErrClientNameTooLong = NewValidationError("name", "must be at most 255 characters")
	ErrEmptyClientToken  = NewValidationError("token", "cannot be empty")
)

// Client is an API consumer. It authenticates with a bearer credential and
// owns a private collection of posts.
//
// Token always holds the encoded form of the credential when the value comes
// from or goes to storage.
type Client struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"-"`
}

// NewClient creates a Client with a fresh ID. encodedToken must already be
// encoded; storing a plaintext credential would make lookups by token fail.
func NewClient(name, encodedToken string) (*Client, error) {
	client := &Client{
		ID:    uuid.New(),
		Name:  name,
		Token: encodedToken,
	}

	if err := client.Validate(); err != nil {
		return nil, err
	}

	return client, nil
}

// Validate checks if the Client has valid data.
func (c *Client) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyClientID
	}
	if c.Name == "" {
		return ErrEmptyClientName
	}
	if len([]rune(c.Name)) > MaxClientNameLength {
		return ErrClientNameTooLong
	}
	if c.Token == "" {
		return ErrEmptyClientToken
	}
	return nil
}
