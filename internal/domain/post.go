package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxPostTitleLength bounds the title of a post. Content is unbounded.
const MaxPostTitleLength = 255

// Validation errors for Post
var (
	ErrEmptyPostID       = NewValidationError("id", "cannot be empty")
	ErrEmptyPostClientID = NewValidationError("client_id", "cannot be empty")
	ErrEmptyPostTitle    = NewValidationError("title", "cannot be empty")
	ErrPostTitleTooLong  = NewValidationError("title", "must be at most 255 characters")
	ErrEmptyPostContent  = NewValidationError("content", "cannot be empty")
	ErrEmptyPostQuery    = NewValidationError("", "at least one of title or content must be set")
)

// Post is a title and content record owned by exactly one Client.
//
// CreatedAt is assigned by storage on insert. UpdatedAt stays nil until the
// first update.
type Post struct {
	ID        uuid.UUID  `json:"id"`
	ClientID  uuid.UUID  `json:"client_id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// NewPost creates a Post owned by clientID with a fresh ID.
func NewPost(clientID uuid.UUID, title, content string) (*Post, error) {
	post := &Post{
		ID:       uuid.New(),
		ClientID: clientID,
		Title:    title,
		Content:  content,
	}

	if err := post.Validate(); err != nil {
		return nil, err
	}

	return post, nil
}

// Validate checks if the Post has valid data.
func (p *Post) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyPostID
	}
	if p.ClientID == uuid.Nil {
		return ErrEmptyPostClientID
	}
	if p.Title == "" {
		return ErrEmptyPostTitle
	}
	if len([]rune(p.Title)) > MaxPostTitleLength {
		return ErrPostTitleTooLong
	}
	if p.Content == "" {
		return ErrEmptyPostContent
	}
	return nil
}

// PostQuery holds exact-match search criteria. Empty fields are ignored.
type PostQuery struct {
	Title   string
	Content string
}

// Validate requires at least one criterion so that a search never silently
// degrades into a plain listing.
func (q PostQuery) Validate() error {
	if q.Title == "" && q.Content == "" {
		return ErrEmptyPostQuery
	}
	if len([]rune(q.Title)) > MaxPostTitleLength {
		return ErrPostTitleTooLong
	}
	return nil
}
