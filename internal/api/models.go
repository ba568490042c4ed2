package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/quill-api/internal/domain"
)

// DefaultClientName is used when a client request omits the name field.
const DefaultClientName = "Bar name"

// PostRequest is the payload for creating or replacing a post.
type PostRequest struct {
	Title   string `json:"title"   validate:"required,max=255"`
	Content string `json:"content" validate:"required"`
}

// SearchPostsRequest holds exact-match search fields. Empty fields are
// ignored, and at least one field must be set.
type SearchPostsRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Query converts the request to a domain query.
func (r SearchPostsRequest) Query() domain.PostQuery {
	return domain.PostQuery{Title: r.Title, Content: r.Content}
}

// Validate rejects a search with no fields set.
func (r SearchPostsRequest) Validate() error {
	return r.Query().Validate()
}

// ClientRequest is the payload for creating or replacing a client. Token is
// the plaintext bearer credential the client will present.
type ClientRequest struct {
	Name  string `json:"name"  validate:"max=255"`
	Token string `json:"token" validate:"required"`
}

// newClientRequest returns a request pre-filled with defaults, ready to be
// decoded into.
func newClientRequest() ClientRequest {
	return ClientRequest{Name: DefaultClientName}
}

// PostResponse is the external representation of a post. UpdatedAt is null
// until the post is first updated.
type PostResponse struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// ClientResponse is the external representation of a client. Token is the
// decoded credential.
type ClientResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Token string    `json:"token"`
}

// StatisticsResponse carries the post-count statistic for a client.
type StatisticsResponse struct {
	Average float64 `json:"average"`
}

func postToResponse(post *domain.Post) PostResponse {
	return PostResponse{
		ID:        post.ID,
		Title:     post.Title,
		Content:   post.Content,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}

func postsToResponse(posts []*domain.Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, postToResponse(p))
	}
	return out
}

func clientToResponse(client *domain.Client) ClientResponse {
	return ClientResponse{
		ID:    client.ID,
		Name:  client.Name,
		Token: client.Token,
	}
}

func clientsToResponse(clients []*domain.Client) []ClientResponse {
	out := make([]ClientResponse, 0, len(clients))
	for _, c := range clients {
		out = append(out, clientToResponse(c))
	}
	return out
}
