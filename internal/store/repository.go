package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/quill-api/internal/domain"
)

// Repository is the storage-agnostic CRUD engine for entity type T.
//
// Every operation runs in the transaction the repository is bound to via
// WithTx, or in its own transaction when unbound. A nil filter matches all
// entities. Implementations translate every failure into ErrNotFound,
// ErrConflict, ErrStorage or ErrInvalidFilter.
type Repository[T any] interface {
	// GetMultiPaginated returns up to limit entities starting at offset in
	// insertion order. An empty result is not an error.
	GetMultiPaginated(ctx context.Context, offset, limit int, filter Filter) ([]*T, error)

	// GetByID returns the entity with id that also satisfies filter.
	GetByID(ctx context.Context, id uuid.UUID, filter Filter) (*T, error)

	// GetByFilter returns every entity that satisfies filter.
	GetByFilter(ctx context.Context, filter Filter) ([]*T, error)

	// GetByFilterOneOrNone returns the single entity that satisfies filter.
	// Zero matches and more than one match both fail with ErrNotFound.
	GetByFilterOneOrNone(ctx context.Context, filter Filter) (*T, error)

	// Create inserts entity and returns it refreshed with storage-generated fields.
	Create(ctx context.Context, entity *T) (*T, error)

	// CreateAll inserts entities as a unit: either all are stored or none.
	CreateAll(ctx context.Context, entities []*T) ([]*T, error)

	// Update applies changes to the entity with id that satisfies filter and
	// returns the refreshed entity. The modified-time field is re-stamped.
	Update(ctx context.Context, id uuid.UUID, changes Changes, filter Filter) (*T, error)

	// Delete removes the entity with id that satisfies filter.
	Delete(ctx context.Context, id uuid.UUID, filter Filter) error

	// WithTx returns a repository bound to tx. A nil tx returns an unbound
	// repository.
	WithTx(tx *sql.Tx) Repository[T]
}

// ClientRepository stores API clients.
type ClientRepository = Repository[domain.Client]

// PostRepository stores posts.
type PostRepository = Repository[domain.Post]

// StatsRepository extends the post repository with usage aggregates.
type StatsRepository interface {
	PostRepository

	// AveragePostCountPerClient groups posts by owner, counts each group and
	// returns the average count over the groups belonging to clientID. A
	// client without posts has no group and yields 0.
	AveragePostCountPerClient(ctx context.Context, clientID uuid.UUID) (float64, error)
}
