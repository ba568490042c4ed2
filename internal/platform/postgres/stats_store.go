package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/quill-api/internal/domain"
	"github.com/phrazzld/quill-api/internal/platform/logger"
	"github.com/phrazzld/quill-api/internal/store"
)

// averagePostCountQuery groups every post by owner and averages the counts of
// the groups belonging to one client. The result is NULL when the client owns
// no posts.
const averagePostCountQuery = `
	SELECT AVG(post_count)::float8
	FROM (
		SELECT client_id, COUNT(*) AS post_count
		FROM posts
		GROUP BY client_id
	) AS counts
	WHERE client_id = $1
`

// StatsStore is the post repository extended with usage aggregates.
type StatsStore struct {
	*Repository[domain.Post]
}

// NewStatsStore creates a StatsStore backed by db.
func NewStatsStore(db *sql.DB, logger *slog.Logger) *StatsStore {
	return &StatsStore{Repository: NewRepository(db, store.PostSchema, logger)}
}

// Ensure StatsStore implements store.StatsRepository interface
var _ store.StatsRepository = (*StatsStore)(nil)

// AveragePostCountPerClient implements store.StatsRepository.AveragePostCountPerClient.
func (s *StatsStore) AveragePostCountPerClient(ctx context.Context, clientID uuid.UUID) (float64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var average sql.NullFloat64
	if err := s.db().QueryRowContext(ctx, averagePostCountQuery, clientID).Scan(&average); err != nil {
		log.Error("failed to compute average post count",
			slog.String("error", err.Error()),
			slog.String("client_id", clientID.String()))
		return 0, MapError(err)
	}

	if !average.Valid {
		return 0, nil
	}
	return average.Float64, nil
}
