package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/quill-api/internal/domain"
	"github.com/phrazzld/quill-api/internal/store"
)

// StatsRepository is the in-memory post repository with usage aggregates.
type StatsRepository struct {
	*Repository[domain.Post]
}

// Ensure StatsRepository implements store.StatsRepository interface
var _ store.StatsRepository = (*StatsRepository)(nil)

// AveragePostCountPerClient implements store.StatsRepository.AveragePostCountPerClient.
// Posts are grouped by owner and the counts of the groups belonging to
// clientID are averaged; with one group per owner that is the client's own
// post count.
func (s *StatsRepository) AveragePostCountPerClient(_ context.Context, clientID uuid.UUID) (float64, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	counts := make(map[uuid.UUID]int)
	for i := range s.rows {
		counts[s.rows[i].ClientID]++
	}

	var sum, groups int
	for owner, count := range counts {
		if owner == clientID {
			sum += count
			groups++
		}
	}
	if groups == 0 {
		return 0, nil
	}
	return float64(sum) / float64(groups), nil
}
