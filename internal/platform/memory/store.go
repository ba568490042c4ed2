package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/quill-api/internal/domain"
	"github.com/phrazzld/quill-api/internal/platform/logger"
	"github.com/phrazzld/quill-api/internal/store"
)

// table is the type-erased view of a repository's rows that transactions
// need for rollback.
type table interface {
	snapshot() (restore func())
}

// Store owns every in-memory table and serialises transactions over them.
//
// Transactions are not re-entrant: calling RunInTransaction from inside fn
// deadlocks.
type Store struct {
	txMu   sync.Mutex
	mu     sync.RWMutex
	tables []table
	now    func() time.Time
	logger *slog.Logger

	clients *Repository[domain.Client]
	posts   *StatsRepository
}

// New creates an empty Store with the clients and posts tables registered.
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		now:    time.Now,
		logger: logger.With(slog.String("component", "memory_store")),
	}
	s.clients = newRepository(s, store.ClientSchema)
	s.posts = &StatsRepository{Repository: newRepository(s, store.PostSchema)}
	return s
}

// Clients returns the client repository.
func (s *Store) Clients() *Repository[domain.Client] {
	return s.clients
}

// Posts returns the post repository with its statistics extension.
func (s *Store) Posts() *StatsRepository {
	return s.posts
}

// Ensure Store implements store.Transactor
var _ store.Transactor = (*Store)(nil)

// RunInTransaction implements store.Transactor. fn receives a nil *sql.Tx;
// every table is restored to its prior state if fn fails or panics.
func (s *Store) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	restores := make([]func(), len(s.tables))
	for i, t := range s.tables {
		restores[i] = t.snapshot()
	}
	s.mu.RUnlock()

	rollback := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, restore := range restores {
			restore()
		}
	}

	defer func() {
		if p := recover(); p != nil {
			rollback()
			log.Error("rolled back transaction after panic", slog.Any("panic", p))
			// ALLOW-PANIC: Propagating caught panic from transaction
			panic(p)
		}
	}()

	if err := fn(ctx, nil); err != nil {
		rollback()
		log.Debug("rolled back transaction due to error", slog.String("error", err.Error()))
		return err
	}

	log.Debug("transaction committed successfully")
	return nil
}

// stamp returns a time strictly after last. Creation stamps keep insertion
// order and created_at order in agreement; update stamps never precede the
// row's created_at.
func (s *Store) stamp(last time.Time) time.Time {
	now := s.now().UTC()
	if !now.After(last) {
		now = last.Add(time.Microsecond)
	}
	return now
}
