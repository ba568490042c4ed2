package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/quill-api/internal/domain"
	"github.com/phrazzld/quill-api/internal/platform/logger"
	"github.com/phrazzld/quill-api/internal/store"
)

// PostService manages posts on behalf of an authenticated client. Every
// operation is scoped to callerID: posts owned by anyone else behave exactly
// like posts that do not exist.
type PostService interface {
	// CreatePost creates a post owned by the caller.
	CreatePost(ctx context.Context, callerID uuid.UUID, title, content string) (*domain.Post, error)

	// ListPosts returns a page of the caller's posts in creation order.
	ListPosts(ctx context.Context, callerID uuid.UUID, offset, limit int) ([]*domain.Post, error)

	// GetPost retrieves one of the caller's posts.
	GetPost(ctx context.Context, callerID, postID uuid.UUID) (*domain.Post, error)

	// SearchPosts returns a page of the caller's posts that exactly match
	// every field set in query.
	SearchPosts(
		ctx context.Context,
		callerID uuid.UUID,
		query domain.PostQuery,
		offset, limit int,
	) ([]*domain.Post, error)

	// UpdatePost replaces the title and content of one of the caller's posts.
	UpdatePost(ctx context.Context, callerID, postID uuid.UUID, title, content string) (*domain.Post, error)

	// DeletePost removes one of the caller's posts.
	DeletePost(ctx context.Context, callerID, postID uuid.UUID) error

	// AveragePostCount returns the average post count for clientID's group.
	AveragePostCount(ctx context.Context, clientID uuid.UUID) (float64, error)
}

// PostServiceImpl implements the PostService interface
type PostServiceImpl struct {
	posts      store.StatsRepository
	transactor store.Transactor
	logger     *slog.Logger
}

// NewPostService creates a new PostService
func NewPostService(posts store.StatsRepository, transactor store.Transactor, logger *slog.Logger) PostService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostServiceImpl{
		posts:      posts,
		transactor: transactor,
		logger:     logger.With(slog.String("component", "post_service")),
	}
}

// ownedBy is the access boundary for every post operation.
func ownedBy(callerID uuid.UUID) store.Scope {
	return store.NewScope(store.Eq("client_id", callerID))
}

// CreatePost creates a post owned by the caller.
func (s *PostServiceImpl) CreatePost(
	ctx context.Context,
	callerID uuid.UUID,
	title, content string,
) (*domain.Post, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	post, err := domain.NewPost(callerID, title, content)
	if err != nil {
		log.Debug("invalid post data", slog.String("error", err.Error()))
		return nil, err
	}

	var created *domain.Post
	err = s.transactor.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		created, err = s.posts.WithTx(tx).Create(ctx, post)
		return err
	})
	if err != nil {
		log.Error("failed to save post",
			slog.String("error", err.Error()),
			slog.String("client_id", callerID.String()))
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	log.Info("post created successfully",
		slog.String("post_id", created.ID.String()),
		slog.String("client_id", callerID.String()))
	return created, nil
}

// ListPosts returns a page of the caller's posts.
func (s *PostServiceImpl) ListPosts(
	ctx context.Context,
	callerID uuid.UUID,
	offset, limit int,
) ([]*domain.Post, error) {
	return s.page(ctx, ownedBy(callerID), offset, limit)
}

// SearchPosts narrows the caller's scope by the query fields. The query can
// only add conditions to the ownership predicate, never replace it.
func (s *PostServiceImpl) SearchPosts(
	ctx context.Context,
	callerID uuid.UUID,
	query domain.PostQuery,
	offset, limit int,
) ([]*domain.Post, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	scope := ownedBy(callerID)
	if query.Title != "" {
		scope = scope.Narrow(store.Eq("title", query.Title))
	}
	if query.Content != "" {
		scope = scope.Narrow(store.Eq("content", query.Content))
	}

	return s.page(ctx, scope, offset, limit)
}

func (s *PostServiceImpl) page(ctx context.Context, scope store.Scope, offset, limit int) ([]*domain.Post, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var posts []*domain.Post
	err := s.transactor.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		posts, err = s.posts.WithTx(tx).GetMultiPaginated(ctx, offset, limit, scope.Filter())
		return err
	})
	if err != nil {
		log.Error("failed to list posts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// GetPost retrieves one of the caller's posts.
func (s *PostServiceImpl) GetPost(ctx context.Context, callerID, postID uuid.UUID) (*domain.Post, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	filter := ownedBy(callerID).Narrow(store.Eq(store.IDField, postID)).Filter()

	var post *domain.Post
	err := s.transactor.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		post, err = s.posts.WithTx(tx).GetByFilterOneOrNone(ctx, filter)
		return err
	})
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error("failed to retrieve post",
				slog.String("error", err.Error()),
				slog.String("post_id", postID.String()))
		}
		return nil, fmt.Errorf("failed to retrieve post: %w", err)
	}
	return post, nil
}

// UpdatePost replaces the title and content of one of the caller's posts.
func (s *PostServiceImpl) UpdatePost(
	ctx context.Context,
	callerID, postID uuid.UUID,
	title, content string,
) (*domain.Post, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	candidate := domain.Post{ID: postID, ClientID: callerID, Title: title, Content: content}
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.Post
	err := s.transactor.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		updated, err = s.posts.WithTx(tx).Update(ctx, postID, store.Changes{
			"title":   title,
			"content": content,
		}, ownedBy(callerID).Filter())
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Debug("attempted to update post not owned by caller",
				slog.String("post_id", postID.String()),
				slog.String("client_id", callerID.String()))
		} else {
			log.Error("failed to update post",
				slog.String("error", err.Error()),
				slog.String("post_id", postID.String()))
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	log.Info("post updated successfully", slog.String("post_id", postID.String()))
	return updated, nil
}

// DeletePost removes one of the caller's posts.
func (s *PostServiceImpl) DeletePost(ctx context.Context, callerID, postID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.transactor.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.posts.WithTx(tx).Delete(ctx, postID, ownedBy(callerID).Filter())
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Debug("attempted to delete post not owned by caller",
				slog.String("post_id", postID.String()),
				slog.String("client_id", callerID.String()))
		} else {
			log.Error("failed to delete post",
				slog.String("error", err.Error()),
				slog.String("post_id", postID.String()))
		}
		return fmt.Errorf("failed to delete post: %w", err)
	}

	log.Info("post deleted successfully", slog.String("post_id", postID.String()))
	return nil
}

// AveragePostCount reads the aggregate directly from the pool; it is a
// single read-only statement.
func (s *PostServiceImpl) AveragePostCount(ctx context.Context, clientID uuid.UUID) (float64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	average, err := s.posts.AveragePostCountPerClient(ctx, clientID)
	if err != nil {
		log.Error("failed to compute post statistics",
			slog.String("error", err.Error()),
			slog.String("client_id", clientID.String()))
		return 0, fmt.Errorf("failed to compute post statistics: %w", err)
	}
	return average, nil
}
