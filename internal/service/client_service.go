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
	"github.com/phrazzld/quill-api/internal/service/auth"
	"github.com/phrazzld/quill-api/internal/store"
)

// ClientService manages API clients. Clients it returns carry the decoded
// credential in Token; storage only ever sees the encoded form.
type ClientService interface {
	// CreateClient registers a client with the given plaintext credential.
	CreateClient(ctx context.Context, name, token string) (*domain.Client, error)

	// GetClient retrieves a client by ID.
	GetClient(ctx context.Context, id uuid.UUID) (*domain.Client, error)

	// ListClients returns a page of clients in creation order.
	ListClients(ctx context.Context, offset, limit int) ([]*domain.Client, error)

	// UpdateClient replaces a client's name and credential.
	UpdateClient(ctx context.Context, id uuid.UUID, name, token string) (*domain.Client, error)

	// DeleteClient removes a client. Posts owned by the client are kept.
	DeleteClient(ctx context.Context, id uuid.UUID) error
}

// ClientServiceImpl implements the ClientService interface
type ClientServiceImpl struct {
	clients    store.ClientRepository
	codec      auth.TokenCodec
	transactor store.Transactor
	logger     *slog.Logger
}

// NewClientService creates a new ClientService
func NewClientService(
	clients store.ClientRepository,
	codec auth.TokenCodec,
	transactor store.Transactor,
	logger *slog.Logger,
) ClientService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientServiceImpl{
		clients:    clients,
		codec:      codec,
		transactor: transactor,
		logger:     logger.With(slog.String("component", "client_service")),
	}
}

// reveal returns a copy of client with its stored token decoded.
func (s *ClientServiceImpl) reveal(client *domain.Client) (*domain.Client, error) {
	plaintext, err := s.codec.Decode(client.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to decode token of client %s: %w", client.ID, err)
	}
	out := *client
	out.Token = plaintext
	return &out, nil
}

// encode returns the stored form of token. Tokens the codec cannot represent
// come back as validation errors.
func (s *ClientServiceImpl) encode(ctx context.Context, token string) (string, error) {
	encoded, err := s.codec.Encode(token)
	if err == nil {
		return encoded, nil
	}
	if errors.Is(err, domain.ErrValidation) {
		return "", err
	}
	logger.FromContextOrDefault(ctx, s.logger).Error("failed to encode client token",
		slog.String("error", err.Error()))
	return "", fmt.Errorf("failed to encode client token: %w", err)
}

// CreateClient encodes the credential and stores the client in a transaction.
func (s *ClientServiceImpl) CreateClient(ctx context.Context, name, token string) (*domain.Client, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if token == "" {
		return nil, domain.ErrEmptyClientToken
	}
	encoded, err := s.encode(ctx, token)
	if err != nil {
		return nil, err
	}

	client, err := domain.NewClient(name, encoded)
	if err != nil {
		log.Debug("invalid client data", slog.String("error", err.Error()))
		return nil, err
	}

	var created *domain.Client
	err = s.transactor.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		created, err = s.clients.WithTx(tx).Create(ctx, client)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			log.Debug("attempted to create client with existing token", slog.String("name", name))
		} else {
			log.Error("failed to save client", slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	log.Info("client created successfully",
		slog.String("client_id", created.ID.String()),
		slog.String("name", created.Name))
	return s.reveal(created)
}

// GetClient retrieves a client by ID.
func (s *ClientServiceImpl) GetClient(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var client *domain.Client
	err := s.transactor.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		client, err = s.clients.WithTx(tx).GetByFilterOneOrNone(ctx, store.Eq(store.IDField, id))
		return err
	})
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error("failed to retrieve client",
				slog.String("error", err.Error()),
				slog.String("client_id", id.String()))
		}
		return nil, fmt.Errorf("failed to retrieve client: %w", err)
	}

	return s.reveal(client)
}

// ListClients returns a page of clients in creation order.
func (s *ClientServiceImpl) ListClients(ctx context.Context, offset, limit int) ([]*domain.Client, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var clients []*domain.Client
	err := s.transactor.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		clients, err = s.clients.WithTx(tx).GetMultiPaginated(ctx, offset, limit, nil)
		return err
	})
	if err != nil {
		log.Error("failed to list clients", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	out := make([]*domain.Client, 0, len(clients))
	for _, c := range clients {
		revealed, err := s.reveal(c)
		if err != nil {
			log.Error("failed to decode stored client token",
				slog.String("error", err.Error()),
				slog.String("client_id", c.ID.String()))
			return nil, err
		}
		out = append(out, revealed)
	}

	log.Debug("listed clients", slog.Int("count", len(out)))
	return out, nil
}

// UpdateClient replaces a client's name and credential in one statement.
func (s *ClientServiceImpl) UpdateClient(
	ctx context.Context,
	id uuid.UUID,
	name, token string,
) (*domain.Client, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if token == "" {
		return nil, domain.ErrEmptyClientToken
	}
	encoded, err := s.encode(ctx, token)
	if err != nil {
		return nil, err
	}

	candidate := domain.Client{ID: id, Name: name, Token: encoded}
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.Client
	err = s.transactor.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		updated, err = s.clients.WithTx(tx).Update(ctx, id, store.Changes{
			"name":  name,
			"token": encoded,
		}, nil)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrConflict) {
			log.Debug("client update rejected",
				slog.String("error", err.Error()),
				slog.String("client_id", id.String()))
		} else {
			log.Error("failed to update client",
				slog.String("error", err.Error()),
				slog.String("client_id", id.String()))
		}
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	log.Info("client updated successfully", slog.String("client_id", id.String()))
	return s.reveal(updated)
}

// DeleteClient removes a client in a transaction.
func (s *ClientServiceImpl) DeleteClient(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.transactor.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.clients.WithTx(tx).Delete(ctx, id, nil)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Debug("attempted to delete non-existent client", slog.String("client_id", id.String()))
		} else {
			log.Error("failed to delete client",
				slog.String("error", err.Error()),
				slog.String("client_id", id.String()))
		}
		return fmt.Errorf("failed to delete client: %w", err)
	}

	log.Info("client deleted successfully", slog.String("client_id", id.String()))
	return nil
}
