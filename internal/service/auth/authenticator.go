package auth

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/quill-api/internal/domain"
	"github.com/phrazzld/quill-api/internal/platform/logger"
	"github.com/phrazzld/quill-api/internal/store"
)

// ClientAuthenticator resolves bearer credentials to the clients that own them.
type ClientAuthenticator struct {
	codec      TokenCodec
	clients    store.ClientRepository
	transactor store.Transactor
	logger     *slog.Logger
}

// NewClientAuthenticator creates a ClientAuthenticator.
// If logger is nil, a default logger will be used.
func NewClientAuthenticator(
	codec TokenCodec,
	clients store.ClientRepository,
	transactor store.Transactor,
	logger *slog.Logger,
) *ClientAuthenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientAuthenticator{
		codec:      codec,
		clients:    clients,
		transactor: transactor,
		logger:     logger.With(slog.String("component", "client_authenticator")),
	}
}

// Authenticate returns the client whose stored token is the encoding of
// credential.
//
// An empty credential fails with ErrAuthenticationRequired. An unknown
// credential, or one the codec cannot encode, fails with
// ErrAuthenticationFailed. Storage faults are returned as store errors.
// The lookup holds its own transaction, released before the request's
// service call acquires one.
func (a *ClientAuthenticator) Authenticate(ctx context.Context, credential string) (*domain.Client, error) {
	log := logger.FromContextOrDefault(ctx, a.logger)

	if credential == "" {
		return nil, ErrAuthenticationRequired
	}

	encoded, err := a.codec.Encode(credential)
	if err != nil {
		log.Warn("failed to encode presented credential", slog.String("error", err.Error()))
		return nil, ErrAuthenticationFailed
	}

	var client *domain.Client
	err = a.transactor.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		client, err = a.clients.WithTx(tx).GetByFilterOneOrNone(ctx, store.Eq("token", encoded))
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Debug("no client matches presented credential")
			return nil, ErrAuthenticationFailed
		}
		log.Error("failed to look up client by token", slog.String("error", err.Error()))
		return nil, err
	}

	return client, nil
}
