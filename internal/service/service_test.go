package service

import (
	"context"
	"testing"

	"github.com/phrazzld/quill-api/internal/config"
	"github.com/phrazzld/quill-api/internal/platform/memory"
	"github.com/phrazzld/quill-api/internal/service/auth"
	"github.com/phrazzld/quill-api/internal/store"
	"github.com/stretchr/testify/require"
)

const testEncryptionKey = "thisisasecretkeythatis32charslong!!"

// countingTransactor wraps a Transactor and records how often it was used.
type countingTransactor struct {
	store.Transactor
	calls int
}

func (c *countingTransactor) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	c.calls++
	return c.Transactor.RunInTransaction(ctx, fn)
}

// fixture wires both services over a fresh in-memory store.
type fixture struct {
	mem        *memory.Store
	codec      auth.TokenCodec
	transactor *countingTransactor
	clients    ClientService
	posts      PostService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	codec, err := auth.NewTokenCodec(config.AuthConfig{EncryptionKey: testEncryptionKey})
	require.NoError(t, err)

	mem := memory.New(nil)
	tx := &countingTransactor{Transactor: mem}
	return &fixture{
		mem:        mem,
		codec:      codec,
		transactor: tx,
		clients:    NewClientService(mem.Clients(), codec, tx, nil),
		posts:      NewPostService(mem.Posts(), tx, nil),
	}
}

// failingTransactor fails every unit of work without running it.
type failingTransactor struct {
	err error
}

func (f failingTransactor) RunInTransaction(context.Context, store.TxFn) error {
	return f.err
}

