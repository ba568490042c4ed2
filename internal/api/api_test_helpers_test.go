package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phrazzld/quill-api/internal/api/shared"
	"github.com/phrazzld/quill-api/internal/config"
	"github.com/phrazzld/quill-api/internal/domain"
	"github.com/phrazzld/quill-api/internal/platform/memory"
	"github.com/phrazzld/quill-api/internal/service"
	"github.com/phrazzld/quill-api/internal/service/auth"
	"github.com/phrazzld/quill-api/internal/store"
	"github.com/stretchr/testify/require"
)

const testEncryptionKey = "thisisasecretkeythatis32charslong!!"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// handlerFixture wires real services over a fresh in-memory store.
type handlerFixture struct {
	mem           *memory.Store
	codec         auth.TokenCodec
	clientService service.ClientService
	postService   service.PostService
	clients       *ClientHandler
	posts         *PostHandler
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	codec, err := auth.NewTokenCodec(config.AuthConfig{EncryptionKey: testEncryptionKey})
	require.NoError(t, err)

	mem := memory.New(nil)
	clientService := service.NewClientService(mem.Clients(), codec, mem, nil)
	postService := service.NewPostService(mem.Posts(), mem, nil)

	return &handlerFixture{
		mem:           mem,
		codec:         codec,
		clientService: clientService,
		postService:   postService,
		clients:       NewClientHandler(clientService, testLogger()),
		posts:         NewPostHandler(postService, testLogger()),
	}
}

// createClient registers a client through the service and returns it with
// its plaintext token.
func (f *handlerFixture) createClient(t *testing.T, name, token string) *domain.Client {
	t.Helper()
	client, err := f.clientService.CreateClient(context.Background(), name, token)
	require.NoError(t, err)
	return client
}

func (f *handlerFixture) createPost(t *testing.T, owner *domain.Client, title, content string) *domain.Post {
	t.Helper()
	post, err := f.postService.CreatePost(context.Background(), owner.ID, title, content)
	require.NoError(t, err)
	return post
}

// failingTransactor fails every unit of work without running it.
type failingTransactor struct {
	err error
}

func (f failingTransactor) RunInTransaction(context.Context, store.TxFn) error {
	return f.err
}

// serve invokes handler with an optional JSON body and, when caller is set,
// the caller placed in the context as the bearer middleware would.
func serve(
	handler http.HandlerFunc,
	method, target, body string,
	caller *domain.Client,
) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if caller != nil {
		req = req.WithContext(shared.WithClient(req.Context(), caller))
	}

	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), "body: %s", rr.Body.String())
	return v
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[shared.ErrorResponse](t, rr).Error
}
