package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/quill-api/internal/api/shared"
	"github.com/phrazzld/quill-api/internal/platform/logger"
	"github.com/phrazzld/quill-api/internal/service"
)

// ClientHandler handles the administrative client routes. The master-key
// middleware guards every route.
type ClientHandler struct {
	clientService service.ClientService
	logger        *slog.Logger
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clientService service.ClientService, logger *slog.Logger) *ClientHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ClientHandler")
	}

	return &ClientHandler{
		clientService: clientService,
		logger:        logger.With(slog.String("component", "client_handler")),
	}
}

// CreateClient handles POST /clients/ requests.
func (h *ClientHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	req := newClientRequest()
	if err := decodeRequest(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	client, err := h.clientService.CreateClient(r.Context(), req.Name, req.Token)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create client")
		return
	}

	log.Info("client registered", slog.String("client_id", client.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, clientToResponse(client))
}

// GetClient handles GET /clients/?id= requests.
func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, err := getQueryUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	client, err := h.clientService.GetClient(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve client")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, clientToResponse(client))
}

// ListClients handles GET /clients/list requests. An empty page is an empty
// list, not an error.
func (h *ClientHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	offset, limit, err := getPagination(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	clients, err := h.clientService.ListClients(r.Context(), offset, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list clients")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, clientsToResponse(clients))
}

// UpdateClient handles PUT /clients/?id= requests.
func (h *ClientHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, err := getQueryUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	req := newClientRequest()
	if err := decodeRequest(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	client, err := h.clientService.UpdateClient(r.Context(), id, req.Name, req.Token)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update client")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, clientToResponse(client))
}

// DeleteClient handles DELETE /clients/?id= requests. The body is the bare
// status code.
func (h *ClientHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, err := getQueryUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.clientService.DeleteClient(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete client")
		return
	}

	log.Info("client removed", slog.String("client_id", id.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, http.StatusOK)
}
