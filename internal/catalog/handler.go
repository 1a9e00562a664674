package catalog

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"booking-api/internal/httpx"
	"booking-api/internal/middleware"
	"booking-api/internal/transport"
)

type Handler struct {
	manager *Manager
	log     *slog.Logger
}

func NewHandler(manager *Manager, log *slog.Logger) *Handler {
	return &Handler{
		manager: manager,
		log:     log,
	}
}

func (h *Handler) ListProviders(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, err := h.manager.ListProviders(ctx)
	if err != nil {
		transport.WriteAppError(w, log, "providers list", err)
		return
	}

	log.Info("providers list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) GetProvider(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, err := httpx.PathID(r)
	if err != nil {
		transport.WriteAppError(w, log, "providers get", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.manager.GetProvider(ctx, id)
	if err != nil {
		transport.WriteAppError(w, log, "providers get", err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) CreateProvider(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req ProviderCreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		transport.WriteAppError(w, log, "providers create", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	item, err := h.manager.CreateProvider(ctx, req)
	if err != nil {
		transport.WriteAppError(w, log, "providers create", err)
		return
	}

	log.Info("providers create: ok", slog.String("provider_id", item.ID))
	transport.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) UpdateProvider(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, err := httpx.PathID(r)
	if err != nil {
		transport.WriteAppError(w, log, "providers update", err)
		return
	}

	var req ProviderUpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		transport.WriteAppError(w, log, "providers update", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	item, err := h.manager.UpdateProvider(ctx, id, req)
	if err != nil {
		transport.WriteAppError(w, log, "providers update", err)
		return
	}

	log.Info("providers update: ok", slog.String("provider_id", id))
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) DeleteProvider(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, err := httpx.PathID(r)
	if err != nil {
		transport.WriteAppError(w, log, "providers delete", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.manager.DeleteProvider(ctx, id); err != nil {
		transport.WriteAppError(w, log, "providers delete", err)
		return
	}

	log.Info("providers delete: ok", slog.String("provider_id", id))
	transport.WriteNoContent(w)
}

func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, err := h.manager.ListServices(ctx)
	if err != nil {
		transport.WriteAppError(w, log, "services list", err)
		return
	}

	log.Info("services list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, err := httpx.PathID(r)
	if err != nil {
		transport.WriteAppError(w, log, "services get", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.manager.GetService(ctx, id)
	if err != nil {
		transport.WriteAppError(w, log, "services get", err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req ServiceCreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		transport.WriteAppError(w, log, "services create", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	item, err := h.manager.CreateService(ctx, req)
	if err != nil {
		transport.WriteAppError(w, log, "services create", err)
		return
	}

	log.Info("services create: ok", slog.String("service_id", item.ID), slog.Int("duration_min", item.DurationMin))
	transport.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, err := httpx.PathID(r)
	if err != nil {
		transport.WriteAppError(w, log, "services update", err)
		return
	}

	var req ServiceUpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		transport.WriteAppError(w, log, "services update", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	item, err := h.manager.UpdateService(ctx, id, req)
	if err != nil {
		transport.WriteAppError(w, log, "services update", err)
		return
	}

	log.Info("services update: ok", slog.String("service_id", id))
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, err := httpx.PathID(r)
	if err != nil {
		transport.WriteAppError(w, log, "services delete", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.manager.DeleteService(ctx, id); err != nil {
		transport.WriteAppError(w, log, "services delete", err)
		return
	}

	log.Info("services delete: ok", slog.String("service_id", id))
	transport.WriteNoContent(w)
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return h.log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
