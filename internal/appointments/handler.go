package appointments

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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	items, err := h.manager.List(ctx)
	if err != nil {
		transport.WriteAppError(w, log, "appointments list", err)
		return
	}

	log.Info("appointments list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, err := httpx.PathID(r)
	if err != nil {
		transport.WriteAppError(w, log, "appointments get", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.manager.Get(ctx, id)
	if err != nil {
		transport.WriteAppError(w, log, "appointments get", err)
		return
	}

	log.Info("appointments get: ok", slog.String("appointment_id", id))
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		transport.WriteAppError(w, log, "appointments create", err)
		return
	}
	if req.CreatedBy == nil {
		if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
			by := identity.UserID
			req.CreatedBy = &by
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	item, err := h.manager.Create(ctx, req)
	if err != nil {
		transport.WriteAppError(w, log, "appointments create", err)
		return
	}

	log.Info("appointments create: ok",
		slog.String("appointment_id", item.ID),
		slog.String("service_id", item.ServiceID),
		slog.Time("start_at", item.StartAt),
		slog.Time("end_at", item.EndAt),
	)
	transport.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, err := httpx.PathID(r)
	if err != nil {
		transport.WriteAppError(w, log, "appointments update", err)
		return
	}

	var req UpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		transport.WriteAppError(w, log, "appointments update", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	item, err := h.manager.Update(ctx, id, req)
	if err != nil {
		transport.WriteAppError(w, log, "appointments update", err)
		return
	}

	log.Info("appointments update: ok", slog.String("appointment_id", id), slog.String("status", item.Status))
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, err := httpx.PathID(r)
	if err != nil {
		transport.WriteAppError(w, log, "appointments delete", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.manager.Delete(ctx, id); err != nil {
		transport.WriteAppError(w, log, "appointments delete", err)
		return
	}

	log.Info("appointments delete: ok", slog.String("appointment_id", id))
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
