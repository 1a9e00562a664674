package users

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"booking-api/internal/apperr"
	"booking-api/internal/authz"
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

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		transport.WriteAppError(w, log, "auth register", err)
		return
	}

	var caller *authz.Identity
	if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
		caller = &identity
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	resp, err := h.manager.Register(ctx, req, caller)
	if err != nil {
		transport.WriteAppError(w, log, "auth register", err)
		return
	}

	log.Info("auth register: ok", slog.String("user_id", resp.User.ID), slog.String("role", resp.User.Role))
	transport.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		transport.WriteAppError(w, log, "auth login", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	resp, err := h.manager.Login(ctx, req)
	if err != nil {
		transport.WriteAppError(w, log, "auth login", err)
		return
	}

	log.Info("auth login: ok", slog.String("user_id", resp.User.ID))
	transport.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Google(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req GoogleLoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		transport.WriteAppError(w, log, "auth google", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	resp, err := h.manager.LoginWithGoogle(ctx, req.IDToken)
	if err != nil {
		transport.WriteAppError(w, log, "auth google", err)
		return
	}

	log.Info("auth google: ok", slog.String("user_id", resp.User.ID))
	transport.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	items, err := h.manager.List(ctx)
	if err != nil {
		transport.WriteAppError(w, log, "users list", err)
		return
	}

	log.Info("users list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, err := httpx.PathID(r)
	if err != nil {
		transport.WriteAppError(w, log, "users get", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := h.manager.Get(ctx, id)
	if err != nil {
		transport.WriteAppError(w, log, "users get", err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		transport.WriteAppError(w, log, "users create", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	user, err := h.manager.Create(ctx, req)
	if err != nil {
		transport.WriteAppError(w, log, "users create", err)
		return
	}

	log.Info("users create: ok", slog.String("user_id", user.ID), slog.String("role", user.Role))
	transport.WriteJSON(w, http.StatusCreated, user)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, err := httpx.PathID(r)
	if err != nil {
		transport.WriteAppError(w, log, "users update", err)
		return
	}

	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		transport.WriteAppError(w, log, "users update", apperr.Unauthorized("Authentication required"))
		return
	}

	var req UpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		transport.WriteAppError(w, log, "users update", err)
		return
	}
	if dropped := req.Restrict(&identity); len(dropped) > 0 {
		log.Info("users update: dropped restricted fields", slog.String("user_id", id), slog.Any("fields", dropped))
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	user, err := h.manager.Update(ctx, id, req)
	if err != nil {
		transport.WriteAppError(w, log, "users update", err)
		return
	}

	log.Info("users update: ok", slog.String("user_id", id))
	transport.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, err := httpx.PathID(r)
	if err != nil {
		transport.WriteAppError(w, log, "users delete", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.manager.Delete(ctx, id); err != nil {
		transport.WriteAppError(w, log, "users delete", err)
		return
	}

	log.Info("users delete: ok", slog.String("user_id", id))
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
