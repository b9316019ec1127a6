package notificationshandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"dotplatform/internal/domain/notifications"
	"dotplatform/internal/transport/http/api"
	"dotplatform/internal/transport/http/middleware"
	"dotplatform/internal/transport/http/shared"
)

type Handler struct {
	Service *notifications.Service
}

func NewHandler(service *notifications.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/{notificationID}/read", h.handleMarkRead)
	})
}

func userParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	v := shared.NewValidator()
	v.Required("userId", userID, "is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return "", false
	}
	return userID, true
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := userParam(w, r)
	if !ok {
		return
	}

	page := shared.ParsePagination(r, notifications.DefaultLimit, notifications.MaxLimit)
	total, err := h.Service.Count(r.Context(), userID)
	if err != nil {
		slog.Warn("notification count failed", "userId", userID, "err", err)
	}

	items, err := h.Service.List(r.Context(), userID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "notification_list_failed", "failed to list notifications", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := userParam(w, r)
	if !ok {
		return
	}

	notificationID := chi.URLParam(r, "notificationID")
	if err := h.Service.MarkRead(r.Context(), userID, notificationID); err != nil {
		if errors.Is(err, notifications.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "notification_not_found", "notification not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "notification_update_failed", "failed to update notification", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, map[string]string{"status": "read"}, middleware.GetRequestID(r.Context()))
}
