package httpx

import (
	"net/http"

	"github.com/cscs/firecrest-ui-api/config"
	"github.com/cscs/firecrest-ui-api/internal/http/validation"
	"github.com/cscs/firecrest-ui-api/internal/service"
)

// Healthz responds to liveness probes.
func Healthz(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ConfigHandler serves the UI-facing configuration snapshot. Only values the
// browser needs are exposed; secrets never pass through here.
type ConfigHandler struct {
	Cfg *config.AppConfig
}

// Get handles GET /api/config.
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"environment":       h.Cfg.Environment,
		"companyName":       h.Cfg.UI.CompanyName,
		"supportUrl":        h.Cfg.UI.SupportURL,
		"listPaginateLimit": h.Cfg.UI.ListPaginateLimit,
		"fileUploadLimit":   h.Cfg.UI.FileUploadLimit,
		"fileDownloadLimit": h.Cfg.UI.FileDownloadLimit,
		"maxJobScriptSize":  validation.MaxJobScriptSize,
	})
}

// NotificationHandlers exposes the session flash-message queue. The session
// is taken from the request context set by RequireSession.
type NotificationHandlers struct {
	Svc *service.NotificationService
}

type pushNotificationRequest struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Push handles POST /api/notifications.
func (h *NotificationHandlers) Push(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFromContext(r.Context())
	if !ok {
		WriteAPIError(w, r, &service.UnauthorizedError{Reason: service.ReasonInvalidToken}, ErrorOpts{})
		return
	}

	var req pushNotificationRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Message == "" {
		WriteAPIError(w, r, &validation.Error{
			Message: "missing notification message",
			Fields: []validation.FieldError{{
				Location: "body",
				Name:     "message",
				Message:  "a message is required",
			}},
		}, ErrorOpts{})
		return
	}
	if req.Type == "" {
		req.Type = "info"
	}

	notification, err := h.Svc.Push(r.Context(), session.ID, req.Type, req.Message)
	if err != nil {
		WriteAPIError(w, r, err, ErrorOpts{})
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"notification": notification})
}

// Consume handles GET /api/notifications. Pending messages are returned once
// and the queue is emptied.
func (h *NotificationHandlers) Consume(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFromContext(r.Context())
	if !ok {
		WriteAPIError(w, r, &service.UnauthorizedError{Reason: service.ReasonInvalidToken}, ErrorOpts{})
		return
	}

	notifications, err := h.Svc.Consume(r.Context(), session.ID)
	if err != nil {
		WriteAPIError(w, r, err, ErrorOpts{})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}
