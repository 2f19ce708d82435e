package httpx

import (
	"net/http"

	"github.com/cscs/firecrest-ui-api/internal/domain/model"
	"github.com/cscs/firecrest-ui-api/internal/firecrest"
	"github.com/cscs/firecrest-ui-api/internal/observability/errtrack"
)

// StatusHandlers provides HTTP handlers for system status endpoints.
type StatusHandlers struct {
	Svc      *firecrest.StatusAPI
	Reporter errtrack.Reporter
}

// systemView decorates a System with its aggregate health for the UI.
type systemView struct {
	model.System
	Health model.HealthStatus `json:"health"`
}

func toSystemView(s model.System) systemView {
	return systemView{System: s, Health: s.Health()}
}

// ListSystems handles GET /api/status/systems.
func (h *StatusHandlers) ListSystems(w http.ResponseWriter, r *http.Request) {
	systems, err := h.Svc.GetSystems(r.Context(), AccessTokenFromContext(r.Context()))
	if err != nil {
		WriteAPIError(w, r, err, ErrorOpts{Reporter: h.Reporter})
		return
	}

	views := make([]systemView, 0, len(systems))
	for _, s := range systems {
		views = append(views, toSystemView(s))
	}
	WriteJSON(w, http.StatusOK, map[string]any{"systems": views})
}

// GetSystem handles GET /api/status/systems/{name}.
func (h *StatusHandlers) GetSystem(w http.ResponseWriter, r *http.Request) {
	system, err := h.Svc.GetSystem(r.Context(), AccessTokenFromContext(r.Context()), r.PathValue("name"))
	if err != nil {
		WriteAPIError(w, r, err, ErrorOpts{Reporter: h.Reporter})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"system": toSystemView(*system)})
}
