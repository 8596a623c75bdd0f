package resource

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	resourceModel "github.com/arjunvk/mentorloop/internal/model/resource"
	"github.com/arjunvk/mentorloop/pkg/utils"
)

// Handler serves the read-only resource catalog.
type Handler struct {
	catalog *resourceModel.Catalog
}

// New creates the resource handler.
func New(catalog *resourceModel.Catalog) *Handler {
	return &Handler{catalog: catalog}
}

// RegisterRoutes registers the catalog routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/resources", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.catalog.List())
}
