package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nv0skar/Noisier/internal/application/registry"
	"github.com/nv0skar/Noisier/internal/domain/endpoint"
)

// EndpointSummary is the public description of an endpoint. Queries are never
// exposed.
type EndpointSummary struct {
	Name              string              `json:"name"`
	Route             string              `json:"route"`
	Method            endpoint.HttpMethod `json:"method"`
	Description       string              `json:"description,omitempty"`
	RequestBodyParams []string            `json:"requestBodyParams,omitempty"`
	RequiredAuth      bool                `json:"requiredAuth"`
	AllowedRoles      []string            `json:"allowedRoles,omitempty"`
}

// Summarize lists the registry's endpoints in registration order
func Summarize(reg *registry.Registry) []EndpointSummary {
	entries := reg.All()
	out := make([]EndpointSummary, 0, len(entries))
	for _, e := range entries {
		out = append(out, EndpointSummary{
			Name:              e.Name,
			Route:             e.Pattern.String(),
			Method:            e.Definition.Method,
			Description:       e.Definition.Description,
			RequestBodyParams: e.Definition.RequestBodyParams,
			RequiredAuth:      e.Definition.RequiredAuth,
			AllowedRoles:      e.Definition.AllowedRoles,
		})
	}
	return out
}

type SummaryHandler struct {
	registry *registry.Registry
}

func NewSummaryHandler(reg *registry.Registry) *SummaryHandler {
	return &SummaryHandler{registry: reg}
}

// Get handles GET {prefix}
func (h *SummaryHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"endpoints": Summarize(h.registry)})
}
