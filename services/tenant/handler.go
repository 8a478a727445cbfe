package tenant

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// Handler is the tenant admin surface: provisioning and lookup for the
// partitions the import pipeline writes into.
type Handler struct {
	service *Service
}

type HandlerParams struct {
	fx.In

	Service *Service
}

func NewHandler(p HandlerParams) *Handler {
	return &Handler{service: p.Service}
}

type createTenantRequest struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Timezone string `json:"timezone"`
}

func (h *Handler) Create(c *gin.Context) {
	var req createTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "BAD_REQUEST", "message": "invalid request body"},
		})
		return
	}

	t, err := h.service.CreateTenant(c.Request.Context(), req.Name, req.Slug, req.Timezone)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) List(c *gin.Context) {
	tenants, err := h.service.ListTenants(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenants": tenants})
}

func (h *Handler) Get(c *gin.Context) {
	t, err := h.service.GetTenant(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, t)
}
