package importer

import (
	"net/http"

	"maintainops/pkg/health"
	"maintainops/pkg/middleware"
	"maintainops/services/tenant"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Handler struct {
	service   *Service
	scheduler *Scheduler
}

type HandlerParams struct {
	fx.In

	Service   *Service
	Scheduler *Scheduler
}

func NewHandler(p HandlerParams) *Handler {
	return &Handler{
		service:   p.Service,
		scheduler: p.Scheduler,
	}
}

// ProvideRouter builds the gin engine serving the import API, the tenant
// admin surface and health probes.
func ProvideRouter(h *Handler, th *tenant.Handler, hc health.HealthService) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Error())

	r.GET("/healthz/live", hc.Liveness)
	r.GET("/healthz/ready", hc.Readiness)

	v1 := r.Group("/v1/imports", middleware.Tenant())
	{
		v1.POST("", h.Create)
		v1.GET("", h.List)
		v1.GET("/:id", h.Get)
		v1.POST("/dispatch", h.Dispatch)
		v1.POST("/recover", h.Recover)
	}

	// Tenant provisioning is an operator surface and is not scoped by the
	// tenant header.
	tenants := r.Group("/v1/tenants")
	{
		tenants.POST("", th.Create)
		tenants.GET("", th.List)
		tenants.GET("/:id", th.Get)
	}

	return r
}

func (h *Handler) Create(c *gin.Context) {
	tenantID := middleware.TenantID(c)

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "BAD_REQUEST", "message": "invalid multipart form"},
		})
		return
	}

	files := form.File["files"]
	rawKind := c.PostForm("type")

	jobs, err := h.service.CreateJobs(c.Request.Context(), tenantID, rawKind, files)
	if err != nil {
		_ = c.Error(err)
		return
	}

	ids := make([]string, 0, len(jobs))
	for _, job := range jobs {
		ids = append(ids, job.ID)
	}

	c.JSON(http.StatusAccepted, gin.H{
		"jobIds": ids,
		"jobs":   jobs,
	})
}

func (h *Handler) List(c *gin.Context) {
	jobs, err := h.service.ListJobs(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func (h *Handler) Get(c *gin.Context) {
	job, err := h.service.GetJob(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// Dispatch triggers one scheduling pass immediately.
func (h *Handler) Dispatch(c *gin.Context) {
	report, err := h.scheduler.RunBatch(c.Request.Context())
	if err != nil {
		zap.L().Error("manual dispatch failed", zap.Error(err))
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Recover resets the calling tenant's stale processing jobs to pending.
func (h *Handler) Recover(c *gin.Context) {
	reset, err := h.scheduler.RecoverStale(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		zap.L().Error("manual recovery failed", zap.Error(err))
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reset": reset})
}
