package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/abhinawagoo/guestloops-sub000/internal/models"
	"github.com/abhinawagoo/guestloops-sub000/internal/services"
	"github.com/abhinawagoo/guestloops-sub000/pkg/response"
)

type GrowthScoreHandler struct {
	tenantService *services.TenantService
	scoreService  *services.GrowthScoreService
}

func NewGrowthScoreHandler(tenantService *services.TenantService, scoreService *services.GrowthScoreService) *GrowthScoreHandler {
	return &GrowthScoreHandler{
		tenantService: tenantService,
		scoreService:  scoreService,
	}
}

// Compute recomputes the growth score for a tenant
// POST /api/tenants/:id/growth-score/compute?window_days=30
func (h *GrowthScoreHandler) Compute(c *gin.Context) {
	score, err := h.scoreService.Compute(c.Request.Context(), c.Param("id"), windowDaysParam(c))
	if err != nil {
		if errors.Is(err, services.ErrTenantNotFound) {
			response.NotFound(c, "tenant not found")
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, score)
}

// Get returns the last stored growth score for a tenant
// GET /api/tenants/:id/growth-score
func (h *GrowthScoreHandler) Get(c *gin.Context) {
	score, err := h.scoreService.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrTenantNotFound) {
			response.NotFound(c, "tenant not found")
			return
		}
		response.ServerError(c, err.Error())
		return
	}
	if score == nil {
		response.NotFound(c, "no growth score computed yet")
		return
	}

	response.Success(c, score)
}

// GetPublic computes and returns the growth score for a tenant resolved by
// slug. Scoring is request-driven, so the public read always reflects the
// records visible at request time.
// GET /api/public/tenants/:slug/growth-score?window_days=30
func (h *GrowthScoreHandler) GetPublic(c *gin.Context) {
	tenant, err := h.tenantService.ResolveBySlug(c.Param("slug"))
	if err != nil {
		response.ServerError(c, "temporarily unavailable")
		return
	}
	if tenant == nil {
		response.NotFound(c, "tenant not found")
		return
	}
	if tenant.Status != models.TenantStatusActive {
		response.NotFound(c, "tenant not found")
		return
	}

	score, err := h.scoreService.Compute(c.Request.Context(), tenant.ID, windowDaysParam(c))
	if err != nil {
		if errors.Is(err, services.ErrTenantNotFound) {
			response.NotFound(c, "tenant not found")
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, score)
}

// windowDaysParam parses the optional window_days query parameter; the
// service clamps whatever comes back.
func windowDaysParam(c *gin.Context) int {
	raw := c.Query("window_days")
	if raw == "" {
		return services.DefaultWindowDays
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return services.DefaultWindowDays
	}
	return days
}
