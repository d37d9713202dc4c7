package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/abhinawagoo/guestloops-sub000/internal/models"
	"github.com/abhinawagoo/guestloops-sub000/internal/services"
	"github.com/abhinawagoo/guestloops-sub000/pkg/response"
)

type FeedbackHandler struct {
	tenantService   *services.TenantService
	feedbackService *services.FeedbackService
}

func NewFeedbackHandler(tenantService *services.TenantService, feedbackService *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{
		tenantService:   tenantService,
		feedbackService: feedbackService,
	}
}

// Submit accepts a guest feedback submission for a tenant
// POST /api/public/tenants/:slug/feedback
func (h *FeedbackHandler) Submit(c *gin.Context) {
	tenant, ok := h.resolveActiveTenant(c)
	if !ok {
		return
	}

	var req services.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	feedback, err := h.feedbackService.Create(tenant.ID, &req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Created(c, feedback)
}

// List returns a tenant's feedback, newest first
// GET /api/tenants/:id/feedback
func (h *FeedbackHandler) List(c *gin.Context) {
	tenant, err := h.tenantService.ResolveByID(c.Param("id"))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	if tenant == nil {
		response.NotFound(c, "tenant not found")
		return
	}

	feedbacks, err := h.feedbackService.ListByTenant(tenant.ID)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, feedbacks)
}

// resolveActiveTenant resolves the :slug route param and rejects suspended
// tenants. Resolution failure from the store maps to 500, absence to 404.
func (h *FeedbackHandler) resolveActiveTenant(c *gin.Context) (*models.Tenant, bool) {
	tenant, err := h.tenantService.ResolveBySlug(c.Param("slug"))
	if err != nil {
		response.ServerError(c, "temporarily unavailable")
		return nil, false
	}
	if tenant == nil {
		response.NotFound(c, "tenant not found")
		return nil, false
	}
	if tenant.Status != models.TenantStatusActive {
		response.Forbidden(c, "tenant is suspended")
		return nil, false
	}
	return tenant, true
}
