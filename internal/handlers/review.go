package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/abhinawagoo/guestloops-sub000/internal/services"
	"github.com/abhinawagoo/guestloops-sub000/pkg/response"
)

type ReviewHandler struct {
	tenantService *services.TenantService
	reviewService *services.ReviewService
}

func NewReviewHandler(tenantService *services.TenantService, reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		tenantService: tenantService,
		reviewService: reviewService,
	}
}

type syncReviewsRequest struct {
	Reviews []services.SyncReviewInput `json:"reviews" binding:"required"`
}

// Sync ingests a batch of reviews pulled from an external platform. Existing
// reviews are updated only when their content changed.
// POST /api/tenants/:id/reviews/sync
func (h *ReviewHandler) Sync(c *gin.Context) {
	tenant, err := h.tenantService.ResolveByID(c.Param("id"))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	if tenant == nil {
		response.NotFound(c, "tenant not found")
		return
	}

	var req syncReviewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	synced, err := h.reviewService.Sync(tenant.ID, req.Reviews)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, gin.H{"synced": synced})
}

// List returns a tenant's reviews, newest first
// GET /api/tenants/:id/reviews
func (h *ReviewHandler) List(c *gin.Context) {
	tenant, err := h.tenantService.ResolveByID(c.Param("id"))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	if tenant == nil {
		response.NotFound(c, "tenant not found")
		return
	}

	reviews, err := h.reviewService.ListByTenant(tenant.ID)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, reviews)
}

type replyRequest struct {
	Reply string `json:"reply" binding:"required"`
}

// Reply records the business reply to a review
// POST /api/tenants/:id/reviews/:reviewID/reply
func (h *ReviewHandler) Reply(c *gin.Context) {
	tenant, err := h.tenantService.ResolveByID(c.Param("id"))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	if tenant == nil {
		response.NotFound(c, "tenant not found")
		return
	}

	var req replyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	review, err := h.reviewService.Reply(tenant.ID, c.Param("reviewID"), req.Reply)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	if review == nil {
		response.NotFound(c, "review not found")
		return
	}

	response.Success(c, review)
}
