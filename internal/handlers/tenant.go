package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/abhinawagoo/guestloops-sub000/internal/services"
	"github.com/abhinawagoo/guestloops-sub000/pkg/response"
)

type TenantHandler struct {
	tenantService *services.TenantService
}

func NewTenantHandler(tenantService *services.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

type createTenantRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required"`
}

// Create registers a new tenant
// POST /api/tenants
func (h *TenantHandler) Create(c *gin.Context) {
	var req createTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	tenant, err := h.tenantService.Create(req.Name, req.Slug)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Created(c, tenant)
}

// List returns all tenants
// GET /api/tenants
func (h *TenantHandler) List(c *gin.Context) {
	tenants, err := h.tenantService.List()
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, tenants)
}

// GetByID returns a tenant by ID
// GET /api/tenants/:id
func (h *TenantHandler) GetByID(c *gin.Context) {
	tenant, err := h.tenantService.ResolveByID(c.Param("id"))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	if tenant == nil {
		response.NotFound(c, "tenant not found")
		return
	}

	response.Success(c, tenant)
}

type updateTenantStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus activates or suspends a tenant
// PUT /api/tenants/:id/status
func (h *TenantHandler) UpdateStatus(c *gin.Context) {
	var req updateTenantStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	tenant, err := h.tenantService.UpdateStatus(c.Param("id"), req.Status)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if tenant == nil {
		response.NotFound(c, "tenant not found")
		return
	}

	response.Success(c, tenant)
}

// GetBySlug returns the public profile of a tenant
// GET /api/public/tenants/:slug
func (h *TenantHandler) GetBySlug(c *gin.Context) {
	tenant, err := h.tenantService.ResolveBySlug(c.Param("slug"))
	if err != nil {
		response.ServerError(c, "temporarily unavailable")
		return
	}
	if tenant == nil {
		response.NotFound(c, "tenant not found")
		return
	}

	response.Success(c, gin.H{
		"id":     tenant.ID,
		"slug":   tenant.Slug,
		"name":   tenant.Name,
		"status": tenant.Status,
	})
}
