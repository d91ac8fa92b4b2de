package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/tasklane/internal/models"
	"github.com/lalith-99/tasklane/internal/service"
)

type TenantHandler struct {
	svc *service.TenantService
}

func NewTenantHandler(svc *service.TenantService) *TenantHandler {
	return &TenantHandler{svc: svc}
}

type updateTenantRequest struct {
	Name   *string `json:"name" binding:"omitempty,max=200"`
	PlanID *string `json:"planId" binding:"omitempty,uuid"`
}

type tenantPagination struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalTenants int `json:"totalTenants"`
	Limit        int `json:"limit"`
}

type tenantListData struct {
	Tenants    []models.TenantDetail `json:"tenants"`
	Pagination tenantPagination      `json:"pagination"`
}

// List handles GET /api/tenants (SUPER_ADMIN)
func (h *TenantHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBadRequest(c, bindMessage(err))
		return
	}

	list, err := h.svc.List(c.Request.Context(), p, q.request())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", tenantListData{
		Tenants: list.Tenants,
		Pagination: tenantPagination{
			CurrentPage:  list.Pagination.CurrentPage,
			TotalPages:   list.Pagination.TotalPages,
			TotalTenants: list.Total,
			Limit:        list.Pagination.Limit,
		},
	})
}

// Get handles GET /api/tenants/:id
func (h *TenantHandler) Get(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "tenant")
	if !ok {
		return
	}

	detail, err := h.svc.Get(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", detail)
}

// Update handles PUT /api/tenants/:id
func (h *TenantHandler) Update(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "tenant")
	if !ok {
		return
	}

	var req updateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, bindMessage(err))
		return
	}

	in := service.UpdateTenantInput{Name: req.Name}
	if req.PlanID != nil {
		planID := uuid.MustParse(*req.PlanID)
		in.PlanID = &planID
	}

	tenant, err := h.svc.Update(c.Request.Context(), p, id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Tenant updated successfully", tenant)
}
