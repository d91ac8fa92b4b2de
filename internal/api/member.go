package api

import (
	"github.com/gin-gonic/gin"
	"github.com/lalith-99/tasklane/internal/models"
	"github.com/lalith-99/tasklane/internal/service"
)

// MemberHandler manages the users of one tenant under
// /tenants/:id/users.
type MemberHandler struct {
	svc *service.UserService
}

func NewMemberHandler(svc *service.UserService) *MemberHandler {
	return &MemberHandler{svc: svc}
}

type addMemberRequest struct {
	Email    string `json:"email" binding:"omitempty,email,max=254"`
	Password string `json:"password" binding:"max=72"`
	Name     string `json:"name" binding:"max=200"`
	Role     string `json:"role" binding:"omitempty,oneof=TENANT_ADMIN USER"`
}

type listMembersQuery struct {
	Role   string `form:"role" binding:"omitempty,oneof=SUPER_ADMIN TENANT_ADMIN USER"`
	Search string `form:"search" binding:"max=200"`
	pageQuery
}

type memberListData struct {
	Users      []models.User      `json:"users"`
	Total      int                `json:"total"`
	Pagination service.Pagination `json:"pagination"`
}

// Add handles POST /api/tenants/:id/users
func (h *MemberHandler) Add(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	tenantID, ok := uuidParam(c, "id", "tenant")
	if !ok {
		return
	}

	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, bindMessage(err))
		return
	}

	user, err := h.svc.Add(c.Request.Context(), p, tenantID, service.AddUserInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "User added successfully", user)
}

// List handles GET /api/tenants/:id/users
func (h *MemberHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	tenantID, ok := uuidParam(c, "id", "tenant")
	if !ok {
		return
	}

	var q listMembersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBadRequest(c, bindMessage(err))
		return
	}

	list, err := h.svc.List(c.Request.Context(), p, tenantID, service.UserListParams{
		Role:        q.Role,
		Search:      q.Search,
		PageRequest: q.request(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", memberListData{
		Users:      list.Users,
		Total:      list.Total,
		Pagination: list.Pagination,
	})
}
