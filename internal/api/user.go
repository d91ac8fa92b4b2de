package api

import (
	"github.com/gin-gonic/gin"
	"github.com/lalith-99/tasklane/internal/service"
)

// UserHandler serves /users/:id. Listing and creation live under the
// tenant, see MemberHandler.
type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

type updateUserRequest struct {
	Name *string `json:"name" binding:"omitempty,max=200"`
	Role *string `json:"role" binding:"omitempty,oneof=SUPER_ADMIN TENANT_ADMIN USER"`
}

// Update handles PUT /api/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "user")
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, bindMessage(err))
		return
	}

	user, err := h.svc.Update(c.Request.Context(), p, id, service.UpdateUserInput{
		Name: req.Name,
		Role: req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "User updated successfully", user)
}

// Delete handles DELETE /api/users/:id. Tasks assigned to the user become
// unassigned.
func (h *UserHandler) Delete(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "user")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), p, id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "User deleted successfully", nil)
}
