package api

import (
	"github.com/gin-gonic/gin"
	"github.com/lalith-99/tasklane/internal/models"
	"github.com/lalith-99/tasklane/internal/service"
)

// ProjectHandler serves /projects. Tenant isolation is enforced by the
// service; the handler only binds input and shapes the response.
type ProjectHandler struct {
	svc *service.ProjectService
}

func NewProjectHandler(svc *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

type createProjectRequest struct {
	Name        string  `json:"name" binding:"max=200"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
}

type updateProjectRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=200"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	Status      *string `json:"status" binding:"omitempty,oneof=active archived completed"`
}

type listProjectsQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=active archived completed"`
	Search string `form:"search" binding:"max=200"`
	pageQuery
}

type projectListData struct {
	Projects   []models.Project   `json:"projects"`
	Total      int                `json:"total"`
	Pagination service.Pagination `json:"pagination"`
}

// List handles GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var q listProjectsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBadRequest(c, bindMessage(err))
		return
	}

	list, err := h.svc.List(c.Request.Context(), p, service.ProjectListParams{
		Status:      q.Status,
		Search:      q.Search,
		PageRequest: q.request(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "", projectListData{
		Projects:   list.Projects,
		Total:      list.Total,
		Pagination: list.Pagination,
	})
}

// Create handles POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, bindMessage(err))
		return
	}

	project, err := h.svc.Create(c.Request.Context(), p, service.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "Project created successfully", gin.H{"project": project})
}

// Get handles GET /api/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "project")
	if !ok {
		return
	}

	project, err := h.svc.Get(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", project)
}

// Update handles PUT /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "project")
	if !ok {
		return
	}

	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, bindMessage(err))
		return
	}

	project, err := h.svc.Update(c.Request.Context(), p, id, service.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Project updated successfully", project)
}

// Delete handles DELETE /api/projects/:id. Its tasks go with it.
func (h *ProjectHandler) Delete(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "project")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), p, id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Project deleted successfully", nil)
}
