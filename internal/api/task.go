package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/tasklane/internal/models"
	"github.com/lalith-99/tasklane/internal/service"
)

// TaskHandler serves the task routes, both the ones nested under a project
// and the ones addressed by task id.
type TaskHandler struct {
	svc *service.TaskService
}

func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// optionalUUID tells an absent field apart from an explicit null.
type optionalUUID struct {
	Set   bool
	Null  bool
	Value uuid.UUID
}

func (o *optionalUUID) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(b, []byte("null")) {
		o.Null = true
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.New("assigneeId must be a string")
	}
	if s == "" {
		o.Null = true
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return errors.New("assigneeId must be a valid id")
	}
	o.Value = id
	return nil
}

func (o optionalUUID) ptr() *uuid.UUID {
	if !o.Set || o.Null {
		return nil
	}
	id := o.Value
	return &id
}

// dueDate accepts a full RFC 3339 timestamp or a bare calendar date. Like
// optionalUUID it tells an absent field apart from null or "".
type dueDate struct {
	time.Time
	Set  bool
	Null bool
}

func (d *dueDate) UnmarshalJSON(b []byte) error {
	d.Set = true
	if bytes.Equal(b, []byte("null")) {
		d.Null = true
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.New("dueDate must be a string")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		d.Null = true
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return errors.New("dueDate must be a date (YYYY-MM-DD) or an RFC 3339 timestamp")
}

func (d dueDate) ptr() *time.Time {
	if !d.Set || d.Null {
		return nil
	}
	t := d.Time
	return &t
}

type createTaskRequest struct {
	Title       string       `json:"title" binding:"max=500"`
	Description *string      `json:"description" binding:"omitempty,max=10000"`
	AssigneeID  optionalUUID `json:"assigneeId"`
	Priority    string       `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate     dueDate      `json:"dueDate"`
}

type updateTaskRequest struct {
	Title       *string      `json:"title" binding:"omitempty,max=500"`
	Description *string      `json:"description" binding:"omitempty,max=10000"`
	Status      *string      `json:"status" binding:"omitempty,oneof=todo inprogress completed"`
	Priority    *string      `json:"priority" binding:"omitempty,oneof=low medium high"`
	AssigneeID  optionalUUID `json:"assigneeId"`
	DueDate     dueDate      `json:"dueDate"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"omitempty,oneof=todo inprogress completed"`
}

type listTasksQuery struct {
	Status     string `form:"status" binding:"omitempty,oneof=todo inprogress completed"`
	AssignedTo string `form:"assignedTo" binding:"omitempty,uuid"`
	Search     string `form:"search" binding:"max=200"`
	pageQuery
}

type taskListData struct {
	Tasks      []models.Task      `json:"tasks"`
	Total      int                `json:"total"`
	Pagination service.Pagination `json:"pagination"`
}

// Create handles POST /api/projects/:id/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id", "project")
	if !ok {
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, taskBindMessage(err))
		return
	}

	task, err := h.svc.Create(c.Request.Context(), p, projectID, service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID.ptr(),
		Priority:    req.Priority,
		DueDate:     req.DueDate.ptr(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "Task created successfully", gin.H{"task": task})
}

// List handles GET /api/projects/:id/tasks
func (h *TaskHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id", "project")
	if !ok {
		return
	}

	var q listTasksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBadRequest(c, bindMessage(err))
		return
	}

	params := service.TaskListParams{
		Status:      q.Status,
		Search:      q.Search,
		PageRequest: q.request(),
	}
	if q.AssignedTo != "" {
		// Already validated by the binding.
		id := uuid.MustParse(q.AssignedTo)
		params.AssignedTo = &id
	}

	list, err := h.svc.List(c.Request.Context(), p, projectID, params)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", taskListData{
		Tasks:      list.Tasks,
		Total:      list.Total,
		Pagination: list.Pagination,
	})
}

// Get handles GET /api/tasks/:taskId
func (h *TaskHandler) Get(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	taskID, ok := uuidParam(c, "taskId", "task")
	if !ok {
		return
	}

	task, err := h.svc.Get(c.Request.Context(), p, taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", task)
}

// UpdateStatus handles PATCH /api/tasks/:taskId/status
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	taskID, ok := uuidParam(c, "taskId", "task")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, bindMessage(err))
		return
	}

	task, err := h.svc.UpdateStatus(c.Request.Context(), p, taskID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Task status updated successfully", task)
}

// Update handles PUT /api/tasks/:taskId. An explicit null for assigneeId
// or dueDate clears it, as does a blank description; leaving a field out
// keeps the stored value.
func (h *TaskHandler) Update(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	taskID, ok := uuidParam(c, "taskId", "task")
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, taskBindMessage(err))
		return
	}

	task, err := h.svc.Update(c.Request.Context(), p, taskID, service.UpdateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		Status:        req.Status,
		Priority:      req.Priority,
		AssigneeID:    req.AssigneeID.ptr(),
		ClearAssignee: req.AssigneeID.Set && req.AssigneeID.Null,
		DueDate:       req.DueDate.ptr(),
		ClearDueDate:  req.DueDate.Set && req.DueDate.Null,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Task updated successfully", task)
}

// Delete handles DELETE /api/tasks/:taskId
func (h *TaskHandler) Delete(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	taskID, ok := uuidParam(c, "taskId", "task")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), p, taskID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Task deleted successfully", nil)
}

// taskBindMessage surfaces the messages of the custom field decoders,
// which encoding/json returns unchanged.
func taskBindMessage(err error) string {
	var jerr *json.UnmarshalTypeError
	if errors.As(err, &jerr) {
		return lowerFirst(jerr.Field) + " has the wrong type"
	}
	msg := err.Error()
	for _, field := range []string{"assigneeId", "dueDate"} {
		if strings.HasPrefix(msg, field+" ") {
			return msg
		}
	}
	return bindMessage(err)
}
