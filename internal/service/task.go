package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/tasklane/internal/models"
	"github.com/lalith-99/tasklane/internal/realtime"
	"github.com/lalith-99/tasklane/internal/repository"
	"go.uber.org/zap"
)

const projectNotInTenant = "Project does not belong to this tenant or does not exist"

// TaskService manages tasks. Any member of a tenant may create and change
// the tasks of its projects.
type TaskService struct {
	tasks    repository.TaskRepository
	projects repository.ProjectRepository
	users    repository.UserRepository
	notify   notifier
	logger   *zap.Logger
}

func NewTaskService(
	tasks repository.TaskRepository,
	projects repository.ProjectRepository,
	users repository.UserRepository,
	events realtime.Publisher,
	logger *zap.Logger,
) *TaskService {
	return &TaskService{
		tasks:    tasks,
		projects: projects,
		users:    users,
		notify:   newNotifier(events, logger),
		logger:   logger,
	}
}

type CreateTaskInput struct {
	Title       string
	Description *string
	AssigneeID  *uuid.UUID
	Priority    string
	DueDate     *time.Time
}

// UpdateTaskInput holds a partial update. ClearAssignee unassigns the task
// and wins over AssigneeID; ClearDueDate likewise wins over DueDate. A
// blank Description clears the description.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Status        *string
	Priority      *string
	AssigneeID    *uuid.UUID
	ClearAssignee bool
	DueDate       *time.Time
	ClearDueDate  bool
}

type TaskListParams struct {
	Status     string
	AssignedTo *uuid.UUID
	Search     string
	PageRequest
}

type TaskList struct {
	Tasks      []models.Task
	Total      int
	Pagination Pagination
}

func (s *TaskService) Create(ctx context.Context, p Principal, projectID uuid.UUID, in CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, validationError("Title is required")
	}

	priority := models.PriorityMedium
	if in.Priority != "" {
		priority = models.TaskPriority(in.Priority)
		if !priority.Valid() {
			return nil, validationError("priority must be one of low, medium, high")
		}
	}

	project, err := s.projects.GetByID(ctx, p.Scope(), projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, forbiddenError(projectNotInTenant)
	}

	if in.AssigneeID != nil {
		if err := s.checkAssignee(ctx, project.TenantID, *in.AssigneeID); err != nil {
			return nil, err
		}
	}

	task, err := s.tasks.Create(ctx, repository.CreateTaskParams{
		Scope:       p.Scope(),
		ProjectID:   projectID,
		Title:       title,
		Description: trimOptional(in.Description),
		Priority:    priority,
		AssignedTo:  in.AssigneeID,
		DueDate:     in.DueDate,
	})
	if err != nil {
		// The project was deleted between the check and the insert.
		if errors.Is(err, repository.ErrNotFound) {
			return nil, forbiddenError(projectNotInTenant)
		}
		return nil, err
	}

	s.notify.publish(ctx, realtime.TaskCreated, task.TenantID, &task.ProjectID, task.ID)
	return task, nil
}

func (s *TaskService) List(ctx context.Context, p Principal, projectID uuid.UUID, params TaskListParams) (*TaskList, error) {
	filter := repository.TaskFilter{
		AssignedTo: params.AssignedTo,
		Search:     strings.TrimSpace(params.Search),
	}
	if params.Status != "" {
		status := models.TaskStatus(params.Status)
		if !status.Valid() {
			return nil, validationError("status must be one of todo, inprogress, completed")
		}
		filter.Status = &status
	}

	project, err := s.projects.GetByID(ctx, p.Scope(), projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, forbiddenError(projectNotInTenant)
	}

	page := params.PageRequest.normalize(defaultPageLimit)
	filter.Page = page.window()

	tasks, total, err := s.tasks.List(ctx, p.Scope(), projectID, filter)
	if err != nil {
		return nil, err
	}
	return &TaskList{Tasks: tasks, Total: total, Pagination: paginate(page, total)}, nil
}

func (s *TaskService) Get(ctx context.Context, p Principal, taskID uuid.UUID) (*models.Task, error) {
	task, err := s.tasks.GetByID(ctx, p.Scope(), taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, notFoundError("Task not found")
	}
	return task, nil
}

// UpdateStatus changes only the status and leaves every other field alone.
func (s *TaskService) UpdateStatus(ctx context.Context, p Principal, taskID uuid.UUID, status string) (*models.Task, error) {
	if status == "" {
		return nil, validationError("Status is required")
	}
	return s.Update(ctx, p, taskID, UpdateTaskInput{Status: &status})
}

func (s *TaskService) Update(ctx context.Context, p Principal, taskID uuid.UUID, in UpdateTaskInput) (*models.Task, error) {
	params := repository.UpdateTaskParams{
		Description:      trimOptional(in.Description),
		ClearDescription: isBlank(in.Description),
		ClearAssignee:    in.ClearAssignee,
		DueDate:          in.DueDate,
		ClearDueDate:     in.ClearDueDate,
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, validationError("Title cannot be empty")
		}
		params.Title = &title
	}
	if in.Status != nil {
		status := models.TaskStatus(*in.Status)
		if !status.Valid() {
			return nil, validationError("status must be one of todo, inprogress, completed")
		}
		params.Status = &status
	}
	if in.Priority != nil {
		priority := models.TaskPriority(*in.Priority)
		if !priority.Valid() {
			return nil, validationError("priority must be one of low, medium, high")
		}
		params.Priority = &priority
	}

	existing, err := s.tasks.GetByID(ctx, p.Scope(), taskID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, notFoundError("Task not found")
	}

	if in.AssigneeID != nil && !in.ClearAssignee {
		if err := s.checkAssignee(ctx, existing.TenantID, *in.AssigneeID); err != nil {
			return nil, err
		}
		params.AssignedTo = in.AssigneeID
	}

	task, err := s.tasks.Update(ctx, p.Scope(), taskID, params)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, notFoundError("Task not found")
	}

	s.notify.publish(ctx, realtime.TaskUpdated, task.TenantID, &task.ProjectID, task.ID)
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, p Principal, taskID uuid.UUID) error {
	existing, err := s.tasks.GetByID(ctx, p.Scope(), taskID)
	if err != nil {
		return err
	}
	if existing == nil {
		return notFoundError("Task not found")
	}

	if err := s.tasks.Delete(ctx, p.Scope(), taskID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError("Task not found")
		}
		return err
	}

	s.notify.publish(ctx, realtime.TaskDeleted, existing.TenantID, &existing.ProjectID, existing.ID)
	return nil
}

// checkAssignee verifies that userID is a member of tenantID.
func (s *TaskService) checkAssignee(ctx context.Context, tenantID, userID uuid.UUID) error {
	user, err := s.users.GetByID(ctx, repository.TenantScope(tenantID), userID)
	if err != nil {
		return err
	}
	if user == nil {
		return validationError("Assignee does not belong to this tenant")
	}
	return nil
}
