package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/tasklane/internal/models"
	"github.com/stretchr/testify/require"
)

func TestTaskCreateDefaultsAndTenantCopy(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	tenant, admin := env.registerTenant(t, "globex")
	member := env.addUser(t, admin, "bob@globex.test", models.RoleUser)
	project := env.createProject(t, admin, "Roadmap")

	due := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	task, err := env.tasks.Create(context.Background(), member, project.ID, CreateTaskInput{
		Title:      "  Write brief ",
		AssigneeID: &member.UserID,
		DueDate:    &due,
	})
	require.NoError(t, err)
	require.Equal(t, "Write brief", task.Title)
	require.Equal(t, models.TaskTodo, task.Status)
	require.Equal(t, models.PriorityMedium, task.Priority)
	require.Equal(t, tenant.ID, task.TenantID)
	require.Equal(t, project.ID, task.ProjectID)
	require.Equal(t, member.UserID, *task.AssignedTo)
	require.True(t, due.Equal(*task.DueDate))
}

func TestTaskCreateRejectsForeignProjectAndAssignee(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	_, globex := env.registerTenant(t, "globex")
	_, initech := env.registerTenant(t, "initech")
	project := env.createProject(t, globex, "Roadmap")

	_, err := env.tasks.Create(context.Background(), initech, project.ID, CreateTaskInput{Title: "Sneak"})
	require.True(t, IsKind(err, KindForbidden))
	require.Equal(t, "Project does not belong to this tenant or does not exist", PublicMessage(err))

	_, err = env.tasks.List(context.Background(), initech, project.ID, TaskListParams{})
	require.True(t, IsKind(err, KindForbidden))

	_, err = env.tasks.Create(context.Background(), globex, project.ID, CreateTaskInput{
		Title:      "Assign across tenants",
		AssigneeID: &initech.UserID,
	})
	require.True(t, IsKind(err, KindValidation))
	require.Equal(t, "Assignee does not belong to this tenant", PublicMessage(err))

	_, err = env.tasks.Create(context.Background(), globex, project.ID, CreateTaskInput{Title: "x", Priority: "urgent"})
	require.True(t, IsKind(err, KindValidation))

	_, err = env.tasks.Create(context.Background(), globex, project.ID, CreateTaskInput{Title: " "})
	require.True(t, IsKind(err, KindValidation))
}

func TestTaskUpdateIsPartial(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	_, admin := env.registerTenant(t, "globex")
	member := env.addUser(t, admin, "bob@globex.test", models.RoleUser)
	project := env.createProject(t, admin, "Roadmap")

	task, err := env.tasks.Create(context.Background(), admin, project.ID, CreateTaskInput{
		Title:       "Write brief",
		Description: strPtr("two pages"),
		AssigneeID:  &member.UserID,
		Priority:    "high",
	})
	require.NoError(t, err)

	updated, err := env.tasks.UpdateStatus(context.Background(), member, task.ID, "inprogress")
	require.NoError(t, err)
	require.Equal(t, models.TaskInProgress, updated.Status)
	require.Equal(t, "Write brief", updated.Title)
	require.Equal(t, "two pages", *updated.Description)
	require.Equal(t, models.PriorityHigh, updated.Priority)
	require.Equal(t, member.UserID, *updated.AssignedTo)

	_, err = env.tasks.UpdateStatus(context.Background(), member, task.ID, "")
	require.True(t, IsKind(err, KindValidation))
	_, err = env.tasks.UpdateStatus(context.Background(), member, task.ID, "in_progress")
	require.True(t, IsKind(err, KindValidation))

	cleared, err := env.tasks.Update(context.Background(), admin, task.ID, UpdateTaskInput{ClearAssignee: true})
	require.NoError(t, err)
	require.Nil(t, cleared.AssignedTo)
	require.Equal(t, models.TaskInProgress, cleared.Status)

	_, err = env.tasks.Update(context.Background(), admin, task.ID, UpdateTaskInput{Title: strPtr("  ")})
	require.True(t, IsKind(err, KindValidation))
}

func TestTaskUpdateClearsDescriptionAndDueDate(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	_, admin := env.registerTenant(t, "globex")
	project := env.createProject(t, admin, "Roadmap")
	due := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)

	task, err := env.tasks.Create(context.Background(), admin, project.ID, CreateTaskInput{
		Title:       "Write brief",
		Description: strPtr("two pages"),
		DueDate:     &due,
	})
	require.NoError(t, err)
	require.NotNil(t, task.DueDate)

	// A new due date alongside ClearDueDate loses.
	later := due.AddDate(0, 1, 0)
	cleared, err := env.tasks.Update(context.Background(), admin, task.ID, UpdateTaskInput{
		Description:  strPtr(""),
		DueDate:      &later,
		ClearDueDate: true,
	})
	require.NoError(t, err)
	require.Nil(t, cleared.Description)
	require.Nil(t, cleared.DueDate)
	require.Equal(t, "Write brief", cleared.Title)
}

func TestTaskOtherTenantLooksMissing(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	_, globex := env.registerTenant(t, "globex")
	_, initech := env.registerTenant(t, "initech")
	project := env.createProject(t, globex, "Roadmap")
	task, err := env.tasks.Create(context.Background(), globex, project.ID, CreateTaskInput{Title: "Private"})
	require.NoError(t, err)

	_, err = env.tasks.Get(context.Background(), initech, task.ID)
	require.True(t, IsKind(err, KindNotFound))
	_, err = env.tasks.UpdateStatus(context.Background(), initech, task.ID, "completed")
	require.True(t, IsKind(err, KindNotFound))
	err = env.tasks.Delete(context.Background(), initech, task.ID)
	require.True(t, IsKind(err, KindNotFound))

	got, err := env.tasks.Get(context.Background(), globex, task.ID)
	require.NoError(t, err)
	require.Equal(t, models.TaskTodo, got.Status)
}

func TestTaskListFilters(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	_, admin := env.registerTenant(t, "globex")
	member := env.addUser(t, admin, "bob@globex.test", models.RoleUser)
	project := env.createProject(t, admin, "Roadmap")

	mine, err := env.tasks.Create(context.Background(), admin, project.ID, CreateTaskInput{Title: "Ship release", AssigneeID: &member.UserID})
	require.NoError(t, err)
	_, err = env.tasks.Create(context.Background(), admin, project.ID, CreateTaskInput{Title: "Write notes"})
	require.NoError(t, err)
	_, err = env.tasks.UpdateStatus(context.Background(), admin, mine.ID, "completed")
	require.NoError(t, err)

	all, err := env.tasks.List(context.Background(), member, project.ID, TaskListParams{})
	require.NoError(t, err)
	require.Equal(t, 2, all.Total)

	done, err := env.tasks.List(context.Background(), member, project.ID, TaskListParams{Status: "completed"})
	require.NoError(t, err)
	require.Len(t, done.Tasks, 1)
	require.Equal(t, mine.ID, done.Tasks[0].ID)

	assigned, err := env.tasks.List(context.Background(), member, project.ID, TaskListParams{AssignedTo: &member.UserID})
	require.NoError(t, err)
	require.Equal(t, 1, assigned.Total)

	searched, err := env.tasks.List(context.Background(), member, project.ID, TaskListParams{Search: "notes"})
	require.NoError(t, err)
	require.Equal(t, 1, searched.Total)

	_, err = env.tasks.List(context.Background(), member, uuid.New(), TaskListParams{})
	require.True(t, IsKind(err, KindForbidden))
}
