package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangang/taskflow/backend/internal/access"
	"github.com/huangang/taskflow/backend/internal/models"
	"github.com/huangang/taskflow/backend/pkg/logger"
	"github.com/huangang/taskflow/backend/pkg/response"
	"gorm.io/gorm"
)

type TaskService struct {
	db         *gorm.DB
	dispatcher *Dispatcher
}

func NewTaskService(db *gorm.DB, dispatcher *Dispatcher) *TaskService {
	return &TaskService{db: db, dispatcher: dispatcher}
}

type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required,max=300"`
	Description string `json:"description"`
	ProjectID   string `json:"project_id" binding:"required"`
	AssignedTo  string `json:"assigned_to"`
	Priority    string `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate     string `json:"due_date"`
}

// UpdateTaskRequest uses pointers so a field that is present in the body can
// be told apart from one that is absent.
type UpdateTaskRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=300"`
	Description *string `json:"description"`
	AssignedTo  *string `json:"assigned_to"`
	Priority    *string `json:"priority" binding:"omitempty,oneof=low medium high"`
	Status      *string `json:"status" binding:"omitempty,oneof=pending in-progress completed on-hold"`
	DueDate     *string `json:"due_date"`
}

// onlyStatus reports whether status is the sole field present.
func (r *UpdateTaskRequest) onlyStatus() bool {
	return r.Title == nil && r.Description == nil && r.AssignedTo == nil &&
		r.Priority == nil && r.DueDate == nil
}

func taskOwnership(t *models.Task) access.TaskOwnership {
	own := access.TaskOwnership{
		CreatorID:  t.CreatedByID,
		AssigneeID: t.AssigneeID(),
	}
	if t.Project != nil {
		own.ProjectCreatorID = t.Project.CreatedByID
	}
	return own
}

func (s *TaskService) load(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	err := s.db.WithContext(ctx).
		Preload("Project").
		Preload("AssignedTo").
		Preload("CreatedBy").
		Preload("Issues").
		Where("id = ?", id).
		First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewNotFound(fmt.Sprintf("task with ID %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &task, nil
}

func (s *TaskService) Create(ctx context.Context, actor access.Actor, req *CreateTaskRequest) (*models.Task, error) {
	if !access.CanCreateTask(actor) {
		return nil, response.NewForbidden("only admins and managers can create tasks")
	}

	var project models.Project
	err := s.db.WithContext(ctx).Where("id = ?", req.ProjectID).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewNotFound("project not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	creator, err := findMember(ctx, s.db, actor.ID)
	if err != nil {
		return nil, err
	}
	if creator == nil {
		return nil, response.NewNotFound("user not found")
	}

	// an unknown assignee leaves the task unassigned
	assignee, err := findMember(ctx, s.db, req.AssignedTo)
	if err != nil {
		return nil, err
	}

	dueDate, err := parseDate("due_date", req.DueDate)
	if err != nil {
		return nil, err
	}

	task := models.Task{
		Title:       req.Title,
		Description: req.Description,
		ProjectID:   project.ID,
		CreatedByID: creator.ID,
		Priority:    req.Priority,
		Status:      models.TaskStatusPending,
		DueDate:     dueDate,
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if assignee != nil {
		task.AssignedToID = &assignee.ID
	}

	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	task.Project = &project
	task.CreatedBy = creator
	task.AssignedTo = assignee

	if assignee != nil {
		s.dispatcher.Dispatch(ctx, []Intent{taskAssignedIntent(&task, assignee.ID, creator.Name)})
	}

	progress, err := recomputeProgress(ctx, s.db, project.ID)
	if err != nil {
		logger.Error().Err(err).Str("project_id", project.ID).Msg("failed to recompute project progress")
		return &task, nil
	}
	task.Project.Progress = progress
	return &task, nil
}

// List returns the tasks of one project when projectID is set, otherwise the
// actor's own tasks. Elevated members see everything.
func (s *TaskService) List(ctx context.Context, actor access.Actor, projectID string) ([]models.Task, error) {
	query := s.db.WithContext(ctx).
		Preload("Project").
		Preload("AssignedTo").
		Preload("CreatedBy")

	switch {
	case projectID != "":
		if !actor.Role.Elevated() {
			if err := s.checkProjectVisible(ctx, actor, projectID); err != nil {
				return nil, err
			}
		}
		query = query.Where("project_id = ?", projectID)
	case !actor.Role.Elevated():
		owned := s.db.Model(&models.Project{}).Select("id").Where("created_by_id = ?", actor.ID)
		query = query.Where("assigned_to_id = ? OR created_by_id = ? OR project_id IN (?)", actor.ID, actor.ID, owned)
	}

	var tasks []models.Task
	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) checkProjectVisible(ctx context.Context, actor access.Actor, projectID string) error {
	var project models.Project
	err := s.db.WithContext(ctx).Select("id", "created_by_id").Where("id = ?", projectID).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NewNotFound(fmt.Sprintf("project with ID %s not found", projectID))
	}
	if err != nil {
		return fmt.Errorf("get project: %w", err)
	}

	var assignees []string
	err = s.db.WithContext(ctx).Model(&models.Task{}).
		Where("project_id = ? AND assigned_to_id IS NOT NULL", projectID).
		Pluck("assigned_to_id", &assignees).Error
	if err != nil {
		return fmt.Errorf("load project assignees: %w", err)
	}

	own := access.ProjectOwnership{CreatorID: project.CreatedByID, AssigneeIDs: assignees}
	if !access.CanListProjectTasks(actor, own) {
		return response.NewForbidden("you do not have permission to view this project")
	}
	return nil
}

func (s *TaskService) Get(ctx context.Context, actor access.Actor, id string) (*models.Task, error) {
	task, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanViewTask(actor, taskOwnership(task)) {
		return nil, response.NewForbidden("you do not have permission to view this task")
	}
	return task, nil
}

// Update applies the request under the three edit tiers. Reassignment, due
// date changes and completion each produce notifications; the owning
// project's progress is recomputed afterwards.
func (s *TaskService) Update(ctx context.Context, actor access.Actor, id string, req *UpdateTaskRequest) (*models.Task, error) {
	task, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	tier := access.TaskEditTier(actor, taskOwnership(task))
	switch tier {
	case access.EditNone:
		return nil, response.NewForbidden("you do not have permission to update this task")
	case access.EditStatusOnly:
		if !req.onlyStatus() {
			return nil, response.NewForbidden("you can only update the status of tasks assigned to you")
		}
	}

	oldDueDate := task.DueDate
	oldAssignee := task.AssigneeID()
	oldStatus := task.Status

	reassigned := req.AssignedTo != nil && *req.AssignedTo != "" && *req.AssignedTo != oldAssignee
	if reassigned && tier != access.EditFull {
		return nil, response.NewForbidden("you do not have permission to reassign tasks")
	}

	newDueDate := task.DueDate
	if req.DueDate != nil && *req.DueDate != "" {
		if newDueDate, err = parseDate("due_date", *req.DueDate); err != nil {
			return nil, err
		}
	}
	dueDateChanged := dateMovedOrSet(oldDueDate, newDueDate)
	if dueDateChanged && tier != access.EditFull {
		return nil, response.NewForbidden("you do not have permission to change task deadlines")
	}

	statusChanged := req.Status != nil && *req.Status != oldStatus

	var intents []Intent
	if reassigned {
		assignee, err := findMember(ctx, s.db, *req.AssignedTo)
		if err != nil {
			return nil, err
		}
		if assignee != nil {
			task.AssignedToID = &assignee.ID
			task.AssignedTo = assignee
			intents = append(intents, taskReassignedIntent(task, assignee.ID))
		}
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	task.DueDate = newDueDate

	err = s.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", task.ID).Updates(map[string]interface{}{
		"title":          task.Title,
		"description":    task.Description,
		"priority":       task.Priority,
		"status":         task.Status,
		"due_date":       task.DueDate,
		"assigned_to_id": task.AssignedToID,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	if dueDateChanged && task.AssigneeID() != "" {
		intents = append(intents, taskScheduleIntent(task, task.AssigneeID(), oldDueDate, newDueDate))
	}
	if statusChanged && task.Status == models.TaskStatusCompleted {
		var projectName, projectCreatorID string
		if task.Project != nil {
			projectName = task.Project.Name
			projectCreatorID = task.Project.CreatedByID
		}
		intents = append(intents, taskCompletedIntents(task, projectName, projectCreatorID)...)
	}
	s.dispatcher.Dispatch(ctx, intents)

	progress, err := recomputeProgress(ctx, s.db, task.ProjectID)
	if err != nil {
		logger.Error().Err(err).Str("project_id", task.ProjectID).Msg("failed to recompute project progress")
		return task, nil
	}
	if task.Project != nil {
		task.Project.Progress = progress
	}
	return task, nil
}

// Delete removes the task and its issues. Notifications that referenced the
// task keep existing without the reference.
func (s *TaskService) Delete(ctx context.Context, actor access.Actor, id string) error {
	task, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if !access.CanDeleteTask(actor, taskOwnership(task)) {
		return response.NewForbidden("you do not have permission to delete this task")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.Issue{}).Error; err != nil {
			return fmt.Errorf("delete task issues: %w", err)
		}
		if err := tx.Model(&models.Notification{}).
			Where("related_to_task_id = ?", task.ID).
			Update("related_to_task_id", nil).Error; err != nil {
			return fmt.Errorf("detach task notifications: %w", err)
		}
		if err := tx.Delete(&models.Task{}, "id = ?", task.ID).Error; err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if _, err := recomputeProgress(ctx, s.db, task.ProjectID); err != nil {
		logger.Error().Err(err).Str("project_id", task.ProjectID).Msg("failed to recompute project progress")
	}
	return nil
}
