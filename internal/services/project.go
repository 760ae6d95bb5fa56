package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangang/taskflow/backend/internal/access"
	"github.com/huangang/taskflow/backend/internal/models"
	"github.com/huangang/taskflow/backend/pkg/response"
	"gorm.io/gorm"
)

type ProjectService struct {
	db         *gorm.DB
	dispatcher *Dispatcher
}

func NewProjectService(db *gorm.DB, dispatcher *Dispatcher) *ProjectService {
	return &ProjectService{db: db, dispatcher: dispatcher}
}

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description"`
	Status      string `json:"status" binding:"omitempty,oneof=active on-hold completed archived"`
	Deadline    string `json:"deadline"`
}

// UpdateProjectRequest fields are optional; nil leaves the value alone.
// Progress is derived and cannot be set.
type UpdateProjectRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
	Status      *string `json:"status" binding:"omitempty,oneof=active on-hold completed archived"`
	Deadline    *string `json:"deadline"`
}

func projectOwnership(p *models.Project) access.ProjectOwnership {
	ids := make([]string, 0, len(p.Tasks))
	for i := range p.Tasks {
		ids = append(ids, p.Tasks[i].AssigneeID())
	}
	return access.ProjectOwnership{CreatorID: p.CreatedByID, AssigneeIDs: ids}
}

func (s *ProjectService) load(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	err := s.db.WithContext(ctx).
		Preload("CreatedBy").
		Preload("Tasks").
		Preload("Tasks.AssignedTo").
		Where("id = ?", id).
		First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewNotFound(fmt.Sprintf("project with ID %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &project, nil
}

func (s *ProjectService) Create(ctx context.Context, actor access.Actor, req *CreateProjectRequest) (*models.Project, error) {
	creator, err := findMember(ctx, s.db, actor.ID)
	if err != nil {
		return nil, err
	}
	if creator == nil {
		return nil, response.NewNotFound("user not found")
	}

	deadline, err := parseDate("deadline", req.Deadline)
	if err != nil {
		return nil, err
	}

	project := models.Project{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Progress:    0,
		Deadline:    deadline,
		CreatedByID: creator.ID,
	}
	if project.Status == "" {
		project.Status = models.ProjectStatusActive
	}

	if err := s.db.WithContext(ctx).Create(&project).Error; err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	project.CreatedBy = creator

	s.dispatcher.Dispatch(ctx, []Intent{projectCreatedIntent(&project)})
	return &project, nil
}

// List returns every project for elevated members and otherwise only the
// projects the actor created or holds a task in.
func (s *ProjectService) List(ctx context.Context, actor access.Actor) ([]models.Project, error) {
	query := s.db.WithContext(ctx).
		Preload("CreatedBy").
		Preload("Tasks").
		Preload("Tasks.AssignedTo")

	if !actor.Role.Elevated() {
		assigned := s.db.Model(&models.Task{}).Select("project_id").Where("assigned_to_id = ?", actor.ID)
		query = query.Where("created_by_id = ? OR id IN (?)", actor.ID, assigned)
	}

	var projects []models.Project
	if err := query.Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (s *ProjectService) Get(ctx context.Context, actor access.Actor, id string) (*models.Project, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanViewProject(actor, projectOwnership(project)) {
		return nil, response.NewForbidden("you do not have permission to view this project")
	}
	return project, nil
}

// Update merges the given fields and recomputes progress. Moving or first
// setting the deadline notifies every member assigned to a task in the
// project.
func (s *ProjectService) Update(ctx context.Context, actor access.Actor, id string, req *UpdateProjectRequest) (*models.Project, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanMutateProject(actor, project.CreatedByID) {
		return nil, response.NewForbidden("you do not have permission to update this project")
	}

	oldDeadline := project.Deadline

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Status != nil {
		project.Status = *req.Status
	}
	if req.Deadline != nil && *req.Deadline != "" {
		deadline, err := parseDate("deadline", *req.Deadline)
		if err != nil {
			return nil, err
		}
		project.Deadline = deadline
	}
	project.Progress = models.ComputeProgress(project.Tasks)

	err = s.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", project.ID).Updates(map[string]interface{}{
		"name":        project.Name,
		"description": project.Description,
		"status":      project.Status,
		"deadline":    project.Deadline,
		"progress":    project.Progress,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}

	if dateMovedOrSet(oldDeadline, project.Deadline) {
		intents := projectScheduleIntents(project, projectOwnership(project).AssigneeIDs, oldDeadline, project.Deadline)
		s.dispatcher.Dispatch(ctx, intents)
	}
	return project, nil
}

// Delete removes the project with its tasks and their issues. Notifications
// that pointed at them stay, with the reference cleared.
func (s *ProjectService) Delete(ctx context.Context, actor access.Actor, id string) error {
	project, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !access.CanMutateProject(actor, project.CreatedByID) {
		return response.NewForbidden("you do not have permission to delete this project")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taskIDs := func() *gorm.DB {
			return tx.Model(&models.Task{}).Select("id").Where("project_id = ?", project.ID)
		}

		if err := tx.Where("task_id IN (?)", taskIDs()).Delete(&models.Issue{}).Error; err != nil {
			return fmt.Errorf("delete project issues: %w", err)
		}
		if err := tx.Model(&models.Notification{}).
			Where("related_to_task_id IN (?)", taskIDs()).
			Update("related_to_task_id", nil).Error; err != nil {
			return fmt.Errorf("detach task notifications: %w", err)
		}
		if err := tx.Model(&models.Notification{}).
			Where("related_to_project_id = ?", project.ID).
			Update("related_to_project_id", nil).Error; err != nil {
			return fmt.Errorf("detach project notifications: %w", err)
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Task{}).Error; err != nil {
			return fmt.Errorf("delete project tasks: %w", err)
		}
		if err := tx.Delete(&models.Project{}, "id = ?", project.ID).Error; err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		return nil
	})
}
