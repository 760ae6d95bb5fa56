package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangang/taskflow/backend/internal/access"
	"github.com/huangang/taskflow/backend/internal/models"
	"github.com/huangang/taskflow/backend/pkg/response"
	"gorm.io/gorm"
)

// IssueService handles issues. Any authenticated member may use it.
type IssueService struct {
	db         *gorm.DB
	dispatcher *Dispatcher
}

func NewIssueService(db *gorm.DB, dispatcher *Dispatcher) *IssueService {
	return &IssueService{db: db, dispatcher: dispatcher}
}

type CreateIssueRequest struct {
	Title       string `json:"title" binding:"required,max=300"`
	Description string `json:"description"`
	TaskID      string `json:"task_id" binding:"required"`
	Severity    string `json:"severity" binding:"omitempty,oneof=low medium high critical"`
	AssignedTo  string `json:"assigned_to"`
}

type ResolveIssueRequest struct {
	Status string `json:"status" binding:"required,oneof=open in-review resolved wont-fix"`
}

func (s *IssueService) Create(ctx context.Context, actor access.Actor, req *CreateIssueRequest) (*models.Issue, error) {
	var task models.Task
	err := s.db.WithContext(ctx).Where("id = ?", req.TaskID).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewNotFound("task not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}

	reporter, err := findMember(ctx, s.db, actor.ID)
	if err != nil {
		return nil, err
	}
	if reporter == nil {
		return nil, response.NewNotFound("user not found")
	}

	assignee, err := findMember(ctx, s.db, req.AssignedTo)
	if err != nil {
		return nil, err
	}

	issue := models.Issue{
		Title:        req.Title,
		Description:  req.Description,
		TaskID:       task.ID,
		Severity:     req.Severity,
		Status:       models.IssueStatusOpen,
		ReportedByID: reporter.ID,
	}
	if issue.Severity == "" {
		issue.Severity = models.SeverityMedium
	}
	if assignee != nil {
		issue.AssignedToID = &assignee.ID
	}

	if err := s.db.WithContext(ctx).Create(&issue).Error; err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}
	issue.Task = &task
	issue.ReportedBy = reporter
	issue.AssignedTo = assignee

	s.dispatcher.Dispatch(ctx, issueCreatedIntents(&issue, &task, reporter.Name))
	return &issue, nil
}

// List returns all issues, or only those of taskID when it is set.
func (s *IssueService) List(ctx context.Context, taskID string) ([]models.Issue, error) {
	query := s.db.WithContext(ctx).
		Preload("Task").
		Preload("ReportedBy").
		Preload("AssignedTo")
	if taskID != "" {
		query = query.Where("task_id = ?", taskID)
	}

	var issues []models.Issue
	if err := query.Order("created_at DESC").Find(&issues).Error; err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	return issues, nil
}

func (s *IssueService) Get(ctx context.Context, id string) (*models.Issue, error) {
	var issue models.Issue
	err := s.db.WithContext(ctx).
		Preload("Task").
		Preload("ReportedBy").
		Preload("AssignedTo").
		Where("id = ?", id).
		First(&issue).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewNotFound(fmt.Sprintf("issue with ID %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("get issue: %w", err)
	}
	return &issue, nil
}

// Resolve sets the status. Entering resolved stamps ResolvedAt and notifies
// the reporter and the task assignee; leaving it clears the stamp.
func (s *IssueService) Resolve(ctx context.Context, id string, req *ResolveIssueRequest) (*models.Issue, error) {
	issue, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := issue.Status
	issue.Status = req.Status
	enteredResolved := req.Status == models.IssueStatusResolved && oldStatus != models.IssueStatusResolved

	switch {
	case enteredResolved:
		now := time.Now()
		issue.ResolvedAt = &now
	case req.Status != models.IssueStatusResolved:
		issue.ResolvedAt = nil
	}

	err = s.db.WithContext(ctx).Model(&models.Issue{}).Where("id = ?", issue.ID).Updates(map[string]interface{}{
		"status":      issue.Status,
		"resolved_at": issue.ResolvedAt,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("resolve issue: %w", err)
	}

	if enteredResolved {
		s.dispatcher.Dispatch(ctx, issueResolvedIntents(issue, issue.Task))
	}
	return issue, nil
}

func (s *IssueService) Delete(ctx context.Context, id string) error {
	issue, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Issue{}, "id = ?", issue.ID).Error; err != nil {
		return fmt.Errorf("delete issue: %w", err)
	}
	return nil
}
