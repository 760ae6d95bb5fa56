package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangang/taskflow/backend/internal/models"
	"github.com/huangang/taskflow/backend/pkg/response"
	"gorm.io/gorm"
)

// NotificationService stores notifications and serves a member's inbox.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

type CreateNotificationRequest struct {
	UserID           string `json:"user_id" binding:"required"`
	Type             string `json:"type" binding:"required,max=50"`
	Title            string `json:"title" binding:"required"`
	Message          string `json:"message"`
	RelatedToTask    string `json:"related_to_task"`
	RelatedToProject string `json:"related_to_project"`
}

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

// Record persists a notification for the intent. It implements
// NotificationStore for the dispatcher.
func (s *NotificationService) Record(ctx context.Context, in Intent) (*models.Notification, error) {
	n := models.Notification{
		UserID:             in.UserID,
		Type:               in.Type,
		Title:              in.Title,
		Message:            in.Message,
		RelatedToTaskID:    optionalID(in.TaskID),
		RelatedToProjectID: optionalID(in.ProjectID),
	}
	if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return &n, nil
}

// Create stores a notification sent through the API. The recipient must
// exist; related task and project ids that do not resolve are dropped.
func (s *NotificationService) Create(ctx context.Context, req *CreateNotificationRequest) (*models.Notification, error) {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.TeamMember{}).Where("id = ?", req.UserID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("lookup recipient: %w", err)
	}
	if count == 0 {
		return nil, response.NewNotFound(fmt.Sprintf("user with ID %s not found", req.UserID))
	}

	in := Intent{
		UserID:  req.UserID,
		Type:    req.Type,
		Title:   req.Title,
		Message: req.Message,
	}
	if req.RelatedToTask != "" {
		if exists, err := rowExists(db, &models.Task{}, req.RelatedToTask); err != nil {
			return nil, err
		} else if exists {
			in.TaskID = req.RelatedToTask
		}
	}
	if req.RelatedToProject != "" {
		if exists, err := rowExists(db, &models.Project{}, req.RelatedToProject); err != nil {
			return nil, err
		} else if exists {
			in.ProjectID = req.RelatedToProject
		}
	}

	return s.Record(ctx, in)
}

func rowExists(db *gorm.DB, model interface{}, id string) (bool, error) {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("lookup %T: %w", model, err)
	}
	return count > 0, nil
}

// List returns the member's notifications, newest first. unread filters by
// read state when non-nil.
func (s *NotificationService) List(ctx context.Context, userID string, unread *bool) ([]models.Notification, error) {
	query := s.db.WithContext(ctx).
		Preload("RelatedToTask").
		Preload("RelatedToProject").
		Where("user_id = ?", userID)

	if unread != nil {
		query = query.Where("is_read = ?", !*unread)
	}

	var items []models.Notification
	if err := query.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return items, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (s *NotificationService) getOwned(ctx context.Context, id, userID string) (*models.Notification, error) {
	var n models.Notification
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewNotFound("notification not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return &n, nil
}

// MarkAsRead flips one of the caller's notifications to read.
func (s *NotificationService) MarkAsRead(ctx context.Context, id, userID string) (*models.Notification, error) {
	n, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if n.IsRead {
		return n, nil
	}
	if err := s.db.WithContext(ctx).Model(n).Update("is_read", true).Error; err != nil {
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	n.IsRead = true
	return n, nil
}

// MarkAllAsRead marks every unread notification of userID and returns how
// many changed.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *NotificationService) Delete(ctx context.Context, id, userID string) error {
	n, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(n).Error; err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}
