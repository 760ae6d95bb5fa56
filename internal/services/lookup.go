package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangang/taskflow/backend/internal/models"
	"gorm.io/gorm"
)

// findMember returns nil without error when the member does not exist.
func findMember(ctx context.Context, db *gorm.DB, id string) (*models.TeamMember, error) {
	if id == "" {
		return nil, nil
	}
	var member models.TeamMember
	err := db.WithContext(ctx).Where("id = ?", id).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup member %s: %w", id, err)
	}
	return &member, nil
}

// recomputeProgress derives a project's progress from its current tasks and
// stores it.
func recomputeProgress(ctx context.Context, db *gorm.DB, projectID string) (int, error) {
	var tasks []models.Task
	if err := db.WithContext(ctx).Select("id", "status").Where("project_id = ?", projectID).Find(&tasks).Error; err != nil {
		return 0, fmt.Errorf("load project tasks: %w", err)
	}
	progress := models.ComputeProgress(tasks)
	err := db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ?", projectID).
		Update("progress", progress).Error
	if err != nil {
		return 0, fmt.Errorf("update project progress: %w", err)
	}
	return progress, nil
}
