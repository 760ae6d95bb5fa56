package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/huangang/taskflow/backend/internal/models"
	"github.com/huangang/taskflow/backend/internal/utils"
	"github.com/huangang/taskflow/backend/pkg/response"
	"gorm.io/gorm"
)

// TeamMemberService manages the member directory. Any authenticated member
// may use it.
type TeamMemberService struct {
	db *gorm.DB
}

func NewTeamMemberService(db *gorm.DB) *TeamMemberService {
	return &TeamMemberService{db: db}
}

type CreateTeamMemberRequest struct {
	Name     string  `json:"name" binding:"required,max=200"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=6"`
	Phone    *string `json:"phone"`
	Role     string  `json:"role" binding:"required,max=50"`
	Status   string  `json:"status" binding:"omitempty,oneof=active away offline"`
}

type UpdateMemberStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active away offline"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *TeamMemberService) Create(ctx context.Context, req *CreateTeamMemberRequest) (*models.TeamMember, error) {
	email := normalizeEmail(req.Email)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.TeamMember{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return nil, response.NewConflict("a team member with this email already exists")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	member := models.TeamMember{
		Name:         req.Name,
		Email:        email,
		Phone:        req.Phone,
		Role:         req.Role,
		Status:       req.Status,
		PasswordHash: hash,
	}
	if member.Status == "" {
		member.Status = models.MemberStatusActive
	}

	if err := s.db.WithContext(ctx).Create(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewConflict("a team member with this email already exists")
		}
		return nil, fmt.Errorf("create team member: %w", err)
	}
	return &member, nil
}

// List returns all members, filtered by status when it is set.
func (s *TeamMemberService) List(ctx context.Context, status string) ([]models.TeamMember, error) {
	query := s.db.WithContext(ctx)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var members []models.TeamMember
	if err := query.Order("name ASC").Find(&members).Error; err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	return members, nil
}

// Get returns the member with assigned tasks and created projects.
func (s *TeamMemberService) Get(ctx context.Context, id string) (*models.TeamMember, error) {
	var member models.TeamMember
	err := s.db.WithContext(ctx).
		Preload("AssignedTasks").
		Preload("CreatedProjects").
		Where("id = ?", id).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewNotFound(fmt.Sprintf("team member with ID %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("get team member: %w", err)
	}
	return &member, nil
}

func (s *TeamMemberService) UpdateStatus(ctx context.Context, id string, req *UpdateMemberStatusRequest) (*models.TeamMember, error) {
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.TeamMember{}).Where("id = ?", id).Update("status", req.Status).Error; err != nil {
		return nil, fmt.Errorf("update team member status: %w", err)
	}
	member.Status = req.Status
	return member, nil
}

// Delete removes the member. Their assignments are cleared and their
// notifications go with them; a member who still created projects, tasks or
// issues cannot be removed.
func (s *TeamMemberService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).Where("assigned_to_id = ?", id).Update("assigned_to_id", nil).Error; err != nil {
			return fmt.Errorf("unassign tasks: %w", err)
		}
		if err := tx.Model(&models.Issue{}).Where("assigned_to_id = ?", id).Update("assigned_to_id", nil).Error; err != nil {
			return fmt.Errorf("unassign issues: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Notification{}).Error; err != nil {
			return fmt.Errorf("delete notifications: %w", err)
		}
		return tx.Delete(&models.TeamMember{}, "id = ?", id).Error
	})
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return response.NewConflict("team member still owns projects, tasks or issues")
	}
	if err != nil {
		return fmt.Errorf("delete team member: %w", err)
	}
	return nil
}
