package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangang/taskflow/backend/internal/config"
	"github.com/huangang/taskflow/backend/internal/models"
	"github.com/huangang/taskflow/backend/internal/utils"
	"github.com/huangang/taskflow/backend/pkg/response"
	"gorm.io/gorm"
)

const defaultRole = "Developer"

type AuthService struct {
	db        *gorm.DB
	jwtConfig *config.JWTConfig
}

func NewAuthService(db *gorm.DB, jwtCfg *config.JWTConfig) *AuthService {
	return &AuthService{db: db, jwtConfig: jwtCfg}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Name     string  `json:"name" binding:"required,max=200"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=6"`
	Role     string  `json:"role" binding:"max=50"`
	Phone    *string `json:"phone"`
}

// AuthUser is the public part of a member returned with a token.
type AuthUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpireAt    time.Time `json:"expire_at"`
	User        AuthUser  `json:"user"`
}

func (s *AuthService) issue(member *models.TeamMember) (*LoginResponse, error) {
	token, err := utils.GenerateToken(member.ID, member.Email, member.Role, s.jwtConfig.ExpireHour)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &LoginResponse{
		AccessToken: token,
		ExpireAt:    time.Now().Add(time.Duration(s.jwtConfig.ExpireHour) * time.Hour),
		User: AuthUser{
			ID:    member.ID,
			Name:  member.Name,
			Email: member.Email,
			Role:  member.Role,
		},
	}, nil
}

// Register creates a member and signs them in. An email that is already
// taken is reported as Unauthorized.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*LoginResponse, error) {
	email := normalizeEmail(req.Email)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.TeamMember{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return nil, response.NewUnauthorized("user with this email already exists")
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
		Status:       models.MemberStatusActive,
		PasswordHash: hash,
	}
	if member.Role == "" {
		member.Role = defaultRole
	}

	if err := s.db.WithContext(ctx).Create(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewUnauthorized("user with this email already exists")
		}
		return nil, fmt.Errorf("create member: %w", err)
	}

	return s.issue(&member)
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	var member models.TeamMember
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(req.Email)).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewUnauthorized("invalid credentials")
	}
	if err != nil {
		return nil, fmt.Errorf("lookup member: %w", err)
	}

	if !utils.CheckPassword(req.Password, member.PasswordHash) {
		return nil, response.NewUnauthorized("invalid credentials")
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&models.TeamMember{}).Where("id = ?", member.ID).Update("last_login", now).Error; err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}
	member.LastLogin = &now

	return s.issue(&member)
}

// Me resolves the authenticated member. A token for a removed member is
// Unauthorized.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.TeamMember, error) {
	member, err := findMember(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, response.NewUnauthorized("user not found")
	}
	return member, nil
}
