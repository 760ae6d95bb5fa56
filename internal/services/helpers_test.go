package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/huangang/taskflow/backend/internal/access"
	"github.com/huangang/taskflow/backend/internal/config"
	"github.com/huangang/taskflow/backend/internal/models"
	"github.com/huangang/taskflow/backend/pkg/response"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    "file:" + uuid.New().String() + "?mode=memory&cache=shared",
	}
	db, err := models.Open(cfg, logger.Silent)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedMember(t *testing.T, db *gorm.DB, name, role string) *models.TeamMember {
	t.Helper()
	m := &models.TeamMember{
		Name:         name,
		Email:        uuid.New().String() + "@taskflow.test",
		Role:         role,
		Status:       models.MemberStatusActive,
		PasswordHash: "not-a-real-hash",
	}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("seed member: %v", err)
	}
	return m
}

func actorOf(m *models.TeamMember) access.Actor {
	return access.Actor{ID: m.ID, Role: access.ParseRole(m.Role)}
}

type published struct {
	userID string
	n      models.Notification
}

type recordingPublisher struct {
	mu  sync.Mutex
	got []published
}

func (p *recordingPublisher) Publish(userID string, n *models.Notification) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, published{userID: userID, n: *n})
	return 1
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.got)
}

type failingStore struct{ calls int }

func (s *failingStore) Record(ctx context.Context, in Intent) (*models.Notification, error) {
	s.calls++
	return nil, errors.New("notification table unavailable")
}

type panickingPublisher struct{}

func (panickingPublisher) Publish(string, *models.Notification) int {
	panic("socket closed")
}

// env wires every service over one database the way the server does.
type env struct {
	db            *gorm.DB
	pub           *recordingPublisher
	notifications *NotificationService
	projects      *ProjectService
	tasks         *TaskService
	issues        *IssueService
	members       *TeamMemberService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := newTestDB(t)
	pub := &recordingPublisher{}
	notifications := NewNotificationService(db)
	dispatcher := NewDispatcher(notifications, pub)
	return &env{
		db:            db,
		pub:           pub,
		notifications: notifications,
		projects:      NewProjectService(db, dispatcher),
		tasks:         NewTaskService(db, dispatcher),
		issues:        NewIssueService(db, dispatcher),
		members:       NewTeamMemberService(db),
	}
}

func (e *env) inbox(t *testing.T, userID, typ string) []models.Notification {
	t.Helper()
	var items []models.Notification
	if err := e.db.Where("user_id = ? AND type = ?", userID, typ).Order("created_at").Find(&items).Error; err != nil {
		t.Fatalf("load notifications: %v", err)
	}
	return items
}

func (e *env) seedProject(t *testing.T, creator *models.TeamMember, deadline string) *models.Project {
	t.Helper()
	p, err := e.projects.Create(context.Background(), actorOf(creator), &CreateProjectRequest{Name: "Apollo", Deadline: deadline})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return p
}

func (e *env) seedTask(t *testing.T, by *models.TeamMember, projectID, assigneeID string) *models.Task {
	t.Helper()
	task, err := e.tasks.Create(context.Background(), actorOf(by), &CreateTaskRequest{
		Title:      "Write launch checklist",
		ProjectID:  projectID,
		AssignedTo: assigneeID,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func strPtr(s string) *string { return &s }

func expectStatus(t *testing.T, err error, status int) {
	t.Helper()
	if got := response.StatusOf(err); got != status {
		t.Fatalf("error status = %d (%v), expected %d", got, err, status)
	}
}
