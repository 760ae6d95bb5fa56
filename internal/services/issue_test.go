package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/huangang/taskflow/backend/internal/models"
)

func TestIssueService_CreateNotifiesAssigneeAndTaskOwner(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	m := seedMember(t, e.db, "Maya", "Manager")
	u := seedMember(t, e.db, "Uma", "Developer")
	r := seedMember(t, e.db, "Rita", "QA")
	a := seedMember(t, e.db, "Ana", "Developer")
	p := e.seedProject(t, m, "")
	task := e.seedTask(t, m, p.ID, u.ID)

	issue, err := e.issues.Create(ctx, actorOf(r), &CreateIssueRequest{
		Title:      "Crash on save",
		TaskID:     task.ID,
		AssignedTo: a.ID,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if issue.Status != models.IssueStatusOpen || issue.Severity != models.SeverityMedium {
		t.Errorf("defaults = %s/%s, expected open/medium", issue.Status, issue.Severity)
	}

	if n := len(e.inbox(t, a.ID, models.NotificationIssueAssigned)); n != 1 {
		t.Errorf("issue-assigned = %d, expected 1", n)
	}
	if n := len(e.inbox(t, u.ID, models.NotificationIssueReported)); n != 1 {
		t.Errorf("issue-reported = %d, expected 1", n)
	}
}

func TestIssueService_CreateByTaskAssigneeIsQuiet(t *testing.T) {
	e := newEnv(t)
	m := seedMember(t, e.db, "Maya", "Manager")
	u := seedMember(t, e.db, "Uma", "Developer")
	p := e.seedProject(t, m, "")
	task := e.seedTask(t, m, p.ID, u.ID)

	if _, err := e.issues.Create(context.Background(), actorOf(u), &CreateIssueRequest{Title: "Flaky", TaskID: task.ID}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if n := len(e.inbox(t, u.ID, models.NotificationIssueReported)); n != 0 {
		t.Errorf("reporter notified about own issue %d times", n)
	}

	_, err := e.issues.Create(context.Background(), actorOf(u), &CreateIssueRequest{Title: "x", TaskID: "missing"})
	expectStatus(t, err, http.StatusNotFound)
}

func TestIssueService_ResolveLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	m := seedMember(t, e.db, "Maya", "Manager")
	u := seedMember(t, e.db, "Uma", "Developer")
	r := seedMember(t, e.db, "Rita", "QA")
	p := e.seedProject(t, m, "")
	task := e.seedTask(t, m, p.ID, u.ID)

	issue, err := e.issues.Create(ctx, actorOf(r), &CreateIssueRequest{Title: "Crash", TaskID: task.ID})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	resolved, err := e.issues.Resolve(ctx, issue.ID, &ResolveIssueRequest{Status: models.IssueStatusResolved})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resolved.ResolvedAt == nil {
		t.Fatal("ResolvedAt should be set on entering resolved")
	}
	first := *resolved.ResolvedAt

	if n := len(e.inbox(t, r.ID, models.NotificationIssueResolved)); n != 1 {
		t.Errorf("reporter issue-resolved = %d, expected 1", n)
	}
	if n := len(e.inbox(t, u.ID, models.NotificationIssueResolved)); n != 1 {
		t.Errorf("task assignee issue-resolved = %d, expected 1", n)
	}

	again, err := e.issues.Resolve(ctx, issue.ID, &ResolveIssueRequest{Status: models.IssueStatusResolved})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if again.ResolvedAt == nil || !again.ResolvedAt.Equal(first) {
		t.Error("resolving an already resolved issue should keep ResolvedAt")
	}
	if n := len(e.inbox(t, r.ID, models.NotificationIssueResolved)); n != 1 {
		t.Errorf("staying resolved notified again: %d", n)
	}

	reopened, err := e.issues.Resolve(ctx, issue.ID, &ResolveIssueRequest{Status: models.IssueStatusOpen})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if reopened.ResolvedAt != nil {
		t.Error("leaving resolved should clear ResolvedAt")
	}

	if _, err := e.issues.Resolve(ctx, issue.ID, &ResolveIssueRequest{Status: models.IssueStatusResolved}); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if n := len(e.inbox(t, r.ID, models.NotificationIssueResolved)); n != 2 {
		t.Errorf("re-resolve should notify again, reporter has %d", n)
	}

	var stored models.Issue
	e.db.First(&stored, "id = ?", issue.ID)
	if stored.ResolvedAt == nil {
		t.Error("ResolvedAt not persisted")
	}
}

func TestIssueService_ListAndDelete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	m := seedMember(t, e.db, "Maya", "Manager")
	p := e.seedProject(t, m, "")
	t1 := e.seedTask(t, m, p.ID, "")
	t2 := e.seedTask(t, m, p.ID, "")

	i1, _ := e.issues.Create(ctx, actorOf(m), &CreateIssueRequest{Title: "a", TaskID: t1.ID})
	e.issues.Create(ctx, actorOf(m), &CreateIssueRequest{Title: "b", TaskID: t2.ID})

	byTask, err := e.issues.List(ctx, t1.ID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(byTask) != 1 || byTask[0].ReportedBy == nil {
		t.Errorf("List(t1) = %d issues, expected 1 with reporter loaded", len(byTask))
	}
	all, _ := e.issues.List(ctx, "")
	if len(all) != 2 {
		t.Errorf("List() = %d, expected 2", len(all))
	}

	if err := e.issues.Delete(ctx, i1.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	_, err = e.issues.Get(ctx, i1.ID)
	expectStatus(t, err, http.StatusNotFound)
}
