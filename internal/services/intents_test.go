package services

import (
	"strings"
	"testing"
	"time"

	"github.com/huangang/taskflow/backend/internal/models"
)

func date(s string) *time.Time {
	t, _ := time.Parse(DateLayout, s)
	return &t
}

func recipients(intents []Intent) []string {
	ids := make([]string, 0, len(intents))
	for _, in := range intents {
		ids = append(ids, in.UserID)
	}
	return ids
}

func TestTaskCompletedIntents(t *testing.T) {
	tests := []struct {
		name             string
		creator          string
		assignee         string
		projectCreator   string
		expectedUsers    []string
		expectProjectRef []bool
	}{
		{"creator and distinct project creator", "m", "u", "m2", []string{"m", "m2"}, []bool{false, true}},
		{"creator is project creator", "m", "u", "m", []string{"m"}, []bool{false}},
		{"assignee created the task", "u", "u", "m", []string{"m"}, []bool{true}},
		{"assignee owns everything", "u", "u", "u", nil, nil},
		{"unassigned task", "m", "", "m2", []string{"m", "m2"}, []bool{false, true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &models.Task{ID: "t1", Title: "Ship", ProjectID: "p1", CreatedByID: tt.creator}
			if tt.assignee != "" {
				task.AssignedToID = strPtr(tt.assignee)
			}

			intents := taskCompletedIntents(task, "Apollo", tt.projectCreator)
			got := recipients(intents)
			if len(got) != len(tt.expectedUsers) {
				t.Fatalf("recipients = %v, expected %v", got, tt.expectedUsers)
			}
			for i := range got {
				if got[i] != tt.expectedUsers[i] {
					t.Errorf("recipient[%d] = %q, expected %q", i, got[i], tt.expectedUsers[i])
				}
				if intents[i].Type != models.NotificationTaskCompleted {
					t.Errorf("type = %q, expected %q", intents[i].Type, models.NotificationTaskCompleted)
				}
				if hasRef := intents[i].ProjectID != ""; hasRef != tt.expectProjectRef[i] {
					t.Errorf("intent[%d] project ref = %v, expected %v", i, hasRef, tt.expectProjectRef[i])
				}
			}
		})
	}
}

func TestProjectScheduleIntents_DistinctAssignees(t *testing.T) {
	p := &models.Project{ID: "p1", Name: "Apollo"}
	intents := projectScheduleIntents(p, []string{"u1", "", "u2", "u1"}, date("2025-01-01"), date("2025-02-01"))

	got := recipients(intents)
	if len(got) != 2 || got[0] != "u1" || got[1] != "u2" {
		t.Fatalf("recipients = %v, expected [u1 u2]", got)
	}
	msg := intents[0].Message
	if !strings.Contains(msg, "2025-01-01") || !strings.Contains(msg, "2025-02-01") {
		t.Errorf("message %q should carry both dates", msg)
	}
	if intents[0].ProjectID != "p1" {
		t.Errorf("ProjectID = %q, expected %q", intents[0].ProjectID, "p1")
	}
}

func TestProjectScheduleIntents_FirstDeadline(t *testing.T) {
	p := &models.Project{ID: "p1", Name: "Apollo"}
	intents := projectScheduleIntents(p, []string{"u1"}, nil, date("2025-03-15"))
	if len(intents) != 1 {
		t.Fatalf("expected 1 intent, got %d", len(intents))
	}
	if !strings.Contains(intents[0].Message, "from No date to 2025-03-15") {
		t.Errorf("unexpected message %q", intents[0].Message)
	}
}

func TestIssueCreatedIntents(t *testing.T) {
	task := &models.Task{ID: "t1", Title: "Ship", AssignedToID: strPtr("u")}

	tests := []struct {
		name     string
		reporter string
		assignee *string
		expected []string
	}{
		{"assigned and reported", "r", strPtr("a"), []string{models.NotificationIssueAssigned, models.NotificationIssueReported}},
		{"reported by task assignee", "u", strPtr("a"), []string{models.NotificationIssueAssigned}},
		{"no issue assignee", "r", nil, []string{models.NotificationIssueReported}},
		{"both go to task assignee", "r", strPtr("u"), []string{models.NotificationIssueAssigned, models.NotificationIssueReported}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issue := &models.Issue{Title: "Crash", ReportedByID: tt.reporter, AssignedToID: tt.assignee}
			intents := issueCreatedIntents(issue, task, "Rita")
			if len(intents) != len(tt.expected) {
				t.Fatalf("got %d intents, expected %d", len(intents), len(tt.expected))
			}
			for i, typ := range tt.expected {
				if intents[i].Type != typ {
					t.Errorf("intent[%d].Type = %q, expected %q", i, intents[i].Type, typ)
				}
			}
		})
	}
}

func TestIssueResolvedIntents(t *testing.T) {
	task := &models.Task{ID: "t1", AssignedToID: strPtr("u")}

	intents := issueResolvedIntents(&models.Issue{Title: "Crash", TaskID: "t1", ReportedByID: "r"}, task)
	if got := recipients(intents); len(got) != 2 || got[0] != "r" || got[1] != "u" {
		t.Errorf("recipients = %v, expected [r u]", got)
	}

	intents = issueResolvedIntents(&models.Issue{Title: "Crash", TaskID: "t1", ReportedByID: "u"}, task)
	if got := recipients(intents); len(got) != 1 || got[0] != "u" {
		t.Errorf("recipients = %v, expected [u]", got)
	}
}

func TestDates(t *testing.T) {
	if got := formatDate(nil); got != "No date" {
		t.Errorf("formatDate(nil) = %q", got)
	}
	if !dateMovedOrSet(nil, date("2025-01-01")) {
		t.Error("first date should count as set")
	}
	if dateMovedOrSet(date("2025-01-01"), nil) {
		t.Error("clearing is not a schedule change")
	}
	if dateMovedOrSet(date("2025-01-01"), date("2025-01-01")) {
		t.Error("same day is not a change")
	}

	parsed, err := parseDate("due_date", "2025-02-01T15:04:05Z")
	if err != nil {
		t.Fatalf("parseDate() error = %v", err)
	}
	if formatDate(parsed) != "2025-02-01" {
		t.Errorf("parsed = %s, expected 2025-02-01", formatDate(parsed))
	}
	if _, err := parseDate("due_date", "next week"); err == nil {
		t.Error("parseDate should reject free text")
	}
}
