package services

import (
	"fmt"
	"time"

	"github.com/huangang/taskflow/backend/internal/models"
)

// Intent is a decision that one member should hear about an event. Builders
// below are pure so the fan-out rules can be tested without a database.
type Intent struct {
	UserID    string
	Type      string
	Title     string
	Message   string
	TaskID    string
	ProjectID string
}

func projectCreatedIntent(p *models.Project) Intent {
	return Intent{
		UserID:    p.CreatedByID,
		Type:      models.NotificationProjectCreated,
		Title:     "Project Created",
		Message:   fmt.Sprintf("You successfully created the project %q", p.Name),
		ProjectID: p.ID,
	}
}

// projectScheduleIntents notifies every distinct task assignee once.
func projectScheduleIntents(p *models.Project, assigneeIDs []string, prev, next *time.Time) []Intent {
	seen := make(map[string]bool, len(assigneeIDs))
	var intents []Intent
	for _, id := range assigneeIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		intents = append(intents, Intent{
			UserID: id,
			Type:   models.NotificationScheduleUpdated,
			Title:  "Project Schedule Updated",
			Message: fmt.Sprintf("The deadline for project %q has been changed from %s to %s",
				p.Name, formatDate(prev), formatDate(next)),
			ProjectID: p.ID,
		})
	}
	return intents
}

func taskAssignedIntent(t *models.Task, assigneeID, assignerName string) Intent {
	return Intent{
		UserID:  assigneeID,
		Type:    models.NotificationTaskAssigned,
		Title:   "Task Assigned",
		Message: fmt.Sprintf("%s assigned you %q", assignerName, t.Title),
		TaskID:  t.ID,
	}
}

func taskReassignedIntent(t *models.Task, assigneeID string) Intent {
	return Intent{
		UserID:  assigneeID,
		Type:    models.NotificationTaskAssigned,
		Title:   "Task Reassigned",
		Message: fmt.Sprintf("You have been assigned %q", t.Title),
		TaskID:  t.ID,
	}
}

func taskScheduleIntent(t *models.Task, assigneeID string, prev, next *time.Time) Intent {
	return Intent{
		UserID: assigneeID,
		Type:   models.NotificationScheduleUpdated,
		Title:  "Task Schedule Updated",
		Message: fmt.Sprintf("The due date for %q has been changed from %s to %s",
			t.Title, formatDate(prev), formatDate(next)),
		TaskID: t.ID,
	}
}

// taskCompletedIntents tells the task creator and then the project creator,
// skipping the assignee and never naming a recipient twice.
func taskCompletedIntents(t *models.Task, projectName, projectCreatorID string) []Intent {
	assignee := t.AssigneeID()
	var intents []Intent

	if t.CreatedByID != "" && t.CreatedByID != assignee {
		intents = append(intents, Intent{
			UserID:  t.CreatedByID,
			Type:    models.NotificationTaskCompleted,
			Title:   "Task Completed",
			Message: fmt.Sprintf("%q has been marked as completed", t.Title),
			TaskID:  t.ID,
		})
	}

	if projectCreatorID != "" && projectCreatorID != assignee && projectCreatorID != t.CreatedByID {
		intents = append(intents, Intent{
			UserID:    projectCreatorID,
			Type:      models.NotificationTaskCompleted,
			Title:     "Task Completed",
			Message:   fmt.Sprintf("%q in project %q has been completed", t.Title, projectName),
			TaskID:    t.ID,
			ProjectID: t.ProjectID,
		})
	}
	return intents
}

// issueCreatedIntents may yield both an issue-assigned and an issue-reported
// intent for the same call, even for the same member.
func issueCreatedIntents(issue *models.Issue, task *models.Task, reporterName string) []Intent {
	var intents []Intent

	if issue.AssignedToID != nil && *issue.AssignedToID != "" {
		intents = append(intents, Intent{
			UserID:  *issue.AssignedToID,
			Type:    models.NotificationIssueAssigned,
			Title:   "Issue Assigned",
			Message: fmt.Sprintf("%s assigned you an issue: %q in task %q", reporterName, issue.Title, task.Title),
			TaskID:  task.ID,
		})
	}

	if assignee := task.AssigneeID(); assignee != "" && assignee != issue.ReportedByID {
		intents = append(intents, Intent{
			UserID:  assignee,
			Type:    models.NotificationIssueReported,
			Title:   "New Issue Reported",
			Message: fmt.Sprintf("%s reported an issue in your task: %q", reporterName, task.Title),
			TaskID:  task.ID,
		})
	}
	return intents
}

func issueResolvedIntents(issue *models.Issue, task *models.Task) []Intent {
	var intents []Intent

	if issue.ReportedByID != "" {
		intents = append(intents, Intent{
			UserID:  issue.ReportedByID,
			Type:    models.NotificationIssueResolved,
			Title:   "Issue Resolved",
			Message: fmt.Sprintf("The issue %q has been resolved", issue.Title),
			TaskID:  issue.TaskID,
		})
	}

	if task != nil {
		if assignee := task.AssigneeID(); assignee != "" && assignee != issue.ReportedByID {
			intents = append(intents, Intent{
				UserID:  assignee,
				Type:    models.NotificationIssueResolved,
				Title:   "Issue Resolved",
				Message: fmt.Sprintf("The issue %q in your task has been resolved", issue.Title),
				TaskID:  task.ID,
			})
		}
	}
	return intents
}
