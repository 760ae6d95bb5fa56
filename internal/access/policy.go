// Package access holds the role and ownership rules that decide who may read
// or change projects and tasks. Everything here is pure; callers load the
// ownership facts and pass them in.
package access

import "strings"

// Role is the privilege tier of a team member.
type Role int

const (
	Standard Role = iota
	Manager
	Admin
)

// ParseRole maps a stored role name onto a tier. Matching is case-insensitive
// and any unknown name is Standard.
func ParseRole(name string) Role {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "admin":
		return Admin
	case "manager":
		return Manager
	default:
		return Standard
	}
}

// Elevated reports whether the role bypasses ownership checks.
func (r Role) Elevated() bool {
	return r == Admin || r == Manager
}

func (r Role) String() string {
	switch r {
	case Admin:
		return "admin"
	case Manager:
		return "manager"
	default:
		return "standard"
	}
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   string
	Role Role
}

// ProjectOwnership is what the rules need to know about a project.
type ProjectOwnership struct {
	CreatorID   string
	AssigneeIDs []string // assignees of the project's tasks, duplicates allowed
}

// TaskOwnership is what the rules need to know about a task.
type TaskOwnership struct {
	CreatorID        string
	AssigneeID       string // empty when unassigned
	ProjectCreatorID string
}

// CanViewProject: elevated sees everything, others only projects they
// created or hold a task in.
func CanViewProject(a Actor, p ProjectOwnership) bool {
	if a.Role.Elevated() || p.CreatorID == a.ID {
		return true
	}
	for _, id := range p.AssigneeIDs {
		if id != "" && id == a.ID {
			return true
		}
	}
	return false
}

// CanMutateProject covers both update and delete.
func CanMutateProject(a Actor, creatorID string) bool {
	return a.Role.Elevated() || creatorID == a.ID
}

// CanListProjectTasks gates listing every task of one project. Anyone who can
// see the project sees all of its tasks.
func CanListProjectTasks(a Actor, p ProjectOwnership) bool {
	return CanViewProject(a, p)
}

// CanViewTask gates reading a single task.
func CanViewTask(a Actor, t TaskOwnership) bool {
	if a.Role.Elevated() {
		return true
	}
	return a.ID == t.CreatorID || a.ID == t.ProjectCreatorID || (t.AssigneeID != "" && a.ID == t.AssigneeID)
}

// EditTier is how much of a task an actor may change.
type EditTier int

const (
	EditNone EditTier = iota
	EditStatusOnly
	EditFull
)

// TaskEditTier: elevated and both creators get full edit rights, a plain
// assignee may only move the status, and everyone else gets nothing.
func TaskEditTier(a Actor, t TaskOwnership) EditTier {
	switch {
	case a.Role.Elevated(), a.ID == t.CreatorID, a.ID == t.ProjectCreatorID:
		return EditFull
	case t.AssigneeID != "" && a.ID == t.AssigneeID:
		return EditStatusOnly
	default:
		return EditNone
	}
}

// CanCreateTask and task deletion at the route level are elevated only.
func CanCreateTask(a Actor) bool {
	return a.Role.Elevated()
}

// CanDeleteTask requires full edit rights on the task.
func CanDeleteTask(a Actor, t TaskOwnership) bool {
	return TaskEditTier(a, t) == EditFull
}
