package model

// Role is a user's platform-wide role. It is distinct from the per-workspace WorkspaceRole.
type Role uint8

const (
	_ Role = iota
	RoleUser
	RoleOperator // site operator, may create workspaces, projects and boards
)

// User status
type Status uint8

const (
	_              Status = iota
	StatusPending         // Pending status, not yet activated
	StatusActive          // Active status
	StatusInactive        // Inactive status
)

// WorkspaceRole is a user's role inside one workspace.
type WorkspaceRole string

const (
	WorkspaceRoleAdmin  WorkspaceRole = "ADMIN"
	WorkspaceRoleMember WorkspaceRole = "MEMBER"
)

type WorkType string

const (
	WorkTypeTask  WorkType = "TASK"
	WorkTypeStory WorkType = "STORY"
	WorkTypeBug   WorkType = "BUG"
	WorkTypeEpic  WorkType = "EPIC"
)

func (w WorkType) Valid() bool {
	switch w {
	case WorkTypeTask, WorkTypeStory, WorkTypeBug, WorkTypeEpic:
		return true
	}
	return false
}

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusInReview   TaskStatus = "IN_REVIEW"
	TaskStatusDone       TaskStatus = "DONE"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Entity types recorded in the activity log
const (
	EntityWorkspace = "Workspace"
	EntityProject   = "Project"
	EntityBoard     = "Board"
	EntitySprint    = "Sprint"
	EntityTaskList  = "TaskList"
	EntityTask      = "Task"
	EntityComment   = "Comment"
)
