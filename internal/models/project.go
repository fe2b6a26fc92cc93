package models

import "time"

type ProjectStatus string

const (
	StatusNew                  ProjectStatus = "new"
	StatusAwaitingAssignment   ProjectStatus = "awaiting_assignment"
	StatusInProgress           ProjectStatus = "in_progress"
	StatusAwaitingClientReview ProjectStatus = "awaiting_client_review"
	StatusRevisionRequested    ProjectStatus = "revision_requested"
	StatusApproved             ProjectStatus = "approved"
	StatusOnHold               ProjectStatus = "on_hold"
	StatusCancelled            ProjectStatus = "cancelled"
)

var AllStatuses = []ProjectStatus{
	StatusNew,
	StatusAwaitingAssignment,
	StatusInProgress,
	StatusAwaitingClientReview,
	StatusRevisionRequested,
	StatusApproved,
	StatusOnHold,
	StatusCancelled,
}

func (s ProjectStatus) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions leave s.
func (s ProjectStatus) Terminal() bool {
	return s == StatusApproved || s == StatusCancelled
}

// Unclaimed reports whether s is part of the claimable pool.
func (s ProjectStatus) Unclaimed() bool {
	return s == StatusNew || s == StatusAwaitingAssignment
}

// RequiresEditor reports whether a project in status s must have an editor.
func (s ProjectStatus) RequiresEditor() bool {
	switch s {
	case StatusInProgress, StatusAwaitingClientReview, StatusRevisionRequested:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type Project struct {
	ID                     string        `json:"id"`
	ClientID               string        `json:"client_id"`
	EditorID               *string       `json:"editor_id"`
	Title                  string        `json:"title"`
	Description            string        `json:"description"`
	EditingStyle           string        `json:"editing_style"`
	Platforms              []string      `json:"platforms"`
	AspectRatio            string        `json:"aspect_ratio"`
	DesiredDurationSeconds *int          `json:"desired_duration_seconds"`
	Status                 ProjectStatus `json:"status"`
	Priority               Priority      `json:"priority"`
	DueDate                time.Time     `json:"due_date"`
	ReferenceLinks         []string      `json:"reference_links"`
	NotesForEditor         *string       `json:"notes_for_editor"`
	CreatedAt              time.Time     `json:"created_at"`
	UpdatedAt              time.Time     `json:"updated_at"`

	// Flattened from the profiles join; never written back.
	ClientName string `json:"client_name,omitempty"`
	EditorName string `json:"editor_name,omitempty"`
}

// HasEditor reports whether the project is claimed or assigned.
func (p *Project) HasEditor() bool {
	return p.EditorID != nil && *p.EditorID != ""
}

// AssignedTo reports whether userID is the project's editor.
func (p *Project) AssignedTo(userID string) bool {
	return p.HasEditor() && *p.EditorID == userID
}

// Normalize folds the transient "in_progress without an editor" combination,
// left behind by an unassignment, into awaiting_assignment.
func (p *Project) Normalize() {
	if p.Status == StatusInProgress && !p.HasEditor() {
		p.Status = StatusAwaitingAssignment
	}
	if p.EditorID != nil && *p.EditorID == "" {
		p.EditorID = nil
	}
}

// ProjectChange is a status/editor write guarded by the values it was planned against.
type ProjectChange struct {
	ExpectStatus   ProjectStatus
	ExpectEditorID *string

	Status   ProjectStatus
	EditorID *string
}

// ProjectDetail is everything the project page needs in one response.
type ProjectDetail struct {
	Project  Project       `json:"project"`
	Files    []ProjectFile `json:"files"`
	Comments []Comment     `json:"comments"`
	Editors  []Profile     `json:"editors,omitempty"`
}

type AdminStats struct {
	TotalProjects   int `json:"total_projects"`
	ActiveProjects  int `json:"active_projects"`
	NewRequests     int `json:"new_requests"`
	UrgentAttention int `json:"urgent_attention"`
}
