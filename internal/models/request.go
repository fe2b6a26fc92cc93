package models

import "time"

type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// EmailRequest is used by resend-confirmation and reset-password.
type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type CreateProjectRequest struct {
	Title                  string    `json:"title"`
	Description            string    `json:"description"`
	EditingStyle           string    `json:"editing_style"`
	Platforms              []string  `json:"platforms"`
	AspectRatio            string    `json:"aspect_ratio"`
	DesiredDurationSeconds *int      `json:"desired_duration_seconds,omitempty"`
	Priority               Priority  `json:"priority"`
	DueDate                time.Time `json:"due_date"`
	ReferenceLinks         []string  `json:"reference_links"`
	NotesForEditor         *string   `json:"notes_for_editor,omitempty"`
}

type UpdateStatusRequest struct {
	Status ProjectStatus `json:"status" binding:"required"`
}

type AssignEditorRequest struct {
	EditorID string `json:"editor_id" binding:"required"`
}

type UpdateRoleRequest struct {
	Role Role `json:"role" binding:"required"`
}

type CreateCommentRequest struct {
	Body       string `json:"body" binding:"required"`
	IsInternal bool   `json:"is_internal"`
}

// UploadRequest is the Access Layer form of a multipart upload.
type UploadRequest struct {
	FileType FileType
	FileName string
	MimeType string
	Data     []byte
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
