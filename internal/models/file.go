package models

import "time"

type FileType string

const (
	FileTypeRaw       FileType = "raw"
	FileTypeFinal     FileType = "final"
	FileTypeReference FileType = "reference"
	FileTypeOther     FileType = "other"
)

func (t FileType) Valid() bool {
	switch t {
	case FileTypeRaw, FileTypeFinal, FileTypeReference, FileTypeOther:
		return true
	}
	return false
}

type ProjectFile struct {
	ID            string    `json:"id"`
	ProjectID     string    `json:"project_id"`
	UploadedBy    string    `json:"uploaded_by"`
	FileType      FileType  `json:"file_type"`
	FileName      string    `json:"file_name"`
	FileSizeBytes int64     `json:"file_size_bytes"`
	MimeType      string    `json:"mime_type"`
	StoragePath   string    `json:"storage_path"`
	CreatedAt     time.Time `json:"created_at"`

	// URL is signed per listing and expires; it is never stored.
	URL string `json:"url,omitempty"`
}

type Comment struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"project_id"`
	AuthorID   string    `json:"author_id"`
	Body       string    `json:"body"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`

	AuthorName string `json:"author_name,omitempty"`
}
