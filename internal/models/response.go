package models

type AuthResponse struct {
	Session *Session `json:"session,omitempty"`
	Profile *Profile `json:"profile,omitempty"`
	// ConfirmationRequired is set when sign-up returned no session.
	ConfirmationRequired bool `json:"confirmation_required,omitempty"`
}

type ProjectListResponse struct {
	Projects []Project `json:"projects"`
}

type FilesResponse struct {
	Files []ProjectFile `json:"files"`
}

type UploadResponse struct {
	File ProjectFile `json:"file"`
	// SuggestedStatus is advisory; the caller decides whether to apply it.
	SuggestedStatus ProjectStatus `json:"suggested_status,omitempty"`
}

type CommentsResponse struct {
	Comments []Comment `json:"comments"`
}

type ProfilesResponse struct {
	Profiles []Profile `json:"profiles"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store,omitempty"`
}
