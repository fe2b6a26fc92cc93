package policy

import (
	"editdesk-backend/internal/apperr"
	"editdesk-backend/internal/models"
)

// CanUpload checks who may attach which kind of file. Editors in the
// claimable pool can look but not upload.
func CanUpload(actor Actor, p *models.Project, fileType models.FileType) error {
	if !fileType.Valid() {
		return apperr.Invalidf("unknown file type %q", fileType)
	}
	switch Relation(actor, p) {
	case RelStaff, RelAssignee:
		return nil
	case RelOwner:
		if fileType == models.FileTypeFinal {
			return apperr.Denied("only the assigned editor can upload final files")
		}
		return nil
	}
	return apperr.Denied("you are not a participant in this project")
}

// CanComment checks who may write on a project's thread.
func CanComment(actor Actor, p *models.Project, internal bool) error {
	if internal && actor.Role != models.RoleEditor && actor.Role != models.RoleAdmin {
		return apperr.Denied("only editors and admins can write internal comments")
	}
	switch Relation(actor, p) {
	case RelStaff, RelAssignee, RelOwner:
		return nil
	}
	return apperr.Denied("you are not a participant in this project")
}

// SuggestAfterUpload returns the status the uploader should be prompted to
// move to, or "". Never applied automatically.
func SuggestAfterUpload(actor Actor, p *models.Project, fileType models.FileType) models.ProjectStatus {
	if fileType == models.FileTypeFinal && p.Status == models.StatusInProgress && p.AssignedTo(actor.ID) {
		return models.StatusAwaitingClientReview
	}
	return ""
}
