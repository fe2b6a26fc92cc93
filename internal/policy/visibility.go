package policy

import "editdesk-backend/internal/models"

// VisibleProjects returns the subset of all that role/userID may see. It is
// applied to every listing regardless of what the store already filtered.
func VisibleProjects(all []models.Project, role models.Role, userID string) []models.Project {
	visible := make([]models.Project, 0, len(all))
	for i := range all {
		if CanView(&all[i], role, userID) {
			visible = append(visible, all[i])
		}
	}
	return visible
}

// CanView is VisibleProjects for a single project. Unknown roles see nothing.
func CanView(p *models.Project, role models.Role, userID string) bool {
	switch role {
	case models.RoleAdmin:
		return true
	case models.RoleClient:
		return p.ClientID == userID
	case models.RoleEditor:
		if p.AssignedTo(userID) {
			return true
		}
		return !p.HasEditor() && p.Status.Unclaimed()
	}
	return false
}

// VisibleComments hides internal comments from clients.
func VisibleComments(comments []models.Comment, role models.Role) []models.Comment {
	out := make([]models.Comment, 0, len(comments))
	for _, c := range comments {
		if c.IsInternal && role != models.RoleEditor && role != models.RoleAdmin {
			continue
		}
		out = append(out, c)
	}
	return out
}
