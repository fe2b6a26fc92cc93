package policy

import "editdesk-backend/internal/models"

// ComputeStats aggregates the admin dashboard counters. "Active" means not in
// a terminal status, the same set the state machine uses.
func ComputeStats(all []models.Project) models.AdminStats {
	stats := models.AdminStats{TotalProjects: len(all)}
	for _, p := range all {
		if p.Status.Terminal() {
			continue
		}
		stats.ActiveProjects++
		if p.Status == models.StatusNew {
			stats.NewRequests++
		}
		if p.Priority == models.PriorityUrgent {
			stats.UrgentAttention++
		}
	}
	return stats
}
