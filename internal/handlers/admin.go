package handlers

import (
	"net/http"

	"editdesk-backend/internal/access"
	"editdesk-backend/internal/models"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	layer *access.Layer
}

func NewAdminHandler(layer *access.Layer) *AdminHandler {
	return &AdminHandler{layer: layer}
}

// ListEditors godoc
// @Summary     Profiles with the editor role
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ProfilesResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /editors [get]
func (h *AdminHandler) ListEditors(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	editors, err := h.layer.ListEditors(c.Request.Context(), s)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ProfilesResponse{Profiles: editors})
}

// Stats godoc
// @Summary     Dashboard counters
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.AdminStats
// @Failure     403 {object} models.ErrorResponse
// @Router      /admin/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	stats, err := h.layer.Stats(c.Request.Context(), s)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListUsers godoc
// @Summary     All profiles
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ProfilesResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	profiles, err := h.layer.ListProfiles(c.Request.Context(), s)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ProfilesResponse{Profiles: profiles})
}

// UpdateRole godoc
// @Summary     Change another user's role
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       user_id path string true "User ID"
// @Param       request body models.UpdateRoleRequest true "New role"
// @Success     200 {object} models.Profile
// @Failure     403 {object} models.ErrorResponse
// @Router      /admin/users/{user_id}/role [patch]
func (h *AdminHandler) UpdateRole(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	var req models.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	profile, err := h.layer.UpdateRole(c.Request.Context(), s, c.Param("user_id"), req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// AssignEditor godoc
// @Summary     Assign or reassign a project's editor
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID"
// @Param       request body models.AssignEditorRequest true "Editor"
// @Success     200 {object} models.Project
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /admin/projects/{project_id}/editor [put]
func (h *AdminHandler) AssignEditor(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	var req models.AssignEditorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	project, err := h.layer.AssignEditor(c.Request.Context(), s, c.Param("project_id"), req.EditorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// UnassignEditor godoc
// @Summary     Return a project to the unassigned pool
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID"
// @Success     200 {object} models.Project
// @Failure     403 {object} models.ErrorResponse
// @Router      /admin/projects/{project_id}/editor [delete]
func (h *AdminHandler) UnassignEditor(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	project, err := h.layer.UnassignEditor(c.Request.Context(), s, c.Param("project_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}
