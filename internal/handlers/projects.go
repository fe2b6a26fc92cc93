package handlers

import (
	"net/http"

	"editdesk-backend/internal/access"
	"editdesk-backend/internal/models"
	"github.com/gin-gonic/gin"
)

type ProjectsHandler struct {
	layer *access.Layer
}

func NewProjectsHandler(layer *access.Layer) *ProjectsHandler {
	return &ProjectsHandler{layer: layer}
}

// ListProjects godoc
// @Summary     List the projects visible to the caller
// @Description Clients see their own projects, editors their assignments plus the claimable pool, admins everything.
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ProjectListResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /projects [get]
func (h *ProjectsHandler) ListProjects(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	projects, err := h.layer.ListProjects(c.Request.Context(), s)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ProjectListResponse{Projects: projects})
}

// CreateProject godoc
// @Summary     Submit a new editing request
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CreateProjectRequest true "Project brief"
// @Success     201 {object} models.Project
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /projects [post]
func (h *ProjectsHandler) CreateProject(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	project, err := h.layer.CreateProject(c.Request.Context(), s, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// GetProject godoc
// @Summary     Project with files, comments and (for admins) the editor list
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID"
// @Success     200 {object} models.ProjectDetail
// @Failure     404 {object} models.ErrorResponse
// @Router      /projects/{project_id} [get]
func (h *ProjectsHandler) GetProject(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	detail, err := h.layer.GetProjectDetail(c.Request.Context(), s, c.Param("project_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// ClaimProject godoc
// @Summary     Claim an unassigned project as the calling editor
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID"
// @Success     200 {object} models.Project
// @Failure     403 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /projects/{project_id}/claim [post]
func (h *ProjectsHandler) ClaimProject(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	project, err := h.layer.ClaimProject(c.Request.Context(), s, c.Param("project_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// UpdateStatus godoc
// @Summary     Move a project to another status
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID"
// @Param       request body models.UpdateStatusRequest true "Target status"
// @Success     200 {object} models.Project
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /projects/{project_id}/status [post]
func (h *ProjectsHandler) UpdateStatus(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	project, err := h.layer.UpdateStatus(c.Request.Context(), s, c.Param("project_id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}
