package handlers

import (
	"net/http"

	"editdesk-backend/internal/access"
	"editdesk-backend/internal/models"
	"github.com/gin-gonic/gin"
)

type CommentsHandler struct {
	layer *access.Layer
}

func NewCommentsHandler(layer *access.Layer) *CommentsHandler {
	return &CommentsHandler{layer: layer}
}

// ListComments godoc
// @Summary     Project comments, oldest first
// @Description Internal comments are omitted for clients.
// @Tags        comments
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID"
// @Success     200 {object} models.CommentsResponse
// @Router      /projects/{project_id}/comments [get]
func (h *CommentsHandler) ListComments(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	comments, err := h.layer.ListComments(c.Request.Context(), s, c.Param("project_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.CommentsResponse{Comments: comments})
}

// AddComment godoc
// @Summary     Comment on a project
// @Tags        comments
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID"
// @Param       request body models.CreateCommentRequest true "Comment"
// @Success     201 {object} models.Comment
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /projects/{project_id}/comments [post]
func (h *CommentsHandler) AddComment(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	var req models.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	comment, err := h.layer.AddComment(c.Request.Context(), s, c.Param("project_id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}
