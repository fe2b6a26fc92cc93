package handlers

import (
	"net/http"

	"editdesk-backend/internal/access"
	"editdesk-backend/internal/models"
	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	layer *access.Layer
}

func NewProfileHandler(layer *access.Layer) *ProfileHandler {
	return &ProfileHandler{layer: layer}
}

// UpdateProfile godoc
// @Summary     Update your own name or avatar
// @Tags        profile
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.ProfilePatch true "Fields to change"
// @Success     200 {object} models.Profile
// @Failure     400 {object} models.ErrorResponse
// @Router      /profile [patch]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	var patch models.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}

	profile, err := h.layer.UpdateOwnProfile(c.Request.Context(), s, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
