package handlers

import (
	"net/http"

	"editdesk-backend/internal/access"
	"editdesk-backend/internal/models"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	layer *access.Layer
}

func NewAuthHandler(layer *access.Layer) *AuthHandler {
	return &AuthHandler{layer: layer}
}

// SignUp godoc
// @Summary     Create an account
// @Description Registers a client or editor. When email confirmation is on, no session is returned
// @Description and confirmation_required is set.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body models.SignUpRequest true "Account details"
// @Success     200 {object} models.AuthResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /auth/signup [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.layer.SignUp(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SignIn godoc
// @Summary     Sign in with email and password
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body models.SignInRequest true "Credentials"
// @Success     200 {object} models.AuthResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /auth/signin [post]
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req models.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.layer.SignIn(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SignOut godoc
// @Summary     End the current session
// @Tags        auth
// @Security    Bearer
// @Success     204
// @Router      /auth/signout [post]
func (h *AuthHandler) SignOut(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	if err := h.layer.SignOut(c.Request.Context(), s); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ResendConfirmation godoc
// @Summary     Resend the sign-up confirmation email
// @Tags        auth
// @Accept      json
// @Param       request body models.EmailRequest true "Email"
// @Success     202
// @Router      /auth/resend [post]
func (h *AuthHandler) ResendConfirmation(c *gin.Context) {
	var req models.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.layer.ResendConfirmation(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// ResetPassword godoc
// @Summary     Send a password recovery email
// @Tags        auth
// @Accept      json
// @Param       request body models.EmailRequest true "Email"
// @Success     202
// @Router      /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.layer.ResetPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// Session godoc
// @Summary     Current session and profile
// @Description Returns the caller's profile, creating it first if sign-up could not.
// @Tags        auth
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.AuthResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	profile, err := h.layer.CurrentProfile(c.Request.Context(), s)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.AuthResponse{Session: &s, Profile: profile})
}
