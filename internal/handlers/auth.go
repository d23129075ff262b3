package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nutqapp/nutq-backend/internal/apierr"
	"github.com/nutqapp/nutq-backend/internal/middleware"
	"github.com/nutqapp/nutq-backend/internal/services"
	"github.com/nutqapp/nutq-backend/internal/types"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// userPayload picks the concrete record behind the actor for serialization.
// Password fields never serialize; the types carry json:"-" on them.
func userPayload(actor *services.Actor) any {
	switch {
	case actor.Parent != nil:
		return actor.Parent
	case actor.Specialist != nil:
		return actor.Specialist
	case actor.Admin != nil:
		return actor.Admin
	default:
		return nil
	}
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Name           string `json:"name"`
		Email          string `json:"email"`
		Password       string `json:"password"`
		Role           string `json:"role"`
		Phone          string `json:"phone"`
		Specialization string `json:"specialization"`
		LicenseNumber  string `json:"licenseNumber"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.BadRequest("invalid_body", errors.New("invalid request body")))
		return
	}
	actor, token, err := ah.authService.Register(c.Request.Context(), services.RegisterInput{
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		Role:           types.Role(req.Role),
		Phone:          req.Phone,
		Specialization: req.Specialization,
		LicenseNumber:  req.LicenseNumber,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusCreated, gin.H{"token": token, "user": userPayload(actor)})
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.BadRequest("invalid_body", errors.New("invalid request body")))
		return
	}
	actor, token, err := ah.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"token": token, "user": userPayload(actor)})
}

func (ah *AuthHandler) Me(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	RespondOK(c, http.StatusOK, gin.H{"user": userPayload(actor)})
}

func (ah *AuthHandler) Refresh(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	token, err := ah.authService.Refresh(c.Request.Context(), actor)
	if err != nil {
		RespondError(c, err)
		return
	}
	expiresIn := int(ah.authService.TokenTTL().Seconds())
	RespondOK(c, http.StatusOK, gin.H{"token": token, "expiresIn": expiresIn})
}

func (ah *AuthHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		Name  string  `json:"name"`
		Email string  `json:"email"`
		Phone *string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.BadRequest("invalid_body", errors.New("invalid request body")))
		return
	}
	actor := middleware.ActorFrom(c)
	if err := ah.authService.UpdateProfile(c.Request.Context(), actor, services.ProfileUpdateInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"user": userPayload(actor)})
}

func (ah *AuthHandler) ChangePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.BadRequest("invalid_body", errors.New("invalid request body")))
		return
	}
	actor := middleware.ActorFrom(c)
	if err := ah.authService.ChangePassword(c.Request.Context(), actor, req.CurrentPassword, req.NewPassword); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"message": "Password updated successfully"})
}

func (ah *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.BadRequest("invalid_body", errors.New("invalid request body")))
		return
	}
	if err := ah.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"message": "If that email exists, a reset code has been sent"})
}

func (ah *AuthHandler) VerifyResetToken(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.BadRequest("invalid_body", errors.New("invalid request body")))
		return
	}
	if err := ah.authService.VerifyResetToken(c.Request.Context(), req.Token); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"message": "Code is valid"})
}

func (ah *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.BadRequest("invalid_body", errors.New("invalid request body")))
		return
	}
	if err := ah.authService.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"message": "Password reset successfully"})
}

func (ah *AuthHandler) VerifyEmail(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.BadRequest("invalid_body", errors.New("invalid request body")))
		return
	}
	if err := ah.authService.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"message": "Email verified successfully"})
}

func (ah *AuthHandler) ResendVerification(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if err := ah.authService.ResendVerification(c.Request.Context(), actor); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"message": "Verification code sent"})
}

func (ah *AuthHandler) MySpecialist(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if actor.Parent == nil {
		RespondError(c, apierr.Forbidden("not_a_parent", errors.New("Only parent accounts have a linked specialist")))
		return
	}
	specialist, center, err := ah.authService.LinkedSpecialistOf(c.Request.Context(), actor.Parent)
	if err != nil {
		RespondError(c, err)
		return
	}
	payload := gin.H{"specialist": specialist}
	if center != nil {
		payload["center"] = center
	}
	RespondOK(c, http.StatusOK, payload)
}
