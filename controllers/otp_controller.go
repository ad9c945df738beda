package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Roshan11032005/nutri-backend/middlewares"
	"github.com/Roshan11032005/nutri-backend/services"
	"github.com/Roshan11032005/nutri-backend/utils"
)

// OTPController serves the OTP login flow: challenge (send_email) and
// elevation (submit_otp).
type OTPController struct {
	auth *services.AuthService
}

func NewOTPController(auth *services.AuthService) *OTPController {
	return &OTPController{auth: auth}
}

type SendEmailInput struct {
	Email string `json:"email"`
}

// SendEmail looks the user up and issues the OTP challenge plus a Level-1
// token.
func (ctl *OTPController) SendEmail(c *gin.Context) {
	var input SendEmailInput
	if err := c.ShouldBindBodyWithJSON(&input); err != nil || input.Email == "" {
		utils.SendJSON(c, http.StatusBadRequest, gin.H{"error": "Email is required"})
		return
	}

	token, err := ctl.auth.Challenge(c.Request.Context(), input.Email)
	if errors.Is(err, services.ErrUserNotFound) {
		utils.SendJSON(c, http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		slog.Error("send_email failed", "email", input.Email, "error", err)
		utils.SendJSON(c, http.StatusInternalServerError, gin.H{"error": "Failed to send OTP"})
		return
	}

	utils.SendJSON(c, http.StatusOK, gin.H{
		"message": "Verification OTP sent to your email",
		"token":   token,
	})
}

type SubmitOTPInput struct {
	OTP string `json:"otp"`
}

// SubmitOTP verifies the submitted code against the identifier carried in
// the Level-1 token and, on success, issues the session/refresh pair.
func (ctl *OTPController) SubmitOTP(c *gin.Context) {
	var input SubmitOTPInput
	if err := c.ShouldBindBodyWithJSON(&input); err != nil || input.OTP == "" {
		utils.SendJSON(c, http.StatusBadRequest, gin.H{"error": "OTP is required"})
		return
	}

	email := c.GetString(middlewares.CtxUsername)
	pair, err := ctl.auth.Elevate(c.Request.Context(), email, input.OTP)
	switch {
	case errors.Is(err, services.ErrInvalidOTP):
		utils.SendJSON(c, http.StatusBadRequest, gin.H{"error": "Invalid or expired OTP"})
		return
	case errors.Is(err, services.ErrSessionExpired):
		utils.SendJSON(c, http.StatusBadRequest, gin.H{"error": "OTP session data expired or missing"})
		return
	case err != nil:
		slog.Error("submit_otp failed", "email", email, "error", err)
		utils.SendJSON(c, http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	utils.SendJSON(c, http.StatusOK, gin.H{
		"message":      "OTP verified successfully",
		"sessionToken": pair.SessionToken,
		"refreshToken": pair.RefreshToken,
		"user_id":      pair.UserID,
	})
}
