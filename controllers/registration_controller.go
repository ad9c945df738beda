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

// RegistrationController serves the two-step signup flow: stage details and
// send the verification OTP, then verify the OTP and create the account.
type RegistrationController struct {
	auth *services.AuthService
}

func NewRegistrationController(auth *services.AuthService) *RegistrationController {
	return &RegistrationController{auth: auth}
}

type SignupInput struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	MobileNumber string `json:"mobile_number" binding:"required"`
	Password     string `json:"password" binding:"required"`
}

func (ctl *RegistrationController) Signup(c *gin.Context) {
	var input SignupInput
	if err := c.ShouldBindBodyWithJSON(&input); err != nil {
		utils.SendJSON(c, http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := ctl.auth.StageSignup(c.Request.Context(), services.SignupInput{
		Name:         input.Name,
		Email:        input.Email,
		MobileNumber: input.MobileNumber,
		Password:     input.Password,
	})
	if errors.Is(err, services.ErrDuplicateUser) {
		utils.SendJSON(c, http.StatusBadRequest, gin.H{"error": "Email or mobile number already registered"})
		return
	}
	if err != nil {
		slog.Error("signup failed", "email", input.Email, "error", err)
		utils.SendJSON(c, http.StatusInternalServerError, gin.H{"error": "Signup OTP sending failed"})
		return
	}

	utils.SendJSON(c, http.StatusOK, gin.H{
		"message": "Verification OTP sent to your email",
		"token":   token,
	})
}

type VerifySignupInput struct {
	OTP string `json:"otp"`
}

func (ctl *RegistrationController) VerifySignup(c *gin.Context) {
	var input VerifySignupInput
	if err := c.ShouldBindBodyWithJSON(&input); err != nil || input.OTP == "" {
		utils.SendJSON(c, http.StatusBadRequest, gin.H{"error": "OTP is required"})
		return
	}

	email := c.GetString(middlewares.CtxUsername)
	user, err := ctl.auth.CompleteSignup(c.Request.Context(), email, input.OTP)
	switch {
	case errors.Is(err, services.ErrInvalidOTP):
		utils.SendJSON(c, http.StatusBadRequest, gin.H{"error": "Invalid or expired OTP"})
		return
	case errors.Is(err, services.ErrSignupExpired):
		utils.SendJSON(c, http.StatusBadRequest, gin.H{"error": "Signup data expired"})
		return
	case err != nil:
		slog.Error("verify_signup failed", "email", email, "error", err)
		utils.SendJSON(c, http.StatusInternalServerError, gin.H{"error": "Verification failed"})
		return
	}

	utils.SendJSON(c, http.StatusOK, gin.H{
		"message": "Signup successful",
		"user_id": user.ID,
		"email":   user.Email,
	})
}
