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

// AuthController serves password login, token refresh and logout.
type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

type LoginInput struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Login authenticates with email and password, bypassing the OTP flow.
func (ctl *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindBodyWithJSON(&input); err != nil || input.Identifier == "" || input.Password == "" {
		utils.SendJSON(c, http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	pair, err := ctl.auth.Login(c.Request.Context(), input.Identifier, input.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		utils.SendJSON(c, http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		slog.Error("login failed", "error", err)
		utils.SendJSON(c, http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	utils.SendJSON(c, http.StatusOK, gin.H{
		"message":      "Login successful",
		"sessionToken": pair.SessionToken,
		"refreshToken": pair.RefreshToken,
		"user_id":      pair.UserID,
	})
}

// RefreshToken rotates the pair for an already validated refresh token
// (see middlewares.RequireRefresh). The presented refresh token remains
// valid until it expires or is revoked.
func (ctl *AuthController) RefreshToken(c *gin.Context) {
	username := c.GetString(middlewares.CtxUsername)
	userID := c.GetString(middlewares.CtxUserID)

	pair, err := ctl.auth.Refresh(username, userID)
	if err != nil {
		slog.Error("refresh failed", "username", username, "error", err)
		utils.SendJSON(c, http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	slog.Info("refresh token used", "username", username, "userId", userID)
	utils.SendJSON(c, http.StatusOK, gin.H{
		"message":      "Token refreshed successfully",
		"sessionToken": pair.SessionToken,
		"refreshToken": pair.RefreshToken,
	})
}

type LogoutInput struct {
	RefreshToken string `json:"refreshToken"`
}

// Logout blacklists the presented session token and its paired refresh
// token for their remaining lifetimes.
func (ctl *AuthController) Logout(c *gin.Context) {
	var input LogoutInput
	if err := c.ShouldBindBodyWithJSON(&input); err != nil || input.RefreshToken == "" {
		utils.SendJSON(c, http.StatusBadRequest, gin.H{"error": "Refresh token is required"})
		return
	}

	sessionToken := c.GetString(middlewares.CtxToken)
	if err := ctl.auth.Revoke(c.Request.Context(), sessionToken, input.RefreshToken); err != nil {
		slog.Error("logout failed", "error", err)
		utils.SendJSON(c, http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	utils.SendJSON(c, http.StatusOK, gin.H{"message": "Logout successful"})
}
