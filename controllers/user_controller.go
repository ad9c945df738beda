package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Roshan11032005/nutri-backend/middlewares"
	"github.com/Roshan11032005/nutri-backend/services"
	"github.com/Roshan11032005/nutri-backend/utils"
)

type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

func (ctl *UserController) GetProfile(c *gin.Context) {
	profile, err := ctl.users.GetProfile(c.GetString(middlewares.CtxUserID))
	if errors.Is(err, services.ErrUserNotFound) {
		utils.SendJSON(c, http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		utils.SendJSON(c, http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	utils.SendJSON(c, http.StatusOK, profile)
}

func (ctl *UserController) UpdateProfile(c *gin.Context) {
	var input services.ProfileUpdate
	if err := c.ShouldBindBodyWithJSON(&input); err != nil {
		utils.SendJSON(c, http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := ctl.users.UpdateProfile(c.GetString(middlewares.CtxUserID), input)
	if errors.Is(err, services.ErrUserNotFound) {
		utils.SendJSON(c, http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		utils.SendJSON(c, http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	utils.SendJSON(c, http.StatusOK, gin.H{"message": "Profile updated successfully"})
}
