package handlers

import (
	"errors"
	"net/http"

	"clinicore/middleware"
	"clinicore/services/staff"

	"github.com/gin-gonic/gin"
)

var StaffService staff.StaffService

// SetStaffService injects the staff service implementation.
func SetStaffService(s staff.StaffService) {
	StaffService = s
}

// StaffSignIn authenticates an operator and issues a bearer token.
func StaffSignIn(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	token, member, err := StaffService.SignIn(input.Email, input.Password)
	if err != nil {
		if errors.Is(err, staff.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sign-in failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "staff": member})
}

// RegisterDevice stores the push token of the signed-in operator's device.
func RegisterDevice(c *gin.Context) {
	staffID := c.GetString(middleware.ContextStaffID)
	var input struct {
		FCMToken string `json:"fcmToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if err := StaffService.RegisterDevice(staffID, input.FCMToken); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register device", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"registered": true})
}
