package handlers

import (
	"net/http"

	"ctrlroom/models"
	"ctrlroom/services/auth"
	"ctrlroom/services/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	UserService user.UserService
}

// Signup handles POST /api/auth/signup.
func (h *UserHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	resp, err := h.UserService.Signup(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	getLogger(c).Info("User signed up", zap.String("userId", resp.User.ID), zap.String("role", string(resp.User.Role)))
	c.JSON(http.StatusCreated, resp)
}

// Login handles POST /api/auth/login.
func (h *UserHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	resp, err := h.UserService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me handles GET /api/users/me.
func (h *UserHandler) Me(c *gin.Context) {
	p, _ := auth.FromContext(c.Request.Context())
	u, err := h.UserService.GetUserByID(c.Request.Context(), p.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// RegisterDevice handles PUT /api/users/me/device.
func (h *UserHandler) RegisterDevice(c *gin.Context) {
	var req models.DeviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	p, _ := auth.FromContext(c.Request.Context())
	if err := h.UserService.RegisterDevice(c.Request.Context(), p, req.FCMToken); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Device registered"})
}
