package handlers

import (
	"context"
	"net/http"

	"ctrlroom/models"

	"github.com/gin-gonic/gin"
)

// StudioAdmin manages studio settings and equipment.
type StudioAdmin interface {
	GetSettings(ctx context.Context) (*models.StudioSettings, error)
	UpdateSettings(ctx context.Context, in models.StudioSettings) (*models.StudioSettings, error)
	ListResources(ctx context.Context) ([]models.StudioResource, error)
	CreateResource(ctx context.Context, req models.CreateResourceRequest) (*models.StudioResource, error)
	UpdateResourceStatus(ctx context.Context, id, status string) (*models.StudioResource, error)
}

type StudioHandler struct {
	Studio StudioAdmin
}

func (h *StudioHandler) GetSettings(c *gin.Context) {
	s, err := h.Studio.GetSettings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *StudioHandler) UpdateSettings(c *gin.Context) {
	var in models.StudioSettings
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	s, err := h.Studio.UpdateSettings(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *StudioHandler) ListResources(c *gin.Context) {
	list, err := h.Studio.ListResources(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resources": list})
}

func (h *StudioHandler) CreateResource(c *gin.Context) {
	var req models.CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	r, err := h.Studio.CreateResource(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// UpdateResourceStatus handles PATCH /api/studio/resources/:id/status.
func (h *StudioHandler) UpdateResourceStatus(c *gin.Context) {
	var req models.UpdateResourceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	r, err := h.Studio.UpdateResourceStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}
