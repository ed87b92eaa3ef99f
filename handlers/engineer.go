package handlers

import (
	"context"
	"net/http"

	"ctrlroom/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EngineerDirectory manages engineer profiles.
type EngineerDirectory interface {
	List(ctx context.Context) ([]models.Engineer, error)
	Get(ctx context.Context, id string) (*models.Engineer, error)
	Create(ctx context.Context, in models.EngineerInput) (*models.Engineer, error)
	Update(ctx context.Context, id string, in models.EngineerInput) (*models.Engineer, error)
}

type EngineerHandler struct {
	Engineers EngineerDirectory
}

// ListEngineers handles GET /api/engineers.
func (h *EngineerHandler) ListEngineers(c *gin.Context) {
	list, err := h.Engineers.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"engineers": list})
}

// GetEngineer handles GET /api/engineers/:id.
func (h *EngineerHandler) GetEngineer(c *gin.Context) {
	e, err := h.Engineers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// CreateEngineer handles POST /api/engineers.
func (h *EngineerHandler) CreateEngineer(c *gin.Context) {
	var in models.EngineerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	e, err := h.Engineers.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	getLogger(c).Info("Engineer created", zap.String("engineerId", e.ID))
	c.JSON(http.StatusCreated, e)
}

// UpdateEngineer handles PUT /api/engineers/:id.
func (h *EngineerHandler) UpdateEngineer(c *gin.Context) {
	var in models.EngineerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	e, err := h.Engineers.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}
