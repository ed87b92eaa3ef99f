package handlers

import (
	"net/http"

	"ctrlroom/services/auth"
	"ctrlroom/utils"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	Verifier auth.Verifier
	Health   *utils.HealthMonitor

	Users     *UserHandler
	Engineers *EngineerHandler
	Bookings  *BookingHandler
	Webhooks  *WebhookHandler
	Files     *FileHandler
	Studio    *StudioHandler
	Export    *ExportHandler
}

// HealthHandler reports the last dependency check. A nil monitor means the
// process runs without external dependencies.
func (hb *HandlerBundle) HealthHandler(c *gin.Context) {
	if hb.Health == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	st := hb.Health.GetHealthStatus()
	code := http.StatusOK
	status := "ok"
	if !st.Healthy {
		code = http.StatusServiceUnavailable
		status = "degraded"
	}
	c.JSON(code, gin.H{"status": status, "checks": st.Checks, "checkedAt": st.CheckedAt})
}
