package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"ctrlroom/services/report"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// BookingExporter renders bookings in a date range as a workbook.
type BookingExporter interface {
	WriteBookings(ctx context.Context, from, to string, w io.Writer) error
}

type ExportHandler struct {
	Exporter BookingExporter
}

// ExportBookings handles GET /api/admin/bookings/export?from=&to=.
func (h *ExportHandler) ExportBookings(c *gin.Context) {
	from, to, err := report.ParseRange(c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err)
		return
	}
	// Buffer first so a failure can still become a JSON error.
	var buf bytes.Buffer
	if err := h.Exporter.WriteBookings(c.Request.Context(), from, to, &buf); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="bookings_%s_%s.xlsx"`, from, to))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
