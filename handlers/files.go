package handlers

import (
	"context"
	"net/http"

	"ctrlroom/models"
	"ctrlroom/services/files"
	"ctrlroom/utils"

	"github.com/gin-gonic/gin"
)

// FileManager is the session file service.
type FileManager interface {
	Upload(ctx context.Context, in files.UploadInput) (*models.SessionFile, error)
	List(ctx context.Context, sessionID string) ([]models.SessionFile, error)
	Delete(ctx context.Context, id string) error
}

type FileHandler struct {
	Files FileManager
}

// UploadFile handles multipart POST /api/files with fields "file" and "sessionId".
func (h *FileHandler) UploadFile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, files.MaxUploadBytes+1<<20)
	fh, err := c.FormFile("file")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "file is required", err.Error())
		return
	}
	src, err := fh.Open()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "unreadable file", err.Error())
		return
	}
	defer src.Close()

	f, err := h.Files.Upload(c.Request.Context(), files.UploadInput{
		SessionID:   c.PostForm("sessionId"),
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        src,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

// ListFiles handles GET /api/files?sessionId=.
func (h *FileHandler) ListFiles(c *gin.Context) {
	list, err := h.Files.List(c.Request.Context(), c.Query("sessionId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": list})
}

// DeleteFile handles DELETE /api/files/:id.
func (h *FileHandler) DeleteFile(c *gin.Context) {
	if err := h.Files.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "File deleted"})
}
