// Package files manages uploads attached to recording sessions.
package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"ctrlroom/database/repository"
	bookingRepo "ctrlroom/database/repository/booking"
	engineerRepo "ctrlroom/database/repository/engineer"
	fileRepo "ctrlroom/database/repository/files"
	"ctrlroom/models"
	"ctrlroom/services/auth"
	"ctrlroom/services/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxUploadBytes caps a single upload.
const MaxUploadBytes = 200 << 20

var (
	ErrUnauthenticated  = errors.New("authentication required")
	ErrForbidden        = errors.New("not allowed to access this file")
	ErrInvalidUpload    = errors.New("invalid upload")
	ErrNotFound         = errors.New("file not found")
	ErrStoreUnavailable = errors.New("file metadata store unavailable")
)

// UploadInput describes one multipart upload.
type UploadInput struct {
	SessionID   string
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Service struct {
	files     fileRepo.FileRepository
	bookings  bookingRepo.BookingRepository
	engineers engineerRepo.EngineerRepository
	store     storage.FileStore
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(files fileRepo.FileRepository, bookings bookingRepo.BookingRepository, engineers engineerRepo.EngineerRepository, store storage.FileStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{files: files, bookings: bookings, engineers: engineers, store: store, logger: logger, now: time.Now}
}

func storeErr(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

// Upload stores the body under the session's folder and records its metadata.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*models.SessionFile, error) {
	p, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	in.Name = strings.TrimSpace(in.Name)
	switch {
	case in.SessionID == "":
		return nil, fmt.Errorf("%w: sessionId is required", ErrInvalidUpload)
	case in.Name == "" || in.Body == nil:
		return nil, fmt.Errorf("%w: file is required", ErrInvalidUpload)
	case in.Size > MaxUploadBytes:
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidUpload, MaxUploadBytes)
	}
	if err := s.checkSession(ctx, p, in.SessionID); err != nil {
		return nil, err
	}
	if in.ContentType == "" {
		in.ContentType = "application/octet-stream"
	}

	obj, err := s.store.Upload(ctx, in.Body, models.StoragePath(in.SessionID, p.UserID), in.Name, in.ContentType)
	if err != nil {
		s.logger.Error("File upload failed", zap.String("sessionId", in.SessionID), zap.String("userId", p.UserID), zap.Error(err))
		return nil, err
	}
	size := in.Size
	if obj.Bytes > 0 {
		size = obj.Bytes
	}
	f := &models.SessionFile{
		ID:          uuid.New().String(),
		SessionID:   in.SessionID,
		UserID:      p.UserID,
		Name:        in.Name,
		Size:        size,
		ContentType: in.ContentType,
		URL:         obj.URL,
		StoragePath: obj.PublicID,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.files.Create(ctx, f); err != nil {
		// Orphaned blob; drop it so storage and metadata agree.
		if derr := s.store.Delete(context.WithoutCancel(ctx), obj.PublicID, in.ContentType); derr != nil {
			s.logger.Warn("Failed to remove orphaned upload", zap.String("publicId", obj.PublicID), zap.Error(derr))
		}
		return nil, storeErr("record file", err)
	}
	s.logger.Info("File uploaded", zap.String("fileId", f.ID), zap.String("sessionId", f.SessionID), zap.Int64("size", f.Size))
	return f, nil
}

// checkSession allows the booking's client, its engineer and admins.
func (s *Service) checkSession(ctx context.Context, p auth.Principal, sessionID string) error {
	b, err := s.bookings.GetByID(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: unknown session %s", ErrInvalidUpload, sessionID)
	}
	if err != nil {
		return storeErr("load session", err)
	}
	if p.IsAdmin() || b.ClientID == p.UserID {
		return nil
	}
	if p.Role == models.RoleEngineer {
		e, err := s.engineers.GetByUserID(ctx, p.UserID)
		if err == nil && e.ID == b.EngineerID {
			return nil
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return storeErr("load engineer", err)
		}
	}
	return ErrForbidden
}

// List returns the caller's files, or every file for admins, newest first.
func (s *Service) List(ctx context.Context, sessionID string) ([]models.SessionFile, error) {
	p, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	filter := fileRepo.Filter{SessionID: sessionID}
	if !p.IsAdmin() {
		filter.UserID = p.UserID
	}
	list, err := s.files.List(ctx, filter)
	if err != nil {
		return nil, storeErr("list files", err)
	}
	if list == nil {
		list = []models.SessionFile{}
	}
	return list, nil
}

// Delete destroys the stored object, then soft-deletes the metadata.
func (s *Service) Delete(ctx context.Context, id string) error {
	p, ok := auth.FromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	f, err := s.files.GetByID(ctx, id)
	if err != nil {
		return storeErr("load file", err)
	}
	if f.Deleted {
		return ErrNotFound
	}
	if !p.IsAdmin() && f.UserID != p.UserID {
		return ErrForbidden
	}
	if err := s.store.Delete(ctx, f.StoragePath, f.ContentType); err != nil {
		s.logger.Error("Storage delete failed", zap.String("fileId", id), zap.Error(err))
		return err
	}
	if err := s.files.SoftDelete(ctx, id, s.now().UTC()); err != nil {
		return storeErr("delete file", err)
	}
	s.logger.Info("File deleted", zap.String("fileId", id), zap.String("by", p.UserID))
	return nil
}
