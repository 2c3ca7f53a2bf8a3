package service

import (
	"context"
	"errors"
	"io"

	"github.com/fieldmed/fieldsales-api/internal/auth"
	"github.com/fieldmed/fieldsales-api/internal/domain"
	"github.com/fieldmed/fieldsales-api/internal/repository"
	"github.com/fieldmed/fieldsales-api/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FileService handles visit attachment uploads and downloads
type FileService struct {
	fileRepo  *repository.FileRepository
	visitRepo *repository.VisitRepository
	storage   storage.Storage
	logger    *zap.Logger
}

func NewFileService(fileRepo *repository.FileRepository, visitRepo *repository.VisitRepository, store storage.Storage, logger *zap.Logger) *FileService {
	return &FileService{
		fileRepo:  fileRepo,
		visitRepo: visitRepo,
		storage:   store,
		logger:    logger,
	}
}

// UploadVisitAttachment stores an attachment and links it to a visit.
// Only the visit's requester and the management chain may attach files.
func (s *FileService) UploadVisitAttachment(ctx context.Context, actor *auth.ActorContext, visitID uuid.UUID, filename, contentType string, data io.Reader) (*domain.File, error) {
	visit, err := s.visitRepo.GetByID(ctx, visitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if visit.RequestedByID != actor.UserID && !actor.IsManagerial() {
		return nil, ErrPermissionDenied
	}

	storagePath, size, err := s.storage.Upload(ctx, filename, contentType, data)
	if err != nil {
		return nil, err
	}

	uploadedBy := actor.UserID
	file := &domain.File{
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
		StoragePath: storagePath,
		VisitID:     &visitID,
		UploadedBy:  &uploadedBy,
	}

	if err := s.fileRepo.Create(ctx, file); err != nil {
		// The blob is orphaned if this cleanup fails; the path is unique so
		// nothing ever references it again.
		if delErr := s.storage.Delete(ctx, storagePath); delErr != nil {
			s.logger.Warn("failed to clean up orphaned attachment blob",
				zap.String("storage_path", storagePath),
				zap.Error(delErr),
			)
		}
		return nil, err
	}

	s.logger.Info("visit attachment uploaded",
		zap.String("file_id", file.ID.String()),
		zap.String("visit_id", visitID.String()),
		zap.String("uploaded_by", actor.UserID.String()),
		zap.Int64("size", size),
	)

	return file, nil
}

// DownloadAttachment streams an attachment's content. Visibility follows
// the visit: the requester and the management chain may download.
func (s *FileService) DownloadAttachment(ctx context.Context, actor *auth.ActorContext, fileID uuid.UUID) (*domain.File, io.ReadCloser, error) {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	if file.VisitID != nil {
		visit, err := s.visitRepo.GetByID(ctx, *file.VisitID)
		if err == nil && visit.RequestedByID != actor.UserID && !actor.IsManagerial() {
			return nil, nil, ErrPermissionDenied
		}
	}

	reader, err := s.storage.Download(ctx, file.StoragePath)
	if err != nil {
		return nil, nil, err
	}

	return file, reader, nil
}

// DeleteAttachment removes an attachment record and its stored content
func (s *FileService) DeleteAttachment(ctx context.Context, actor *auth.ActorContext, fileID uuid.UUID) error {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if file.UploadedBy == nil || *file.UploadedBy != actor.UserID {
		if !actor.IsAdmin() {
			return ErrPermissionDenied
		}
	}

	if err := s.fileRepo.Delete(ctx, fileID); err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, file.StoragePath); err != nil {
		s.logger.Warn("failed to delete attachment blob",
			zap.String("storage_path", file.StoragePath),
			zap.Error(err),
		)
	}

	return nil
}
