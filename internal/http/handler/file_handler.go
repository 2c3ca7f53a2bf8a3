package handler

import (
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/fieldmed/fieldsales-api/internal/auth"
	"github.com/fieldmed/fieldsales-api/internal/mapper"
	"github.com/fieldmed/fieldsales-api/internal/service"
)

type FileHandler struct {
	fileService    *service.FileService
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewFileHandler(fileService *service.FileService, maxUploadSizeMB int64, logger *zap.Logger) *FileHandler {
	return &FileHandler{
		fileService:    fileService,
		maxUploadBytes: maxUploadSizeMB * 1024 * 1024,
		logger:         logger,
	}
}

// Upload godoc
// @Summary Upload visit attachment
// @Description Attach a file to a visit. Only the visit requester and managerial roles may upload.
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Visit ID"
// @Param file formData file true "File to upload"
// @Success 201 {object} domain.FileDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 403 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 413 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /visits/{id}/attachments [post]
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustFromContext(r.Context())

	visitID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		respondError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Upload exceeds the %d MB limit", h.maxUploadBytes/(1024*1024)))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	record, err := h.fileService.UploadVisitAttachment(r.Context(), actor, visitID, header.Filename, contentType, file)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, mapper.ToFileDTO(record))
}

// Download godoc
// @Summary Download attachment
// @Description Stream an attachment. Visibility follows the owning visit.
// @Tags Files
// @Produce octet-stream
// @Param id path string true "File ID"
// @Success 200 {file} binary
// @Failure 403 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /files/{id} [get]
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustFromContext(r.Context())

	fileID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, reader, err := h.fileService.DownloadAttachment(r.Context(), actor, fileID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", record.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.Filename))
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("attachment stream interrupted",
			zap.String("file_id", fileID.String()),
			zap.Error(err))
	}
}

// Delete godoc
// @Summary Delete attachment
// @Description Remove an attachment. Only the uploader and admins may delete.
// @Tags Files
// @Param id path string true "File ID"
// @Success 204
// @Failure 403 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /files/{id} [delete]
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustFromContext(r.Context())

	fileID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.fileService.DeleteAttachment(r.Context(), actor, fileID); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
