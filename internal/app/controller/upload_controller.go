package controller

import (
	"net/http"

	apperrors "github.com/getter-shop/getter-backend/internal/errors"
	"github.com/getter-shop/getter-backend/internal/middleware"
	"github.com/getter-shop/getter-backend/internal/storage"
	"github.com/gin-gonic/gin"
)

var allowedImageTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
	"image/webp",
}

// Product documentation uploads additionally accept PDF.
var allowedDocumentTypes = append([]string{"application/pdf"}, allowedImageTypes...)

type UploadController struct {
	storage *storage.S3Storage
}

func NewUploadController(storage *storage.S3Storage) *UploadController {
	return &UploadController{storage: storage}
}

type PresignUploadRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Folder      string `json:"folder"` // defaults to "uploads"
}

// PresignImageUpload issues a presigned PUT URL for image uploads.
// POST /api/v1/upload/presigned-url
func (ctrl *UploadController) PresignImageUpload(c *gin.Context) {
	ctrl.presign(c, allowedImageTypes, "Only image files are allowed (JPEG, PNG, GIF, WEBP)")
}

// PresignDocumentUpload issues a presigned PUT URL for product
// documentation uploads (admin only).
// POST /api/v1/admin/upload/documents
func (ctrl *UploadController) PresignDocumentUpload(c *gin.Context) {
	ctrl.presign(c, allowedDocumentTypes, "Only PDF and image files are allowed")
}

func (ctrl *UploadController) presign(c *gin.Context, allowedTypes []string, typeMessage string) {
	log := middleware.GetLoggerFromContext(c)

	var req PresignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Filename and content type are required")
		return
	}

	if err := ctrl.storage.ValidateContentType(req.ContentType, allowedTypes); err != nil {
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, typeMessage)
		return
	}

	folder := req.Folder
	if folder == "" {
		folder = "uploads"
	}

	upload, err := ctrl.storage.PresignUpload(req.Filename, req.ContentType, folder)
	if err != nil {
		log.Error("Failed to presign upload", err, map[string]interface{}{
			"filename":     req.Filename,
			"content_type": req.ContentType,
			"folder":       folder,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Failed to generate upload URL")
		return
	}

	log.Info("Upload URL issued", map[string]interface{}{
		"key":          upload.Key,
		"content_type": req.ContentType,
	})

	c.JSON(http.StatusOK, gin.H{
		"upload_url": upload.UploadURL,
		"file_url":   upload.FileURL,
		"key":        upload.Key,
	})
}
