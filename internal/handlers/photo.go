package handlers

import (
	"errors"
	"net/http"

	"photo-rating-backend/internal/middleware"
	"photo-rating-backend/internal/services"
	"photo-rating-backend/internal/validation"

	"github.com/go-chi/chi/v5"
)

// multipart overhead on top of the image itself
const maxUploadBody = validation.MaxImageSize + 1<<20

// PhotoHandler handles photo-related HTTP requests
type PhotoHandler struct {
	photoService *services.PhotoService
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(photoService *services.PhotoService) *PhotoHandler {
	return &PhotoHandler{
		photoService: photoService,
	}
}

// UploadPhoto handles POST /api/upload-photo
func (h *PhotoHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, "File too large", http.StatusRequestEntityTooLarge)
			return
		}
		respondError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("photo")
	if err != nil {
		respondError(w, "No file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	img, err := validation.ValidateImage(header, file)
	if err != nil {
		switch {
		case errors.Is(err, validation.ErrFileTooLarge):
			respondError(w, "File too large", http.StatusRequestEntityTooLarge)
		case errors.Is(err, validation.ErrInvalidImageType):
			respondError(w, "Only JPEG, PNG and WebP images are allowed", http.StatusBadRequest)
		default:
			writeServiceError(w, r, err, "Photo upload failed")
		}
		return
	}

	photo, err := h.photoService.Upload(ctx, userID, services.UploadFile{
		Ext:         img.Ext,
		ContentType: img.ContentType,
		Body:        file,
	})
	if err != nil {
		writeServiceError(w, r, err, "Photo upload failed")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"message":  "Photo uploaded",
		"photoId":  photo.ID,
		"filePath": photo.FilePath,
		"url":      h.photoService.URL(photo),
	})
}

// ToggleActive handles PUT /api/photo/{id}/toggle-active
func (h *PhotoHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	photoID := chi.URLParam(r, "id")

	result, err := h.photoService.Toggle(ctx, photoID, userID)
	if err != nil {
		if errors.Is(err, services.ErrInsufficientPoints) {
			respondError(w, "Not enough points to activate photo", http.StatusBadRequest)
			return
		}
		writeServiceError(w, r, err, "Toggle photo status failed")
		return
	}

	message := "Photo deactivated"
	if result.IsActive {
		message = "Photo activated for evaluation"
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message":  message,
		"photoId":  photoID,
		"isActive": result.IsActive,
		"points":   result.Points,
	})
}

// DeletePhoto handles DELETE /api/photo/{id}
func (h *PhotoHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	photoID := chi.URLParam(r, "id")

	points, err := h.photoService.Delete(ctx, photoID, userID)
	if err != nil {
		if errors.Is(err, services.ErrInsufficientPoints) {
			respondError(w, "Not enough points to delete an active photo", http.StatusBadRequest)
			return
		}
		writeServiceError(w, r, err, "Photo deletion failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Photo deleted",
		"photoId": photoID,
		"points":  points,
	})
}

// MyPhotos handles GET /api/my-photos
func (h *PhotoHandler) MyPhotos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	photos, err := h.photoService.ListMine(ctx, userID)
	if err != nil {
		writeServiceError(w, r, err, "Fetching user photos failed")
		return
	}

	respondJSON(w, http.StatusOK, photos)
}
