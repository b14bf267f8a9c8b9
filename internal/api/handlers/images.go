package handlers

import (
	"net/http"

	"github.com/pratik-mahalle/upscaler/internal/api/dto"
	"github.com/pratik-mahalle/upscaler/internal/api/middleware"
	"github.com/pratik-mahalle/upscaler/internal/domain/image"
	"github.com/pratik-mahalle/upscaler/internal/pkg/errors"
	"github.com/pratik-mahalle/upscaler/internal/pkg/logger"
	"github.com/pratik-mahalle/upscaler/internal/pkg/utils"
)

// ImageHandler handles image record requests
type ImageHandler struct {
	images       image.Service
	logger       *logger.Logger
	maxBodyBytes int64
}

// NewImageHandler creates a new image handler
func NewImageHandler(images image.Service, log *logger.Logger, maxBodyBytes int64) *ImageHandler {
	return &ImageHandler{
		images:       images,
		logger:       log,
		maxBodyBytes: maxBodyBytes,
	}
}

// Save records a completed upscale
// @Summary Save an image record
// @Description Record an upscale in the caller's history
// @Tags Images
// @Accept json
// @Produce json
// @Param request body dto.SaveImageRequest true "Image record"
// @Success 200 {object} dto.SaveImageResponse "Stored record"
// @Failure 400 {object} utils.ErrorResponse "Missing required fields"
// @Failure 403 {object} utils.ErrorResponse "Token subject differs from userId"
// @Failure 500 {object} utils.ErrorResponse "Failed to save image record"
// @Router /images/save [post]
func (h *ImageHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req dto.SaveImageRequest
	if err := decodeJSON(w, r, &req, h.maxBodyBytes); err != nil {
		if isTooLarge(err) {
			utils.WriteErrorMessage(w, http.StatusRequestEntityTooLarge, errors.ErrCodeBadRequest, "Request body too large")
			return
		}
		h.logger.WithError(err).Warn("Failed to decode image save request")
		utils.WriteError(w, errors.Internal("Internal server error", err))
		return
	}

	if req.UserID != "" {
		if err := checkCaller(r, req.UserID); err != nil {
			writeAppError(w, err, "Internal server error")
			return
		}
	}

	img, err := h.images.Save(r.Context(), req.ToSaveInput())
	if err != nil {
		writeAppError(w, err, "Internal server error")
		return
	}

	utils.WriteJSON(w, http.StatusOK, dto.SaveImageResponse{
		Success: true,
		Image:   dto.ToImageDTO(img),
	})
}

// List returns the caller's upscale history
// @Summary List image records
// @Description List the caller's records, newest first
// @Tags Images
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} utils.PaginatedResponse "Records"
// @Failure 401 {object} utils.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /images [get]
func (h *ImageHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	params := utils.ParsePaginationParams(r)
	images, total, err := h.images.ListByUser(r.Context(), userID, params.PageSize, params.Offset)
	if err != nil {
		h.logger.ErrorWithErr(err, "Failed to list images")
		writeAppError(w, err, "Failed to list images")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.NewPaginatedResponse(dto.ToImageDTOs(images), params.Page, params.PageSize, total))
}
