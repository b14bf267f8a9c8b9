package handlers

import (
	"net/http"

	"github.com/pratik-mahalle/upscaler/internal/api/dto"
	"github.com/pratik-mahalle/upscaler/internal/api/middleware"
	"github.com/pratik-mahalle/upscaler/internal/domain/upscale"
	"github.com/pratik-mahalle/upscaler/internal/pkg/errors"
	"github.com/pratik-mahalle/upscaler/internal/pkg/logger"
	"github.com/pratik-mahalle/upscaler/internal/pkg/utils"
)

// UpscaleHandler handles upscale requests
type UpscaleHandler struct {
	gateway      upscale.Gateway
	logger       *logger.Logger
	maxBodyBytes int64
	// exposeDetails adds the internal error text to 500 responses
	exposeDetails bool
}

// NewUpscaleHandler creates a new upscale handler
func NewUpscaleHandler(gateway upscale.Gateway, log *logger.Logger, maxBodyBytes int64, production bool) *UpscaleHandler {
	return &UpscaleHandler{
		gateway:       gateway,
		logger:        log,
		maxBodyBytes:  maxBodyBytes,
		exposeDetails: !production,
	}
}

// Upscale handles an upscale request
// @Summary Upscale an image
// @Description Upscale a data URL or remote image to a square of 1024 × scale pixels
// @Tags Upscale
// @Accept json
// @Produce json
// @Param request body dto.UpscaleRequest true "Image source and scale"
// @Success 200 {object} dto.UpscaleResponse "Upscaled image as a PNG data URL"
// @Failure 400 {object} utils.ErrorResponse "Invalid request"
// @Failure 429 {object} utils.ErrorResponse "Upstream rate limit"
// @Failure 500 {object} utils.ErrorResponse "Server error"
// @Router /upscale [post]
func (h *UpscaleHandler) Upscale(w http.ResponseWriter, r *http.Request) {
	// The key check comes first so a misconfigured server never parses bodies
	if !h.gateway.Configured() {
		utils.WriteError(w, errors.ConfigurationError("Server configuration error"))
		return
	}

	var req dto.UpscaleRequest
	if err := decodeJSON(w, r, &req, h.maxBodyBytes); err != nil {
		if isTooLarge(err) {
			utils.WriteErrorMessage(w, http.StatusRequestEntityTooLarge, errors.ErrCodeBadRequest, "Request body too large")
			return
		}
		utils.WriteError(w, errors.BadRequest("Invalid JSON body"))
		return
	}

	result, err := h.gateway.Upscale(r.Context(), upscale.Request{
		ImageURL: req.SourceURL(),
		Scale:    req.Scale,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	middleware.AddLogField(w, "scale", result.Scale)
	middleware.AddLogField(w, "output_bytes", result.Bytes)

	utils.WriteJSON(w, http.StatusOK, dto.UpscaleResponse{
		Success: true,
		URL:     result.URL,
		Meta: dto.UpscaleMeta{
			Scale:  result.Scale,
			Width:  result.Width,
			Height: result.Height,
		},
	})
}

func (h *UpscaleHandler) writeError(w http.ResponseWriter, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		h.logger.ErrorWithErr(err, "Unexpected upscale failure")
		appErr = errors.Internal("Failed to upscale image", err)
	}

	if h.exposeDetails && appErr.Code == errors.ErrCodeInternal && appErr.Internal != nil {
		withDetails := *appErr
		withDetails.Details = appErr.Internal.Error()
		utils.WriteError(w, &withDetails)
		return
	}
	utils.WriteError(w, appErr)
}
