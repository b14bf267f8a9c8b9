package handlers

import (
	"net/http"

	"github.com/pratik-mahalle/upscaler/internal/api/dto"
	"github.com/pratik-mahalle/upscaler/internal/api/middleware"
	"github.com/pratik-mahalle/upscaler/internal/domain/profile"
	"github.com/pratik-mahalle/upscaler/internal/pkg/errors"
	"github.com/pratik-mahalle/upscaler/internal/pkg/logger"
	"github.com/pratik-mahalle/upscaler/internal/pkg/utils"
)

// ProfileHandler handles profile requests
type ProfileHandler struct {
	profiles profile.Service
	logger   *logger.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profiles profile.Service, log *logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		logger:   log,
	}
}

// Get returns the caller's profile
// @Summary Get profile
// @Description Get the authenticated user's profile and credit balance
// @Tags Profile
// @Produce json
// @Success 200 {object} dto.ProfileDTO "Profile"
// @Failure 401 {object} utils.ErrorResponse "Unauthorized"
// @Failure 404 {object} utils.ErrorResponse "User profile not found"
// @Security BearerAuth
// @Router /profile [get]
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	p, err := h.profiles.GetByID(r.Context(), userID)
	if err != nil {
		writeAppError(w, err, "Failed to get profile")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.ToProfileDTO(p))
}

// Usage returns the dashboard summary
// @Summary Get usage
// @Description Images upscaled and credits remaining for the authenticated user
// @Tags Profile
// @Produce json
// @Success 200 {object} dto.UsageDTO "Usage"
// @Failure 401 {object} utils.ErrorResponse "Unauthorized"
// @Failure 404 {object} utils.ErrorResponse "User profile not found"
// @Security BearerAuth
// @Router /profile/usage [get]
func (h *ProfileHandler) Usage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	usage, err := h.profiles.Usage(r.Context(), userID)
	if err != nil {
		writeAppError(w, err, "Failed to get usage")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.ToUsageDTO(usage))
}
