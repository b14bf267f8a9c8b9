package handlers

import (
	"net/http"

	"github.com/pratik-mahalle/upscaler/internal/api/dto"
	"github.com/pratik-mahalle/upscaler/internal/domain/profile"
	"github.com/pratik-mahalle/upscaler/internal/pkg/errors"
	"github.com/pratik-mahalle/upscaler/internal/pkg/logger"
	"github.com/pratik-mahalle/upscaler/internal/pkg/utils"
)

// CreditsHandler handles credit ledger requests
type CreditsHandler struct {
	profiles profile.Service
	logger   *logger.Logger
}

// NewCreditsHandler creates a new credits handler
func NewCreditsHandler(profiles profile.Service, log *logger.Logger) *CreditsHandler {
	return &CreditsHandler{
		profiles: profiles,
		logger:   log,
	}
}

// Deduct handles a credit deduction
// @Summary Deduct credits
// @Description Charge credits for an upscale. Premium users are never charged.
// @Tags Credits
// @Accept json
// @Produce json
// @Param request body dto.DeductCreditsRequest true "User and amount (default 1)"
// @Success 200 {object} dto.DeductCreditsResponse "Remaining balance, or unlimited"
// @Failure 400 {object} utils.ErrorResponse "Missing user ID"
// @Failure 402 {object} dto.InsufficientCreditsResponse "Insufficient credits"
// @Failure 403 {object} utils.ErrorResponse "Token subject differs from userId"
// @Failure 404 {object} utils.ErrorResponse "User profile not found"
// @Failure 500 {object} utils.ErrorResponse "Server error"
// @Router /credits/deduct [post]
func (h *CreditsHandler) Deduct(w http.ResponseWriter, r *http.Request) {
	var req dto.DeductCreditsRequest
	if err := decodeJSON(w, r, &req, 1<<16); err != nil {
		h.logger.WithError(err).Warn("Failed to decode deduct request")
		utils.WriteError(w, errors.Internal("Internal server error", err))
		return
	}

	if req.UserID == "" {
		utils.WriteError(w, errors.BadRequest("User ID is required"))
		return
	}

	if err := checkCaller(r, req.UserID); err != nil {
		writeAppError(w, err, "Internal server error")
		return
	}

	amount := int64(1)
	if req.Amount != nil {
		amount = *req.Amount
	}

	res, err := h.profiles.DeductCredits(r.Context(), req.UserID, amount)
	if err != nil {
		writeAppError(w, err, "Internal server error")
		return
	}

	utils.WriteJSON(w, http.StatusOK, dto.ToDeductCreditsResponse(res))
}
