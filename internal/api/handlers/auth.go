package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pratik-mahalle/upscaler/internal/api/dto"
	"github.com/pratik-mahalle/upscaler/internal/api/middleware"
	"github.com/pratik-mahalle/upscaler/internal/auth"
	"github.com/pratik-mahalle/upscaler/internal/config"
	"github.com/pratik-mahalle/upscaler/internal/domain/user"
	"github.com/pratik-mahalle/upscaler/internal/pkg/errors"
	"github.com/pratik-mahalle/upscaler/internal/pkg/logger"
	"github.com/pratik-mahalle/upscaler/internal/pkg/utils"
	"github.com/pratik-mahalle/upscaler/internal/pkg/validator"
)

const refreshTokenCookie = "refreshToken"

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	userService user.Service
	config      *config.Config
	logger      *logger.Logger
	validator   *validator.Validator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	userService user.Service,
	cfg *config.Config,
	log *logger.Logger,
	val *validator.Validator,
) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		config:      cfg,
		logger:      log,
		validator:   val,
	}
}

// Login handles user login
// @Summary User login
// @Description Authenticate user with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.AuthResponse "Successfully authenticated"
// @Failure 400 {object} utils.ErrorResponse "Invalid request"
// @Failure 401 {object} utils.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	authenticated, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.WithFields(map[string]interface{}{
			"email": req.Email,
		}).Warn("Authentication failed")
		if appErr, ok := errors.As(err); ok {
			utils.WriteError(w, appErr)
		} else {
			utils.WriteError(w, errors.Unauthorized("Invalid email or password"))
		}
		return
	}

	h.issueTokens(w, authenticated, http.StatusOK)

	h.logger.WithFields(map[string]interface{}{
		"user_id": authenticated.ID,
	}).Info("User logged in")
}

// Register handles user registration
// @Summary User registration
// @Description Create an account and its profile with the free credit allowance
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration details"
// @Success 201 {object} dto.AuthResponse "User successfully registered"
// @Failure 400 {object} utils.ErrorResponse "Invalid request or validation error"
// @Failure 409 {object} utils.ErrorResponse "Email already registered"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	created, err := h.userService.Register(r.Context(), user.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeAppError(w, err, "Failed to create user")
		return
	}

	h.issueTokens(w, created, http.StatusCreated)
}

// Logout handles user logout
// @Summary User logout
// @Description Clear the session cookies
// @Tags Auth
// @Success 200 {object} utils.SuccessResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.setCookie(w, middleware.AccessTokenCookie, "", -1)
	h.setCookie(w, refreshTokenCookie, "", -1)

	utils.WriteSuccessWithMessage(w, http.StatusOK, "Logged out successfully", nil)
}

// Session returns the caller's current session
// @Summary Get current session
// @Description Account id, email and access token expiry of the caller
// @Tags Auth
// @Produce json
// @Success 200 {object} dto.SessionResponse "Session"
// @Failure 401 {object} utils.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /auth/session [get]
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	account, err := h.userService.GetByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			utils.WriteError(w, errors.Unauthorized("Session is no longer valid"))
			return
		}
		h.logger.ErrorWithErr(err, "Failed to get user")
		utils.WriteError(w, errors.Internal("Failed to get user", err))
		return
	}

	resp := dto.SessionResponse{
		UserID: account.ID,
		Email:  account.Email,
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}

	utils.WriteSuccess(w, http.StatusOK, resp)
}

// RefreshToken handles token refresh
// @Summary Refresh access token
// @Description Exchange a refresh token for a new token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.AuthResponse "New tokens generated"
// @Failure 400 {object} utils.ErrorResponse "Invalid request"
// @Failure 401 {object} utils.ErrorResponse "Invalid refresh token"
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		// Browser clients send the refresh cookie instead of a body
		if cookie, cerr := r.Cookie(refreshTokenCookie); cerr == nil {
			req.RefreshToken = cookie.Value
		}
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	claims, err := auth.ParseTyped(req.RefreshToken, h.config.Auth.JWTSecret, auth.TokenTypeRefresh)
	if err != nil {
		utils.WriteError(w, errors.Unauthorized("Invalid refresh token"))
		return
	}

	account, err := h.userService.GetByID(r.Context(), claims.UserID)
	if err != nil {
		h.logger.WithError(err).Warn("Refresh for unknown account")
		utils.WriteError(w, errors.Unauthorized("Invalid refresh token"))
		return
	}

	h.issueTokens(w, account, http.StatusOK)
}

// issueTokens mints a token pair, sets the session cookies and writes the
// auth response
func (h *AuthHandler) issueTokens(w http.ResponseWriter, u *user.User, status int) {
	tokens, err := auth.MintTokens(
		u.ID,
		u.Email,
		h.config.Auth.JWTSecret,
		h.config.Auth.AccessTokenExpiry,
		h.config.Auth.RefreshTokenExpiry,
	)
	if err != nil {
		h.logger.ErrorWithErr(err, "Failed to generate tokens")
		utils.WriteError(w, errors.Internal("Failed to generate tokens", err))
		return
	}

	h.setCookie(w, middleware.AccessTokenCookie, tokens.AccessToken, h.config.Auth.AccessTokenExpiry)
	h.setCookie(w, refreshTokenCookie, tokens.RefreshToken, h.config.Auth.RefreshTokenExpiry)

	utils.WriteSuccess(w, status, dto.AuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    tokens.ExpiresAt,
		User:         dto.ToUserDTO(u),
	})
}

// setCookie writes an HttpOnly session cookie. A negative ttl deletes it.
func (h *AuthHandler) setCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	maxAge := int(ttl.Seconds())
	if ttl < 0 {
		maxAge = -1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		HttpOnly: true,
		Secure:   h.config.Server.IsProduction(),
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   maxAge,
	})
}
