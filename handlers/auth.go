package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hiremind/backend/auth"
	"github.com/hiremind/backend/models"
	"github.com/hiremind/backend/storage"
)

// GoogleVerifier verifies Google ID tokens
type GoogleVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.GoogleUserInfo, error)
}

// AuthStore is the persistence the auth handler needs
type AuthStore interface {
	storage.UserStore
	ListResumes(ctx context.Context, userID string) ([]*models.Resume, error)
}

// AuthHandler handles authentication and profile requests
type AuthHandler struct {
	responder
	store      AuthStore
	jwtService *auth.JWTService
	googleAuth GoogleVerifier
	cipher     *auth.KeyCipher
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	store AuthStore,
	jwtService *auth.JWTService,
	googleAuth GoogleVerifier,
	cipher *auth.KeyCipher,
	logger *zap.Logger,
	verbose bool,
) *AuthHandler {
	return &AuthHandler{
		responder:  responder{logger: logger.Named("auth"), verbose: verbose},
		store:      store,
		jwtService: jwtService,
		googleAuth: googleAuth,
		cipher:     cipher,
	}
}

// Signup handles user registration with email/password
// @Summary Register a new user
// @Description Register with name, email and password. An optional Gemini API key is stored encrypted.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.SignupRequest true "Signup request"
// @Success 201 {object} models.AuthResponse "Registration successful"
// @Failure 400 {object} models.ErrorResponse "Invalid request body"
// @Failure 409 {object} models.ErrorResponse "User already exists"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to process registration", err)
		return
	}

	encryptedKey, err := h.cipher.Encrypt(strings.TrimSpace(req.GeminiAPIKey))
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to process registration", err)
		return
	}

	user := &models.User{
		Name:                  strings.TrimSpace(req.Name),
		Email:                 normalizeEmail(req.Email),
		Password:              hashedPassword,
		EncryptedGeminiAPIKey: encryptedKey,
		Provider:              models.ProviderEmail,
	}

	if err := h.store.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			h.fail(c, http.StatusConflict, "User already exists", err)
			return
		}
		h.fail(c, http.StatusInternalServerError, "Registration failed", err)
		return
	}

	h.logger.Info("user registered", zap.String("userId", user.ID))
	h.respondWithToken(c, http.StatusCreated, user, "Registration successful")
}

// Login handles user login with email/password
// @Summary Login user
// @Description Login with email and password to get JWT token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} models.AuthResponse "Login successful"
// @Failure 400 {object} models.ErrorResponse "Invalid request body"
// @Failure 401 {object} models.ErrorResponse "Invalid credentials"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := h.store.GetUserByEmail(c.Request.Context(), normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.fail(c, http.StatusUnauthorized, "Invalid email or password", nil)
			return
		}
		h.fail(c, http.StatusInternalServerError, "Login failed", err)
		return
	}

	if user.Password == "" && user.Provider == models.ProviderGoogle {
		h.fail(c, http.StatusUnauthorized, "This account uses Google Sign-In. Please login with Google.", nil)
		return
	}

	if !auth.CheckPassword(req.Password, user.Password) {
		h.fail(c, http.StatusUnauthorized, "Invalid email or password", nil)
		return
	}

	h.respondWithToken(c, http.StatusOK, user, "Login successful")
}

// GoogleLogin handles Google SSO authentication
// @Summary Login with Google
// @Description Login or register using a Google SSO ID token. Existing email accounts are linked.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.GoogleAuthRequest true "Google auth request"
// @Success 200 {object} models.AuthResponse "Login successful"
// @Failure 400 {object} models.ErrorResponse "Invalid request body"
// @Failure 401 {object} models.ErrorResponse "Invalid Google token"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /auth/google [post]
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req models.GoogleAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := c.Request.Context()

	googleUser, err := h.googleAuth.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		h.logger.Warn("google token rejected", zap.Error(err))
		h.fail(c, http.StatusUnauthorized, "Invalid Google token", err)
		return
	}

	user, err := h.findOrCreateGoogleUser(ctx, googleUser)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to sign in with Google", err)
		return
	}

	h.respondWithToken(c, http.StatusOK, user, "Login successful")
}

func (h *AuthHandler) findOrCreateGoogleUser(ctx context.Context, info *auth.GoogleUserInfo) (*models.User, error) {
	user, err := h.store.GetUserByGoogleID(ctx, info.GoogleID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	email := normalizeEmail(info.Email)
	user, err = h.store.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		// link the existing email account
		linked, err := h.store.UpdateUser(ctx, user.ID, storage.UserUpdate{GoogleID: &info.GoogleID})
		if err != nil {
			return nil, err
		}
		h.logger.Info("google account linked", zap.String("userId", linked.ID))
		return linked, nil
	case !errors.Is(err, storage.ErrNotFound):
		return nil, err
	}

	user = &models.User{
		Name:     info.Name,
		Email:    email,
		Provider: models.ProviderGoogle,
		GoogleID: info.GoogleID,
	}
	if err := h.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	h.logger.Info("google user created", zap.String("userId", user.ID))
	return user, nil
}

// RefreshToken issues a fresh token for a still-valid one
// @Summary Refresh token
// @Description Exchange a valid JWT for one with a renewed expiry
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.AuthResponse "Token refreshed"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	tokenString, ok := auth.BearerToken(c)
	if !ok {
		h.fail(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	token, err := h.jwtService.RefreshToken(tokenString)
	if err != nil {
		h.fail(c, http.StatusUnauthorized, "Invalid or expired token", err)
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{Token: token, Message: "Token refreshed"})
}

// GetProfile retrieves the current user's profile
// @Summary Get user profile
// @Description Get the authenticated user's profile and resume summaries
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ProfileResponse "User profile"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 404 {object} models.ErrorResponse "User not found"
// @Router /auth/profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	h.respondWithProfile(c, userID, "")
}

// UpdateProfile updates the current user's profile
// @Summary Update user profile
// @Description Update the display name and/or Gemini API key. An empty geminiApiKey removes the stored key.
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UpdateProfileRequest true "Update profile request"
// @Success 200 {object} models.ProfileResponse "Profile updated"
// @Failure 400 {object} models.ErrorResponse "Invalid request body"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /auth/profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var update storage.UserUpdate
	if name := strings.TrimSpace(req.Name); name != "" {
		update.Name = &name
	}
	if req.GeminiAPIKey != nil {
		encrypted, err := h.cipher.Encrypt(strings.TrimSpace(*req.GeminiAPIKey))
		if err != nil {
			h.fail(c, http.StatusInternalServerError, "Failed to update profile", err)
			return
		}
		update.EncryptedGeminiAPIKey = &encrypted
	}
	if update.IsEmpty() {
		h.fail(c, http.StatusBadRequest, "Nothing to update", nil)
		return
	}

	if _, err := h.store.UpdateUser(c.Request.Context(), userID, update); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.fail(c, http.StatusNotFound, "User not found", nil)
			return
		}
		h.fail(c, http.StatusInternalServerError, "Failed to update profile", err)
		return
	}

	h.logger.Info("profile updated", zap.String("userId", userID))
	h.respondWithProfile(c, userID, "Profile updated successfully")
}

func (h *AuthHandler) respondWithProfile(c *gin.Context, userID, message string) {
	ctx := c.Request.Context()

	user, err := h.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.fail(c, http.StatusNotFound, "User not found", nil)
			return
		}
		h.fail(c, http.StatusInternalServerError, "Failed to load profile", err)
		return
	}

	resumes, err := h.store.ListResumes(ctx, userID)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to load profile", err)
		return
	}

	c.JSON(http.StatusOK, models.ProfileResponse{
		User:    user,
		Resumes: summarize(resumes),
		Message: message,
	})
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, user *models.User, message string) {
	token, err := h.jwtService.GenerateToken(user)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to generate token", err)
		return
	}

	c.JSON(status, models.AuthResponse{
		Token:   token,
		User:    user,
		Message: message,
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func summarize(resumes []*models.Resume) []models.ResumeSummary {
	out := make([]models.ResumeSummary, 0, len(resumes))
	for _, r := range resumes {
		out = append(out, r.Summary())
	}
	return out
}
