package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hiremind/backend/auth"
	"github.com/hiremind/backend/gemini"
	"github.com/hiremind/backend/models"
	"github.com/hiremind/backend/storage"
)

// GeneratorProvider hands out Gemini generators for an API key (empty = server default)
type GeneratorProvider interface {
	For(ctx context.Context, apiKey string) (gemini.Generator, error)
}

// GeneratorResolver picks the generator for a user: their own stored key when
// present, otherwise the server default.
type GeneratorResolver struct {
	users    storage.UserStore
	cipher   *auth.KeyCipher
	provider GeneratorProvider
	logger   *zap.Logger
}

// NewGeneratorResolver creates a resolver
func NewGeneratorResolver(users storage.UserStore, cipher *auth.KeyCipher, provider GeneratorProvider, logger *zap.Logger) *GeneratorResolver {
	return &GeneratorResolver{users: users, cipher: cipher, provider: provider, logger: logger}
}

// ForUser returns the generator to use on behalf of userID
func (r *GeneratorResolver) ForUser(ctx context.Context, userID string) (gemini.Generator, error) {
	var apiKey string

	user, err := r.users.GetUserByID(ctx, userID)
	switch {
	case err == nil && user.EncryptedGeminiAPIKey != "":
		apiKey, err = r.cipher.Decrypt(user.EncryptedGeminiAPIKey)
		if err != nil {
			r.logger.Warn("stored gemini key unreadable, using server default", zap.String("userId", userID), zap.Error(err))
			apiKey = ""
		}
	case err != nil && !errors.Is(err, storage.ErrNotFound):
		return nil, err
	}

	return r.provider.For(ctx, apiKey)
}

// responder writes models.ErrorResponse bodies. Details are only exposed when verbose.
type responder struct {
	logger  *zap.Logger
	verbose bool
}

func (r responder) fail(c *gin.Context, code int, msg string, err error) {
	resp := models.ErrorResponse{Error: msg, Code: code}
	if err != nil {
		if code >= 500 {
			r.logger.Error(msg, zap.String("path", c.FullPath()), zap.Error(err))
		}
		if r.verbose {
			resp.Details = err.Error()
		}
	}
	c.JSON(code, resp)
}

// userID returns the authenticated user's ID, writing 401 when absent
func (r responder) userID(c *gin.Context) (string, bool) {
	claims := auth.GetAuthClaims(c)
	if claims == nil || claims.UserID == "" {
		r.fail(c, http.StatusUnauthorized, "Unauthorized", nil)
		return "", false
	}
	return claims.UserID, true
}
