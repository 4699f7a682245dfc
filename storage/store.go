package storage

import (
	"context"
	"errors"

	"github.com/hiremind/backend/models"
)

var (
	// ErrNotFound is returned when a user or resume does not exist or is not owned by the caller
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a user with the same email or Google ID exists
	ErrAlreadyExists = errors.New("already exists")
)

// UserUpdate lists the mutable user fields. Nil fields are left untouched.
type UserUpdate struct {
	Name                  *string
	EncryptedGeminiAPIKey *string
	GoogleID              *string
	Provider              *string
}

// IsEmpty reports whether the update changes nothing
func (u UserUpdate) IsEmpty() bool {
	return u.Name == nil && u.EncryptedGeminiAPIKey == nil && u.GoogleID == nil && u.Provider == nil
}

// UserStore persists user accounts
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, update UserUpdate) (*models.User, error)
}

// ResumeStore persists resume records. Every lookup is scoped to the owning user.
type ResumeStore interface {
	CreateResume(ctx context.Context, resume *models.Resume) error
	GetResume(ctx context.Context, userID, id string) (*models.Resume, error)
	GetLatestResume(ctx context.Context, userID string) (*models.Resume, error)
	ListResumes(ctx context.Context, userID string) ([]*models.Resume, error)
	UpdateResumeData(ctx context.Context, userID, id string, data *models.ExtractedData) error
	DeleteResume(ctx context.Context, userID, id string) error
}

// ResumePathLister returns the stored file path of every resume record
type ResumePathLister interface {
	ListResumePaths(ctx context.Context) ([]string, error)
}

// Store is the full persistence surface used by the API
type Store interface {
	UserStore
	ResumeStore
	ResumePathLister
	Close() error
}

func derive(user *models.User) *models.User {
	if user != nil {
		user.HasGeminiAPIKey = user.EncryptedGeminiAPIKey != ""
	}
	return user
}
