package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hiremind/backend/config"
	"github.com/hiremind/backend/models"
)

const (
	usersCollection   = "users"
	resumesCollection = "resumes"
)

// FirestoreStore implements Store on Cloud Firestore
type FirestoreStore struct {
	client *firestore.Client
}

var _ Store = (*FirestoreStore)(nil)

// NewFirestoreStore creates a new Firestore-backed store
func NewFirestoreStore(ctx context.Context, cfg *config.Config) (*FirestoreStore, error) {
	client, err := firestore.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return &FirestoreStore{client: client}, nil
}

// Close closes the Firestore client
func (f *FirestoreStore) Close() error {
	return f.client.Close()
}

// CreateUser creates a new user. Email uniqueness is checked inside a transaction.
func (f *FirestoreStore) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now

	users := f.client.Collection(usersCollection)
	docRef := users.Doc(user.ID)

	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Documents(users.Where("email", "==", user.Email).Limit(1)).GetAll()
		if err != nil {
			return fmt.Errorf("failed to check user existence: %w", err)
		}
		if len(existing) > 0 {
			return ErrAlreadyExists
		}
		return tx.Create(docRef, user)
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) || status.Code(err) == codes.AlreadyExists {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	derive(user)
	return nil
}

// GetUserByID retrieves a user by document ID
func (f *FirestoreStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	doc, err := f.client.Collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return userFromDoc(doc)
}

// GetUserByEmail retrieves a user by email
func (f *FirestoreStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.firstUser(ctx, "email", email)
}

// GetUserByGoogleID retrieves a user by Google ID
func (f *FirestoreStore) GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return f.firstUser(ctx, "googleId", googleID)
}

func (f *FirestoreStore) firstUser(ctx context.Context, field, value string) (*models.User, error) {
	iter := f.client.Collection(usersCollection).Where(field, "==", value).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return userFromDoc(doc)
}

// UpdateUser applies the non-nil fields of update and returns the stored user
func (f *FirestoreStore) UpdateUser(ctx context.Context, id string, update UserUpdate) (*models.User, error) {
	if update.IsEmpty() {
		return f.GetUserByID(ctx, id)
	}

	updates := []firestore.Update{{Path: "updatedAt", Value: time.Now().UTC()}}
	if update.Name != nil {
		updates = append(updates, firestore.Update{Path: "name", Value: *update.Name})
	}
	if update.EncryptedGeminiAPIKey != nil {
		updates = append(updates, firestore.Update{Path: "geminiApiKey", Value: *update.EncryptedGeminiAPIKey})
	}
	if update.GoogleID != nil {
		updates = append(updates, firestore.Update{Path: "googleId", Value: *update.GoogleID})
	}
	if update.Provider != nil {
		updates = append(updates, firestore.Update{Path: "provider", Value: *update.Provider})
	}

	if _, err := f.client.Collection(usersCollection).Doc(id).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return f.GetUserByID(ctx, id)
}

// CreateResume stores a new resume record
func (f *FirestoreStore) CreateResume(ctx context.Context, resume *models.Resume) error {
	if resume.ID == "" {
		resume.ID = uuid.NewString()
	}
	if resume.UploadedAt.IsZero() {
		resume.UploadedAt = time.Now().UTC()
	}

	if _, err := f.client.Collection(resumesCollection).Doc(resume.ID).Create(ctx, resume); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create resume: %w", err)
	}
	return nil
}

// GetResume returns the resume if it exists and belongs to userID
func (f *FirestoreStore) GetResume(ctx context.Context, userID, id string) (*models.Resume, error) {
	_, resume, err := f.ownedResume(ctx, userID, id)
	return resume, err
}

// GetLatestResume returns the most recently uploaded resume of userID
func (f *FirestoreStore) GetLatestResume(ctx context.Context, userID string) (*models.Resume, error) {
	iter := f.client.Collection(resumesCollection).
		Where("userId", "==", userID).
		OrderBy("uploadedAt", firestore.Desc).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query resumes: %w", err)
	}
	return resumeFromDoc(doc)
}

// ListResumes returns the resumes of userID, newest first
func (f *FirestoreStore) ListResumes(ctx context.Context, userID string) ([]*models.Resume, error) {
	iter := f.client.Collection(resumesCollection).
		Where("userId", "==", userID).
		OrderBy("uploadedAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	resumes := make([]*models.Resume, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list resumes: %w", err)
		}
		resume, err := resumeFromDoc(doc)
		if err != nil {
			return nil, err
		}
		resumes = append(resumes, resume)
	}
	return resumes, nil
}

// UpdateResumeData replaces the extracted data of an owned resume
func (f *FirestoreStore) UpdateResumeData(ctx context.Context, userID, id string, data *models.ExtractedData) error {
	ref, _, err := f.ownedResume(ctx, userID, id)
	if err != nil {
		return err
	}
	if _, err := ref.Update(ctx, []firestore.Update{{Path: "extractedData", Value: data}}); err != nil {
		return fmt.Errorf("failed to update resume: %w", err)
	}
	return nil
}

// DeleteResume deletes an owned resume record
func (f *FirestoreStore) DeleteResume(ctx context.Context, userID, id string) error {
	ref, _, err := f.ownedResume(ctx, userID, id)
	if err != nil {
		return err
	}
	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete resume: %w", err)
	}
	return nil
}

// ListResumePaths returns the stored file path of every resume
func (f *FirestoreStore) ListResumePaths(ctx context.Context) ([]string, error) {
	iter := f.client.Collection(resumesCollection).Select("filePath").Documents(ctx)
	defer iter.Stop()

	var paths []string
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list resume paths: %w", err)
		}
		if p, ok := doc.Data()["filePath"].(string); ok && p != "" {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

func (f *FirestoreStore) ownedResume(ctx context.Context, userID, id string) (*firestore.DocumentRef, *models.Resume, error) {
	ref := f.client.Collection(resumesCollection).Doc(id)
	doc, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to get resume: %w", err)
	}

	resume, err := resumeFromDoc(doc)
	if err != nil {
		return nil, nil, err
	}
	if resume.UserID != userID {
		return nil, nil, ErrNotFound
	}
	return ref, resume, nil
}

func userFromDoc(doc *firestore.DocumentSnapshot) (*models.User, error) {
	var user models.User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to parse user data: %w", err)
	}
	user.ID = doc.Ref.ID
	return derive(&user), nil
}

func resumeFromDoc(doc *firestore.DocumentSnapshot) (*models.Resume, error) {
	var resume models.Resume
	if err := doc.DataTo(&resume); err != nil {
		return nil, fmt.Errorf("failed to parse resume data: %w", err)
	}
	resume.ID = doc.Ref.ID
	return &resume, nil
}
