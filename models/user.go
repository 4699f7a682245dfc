package models

import "time"

// Auth providers
const (
	ProviderEmail  = "email"
	ProviderGoogle = "google"
)

// User represents an account
// @Description User account information
type User struct {
	ID                    string    `json:"id" firestore:"-" example:"0b6c1f4a-3e9d-4a1b-8c2d-7e6f5a4b3c2d"`
	Name                  string    `json:"name" firestore:"name" example:"Jane Doe"`
	Email                 string    `json:"email" firestore:"email" example:"jane@example.com"`
	Password              string    `json:"-" firestore:"password"`       // bcrypt hash
	EncryptedGeminiAPIKey string    `json:"-" firestore:"geminiApiKey"`   // AES-GCM, see auth.KeyCipher
	HasGeminiAPIKey       bool      `json:"hasGeminiApiKey" firestore:"-"` // derived on read
	Provider              string    `json:"provider" firestore:"provider" example:"email"`
	GoogleID              string    `json:"-" firestore:"googleId,omitempty"`
	CreatedAt             time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt" firestore:"updatedAt"`
}
