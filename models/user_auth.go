package models

// SignupRequest represents registration request
// @Description User registration request
type SignupRequest struct {
	Name         string `json:"name" binding:"required" example:"Jane Doe"`
	Email        string `json:"email" binding:"required,email" example:"jane@example.com"`
	Password     string `json:"password" binding:"required,min=6" example:"password123"`
	GeminiAPIKey string `json:"geminiApiKey,omitempty" example:"AIza..."`
}

// LoginRequest represents login request
// @Description User login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"jane@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// GoogleAuthRequest represents Google SSO authentication request
// @Description Google SSO authentication request
type GoogleAuthRequest struct {
	IDToken string `json:"idToken" binding:"required" example:"eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// UpdateProfileRequest represents profile update request.
// A nil GeminiAPIKey leaves the stored key untouched; an empty string clears it.
// @Description Profile update request
type UpdateProfileRequest struct {
	Name         string  `json:"name,omitempty" example:"Jane Smith"`
	GeminiAPIKey *string `json:"geminiApiKey,omitempty"`
}

// AuthResponse represents authentication response
// @Description Authentication response with JWT token
type AuthResponse struct {
	Token   string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	User    *User  `json:"user"`
	Message string `json:"message,omitempty" example:"Login successful"`
}

// ProfileResponse represents user profile response
// @Description User profile response
type ProfileResponse struct {
	User    *User           `json:"user"`
	Resumes []ResumeSummary `json:"resumes"`
	Message string          `json:"message,omitempty" example:"Profile updated successfully"`
}
