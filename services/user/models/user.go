package models

import (
	"time"

	"kursor/shared/models"
)

// User is a Kursor account. Password is empty for accounts created through
// an OAuth provider until the owner signs up with a password.
type User struct {
	models.BaseModel
	Email       string `gorm:"uniqueIndex;not null;size:255"`
	Name        string `gorm:"size:100"`
	Password    string `gorm:"size:255"`
	Image       string `gorm:"type:text"`
	Mobile      string `gorm:"size:32"`
	Bio         string `gorm:"type:text"`
	GithubURL   string `gorm:"column:github_url;size:500"`
	LinkedinURL string `gorm:"column:linkedin_url;size:500"`
}

// TableName returns the table name for User model
func (User) TableName() string {
	return "users"
}

// HasPassword reports whether the account can log in with a password
func (u *User) HasPassword() bool {
	return u.Password != ""
}

// SignupRequest represents the signup payload
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ValidateRequest carries a token to check
type ValidateRequest struct {
	Token string `json:"token"`
}

// ChangePasswordRequest represents password change request payload
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UpdateProfileRequest is a partial profile update. Nil fields are left
// unchanged.
type UpdateProfileRequest struct {
	Name        *string `json:"name"`
	Image       *string `json:"image"`
	Mobile      *string `json:"mobile"`
	Bio         *string `json:"bio"`
	GithubURL   *string `json:"githubUrl"`
	LinkedinURL *string `json:"linkedinUrl"`
}

// Fields returns the columns the update touches
func (r *UpdateProfileRequest) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if r.Name != nil {
		fields["name"] = *r.Name
	}
	if r.Image != nil {
		fields["image"] = *r.Image
	}
	if r.Mobile != nil {
		fields["mobile"] = *r.Mobile
	}
	if r.Bio != nil {
		fields["bio"] = *r.Bio
	}
	if r.GithubURL != nil {
		fields["github_url"] = *r.GithubURL
	}
	if r.LinkedinURL != nil {
		fields["linkedin_url"] = *r.LinkedinURL
	}
	return fields
}

// AccountResponse is the user block returned by signup and login
type AccountResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image"`
}

// AuthResponse is returned by signup and login
type AuthResponse struct {
	Success bool            `json:"success"`
	User    AccountResponse `json:"user"`
	Token   string          `json:"token"`
}

// ProfileResponse is the caller's own profile
type ProfileResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Image        string    `json:"image"`
	Mobile       string    `json:"mobile"`
	Bio          string    `json:"bio"`
	GithubURL    string    `json:"githubUrl"`
	LinkedinURL  string    `json:"linkedinUrl"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
	SnippetCount *int64    `json:"snippetCount,omitempty"`
}

// PublicUserResponse is what other users may see
type PublicUserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
}

// SearchUserResponse is one row of a user search
type SearchUserResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Image       string `json:"image"`
	GithubURL   string `json:"githubUrl"`
	LinkedinURL string `json:"linkedinUrl"`
}

// ToAccount converts User to AccountResponse
func (u *User) ToAccount() AccountResponse {
	return AccountResponse{ID: u.ID, Name: u.Name, Email: u.Email, Image: u.Image}
}

// ToProfile converts User to ProfileResponse
func (u *User) ToProfile() *ProfileResponse {
	return &ProfileResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Image:       u.Image,
		Mobile:      u.Mobile,
		Bio:         u.Bio,
		GithubURL:   u.GithubURL,
		LinkedinURL: u.LinkedinURL,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// ToPublic converts User to PublicUserResponse
func (u *User) ToPublic() *PublicUserResponse {
	return &PublicUserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Image:     u.Image,
		CreatedAt: u.CreatedAt,
	}
}

// ToSearchResult converts User to SearchUserResponse
func (u *User) ToSearchResult() SearchUserResponse {
	return SearchUserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Image:       u.Image,
		GithubURL:   u.GithubURL,
		LinkedinURL: u.LinkedinURL,
	}
}
