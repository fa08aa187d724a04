package models

import (
	"strings"
	"time"

	"kursor/shared/models"
)

// SavedCode is a code snippet owned by a single user
type SavedCode struct {
	models.BaseModel
	UserID   string `gorm:"index;not null;size:36" json:"userId"`
	Title    string `gorm:"not null;size:255" json:"title"`
	Code     string `gorm:"type:text;not null" json:"code"`
	Language string `gorm:"index;not null;size:50" json:"language"`
}

// TableName returns the table name for SavedCode model. The user service
// reads the same table to count snippets.
func (SavedCode) TableName() string {
	return "saved_codes"
}

// CreateSnippetRequest represents the payload for saving a snippet
type CreateSnippetRequest struct {
	Title    string `json:"title"`
	Code     string `json:"code"`
	Language string `json:"language"`
}

// UpdateSnippetRequest is a partial snippet update
type UpdateSnippetRequest struct {
	Title    *string `json:"title"`
	Code     *string `json:"code"`
	Language *string `json:"language"`
}

// Fields returns the normalized columns the update touches
func (r *UpdateSnippetRequest) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if r.Title != nil {
		fields["title"] = strings.TrimSpace(*r.Title)
	}
	if r.Code != nil {
		fields["code"] = *r.Code
	}
	if r.Language != nil {
		fields["language"] = strings.ToLower(*r.Language)
	}
	return fields
}

// ListFilter narrows a snippet listing
type ListFilter struct {
	Search   string
	Language string
}

// LanguageCount is the number of snippets a user wrote in one language
type LanguageCount struct {
	Language string `json:"language"`
	Count    int64  `json:"count"`
}

// RecentSnippet is the short form used in statistics
type RecentSnippet struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"createdAt"`
}

// Stats summarizes a user's snippets
type Stats struct {
	TotalSnippets  int64           `json:"totalSnippets"`
	LanguageStats  []LanguageCount `json:"languageStats"`
	RecentSnippets []RecentSnippet `json:"recentSnippets"`
}
