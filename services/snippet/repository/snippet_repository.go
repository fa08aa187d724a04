package repository

import (
	"errors"
	"fmt"
	"strings"

	"kursor/services/snippet/models"
	"kursor/shared/database"

	"gorm.io/gorm"
)

// recentLimit is the number of newest snippets reported in statistics
const recentLimit = 5

// ErrSnippetNotFound is returned when no snippet of the owner matches
var ErrSnippetNotFound = errors.New("snippet not found")

// SnippetRepository defines the interface for snippet data operations.
// Every lookup is scoped to the owning user.
type SnippetRepository interface {
	Create(snippet *models.SavedCode) error
	GetOwned(id, userID string) (*models.SavedCode, error)
	List(userID string, filter models.ListFilter, limit, offset int) ([]*models.SavedCode, int64, error)
	Update(id, userID string, fields map[string]interface{}) (*models.SavedCode, error)
	Delete(id, userID string) error
	Stats(userID string) (*models.Stats, error)
}

// snippetRepository implements SnippetRepository interface
type snippetRepository struct {
	db *database.DB
}

// NewSnippetRepository creates a new snippet repository
func NewSnippetRepository(db *database.DB) SnippetRepository {
	return &snippetRepository{
		db: db,
	}
}

// Create stores a new snippet
func (r *snippetRepository) Create(snippet *models.SavedCode) error {
	if err := r.db.Create(snippet).Error; err != nil {
		return fmt.Errorf("failed to create snippet: %w", err)
	}
	return nil
}

// GetOwned retrieves a snippet by ID if userID owns it
func (r *snippetRepository) GetOwned(id, userID string) (*models.SavedCode, error) {
	var snippet models.SavedCode
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&snippet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSnippetNotFound
		}
		return nil, fmt.Errorf("failed to get snippet: %w", err)
	}
	return &snippet, nil
}

// List pages through the owner's snippets, most recently updated first
func (r *snippetRepository) List(userID string, filter models.ListFilter, limit, offset int) ([]*models.SavedCode, int64, error) {
	query := r.db.Model(&models.SavedCode{}).Where("user_id = ?", userID)
	if filter.Language != "" {
		query = query.Where("language = ?", strings.ToLower(filter.Language))
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where("(LOWER(title) LIKE ? OR LOWER(language) LIKE ?)", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count snippets: %w", err)
	}

	var snippets []*models.SavedCode
	err := query.Order("updated_at DESC").Limit(limit).Offset(offset).Find(&snippets).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list snippets: %w", err)
	}
	return snippets, total, nil
}

// Update applies a partial update to an owned snippet
func (r *snippetRepository) Update(id, userID string, fields map[string]interface{}) (*models.SavedCode, error) {
	snippet, err := r.GetOwned(id, userID)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return snippet, nil
	}

	if err := r.db.Model(snippet).Updates(fields).Error; err != nil {
		return nil, fmt.Errorf("failed to update snippet: %w", err)
	}
	return r.GetOwned(id, userID)
}

// Delete removes an owned snippet
func (r *snippetRepository) Delete(id, userID string) error {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.SavedCode{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete snippet: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSnippetNotFound
	}
	return nil
}

// Stats counts the owner's snippets per language and lists the newest ones
func (r *snippetRepository) Stats(userID string) (*models.Stats, error) {
	owned := func() *gorm.DB {
		return r.db.Model(&models.SavedCode{}).Where("user_id = ?", userID)
	}

	stats := &models.Stats{
		LanguageStats:  []models.LanguageCount{},
		RecentSnippets: []models.RecentSnippet{},
	}

	if err := owned().Count(&stats.TotalSnippets).Error; err != nil {
		return nil, fmt.Errorf("failed to count snippets: %w", err)
	}

	err := owned().
		Select("language, COUNT(*) AS count").
		Group("language").
		Order("count DESC, language ASC").
		Scan(&stats.LanguageStats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to group snippets by language: %w", err)
	}

	err = owned().
		Select("id, title, language, created_at").
		Order("created_at DESC").
		Limit(recentLimit).
		Scan(&stats.RecentSnippets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent snippets: %w", err)
	}

	return stats, nil
}
