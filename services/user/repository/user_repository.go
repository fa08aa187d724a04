package repository

import (
	"errors"
	"fmt"
	"strings"

	"kursor/services/user/models"
	"kursor/shared/database"

	"gorm.io/gorm"
)

// snippetTable is owned by the snippet service; both services share the
// database so profiles can report a snippet count.
const snippetTable = "saved_codes"

var (
	// ErrUserNotFound is returned when no user matches the lookup
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when the email is already registered
	ErrEmailTaken = errors.New("user with email already exists")
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Save(user *models.User) error
	UpdateFields(id string, fields map[string]interface{}) (*models.User, error)
	Search(term string, limit, offset int) ([]*models.User, int64, error)
	CountSnippets(userID string) (int64, error)
}

// userRepository implements UserRepository interface
type userRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) UserRepository {
	return &userRepository{
		db: db,
	}
}

// Create creates a new user
func (r *userRepository) Create(user *models.User) error {
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email
func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// Save writes every column of an existing user
func (r *userRepository) Save(user *models.User) error {
	result := r.db.Save(user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	return nil
}

// UpdateFields applies a partial update and returns the fresh row
func (r *userRepository) UpdateFields(id string, fields map[string]interface{}) (*models.User, error) {
	if len(fields) > 0 {
		result := r.db.Model(&models.User{}).Where("id = ?", id).Updates(fields)
		if result.Error != nil {
			return nil, fmt.Errorf("failed to update user: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, ErrUserNotFound
		}
	}
	return r.GetByID(id)
}

// Search pages through users whose name or email contains term, newest first
func (r *userRepository) Search(term string, limit, offset int) ([]*models.User, int64, error) {
	query := r.db.Model(&models.User{})
	if term = strings.TrimSpace(term); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []*models.User
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search users: %w", err)
	}
	return users, total, nil
}

// CountSnippets counts snippets owned by userID. It returns 0 while the
// snippet service has not created its table yet.
func (r *userRepository) CountSnippets(userID string) (int64, error) {
	if !r.db.Migrator().HasTable(snippetTable) {
		return 0, nil
	}
	var count int64
	err := r.db.Table(snippetTable).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count snippets: %w", err)
	}
	return count, nil
}
