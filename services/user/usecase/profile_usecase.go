package usecase

import (
	"fmt"

	"kursor/services/user/models"
	"kursor/services/user/repository"
	sharedmodels "kursor/shared/models"
)

// Listing defaults for user search
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// SearchResult is one page of users
type SearchResult struct {
	Users      []models.SearchUserResponse `json:"users"`
	Pagination sharedmodels.Pagination     `json:"pagination"`
}

// ProfileUsecase defines the interface for profile business logic
type ProfileUsecase interface {
	GetProfile(userID string) (*models.ProfileResponse, error)
	UpdateProfile(userID string, req *models.UpdateProfileRequest) (*models.ProfileResponse, error)
	GetUser(id string) (*models.PublicUserResponse, error)
	SearchUsers(term string, page, limit int) (*SearchResult, error)
}

// profileUsecase implements ProfileUsecase interface
type profileUsecase struct {
	userRepo repository.UserRepository
}

// NewProfileUsecase creates a new profile usecase
func NewProfileUsecase(userRepo repository.UserRepository) ProfileUsecase {
	return &profileUsecase{
		userRepo: userRepo,
	}
}

// GetProfile returns the caller's profile with their snippet count
func (p *profileUsecase) GetProfile(userID string) (*models.ProfileResponse, error) {
	user, err := p.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	count, err := p.userRepo.CountSnippets(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profile := user.ToProfile()
	profile.SnippetCount = &count
	return profile, nil
}

// UpdateProfile applies the provided fields only
func (p *profileUsecase) UpdateProfile(userID string, req *models.UpdateProfileRequest) (*models.ProfileResponse, error) {
	user, err := p.userRepo.UpdateFields(userID, req.Fields())
	if err != nil {
		return nil, err
	}
	return user.ToProfile(), nil
}

// GetUser returns the public view of a user
func (p *profileUsecase) GetUser(id string) (*models.PublicUserResponse, error) {
	user, err := p.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return user.ToPublic(), nil
}

// SearchUsers pages through users matching term on name or email
func (p *profileUsecase) SearchUsers(term string, page, limit int) (*SearchResult, error) {
	page, limit = normalizePage(page, limit)

	users, total, err := p.userRepo.Search(term, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	result := &SearchResult{
		Users:      make([]models.SearchUserResponse, 0, len(users)),
		Pagination: sharedmodels.NewPagination(page, limit, total),
	}
	for _, u := range users {
		result.Users = append(result.Users, u.ToSearchResult())
	}
	return result, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}
