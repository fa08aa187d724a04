package usecase

import (
	"errors"
	"strings"

	"kursor/services/snippet/models"
	"kursor/services/snippet/repository"
	sharedmodels "kursor/shared/models"
)

// Listing defaults for snippet pages
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ErrMissingFields is returned when a new snippet lacks title, code or language
var ErrMissingFields = errors.New("missing required fields: title, code, and language are required")

// SnippetPage is one page of snippets
type SnippetPage struct {
	Language   string                  `json:"language,omitempty"`
	Snippets   []*models.SavedCode     `json:"snippets"`
	Pagination sharedmodels.Pagination `json:"pagination"`
}

// SnippetUsecase defines the interface for snippet business logic
type SnippetUsecase interface {
	List(userID string, filter models.ListFilter, page, limit int) (*SnippetPage, error)
	Get(id, userID string) (*models.SavedCode, error)
	Create(userID string, req *models.CreateSnippetRequest) (*models.SavedCode, error)
	Update(id, userID string, req *models.UpdateSnippetRequest) (*models.SavedCode, error)
	Delete(id, userID string) error
	Stats(userID string) (*models.Stats, error)
}

// snippetUsecase implements SnippetUsecase interface
type snippetUsecase struct {
	snippetRepo repository.SnippetRepository
}

// NewSnippetUsecase creates a new snippet usecase
func NewSnippetUsecase(snippetRepo repository.SnippetRepository) SnippetUsecase {
	return &snippetUsecase{
		snippetRepo: snippetRepo,
	}
}

// List returns a page of the owner's snippets
func (s *snippetUsecase) List(userID string, filter models.ListFilter, page, limit int) (*SnippetPage, error) {
	page, limit = normalizePage(page, limit)

	snippets, total, err := s.snippetRepo.List(userID, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	if snippets == nil {
		snippets = []*models.SavedCode{}
	}

	return &SnippetPage{
		Language:   filter.Language,
		Snippets:   snippets,
		Pagination: sharedmodels.NewPagination(page, limit, total),
	}, nil
}

// Get returns one owned snippet
func (s *snippetUsecase) Get(id, userID string) (*models.SavedCode, error) {
	return s.snippetRepo.GetOwned(id, userID)
}

// Create saves a snippet with a trimmed title and lower-cased language
func (s *snippetUsecase) Create(userID string, req *models.CreateSnippetRequest) (*models.SavedCode, error) {
	if req.Title == "" || req.Code == "" || req.Language == "" {
		return nil, ErrMissingFields
	}

	snippet := &models.SavedCode{
		UserID:   userID,
		Title:    strings.TrimSpace(req.Title),
		Code:     req.Code,
		Language: strings.ToLower(req.Language),
	}
	if err := s.snippetRepo.Create(snippet); err != nil {
		return nil, err
	}
	return snippet, nil
}

// Update applies the provided fields to an owned snippet
func (s *snippetUsecase) Update(id, userID string, req *models.UpdateSnippetRequest) (*models.SavedCode, error) {
	return s.snippetRepo.Update(id, userID, req.Fields())
}

// Delete removes an owned snippet
func (s *snippetUsecase) Delete(id, userID string) error {
	return s.snippetRepo.Delete(id, userID)
}

// Stats summarizes the owner's snippets
func (s *snippetUsecase) Stats(userID string) (*models.Stats, error) {
	return s.snippetRepo.Stats(userID)
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
