package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kursor/services/execution/judge0"
	"kursor/services/execution/models"
	"kursor/services/execution/store"
	"kursor/shared/logger"
)

const noOutput = "No output"

var (
	// ErrMissingFields is returned when code or language is empty
	ErrMissingFields = errors.New("missing required fields: code and language")
	// ErrMissingAPIKey is returned when no Judge0 API key is configured
	ErrMissingAPIKey = errors.New("server configuration error: missing API key")
)

// UnsupportedLanguageError is returned for languages Judge0 is not set up for
type UnsupportedLanguageError struct {
	Language string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("Unsupported language: %s. Supported: %s", e.Language, strings.Join(models.LanguageNames(), ", "))
}

// Judge0 is the part of the Judge0 client the usecase depends on
type Judge0 interface {
	Configured() bool
	Submit(ctx context.Context, languageID int, source, stdin string) (string, error)
	Result(ctx context.Context, token string) (*judge0.Result, error)
}

// ExecutionUsecase defines the interface for code execution
type ExecutionUsecase interface {
	Execute(ctx context.Context, req *models.ExecuteRequest) (*models.Submission, error)
	Status(ctx context.Context, token string) (*models.ExecutionResult, error)
}

type executionUsecase struct {
	judge0 Judge0
	store  store.ResultStore
}

// NewExecutionUsecase creates a new execution usecase
func NewExecutionUsecase(client Judge0, results store.ResultStore) ExecutionUsecase {
	return &executionUsecase{
		judge0: client,
		store:  results,
	}
}

// Execute submits code to Judge0
func (u *executionUsecase) Execute(ctx context.Context, req *models.ExecuteRequest) (*models.Submission, error) {
	if req.Code == "" || req.Language == "" {
		return nil, ErrMissingFields
	}
	languageID, ok := models.LanguageID(req.Language)
	if !ok {
		return nil, &UnsupportedLanguageError{Language: req.Language}
	}
	if !u.judge0.Configured() {
		return nil, ErrMissingAPIKey
	}

	token, err := u.judge0.Submit(ctx, languageID, req.Code, req.Input)
	if err != nil {
		return nil, err
	}

	return &models.Submission{
		Token:          token,
		Message:        "Code submitted for execution",
		CheckStatusURL: "/status/" + token,
	}, nil
}

// Status reports a submission's progress. Completed results are served
// from the store once recorded.
func (u *executionUsecase) Status(ctx context.Context, token string) (*models.ExecutionResult, error) {
	if !u.judge0.Configured() {
		return nil, ErrMissingAPIKey
	}

	cached, err := u.store.Get(ctx, token)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		logger.WithFields(map[string]interface{}{
			"token": token,
			"store": u.store.Name(),
			"error": err.Error(),
		}).Warn("Result store read failed, asking Judge0")
	}

	raw, err := u.judge0.Result(ctx, token)
	if err != nil {
		return nil, err
	}

	result, err := toResult(raw)
	if err != nil {
		return nil, err
	}

	if result.Completed() {
		if err := u.store.Put(ctx, token, result); err != nil {
			logger.WithFields(map[string]interface{}{
				"token": token,
				"store": u.store.Name(),
				"error": err.Error(),
			}).Warn("Failed to store execution result")
		}
	}
	return result, nil
}

func toResult(raw *judge0.Result) (*models.ExecutionResult, error) {
	result := &models.ExecutionResult{}
	if raw.Status != nil {
		id, description := raw.Status.ID, raw.Status.Description
		result.StatusID = &id
		result.Description = &description
	}

	if raw.Pending() {
		result.Status = models.StatusProcessing
		result.Message = "Code is still executing..."
		return result, nil
	}

	output, ok, err := raw.Output()
	if err != nil {
		return nil, err
	}
	if !ok {
		output = noOutput
	}

	result.Status = models.StatusCompleted
	result.Output = &output
	result.ExecutionTime = raw.Time
	result.Memory = raw.Memory
	return result, nil
}
