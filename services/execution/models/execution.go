package models

// Execution status values reported to clients
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
)

// Language maps a supported language name to its Judge0 language id
type Language struct {
	Name string
	ID   int
}

// Languages lists the supported languages in display order
var Languages = []Language{
	{Name: "javascript", ID: 93},
	{Name: "python", ID: 71},
	{Name: "cpp", ID: 54},
	{Name: "java", ID: 62},
}

// LanguageID returns the Judge0 id of a supported language
func LanguageID(name string) (int, bool) {
	for _, l := range Languages {
		if l.Name == name {
			return l.ID, true
		}
	}
	return 0, false
}

// LanguageNames returns the supported language names in display order
func LanguageNames() []string {
	names := make([]string, 0, len(Languages))
	for _, l := range Languages {
		names = append(names, l.Name)
	}
	return names
}

// LanguageMap returns the name to Judge0 id mapping
func LanguageMap() map[string]int {
	m := make(map[string]int, len(Languages))
	for _, l := range Languages {
		m[l.Name] = l.ID
	}
	return m
}

// ExecuteRequest represents a code execution request
type ExecuteRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	Input    string `json:"input"`
}

// Submission is returned once code is queued
type Submission struct {
	Token          string `json:"token"`
	Message        string `json:"message"`
	CheckStatusURL string `json:"checkStatusUrl"`
}

// ExecutionResult is the state of a submission. Output, ExecutionTime and
// Memory are only set once the submission completed.
type ExecutionResult struct {
	Status        string  `json:"status"`
	Message       string  `json:"message,omitempty"`
	Output        *string `json:"output,omitempty"`
	ExecutionTime *string `json:"executionTime,omitempty"`
	Memory        *int    `json:"memory,omitempty"`
	StatusID      *int    `json:"statusId"`
	Description   *string `json:"description"`
}

// Completed reports whether the result is final
func (r *ExecutionResult) Completed() bool {
	return r.Status == StatusCompleted
}
