// Package judge0 is a small client for the Judge0 CE submissions API as
// exposed through RapidAPI. Source, stdin and outputs travel base64 encoded.
package judge0

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxErrorBody caps how much of a failed response is kept for diagnostics
const maxErrorBody = 4 << 10

// Judge0 status ids up to this value mean the submission is queued or running
const lastPendingStatus = 2

// StatusError is returned when Judge0 answers with a non-2xx status
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("judge0 returned %d", e.Code)
}

// Config holds Judge0 connection settings
type Config struct {
	URL     string
	Host    string
	APIKey  string
	Timeout time.Duration
}

// Status is the Judge0 status object
type Status struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// Result is a submission as returned by GET /submissions/:token with
// base64 encoded output fields.
type Result struct {
	Token         string  `json:"token"`
	Stdout        *string `json:"stdout"`
	Stderr        *string `json:"stderr"`
	CompileOutput *string `json:"compile_output"`
	Time          *string `json:"time"`
	Memory        *int    `json:"memory"`
	Status        *Status `json:"status"`
}

// Pending reports whether the submission is still queued or running
func (r *Result) Pending() bool {
	return r.Status != nil && r.Status.ID <= lastPendingStatus
}

// Output returns the first non-empty of stdout, compile output and stderr,
// decoded. ok is false when all are empty.
func (r *Result) Output() (output string, ok bool, err error) {
	for _, field := range []*string{r.Stdout, r.CompileOutput, r.Stderr} {
		if field == nil || *field == "" {
			continue
		}
		decoded, err := decode(*field)
		if err != nil {
			return "", false, err
		}
		return decoded, true, nil
	}
	return "", false, nil
}

// Client talks to the Judge0 submissions API
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a Judge0 client
func NewClient(config Config) *Client {
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// Configured reports whether an API key is available
func (c *Client) Configured() bool {
	return c.config.APIKey != ""
}

type submissionBody struct {
	LanguageID int    `json:"language_id"`
	SourceCode string `json:"source_code"`
	Stdin      string `json:"stdin"`
}

// Submit queues source code for execution and returns the submission token
func (c *Client) Submit(ctx context.Context, languageID int, source, stdin string) (string, error) {
	payload, err := json.Marshal(submissionBody{
		LanguageID: languageID,
		SourceCode: base64.StdEncoding.EncodeToString([]byte(source)),
		Stdin:      base64.StdEncoding.EncodeToString([]byte(stdin)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode submission: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/submissions", payload)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var created struct {
		Token string `json:"token"`
	}
	if err := c.do(req, &created); err != nil {
		return "", err
	}
	if created.Token == "" {
		return "", fmt.Errorf("judge0 returned no submission token")
	}
	return created.Token, nil
}

// Result fetches the current state of a submission
func (c *Client) Result(ctx context.Context, token string) (*Result, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/submissions/"+url.PathEscape(token), nil)
	if err != nil {
		return nil, err
	}

	var result Result
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.config.URL+path+"?base64_encoded=true", reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build judge0 request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.config.APIKey)
	req.Header.Set("X-RapidAPI-Host", c.config.Host)
	return req, nil
}

func (c *Client) do(req *http.Request, dst interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("judge0 request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode judge0 response: %w", err)
	}
	return nil
}

// decode reverses Judge0's base64, which wraps lines every 60 characters
func decode(s string) (string, error) {
	s = strings.NewReplacer("\n", "", "\r", "").Replace(s)
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("failed to decode judge0 output: %w", err)
	}
	return string(b), nil
}
