package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultNotificationType is used when a notification names no type
const DefaultNotificationType = "notification"

// ContactRequest represents a contact form submission
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Recipients accepts either a single address or a list in JSON
type Recipients []string

// UnmarshalJSON decodes "a@b.c" as well as ["a@b.c", "d@e.f"]
func (r *Recipients) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*r = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("recipients: %w", err)
		}
		*r = list
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("recipients must be a string or a list of strings: %w", err)
	}
	if single == "" {
		*r = nil
		return nil
	}
	*r = Recipients{single}
	return nil
}

// NotifyRequest represents a notification to send
type NotifyRequest struct {
	To      Recipients `json:"to"`
	Subject string     `json:"subject"`
	Message string     `json:"message"`
	Type    string     `json:"type"`
}

// SendResult is returned once a message was accepted
type SendResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
	Message   string `json:"message,omitempty"`
}
