package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kursor/services/communication/email"
	"kursor/services/communication/models"
	"kursor/shared/logger"
)

var (
	ErrMissingContactFields = errors.New("missing required fields: name, email, and message are required")
	ErrInvalidEmail         = errors.New("invalid email format")
	ErrMissingAdminEmail    = errors.New("server email configuration is missing")
	ErrMissingNotifyFields  = errors.New("missing required fields: to, subject, and message are required")
)

// Config controls where contact messages go
type Config struct {
	// ContactAdminEmail receives contact form submissions
	ContactAdminEmail string
	// Demo accepts messages without sending them
	Demo bool
}

// CommunicationUsecase defines the interface for outbound messaging
type CommunicationUsecase interface {
	Contact(ctx context.Context, req *models.ContactRequest) (*models.SendResult, error)
	Notify(ctx context.Context, req *models.NotifyRequest) (*models.SendResult, error)
}

type communicationUsecase struct {
	sender email.Sender
	config Config
	now    func() time.Time
}

// NewCommunicationUsecase creates a new communication usecase. sender may be
// nil in demo mode.
func NewCommunicationUsecase(sender email.Sender, config Config) CommunicationUsecase {
	return &communicationUsecase{
		sender: sender,
		config: config,
		now:    time.Now,
	}
}

// Contact forwards a contact form entry to the admin mailbox
func (u *communicationUsecase) Contact(ctx context.Context, req *models.ContactRequest) (*models.SendResult, error) {
	if req.Name == "" || req.Email == "" || req.Message == "" {
		return nil, ErrMissingContactFields
	}
	if !email.IsValidEmail(req.Email) {
		return nil, ErrInvalidEmail
	}

	if u.config.Demo {
		logger.WithFields(map[string]interface{}{
			"name":    req.Name,
			"email":   req.Email,
			"message": preview(req.Message),
		}).Info("Demo mode, contact form received")
		return &models.SendResult{
			Success:   true,
			MessageID: fmt.Sprintf("demo_%d", u.now().UnixMilli()),
			Message:   "Your message has been received (demo mode)!",
		}, nil
	}

	if u.config.ContactAdminEmail == "" {
		return nil, ErrMissingAdminEmail
	}

	msg, err := email.ContactMessage(u.config.ContactAdminEmail, email.ContactData{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		return nil, err
	}

	id, err := u.sender.Send(ctx, msg)
	if err != nil {
		return nil, err
	}

	return &models.SendResult{
		Success:   true,
		MessageID: id,
		Message:   "Your message has been sent successfully!",
	}, nil
}

// Notify sends a notification email to one or more recipients
func (u *communicationUsecase) Notify(ctx context.Context, req *models.NotifyRequest) (*models.SendResult, error) {
	if len(req.To) == 0 || req.Subject == "" || req.Message == "" {
		return nil, ErrMissingNotifyFields
	}
	kind := req.Type
	if kind == "" {
		kind = models.DefaultNotificationType
	}

	if u.config.Demo {
		logger.WithFields(map[string]interface{}{
			"to":      strings.Join(req.To, ", "),
			"subject": req.Subject,
			"type":    kind,
		}).Info("Demo mode, notification not sent")
		return &models.SendResult{
			Success:   true,
			MessageID: fmt.Sprintf("demo_notification_%d", u.now().UnixMilli()),
		}, nil
	}

	msg, err := email.NotificationMessage(req.To, email.NotificationData{
		Subject: req.Subject,
		Message: req.Message,
		Type:    kind,
	})
	if err != nil {
		return nil, err
	}

	id, err := u.sender.Send(ctx, msg)
	if err != nil {
		return nil, err
	}
	return &models.SendResult{Success: true, MessageID: id}, nil
}

func preview(message string) string {
	const max = 50
	runes := []rune(message)
	if len(runes) <= max {
		return message
	}
	return string(runes[:max]) + "..."
}
