package email

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"
	texttemplate "text/template"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail reports whether address looks like user@domain.tld
func IsValidEmail(address string) bool {
	return emailPattern.MatchString(address)
}

// ContactData fills the contact form templates
type ContactData struct {
	Name    string
	Email   string
	Message string
}

// NotificationData fills the notification templates
type NotificationData struct {
	Subject string
	Message string
	Type    string
}

var funcs = template.FuncMap{
	"lines": func(s string) []string { return strings.Split(s, "\n") },
}

var contactHTML = template.Must(template.New("contact_html").Funcs(funcs).Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">New Contact Form Submission</h2>
  <div style="background: #f5f5f5; padding: 20px; border-radius: 8px;">
    <p><strong>Name:</strong> {{.Name}}</p>
    <p><strong>Email:</strong> {{.Email}}</p>
    <p><strong>Message:</strong></p>
    <div style="background: white; padding: 15px; border-radius: 4px; border-left: 4px solid #6366f1;">
      {{range $i, $line := lines .Message}}{{if $i}}<br/>{{end}}{{$line}}{{end}}
    </div>
  </div>
  <p style="margin-top: 20px; font-size: 12px; color: #666;">
    This email was sent from the Kursor contact form.
  </p>
</div>
`))

var contactText = texttemplate.Must(texttemplate.New("contact_text").Parse(
	"Name: {{.Name}}\nEmail: {{.Email}}\nMessage: {{.Message}}"))

var notificationHTML = template.Must(template.New("notification_html").Funcs(funcs).Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">{{.Subject}}</h2>
  <div style="background: #f5f5f5; padding: 20px; border-radius: 8px;">
    {{range $i, $line := lines .Message}}{{if $i}}<br/>{{end}}{{$line}}{{end}}
  </div>
  <p style="margin-top: 20px; font-size: 12px; color: #666;">
    This is a {{.Type}} from Kursor.
  </p>
</div>
`))

// ContactMessage renders the admin notification for a contact form entry
func ContactMessage(adminEmail string, data ContactData) (*Message, error) {
	html, err := render(contactHTML, data)
	if err != nil {
		return nil, err
	}
	var text bytes.Buffer
	if err := contactText.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("failed to render contact text: %w", err)
	}

	return &Message{
		FromName: "Kursor Contact",
		To:       []string{adminEmail},
		ReplyTo:  data.Email,
		Subject:  "New Contact Form Submission from " + data.Name,
		HTMLBody: html,
		TextBody: text.String(),
	}, nil
}

// NotificationMessage renders a notification email
func NotificationMessage(to []string, data NotificationData) (*Message, error) {
	html, err := render(notificationHTML, data)
	if err != nil {
		return nil, err
	}

	return &Message{
		FromName: "Kursor Notifications",
		To:       to,
		Subject:  data.Subject,
		HTMLBody: html,
		TextBody: data.Message,
	}, nil
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
