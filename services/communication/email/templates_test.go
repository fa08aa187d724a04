package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidEmail(t *testing.T) {
	for _, ok := range []string{"ada@kursor.io", "a.b+c@d.co.uk"} {
		assert.True(t, IsValidEmail(ok), ok)
	}
	for _, bad := range []string{"", "ada", "ada@kursor", "a da@kursor.io", "@kursor.io", "ada@@kursor.io"} {
		assert.False(t, IsValidEmail(bad), bad)
	}
}

func TestContactMessage(t *testing.T) {
	msg, err := ContactMessage("admin@kursor.io", ContactData{
		Name:    "Ada",
		Email:   "ada@example.com",
		Message: "line one\n<script>x</script>",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"admin@kursor.io"}, msg.To)
	assert.Equal(t, "ada@example.com", msg.ReplyTo)
	assert.Equal(t, "Kursor Contact", msg.FromName)
	assert.Equal(t, "New Contact Form Submission from Ada", msg.Subject)
	assert.Contains(t, msg.HTMLBody, "line one<br/>&lt;script&gt;x&lt;/script&gt;")
	assert.NotContains(t, msg.HTMLBody, "<script>")
	assert.Equal(t, "Name: Ada\nEmail: ada@example.com\nMessage: line one\n<script>x</script>", msg.TextBody)
}

func TestNotificationMessage(t *testing.T) {
	msg, err := NotificationMessage([]string{"a@b.co", "c@d.co"}, NotificationData{
		Subject: "Build finished",
		Message: "all green",
		Type:    "alert",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a@b.co", "c@d.co"}, msg.To)
	assert.Equal(t, "Build finished", msg.Subject)
	assert.Contains(t, msg.HTMLBody, "<h2 style=\"color: #333;\">Build finished</h2>")
	assert.Contains(t, msg.HTMLBody, "This is a alert from Kursor.")
	assert.Equal(t, "all green", msg.TextBody)
}
