package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLoggerCarriesServiceField(t *testing.T) {
	var buf bytes.Buffer
	log := New(&Config{Level: "info", Format: "json", Service: "api-gateway", Output: &buf})

	log.WithField("request_id", "req-1").Info("hello")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "api-gateway", line["service"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "info", line["level"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&Config{Level: "warn", Format: "json", Output: &buf})

	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	log := New(&Config{Level: "loud", Format: "text", Output: &bytes.Buffer{}})
	assert.Equal(t, "info", log.GetLevel().String())
}

func TestSetDefault(t *testing.T) {
	previous := Default()
	t.Cleanup(func() { SetDefault(previous) })

	var buf bytes.Buffer
	SetDefault(New(&Config{Level: "info", Format: "json", Service: "user-service", Output: &buf}))
	WithFields(map[string]interface{}{"user_id": "u1"}).Info("via default")

	assert.Contains(t, buf.String(), `"service":"user-service"`)
	assert.Contains(t, buf.String(), `"user_id":"u1"`)

	SetDefault(nil)
	assert.Equal(t, "user-service", Default().Service())
}
