package judge0

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func b64(s string) *string {
	v := base64.StdEncoding.EncodeToString([]byte(s))
	return &v
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{URL: srv.URL, Host: "judge0.test", APIKey: "key-1", Timeout: time.Second})
}

func TestSubmitEncodesSource(t *testing.T) {
	var got submissionBody
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/submissions", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("base64_encoded"))
		assert.Equal(t, "key-1", r.Header.Get("X-RapidAPI-Key"))
		assert.Equal(t, "judge0.test", r.Header.Get("X-RapidAPI-Host"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"token":"tok-1"}`))
	})

	token, err := client.Submit(context.Background(), 71, "print(input())", "hi")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, 71, got.LanguageID)
	assert.Equal(t, *b64("print(input())"), got.SourceCode)
	assert.Equal(t, *b64("hi"), got.Stdin)
}

func TestSubmitStatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := client.Submit(context.Background(), 71, "x", "")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.Code)
	assert.Contains(t, statusErr.Body, "quota exceeded")
}

func TestResult(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/submissions/tok-1", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("base64_encoded"))
		_ = json.NewEncoder(w).Encode(Result{
			Token:  "tok-1",
			Stdout: b64("hello\n"),
			Time:   strPtr("0.01"),
			Status: &Status{ID: 3, Description: "Accepted"},
		})
	})

	result, err := client.Result(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.False(t, result.Pending())

	output, ok, err := result.Output()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello\n", output)
}

func TestOutputPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   string
		ok     bool
	}{
		{name: "stdout first", result: Result{Stdout: b64("out"), CompileOutput: b64("compile"), Stderr: b64("err")}, want: "out", ok: true},
		{name: "compile output next", result: Result{Stdout: strPtr(""), CompileOutput: b64("compile"), Stderr: b64("err")}, want: "compile", ok: true},
		{name: "stderr last", result: Result{Stderr: b64("err")}, want: "err", ok: true},
		{name: "nothing", result: Result{}, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := tt.result.Output()
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeWrappedBase64(t *testing.T) {
	long := "0123456789012345678901234567890123456789012345678901234567890123456789"
	encoded := base64.StdEncoding.EncodeToString([]byte(long))
	wrapped := encoded[:60] + "\n" + encoded[60:] + "\n"

	got, err := decode(wrapped)
	require.NoError(t, err)
	assert.Equal(t, long, got)

	_, err = decode("!!!")
	assert.Error(t, err)
}

func TestPending(t *testing.T) {
	assert.True(t, (&Result{Status: &Status{ID: 1}}).Pending())
	assert.True(t, (&Result{Status: &Status{ID: 2}}).Pending())
	assert.False(t, (&Result{Status: &Status{ID: 6}}).Pending())
	assert.False(t, (&Result{}).Pending())
}

func strPtr(s string) *string { return &s }
