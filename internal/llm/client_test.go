package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "valid",
			cfg:     Config{Endpoint: "https://api.example.com/v1/chat/completions", APIKey: "sk-test"},
			wantErr: false,
		},
		{
			name:    "missing endpoint",
			cfg:     Config{APIKey: "sk-test"},
			wantErr: true,
		},
		{
			name:    "missing key",
			cfg:     Config{Endpoint: "https://api.example.com"},
			wantErr: true,
		},
		{
			name:    "sentinel key",
			cfg:     Config{Endpoint: "https://api.example.com", APIKey: KeyNotConfiguredSentinel},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				var cfgErr *ConfigError
				require.Error(t, err)
				assert.True(t, errors.As(err, &cfgErr))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewClient_FailsFastOnBadConfig(t *testing.T) {
	_, err := NewClient(Config{})
	var cfgErr *ConfigError
	require.Error(t, err)
	assert.True(t, errors.As(err, &cfgErr))
}

func TestComplete_ReturnsContent(t *testing.T) {
	var gotReq completionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "  Hello!  "}},
			},
		})
	}))
	defer srv.Close()

	client, err := NewClient(Config{Endpoint: srv.URL, APIKey: "sk-test", Model: "test-model"})
	require.NoError(t, err)

	got, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "Hello!", got)

	assert.Equal(t, "test-model", gotReq.Model)
	assert.False(t, gotReq.Stream)
	assert.Equal(t, defaultStop, gotReq.Stop)
}

func TestComplete_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		kind   ErrorKind
	}{
		{http.StatusUnauthorized, KindUnauthorized},
		{http.StatusTooManyRequests, KindRateLimited},
		{http.StatusBadGateway, KindServiceUnavailable},
		{http.StatusServiceUnavailable, KindServiceUnavailable},
		{http.StatusInternalServerError, KindUnknown},
		{http.StatusBadRequest, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer srv.Close()

			client, err := NewClient(Config{Endpoint: srv.URL, APIKey: "sk-test"})
			require.NoError(t, err)

			_, err = client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.Status)
		})
	}
}

func TestComplete_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{Endpoint: srv.URL, APIKey: "sk-test"})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindUnknown, apiErr.Kind)
}

func TestComplete_NoMessages(t *testing.T) {
	client, err := NewClient(Config{Endpoint: "http://localhost:1", APIKey: "sk-test"})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
}
