package cloudvision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectText(t *testing.T) {
	image := []byte("fake image bytes")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/images:annotate", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req annotateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Requests, 1)
		assert.Equal(t, base64.StdEncoding.EncodeToString(image), req.Requests[0].Image.Content)
		require.Len(t, req.Requests[0].Features, 1)
		assert.Equal(t, "TEXT_DETECTION", req.Requests[0].Features[0].Type)

		resp := annotateResponse{Responses: []annotateResult{{
			TextAnnotations: []textAnnotation{
				{Locale: "en", Description: "BOSCH\nWAG28461BY"},
				{Description: "BOSCH"},
				{Description: "WAG28461BY"},
			},
		}}}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	out, err := client.DetectText(context.Background(), image)
	require.NoError(t, err)

	assert.Equal(t, "BOSCH\nWAG28461BY", out.Text, "first annotation is the full text")
	assert.Equal(t, "en", out.Locale)
}

func TestDetectText_NoTextFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(annotateResponse{
			Responses: []annotateResult{{}},
		}))
	}))
	defer server.Close()

	out, err := NewClient("k", WithBaseURL(server.URL)).DetectText(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Empty(t, out.Text)
	assert.Empty(t, out.Locale)
}

func TestDetectText_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			name: "http error status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "quota exceeded", http.StatusTooManyRequests)
			},
			wantErr: "API returned 429",
		},
		{
			name: "per result error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_ = json.NewEncoder(w).Encode(annotateResponse{
					Responses: []annotateResult{{Error: &annotateError{Code: 3, Message: "bad image data"}}},
				})
			},
			wantErr: "annotate error 3",
		},
		{
			name: "empty response list",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_ = json.NewEncoder(w).Encode(annotateResponse{})
			},
			wantErr: "empty annotate response",
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("<html>gateway error</html>"))
			},
			wantErr: "unmarshal response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := NewClient("k", WithBaseURL(server.URL)).DetectText(context.Background(), []byte("img"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
