// Package cloudvision is a minimal client for the Google Cloud Vision
// images:annotate endpoint, covering only TEXT_DETECTION.
package cloudvision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://vision.googleapis.com/v1"

// Client performs Cloud Vision text detection.
type Client interface {
	DetectText(ctx context.Context, image []byte) (*DetectTextResponse, error)
}

// DetectTextResponse carries the detected text for one image.
type DetectTextResponse struct {
	// Text is the full text annotation, verbatim as the backend extracted it.
	Text string
	// Locale is the detected language of the text, when reported.
	Locale string
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Cloud Vision API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type annotateRequest struct {
	Requests []annotateItem `json:"requests"`
}

type annotateItem struct {
	Image    annotateImage     `json:"image"`
	Features []annotateFeature `json:"features"`
}

type annotateImage struct {
	Content string `json:"content"` // base64
}

type annotateFeature struct {
	Type string `json:"type"`
}

type annotateResponse struct {
	Responses []annotateResult `json:"responses"`
}

type annotateResult struct {
	TextAnnotations []textAnnotation `json:"textAnnotations"`
	Error           *annotateError   `json:"error"`
}

type textAnnotation struct {
	Locale      string `json:"locale"`
	Description string `json:"description"`
}

type annotateError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *httpClient) DetectText(ctx context.Context, image []byte) (*DetectTextResponse, error) {
	body, err := json.Marshal(annotateRequest{
		Requests: []annotateItem{{
			Image:    annotateImage{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []annotateFeature{{Type: "TEXT_DETECTION"}},
		}},
	})
	if err != nil {
		return nil, eris.Wrap(err, "cloudvision: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images:annotate", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "cloudvision: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "cloudvision: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "cloudvision: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("cloudvision: API returned %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed annotateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, eris.Wrap(err, "cloudvision: unmarshal response")
	}
	if len(parsed.Responses) == 0 {
		return nil, eris.New("cloudvision: empty annotate response")
	}

	result := parsed.Responses[0]
	if result.Error != nil {
		return nil, eris.Errorf("cloudvision: annotate error %d: %s", result.Error.Code, result.Error.Message)
	}

	out := &DetectTextResponse{}
	// The first annotation is the full detected text; the rest are
	// per-word boxes we don't need.
	if len(result.TextAnnotations) > 0 {
		out.Text = result.TextAnnotations[0].Description
		out.Locale = result.TextAnnotations[0].Locale
	}
	return out, nil
}
