package recognizer

import (
	"context"
	"encoding/json"
	"strings"

	"golang.org/x/time/rate"

	"github.com/fieldserve/nameplate-cli/internal/engine"
	"github.com/fieldserve/nameplate-cli/internal/resilience"
	"github.com/fieldserve/nameplate-cli/pkg/anthropic"
)

const premiumSystemPrompt = "You read manufacturer nameplates from photographs of household appliances. " +
	"Reply with JSON only, no prose and no code fences."

const premiumUserPrompt = `Read the appliance identification label in this photo and return a JSON object:
{"brand": "<manufacturer>", "model": "<model code exactly as printed>", "device_type": "<e.g. washing machine>", "capacity": "<if printed, else empty>", "serial_number": "<if printed, else empty>", "confidence": "<high|medium|low>"}
Use empty strings for anything you cannot read.`

// Premium is the vision-language recognition stage. It requests a structured
// extraction and parses the response into a StructuredGuess.
type Premium struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	limiter   *rate.Limiter
	retry     resilience.RetryConfig
}

// NewPremium creates the premium stage over an Anthropic client.
func NewPremium(client anthropic.Client, model string, maxTokens int64) *Premium {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Premium{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
		limiter:   rate.NewLimiter(rate.Limit(2), 2),
		retry:     resilience.DefaultRetryConfig(),
	}
}

func (p *Premium) Source() engine.SourceKind {
	return engine.SourceVisionPremium
}

// Recognize sends the image with the structured extraction instruction and
// parses the response. Transport and parse failures both mark the attempt
// failed; nothing escapes the adapter boundary.
func (p *Premium) Recognize(ctx context.Context, image []byte) engine.RecognitionAttempt {
	if err := p.limiter.Wait(ctx); err != nil {
		return engine.FailedAttempt(p.Source(), "rate limit wait: "+err.Error())
	}

	req := anthropic.MessageRequest{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		System:    premiumSystemPrompt,
		Messages: []anthropic.Message{{
			Role:    "user",
			Content: premiumUserPrompt,
			Image: &anthropic.ImageAttachment{
				MediaType: sniffMediaType(image),
				Data:      image,
			},
		}},
	}

	resp, err := resilience.DoVal(ctx, p.retry, "anthropic vision", func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return p.client.CreateMessage(ctx, req)
	})
	if err != nil {
		return engine.FailedAttempt(p.Source(), "vision request: "+err.Error())
	}
	resp.Usage.LogCost(resp.Model, "nameplate extraction")

	guess, err := parseStructured(resp.Text)
	if err != nil {
		return engine.FailedAttempt(p.Source(), "parse structured response: "+err.Error())
	}

	return engine.RecognitionAttempt{
		Source:     p.Source(),
		RawText:    resp.Text,
		Succeeded:  true,
		Structured: guess,
	}
}

// parseStructured decodes the model's JSON reply, tolerating markdown code
// fences the model sometimes wraps it in despite instructions.
func parseStructured(text string) (*engine.StructuredGuess, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var guess engine.StructuredGuess
	if err := json.Unmarshal([]byte(cleaned), &guess); err != nil {
		return nil, err
	}
	return &guess, nil
}
