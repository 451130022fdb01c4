package recognizer

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/fieldserve/nameplate-cli/internal/engine"
	"github.com/fieldserve/nameplate-cli/internal/resilience"
	"github.com/fieldserve/nameplate-cli/pkg/cloudvision"
)

// Economy is the cloud text-detection stage. It returns whatever text the
// backend extracted verbatim, with no structured fields.
type Economy struct {
	client  cloudvision.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewEconomy creates the economy stage over a Cloud Vision client.
func NewEconomy(client cloudvision.Client) *Economy {
	return &Economy{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(5), 5),
		retry:   resilience.DefaultRetryConfig(),
	}
}

func (e *Economy) Source() engine.SourceKind {
	return engine.SourceVisionEconomy
}

func (e *Economy) Recognize(ctx context.Context, image []byte) engine.RecognitionAttempt {
	if err := e.limiter.Wait(ctx); err != nil {
		return engine.FailedAttempt(e.Source(), "rate limit wait: "+err.Error())
	}

	resp, err := resilience.DoVal(ctx, e.retry, "cloud vision detect", func(ctx context.Context) (*cloudvision.DetectTextResponse, error) {
		return e.client.DetectText(ctx, image)
	})
	if err != nil {
		return engine.FailedAttempt(e.Source(), "text detection: "+err.Error())
	}

	return engine.RecognitionAttempt{
		Source:    e.Source(),
		RawText:   resp.Text,
		Succeeded: true,
	}
}
