package recognizer

import (
	"context"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/fieldserve/nameplate-cli/internal/engine"
)

// segmentationModes are the page-segmentation assumptions tried in order.
// Nameplates vary between a single printed line and a dense labeled block,
// so no single assumption wins reliably.
var segmentationModes = []gosseract.PageSegMode{
	gosseract.PSM_SINGLE_LINE,
	gosseract.PSM_SINGLE_WORD,
	gosseract.PSM_SINGLE_BLOCK,
	gosseract.PSM_RAW_LINE,
}

// ocrPass is the outcome of one Tesseract run under one segmentation mode.
type ocrPass struct {
	mode       gosseract.PageSegMode
	text       string
	confidence float64 // mean word confidence, 0-100
}

// Local is the on-device OCR stage: deterministic image enhancement followed
// by one Tesseract pass per segmentation mode, keeping the most confident
// non-empty result.
type Local struct {
	language string

	// runPass is swappable in tests to avoid a Tesseract dependency.
	runPass func(png []byte, lang string, mode gosseract.PageSegMode) (ocrPass, error)
}

// NewLocal creates the local OCR stage. Empty language defaults to "eng".
func NewLocal(language string) *Local {
	if language == "" {
		language = "eng"
	}
	return &Local{language: language, runPass: tesseractPass}
}

func (l *Local) Source() engine.SourceKind {
	return engine.SourceOCRLocal
}

func (l *Local) Recognize(ctx context.Context, image []byte) engine.RecognitionAttempt {
	enhanced, err := preprocess(image)
	if err != nil {
		return engine.FailedAttempt(l.Source(), "preprocess: "+err.Error())
	}

	var passes []ocrPass
	for _, mode := range segmentationModes {
		if ctx.Err() != nil {
			return engine.FailedAttempt(l.Source(), "canceled: "+ctx.Err().Error())
		}
		pass, err := l.runPass(enhanced, l.language, mode)
		if err != nil {
			zap.L().Debug("ocr pass failed",
				zap.Int("psm", int(mode)),
				zap.Error(err),
			)
			continue
		}
		passes = append(passes, pass)
	}

	best, ok := bestPass(passes)
	if !ok {
		return engine.FailedAttempt(l.Source(), "all segmentation passes empty or failed")
	}

	zap.L().Debug("ocr pass selected",
		zap.Int("psm", int(best.mode)),
		zap.Float64("confidence", best.confidence),
		zap.Int("text_len", len(best.text)),
	)
	return engine.RecognitionAttempt{
		Source:    l.Source(),
		RawText:   best.text,
		Succeeded: true,
	}
}

// bestPass picks the pass with the highest reported confidence among those
// that produced non-empty text. Ties keep the earlier segmentation mode.
func bestPass(passes []ocrPass) (ocrPass, bool) {
	best := ocrPass{confidence: -1}
	found := false
	for _, p := range passes {
		if strings.TrimSpace(p.text) == "" {
			continue
		}
		if p.confidence > best.confidence {
			best = p
			found = true
		}
	}
	return best, found
}

// tesseractPass runs one recognition under the given segmentation mode and
// reports the mean word confidence.
func tesseractPass(png []byte, lang string, mode gosseract.PageSegMode) (ocrPass, error) {
	client := gosseract.NewClient()
	defer client.Close() //nolint:errcheck

	if err := client.SetLanguage(lang); err != nil {
		return ocrPass{}, eris.Wrap(err, "ocr: set language")
	}
	if err := client.SetPageSegMode(mode); err != nil {
		return ocrPass{}, eris.Wrap(err, "ocr: set page segmentation mode")
	}
	if err := client.SetImageFromBytes(png); err != nil {
		return ocrPass{}, eris.Wrap(err, "ocr: set image")
	}

	text, err := client.Text()
	if err != nil {
		return ocrPass{}, eris.Wrap(err, "ocr: recognize")
	}

	conf := 0.0
	if boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD); err == nil && len(boxes) > 0 {
		for _, b := range boxes {
			conf += b.Confidence
		}
		conf /= float64(len(boxes))
	}

	return ocrPass{mode: mode, text: text, confidence: conf}, nil
}
