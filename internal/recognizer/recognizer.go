// Package recognizer provides the waterfall's three recognition stages:
// the Anthropic vision-language backend (premium), Cloud Vision text
// detection (economy), and local Tesseract OCR. Each adapter satisfies
// engine.Stage and converts back-end failures into failed attempts instead
// of returned errors.
package recognizer

import "net/http"

// sniffMediaType detects the image payload's MIME type for back-ends that
// need it declared up front.
func sniffMediaType(image []byte) string {
	mt := http.DetectContentType(image)
	if mt == "application/octet-stream" {
		return "image/jpeg"
	}
	return mt
}
