package recognizer

import (
	"bytes"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/rotisserie/eris"
)

const (
	// upscaleFactor enlarges the (typically small, off-angle) nameplate
	// crop before OCR.
	upscaleFactor = 2

	// binarizeThreshold is the fixed midpoint cutoff for black/white.
	binarizeThreshold = 128
)

// preprocess applies the deterministic enhancement pass before local OCR:
// upscale by a fixed factor, luminance-weighted grayscale, then midpoint
// binarization. Returns the result re-encoded as PNG.
func preprocess(imageBytes []byte) ([]byte, error) {
	src, err := imaging.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, eris.Wrap(err, "ocr: decode image")
	}

	w := src.Bounds().Dx() * upscaleFactor
	scaled := imaging.Resize(src, w, 0, imaging.Lanczos)
	gray := imaging.Grayscale(scaled)
	bw := binarize(gray, binarizeThreshold)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, bw, imaging.PNG); err != nil {
		return nil, eris.Wrap(err, "ocr: encode preprocessed image")
	}
	return buf.Bytes(), nil
}

// binarize maps every pixel at or above threshold to white, the rest to
// black. Input is grayscale so any channel carries the luminance.
func binarize(img *image.NRGBA, threshold uint8) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			v := uint8(0)
			if c.R >= threshold {
				v = 255
			}
			out.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return out
}
