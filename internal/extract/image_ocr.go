package extract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// extractImageOCR runs tesseract over an image upload. A fresh client per
// call keeps the cgo handle lifecycle simple under concurrent workers.
func extractImageOCR(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailure, err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetImage(path); err != nil {
		logger.Error("failed setting image for OCR", "path", path, "Error", err)
		return "", fmt.Errorf("%w: %v", ErrExtractionFailure, err)
	}

	text, err := client.Text()
	if err != nil {
		logger.Error("OCR failed", "path", path, "Error", err)
		return "", fmt.Errorf("%w: %v", ErrExtractionFailure, err)
	}
	return text, nil
}
