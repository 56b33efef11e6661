package extract

import (
	"context"
	"fmt"

	"github.com/gabriel-vasile/mimetype"

	"github.com/resumeatlas/ResumeAPI/internal/config"
	"github.com/resumeatlas/ResumeAPI/pkg/logger_i"
)

var logger = logger_i.NewLogger("Extract")

// TextExtractor turns an uploaded file into raw text. The declared media
// type routes the file to the pdf engine or the OCR engine.
type TextExtractor interface {
	Extract(ctx context.Context, path string, mediaType string) (string, error)
}

type fileExtractor struct{}

func NewFileExtractor() TextExtractor {
	return &fileExtractor{}
}

func (e *fileExtractor) Extract(ctx context.Context, path string, mediaType string) (string, error) {
	if err := validateMediaType(path, mediaType); err != nil {
		return "", err
	}

	if mediaType == "application/pdf" {
		return extractPDF(ctx, path)
	}
	return extractImageOCR(ctx, path)
}

// validateMediaType checks the declared type against the accepted set and
// cross-checks it against the file's magic bytes. A mislabelled upload is
// rejected the same way as an unsupported one.
func validateMediaType(path string, mediaType string) error {
	if !config.AllowedMediaTypes[mediaType] {
		logger.Warn("rejected declared media type", "mediaType", mediaType)
		return fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mediaType)
	}

	detected, err := mimetype.DetectFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExtractionFailure, err)
	}

	if !detected.Is(mediaType) {
		logger.Warn("declared type does not match content",
			"declared", mediaType, "detected", detected.String())
		return fmt.Errorf("%w: declared %s, detected %s",
			ErrUnsupportedMediaType, mediaType, detected.String())
	}
	return nil
}
