package extract

import "errors"

var (
	// ErrUnsupportedMediaType means the file was rejected before any engine
	// ran: the declared type is outside the accepted set or the bytes do not
	// match the declaration.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrExtractionFailure wraps engine-level failures (unreadable pdf,
	// OCR errors). The upload itself was acceptable.
	ErrExtractionFailure = errors.New("text extraction failed")
)
