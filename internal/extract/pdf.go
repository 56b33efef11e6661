package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dslipak/pdf"

	"github.com/resumeatlas/ResumeAPI/internal/config"
)

func extractPDF(ctx context.Context, path string) (string, error) {
	logger.Debug("extractPDF", "attempting extraction", path)
	f, err := pdf.Open(path)
	if err != nil {
		logger.Error("failed opening of pdf file")
		return "", fmt.Errorf("%w: failed to open pdf: %v", ErrExtractionFailure, err)
	}

	var pages []string
	numPages := f.NumPage()
	logger.Debug("extractPDF", "number of pages", numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("%w: %v", ErrExtractionFailure, err)
		}

		page := f.Page(i)
		if page.V.IsNull() {
			logger.Debug("extractPDF", "page value is null", i)
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			logger.Error("Error parsing page content", "page", i, "Error", err)
			continue
		}

		pages = append(pages, content)
	}
	return joinPages(pages), nil
}

// joinPages concatenates page texts, each page followed by a newline, so
// the page boundary survives into the raw text.
func joinPages(pages []string) string {
	var sb strings.Builder
	for _, page := range pages {
		sb.WriteString(page)
		sb.WriteString("\n")
	}
	return sb.String()
}

// protectExtract guards against pathological pages that hang the parser.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(config.PDFPageExtractTimeout):
		logger.Error("pageExtract", "timeout")
		return "", errors.New("timeout")
	}
}
