package ingest

import (
	"fmt"
	"path/filepath"
	"strings"
)

type docType string

const (
	pdfDoc         docType = "pdf"
	textDoc        docType = "text"
	unsupportedDoc docType = "unsupported"
)

func getDocType(docPath string) docType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return pdfDoc
	case ".docx", ".txt", ".rtf", ".odt":
		return textDoc
	default:
		return unsupportedDoc
	}
}

func extractText(path string, contentType docType) ([]rawPage, error) {
	switch contentType {
	case pdfDoc:
		return extractPDF(path)
	case textDoc:
		return extractdocxTxtRtf(path)

	default:
		return nil, fmt.Errorf("unsupported content type: %s", contentType)
	}
}

// joinPages flattens page content into the single text the chunker
// consumes. The blank line between pages is a chunk boundary candidate.
func joinPages(pages []rawPage) string {
	parts := make([]string, 0, len(pages))
	for _, page := range pages {
		if page.Content == "" {
			continue
		}
		parts = append(parts, page.Content)
	}
	return strings.Join(parts, "\n\n")
}
