package extraction

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"skillmatch/internal/cleaner"
	pkgerrors "skillmatch/pkg/errors"
)

var clean = cleaner.NewCleaner()

// ExtractFile reads a CV file from disk and returns its plain text.
func ExtractFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Extract(filepath.Base(path), data)
}

// Extract turns file content into plain text based on the file name's
// extension. Unrecognized formats fall back to a best-effort plain-text read
// rather than failing hard; only content that is not even valid text comes
// back as an UnsupportedFormatError.
func Extract(name string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return extractPDFText(data)
	case ".docx":
		return extractDocxText(data)
	case ".txt":
		return string(data), nil
	case ".html", ".htm":
		return clean.CleanHTML(string(data)), nil
	default:
		slog.Warn("unknown file type, attempting plain text read", "name", name)
		if !utf8.Valid(data) {
			return "", &pkgerrors.UnsupportedFormatError{Name: name}
		}
		return string(data), nil
	}
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var textBuilder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, _ := page.GetPlainText(nil)
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}
	return textBuilder.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return doc.Editable().GetContent(), nil
}
