package ingestion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/resume-intake/internal/store"
)

// Formats recognised by LoadFile
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatPDF      = "pdf"
	FormatHTML     = "html"
	FormatDOCX     = "docx"
)

// FormatForPath maps a file extension to a format
func FormatForPath(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", "":
		return FormatText, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".pdf":
		return FormatPDF, nil
	case ".html", ".htm":
		return FormatHTML, nil
	case ".docx":
		return FormatDOCX, nil
	default:
		return "", &UnsupportedFormatError{Extension: ext}
	}
}

// LoadFile reads a document and returns its cleaned text and format
func LoadFile(path string) (string, string, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return "", "", err
	}

	var text string
	switch format {
	case FormatPDF:
		text, err = ExtractPDF(path)
	case FormatDOCX:
		text, err = ExtractDOCX(path)
	default:
		var raw []byte
		raw, err = os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return "", "", fmt.Errorf("file not found: %w", err)
			}
			return "", "", fmt.Errorf("failed to read file: %w", err)
		}
		if format == FormatHTML {
			text, err = ExtractHTML(string(raw))
		} else {
			text = CleanText(string(raw))
		}
	}
	if err != nil {
		return "", "", &ExtractError{Path: path, Format: format, Cause: err}
	}
	return text, format, nil
}

// IngestFile loads a document from disk and stores its text as the raw text
// of sourceID. Empty documents are stored too; extraction reports them.
func IngestFile(ctx context.Context, s store.Store, sourceID, path string) (*Metadata, error) {
	text, format, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	meta := NewMetadata(sourceID, filepath.Base(path), format, text, time.Now())
	if err := store.PutText(ctx, s, store.SourceKey(sourceID), text); err != nil {
		return nil, fmt.Errorf("failed to store source %s: %w", sourceID, err)
	}
	return meta, nil
}

// IngestText cleans pasted text and stores it as the raw text of sourceID
func IngestText(ctx context.Context, s store.Store, sourceID, text string) (*Metadata, error) {
	cleaned := CleanText(text)
	meta := NewMetadata(sourceID, "", FormatText, cleaned, time.Now())
	if err := store.PutText(ctx, s, store.SourceKey(sourceID), cleaned); err != nil {
		return nil, fmt.Errorf("failed to store source %s: %w", sourceID, err)
	}
	return meta, nil
}
