// Package cleaner normalises submitted documents before they are hashed so
// that markup noise does not dominate the signature.
package cleaner

import (
	"log/slog"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"

	"github.com/use-agent/spamsum/models"
)

// Cleaner turns raw documents into the byte stream that gets hashed.
//
// The Markdown converter is created once and reused across all requests
// (goroutine-safe).
type Cleaner struct {
	mdConverter *converter.Converter
}

// NewCleaner initialises the Cleaner with a pre-configured Markdown converter.
func NewCleaner() *Cleaner {
	return &Cleaner{
		mdConverter: newMarkdownConverter(),
	}
}

// Options selects how a document is normalised.
type Options struct {
	// Format is one of the models.Format* constants. Empty means raw.
	Format string

	// CSSSelector narrows HTML formats to the matched elements.
	CSSSelector string
}

// Normalize returns the bytes to hash for content.
//
// Flow:
//  1. raw: content is returned untouched, the selector is ignored.
//  2. Apply the CSS selector, if any. No match keeps the whole document.
//  3. Convert to the requested format.
//
// Errors are *models.APIError with INVALID_INPUT for a bad selector or
// format and NORMALIZE_FAILED for conversion failures.
func (c *Cleaner) Normalize(content []byte, opts Options) ([]byte, error) {
	if opts.Format == "" || opts.Format == models.FormatRaw {
		return content, nil
	}

	doc := string(content)
	if opts.CSSSelector != "" {
		filtered, err := SelectRegions(doc, opts.CSSSelector)
		if err != nil {
			return nil, err
		}
		doc = filtered
	}

	switch opts.Format {
	case models.FormatText:
		text, err := VisibleText(doc)
		if err != nil {
			return nil, models.NewAPIError(models.ErrCodeNormalize, "text extraction failed", err)
		}
		return []byte(text), nil

	case models.FormatMarkdown:
		md, err := ToMarkdown(c.mdConverter, doc)
		if err != nil {
			return nil, models.NewAPIError(models.ErrCodeNormalize, "markdown conversion failed", err)
		}
		return []byte(md), nil

	case models.FormatReadability:
		if text, ok := ExtractArticleText(doc); ok {
			return []byte(text), nil
		}
		slog.Debug("readability: falling back to visible text", "bytes", len(doc))
		text, err := VisibleText(doc)
		if err != nil {
			return nil, models.NewAPIError(models.ErrCodeNormalize, "text extraction failed", err)
		}
		return []byte(text), nil

	default:
		return nil, models.NewAPIError(models.ErrCodeInvalidInput, "unknown format: "+opts.Format, nil)
	}
}
