package cleaner

import (
	"log/slog"
	nurl "net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// minContentLength is the minimum TextContent length (in characters) for
// readability output to be considered valid. Below this threshold we assume
// the algorithm failed to locate the main content.
const minContentLength = 50

// documentURL stands in for the page URL readability resolves links
// against. Submitted documents have no origin and links are not hashed.
var documentURL = &nurl.URL{Scheme: "http", Host: "document.invalid", Path: "/"}

// ExtractArticleText runs the Mozilla Readability algorithm on rawHTML and
// returns the main article's text with whitespace collapsed.
//
// ok is false when extraction fails or the article is shorter than
// minContentLength; callers fall back to VisibleText.
func ExtractArticleText(rawHTML string) (text string, ok bool) {
	article, err := readability.FromReader(strings.NewReader(rawHTML), documentURL)
	if err != nil {
		slog.Warn("readability: extraction failed", "error", err)
		return "", false
	}

	text = collapseWhitespace(article.TextContent)
	if len(text) < minContentLength {
		return "", false
	}
	return text, true
}
