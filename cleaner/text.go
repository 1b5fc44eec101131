package cleaner

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// noiseSelector matches elements whose text is never rendered.
const noiseSelector = "script, style, noscript, template, head"

// VisibleText parses an HTML document and returns its rendered text with
// every whitespace run collapsed to a single space.
func VisibleText(rawHTML string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", err
	}

	doc.Find(noiseSelector).Remove()

	return collapseWhitespace(doc.Text()), nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
