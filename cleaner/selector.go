package cleaner

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/use-agent/spamsum/models"
)

// SelectRegions narrows doc to the elements matching selector, rendered
// back to HTML in document order.
//
// An element nested inside another match is skipped since its text is
// already part of the outer one and would otherwise be hashed twice. A
// selector that matches nothing leaves doc as is, so a stale selector
// degrades to whole-document hashing rather than an empty signature.
func SelectRegions(doc, selector string) (string, error) {
	sel, err := cascadia.Parse(selector)
	if err != nil {
		return "", models.NewAPIError(models.ErrCodeInvalidInput, "invalid css_selector", err)
	}

	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return "", models.NewAPIError(models.ErrCodeNormalize, "html parse failed", err)
	}

	regions := outermost(cascadia.QueryAll(root, sel))
	if len(regions) == 0 {
		return doc, nil
	}

	var sb strings.Builder
	for _, n := range regions {
		if err := html.Render(&sb, n); err != nil {
			return "", models.NewAPIError(models.ErrCodeNormalize, "html render failed", err)
		}
	}
	return sb.String(), nil
}

// outermost drops every node that has an ancestor in nodes.
func outermost(nodes []*html.Node) []*html.Node {
	if len(nodes) < 2 {
		return nodes
	}
	matched := make(map[*html.Node]bool, len(nodes))
	for _, n := range nodes {
		matched[n] = true
	}

	kept := nodes[:0:0]
	for _, n := range nodes {
		nested := false
		for p := n.Parent; p != nil; p = p.Parent {
			if matched[p] {
				nested = true
				break
			}
		}
		if !nested {
			kept = append(kept, n)
		}
	}
	return kept
}
