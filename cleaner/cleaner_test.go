package cleaner

import (
	"errors"
	"strings"
	"testing"

	"github.com/use-agent/spamsum/models"
)

const pageHTML = `<html><head><title>Offer</title><style>p { color: red }</style></head>
<body>
<nav><a href="/">Home</a></nav>
<div id="main"><p class="lead">Win   a <b>free</b> cruise</p>
<script>track();</script>
<p>Reply today</p></div>
</body></html>`

func TestNormalize_RawIsUntouched(t *testing.T) {
	c := NewCleaner()
	in := []byte(pageHTML)

	for _, format := range []string{"", models.FormatRaw} {
		out, err := c.Normalize(in, Options{Format: format, CSSSelector: "p"})
		if err != nil {
			t.Fatalf("Normalize(%q): %v", format, err)
		}
		if string(out) != pageHTML {
			t.Errorf("Normalize(%q) changed the content", format)
		}
	}
}

func TestNormalize_Text(t *testing.T) {
	tests := []struct {
		name     string
		selector string
		want     string
	}{
		{"whole document", "", "Home Win a free cruise Reply today"},
		{"selector", "#main", "Win a free cruise Reply today"},
		{"selector without match", "article", "Home Win a free cruise Reply today"},
	}

	c := NewCleaner()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := c.Normalize([]byte(pageHTML), Options{Format: models.FormatText, CSSSelector: tt.selector})
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if string(out) != tt.want {
				t.Errorf("Normalize = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestNormalize_Markdown(t *testing.T) {
	c := NewCleaner()
	out, err := c.Normalize([]byte("<h1>Title</h1><p>Some <strong>bold</strong> text.</p>"), Options{Format: models.FormatMarkdown})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	for _, want := range []string{"# Title", "**bold**"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("markdown %q does not contain %q", out, want)
		}
	}
}

func TestNormalize_ReadabilityFallsBackToText(t *testing.T) {
	c := NewCleaner()
	out, err := c.Normalize([]byte("<html><body><p>short</p></body></html>"), Options{Format: models.FormatReadability})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if string(out) != "short" {
		t.Errorf("Normalize = %q, want %q", out, "short")
	}
}

func TestNormalize_ReadabilityKeepsArticle(t *testing.T) {
	sentence := "The committee approved the new budget after a long debate about school funding."
	var b strings.Builder
	b.WriteString("<html><head><title>News</title></head><body><article>")
	for range 8 {
		b.WriteString("<p>" + sentence + "</p>")
	}
	b.WriteString("</article></body></html>")

	c := NewCleaner()
	out, err := c.Normalize([]byte(b.String()), Options{Format: models.FormatReadability})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !strings.Contains(string(out), sentence) {
		t.Errorf("article text missing from %q", out)
	}
	if strings.ContainsAny(string(out), "<>") {
		t.Errorf("readability output still has markup: %q", out)
	}
}

func TestNormalize_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code string
	}{
		{"bad selector", Options{Format: models.FormatText, CSSSelector: "p["}, models.ErrCodeInvalidInput},
		{"unknown format", Options{Format: "pdf"}, models.ErrCodeInvalidInput},
	}

	c := NewCleaner()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Normalize([]byte(pageHTML), tt.opts)
			var apiErr *models.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *models.APIError", err)
			}
			if apiErr.Code != tt.code {
				t.Errorf("code = %s, want %s", apiErr.Code, tt.code)
			}
		})
	}
}

func TestSelectRegions(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		selector string
		want     string
	}{
		{
			"document order",
			`<div><p class="a">one</p><p>two</p><p class="a">three</p></div>`,
			".a",
			`<p class="a">one</p><p class="a">three</p>`,
		},
		{
			"nested matches rendered once",
			`<div class="x">outer<div class="x">inner</div></div><div class="x">next</div>`,
			".x",
			`<div class="x">outer<div class="x">inner</div></div><div class="x">next</div>`,
		},
		{
			"no match keeps document",
			`<p>only</p>`,
			"article",
			`<p>only</p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectRegions(tt.doc, tt.selector)
			if err != nil {
				t.Fatalf("SelectRegions: %v", err)
			}
			if got != tt.want {
				t.Errorf("SelectRegions = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVisibleText_DropsNoise(t *testing.T) {
	got, err := VisibleText(`<head><title>t</title></head><body><noscript>enable js</noscript><template><p>x</p></template>  hello
	world </body>`)
	if err != nil {
		t.Fatalf("VisibleText: %v", err)
	}
	if got != "hello world" {
		t.Errorf("VisibleText = %q, want %q", got, "hello world")
	}
}
