// Package markdown converts Markdown input documents to plain text so
// the chunk planner works on prose lines rather than markup.
package markdown

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// ToPlainText renders the Markdown document and strips the markup,
// keeping paragraph breaks as blank lines.
func ToPlainText(md []byte) string {
	opts := html.RendererOptions{Flags: html.CommonFlags}
	renderer := html.NewRenderer(opts)
	ext := parser.CommonExtensions | parser.Attributes
	p := parser.NewWithExtensions(ext)
	doc := p.Parse(md)
	rendered := string(markdown.Render(doc, renderer))

	text := stripTags(rendered)
	text = decodeEntities(text)
	return normalizeBlankLines(text)
}

// IsMarkdownFile reports whether path has a Markdown file extension.
func IsMarkdownFile(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown")
}

func stripTags(htmlContent string) string {
	var result bytes.Buffer
	inTag := false

	for _, ch := range htmlContent {
		switch ch {
		case '<':
			inTag = true
		case '>':
			inTag = false
		default:
			if !inTag {
				result.WriteRune(ch)
			}
		}
	}

	return result.String()
}

// entityReplacer undoes the escaping the HTML renderer applied to
// literal characters in the source text.
var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#34;", `"`,
	"&#39;", "'",
	"&ldquo;", "“",
	"&rdquo;", "”",
	"&hellip;", "…",
	"&ndash;", "–",
	"&mdash;", "—",
)

func decodeEntities(text string) string {
	return entityReplacer.Replace(text)
}

var blankRunRe = regexp.MustCompile(`\n{3,}`)

func normalizeBlankLines(text string) string {
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text) + "\n"
}
