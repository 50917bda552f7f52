// Package htmltext turns HH vacancy descriptions (HTML) into plain text
// before they are stored.
package htmltext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extract strips markup from an HTML fragment, keeping paragraph and list
// structure as line breaks. Input that is already plain text passes through
// unchanged apart from whitespace cleanup.
func Extract(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return cleanText(html)
	}

	// Block-level elements become line breaks so lists and paragraphs stay
	// readable as plain text.
	doc.Find("br").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithHtml("\n")
	})
	doc.Find("p, li, div, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("- ")
	})

	return cleanText(doc.Text())
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")

	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
