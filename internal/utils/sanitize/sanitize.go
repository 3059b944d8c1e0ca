// Package sanitize strips markup from user supplied text before it is stored.
//
// Product titles, descriptions, categories, bidder names and user names all
// pass through here in the service layer; repositories assume clean input.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes every tag and attribute. bluemonday.Policy is safe for
// concurrent use as long as nobody mutates it after this initializer.
var strict = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}()

// Sanitize strips all HTML and keeps the spacing left by removed tags.
//
//   - "<script>alert('xss')</script>Hello" -> "Hello"
//   - "<p>Hello <b>world</b></p>" -> "  Hello  world  "
func Sanitize(s string) string {
	return strict.Sanitize(s)
}

// Clean strips HTML, unescapes entities, turns non-breaking spaces into
// spaces and collapses runs of blanks on each line. Line breaks survive, so
// multi-line descriptions keep their paragraphs.
//
//   - "<p>hi</p>" -> "hi"
//   - "<b>a</b> <b>b</b>" -> "a b"
//   - "  Gold <i>plated</i>\nworking  " -> "Gold plated\nworking"
func Clean(s string) string {
	cleaned := html.UnescapeString(strings.TrimSpace(strict.Sanitize(s)))
	cleaned = strings.ReplaceAll(cleaned, "\u00a0", " ")

	lines := strings.Split(cleaned, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.Join(lines, "\n")
}

// Line is Clean for single-line values such as titles and names: every
// whitespace run, line breaks included, becomes one space.
func Line(s string) string {
	return strings.Join(strings.Fields(Clean(s)), " ")
}
