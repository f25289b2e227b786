package sanitizer

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	bodyPolicy *bluemonday.Policy
	initOnce   sync.Once
)

func initPolicy() {
	initOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowElements(
			"p", "br", "div", "span",
			"b", "strong", "i", "em", "u",
			"ul", "ol", "li",
			"blockquote", "code",
		)
		p.AllowAttrs("href", "target", "rel").OnElements("a")
		p.AllowURLSchemes("http", "https", "mailto")
		p.RequireParseableURLs(true)
		p.AllowRelativeURLs(false)

		// Narrow inline style surface: underline, italic and bold weight only.
		p.AllowAttrs("style").OnElements("span", "p")
		p.AllowStyles("text-decoration").MatchingEnum("underline").OnElements("span", "p")
		p.AllowStyles("font-style").MatchingEnum("italic").OnElements("span", "p")
		p.AllowStyles("font-weight").MatchingEnum("bold", "bolder", "600", "700").OnElements("span", "p")

		bodyPolicy = p
	})
}

// SanitizeHTML runs user supplied markup through the allow-list policy.
// Disallowed elements are stripped, not rejected; malformed HTML comes out
// repaired or removed.
func SanitizeHTML(s string) string {
	initPolicy()
	return bodyPolicy.Sanitize(s)
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&#34;",
	"'", "&#39;",
)

// EscapeText converts plain text to HTML: escapes &<>"' and turns newlines
// into <br> tags.
func EscapeText(s string) string {
	escaped := htmlEscaper.Replace(s)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return strings.ReplaceAll(escaped, "\n", "<br>\n")
}

// Normalize produces the HTML body and plain-text body used by the send
// pipeline from the submitted bodyText and optional bodyHTML.
//
// Blank rich body: HTML is derived by escaping the plain text. Present rich
// body: sanitized through the allow-list, falling back to escaped plain text
// when sanitization strips everything. Blank plain text: derived from the
// sanitized HTML.
func Normalize(bodyText, bodyHTML string) (html, text string) {
	text = strings.TrimSpace(bodyText)

	if strings.TrimSpace(bodyHTML) == "" {
		return EscapeText(text), text
	}

	html = strings.TrimSpace(SanitizeHTML(bodyHTML))
	if html == "" {
		html = EscapeText(text)
	}

	if text == "" {
		text = HTMLToText(html)
	}

	return html, text
}
