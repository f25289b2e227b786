package sanitizer_test

import (
	"strings"
	"testing"

	"github.com/rishikeshydv/bulk-email-sender/internal/sanitizer"
)

func TestSanitizeHTMLStripsDangerousMarkup(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		mustKeep   []string
		mustReject []string
	}{
		{
			name:       "script tag",
			input:      `<p>Hello</p><script>alert('xss')</script>`,
			mustKeep:   []string{"<p>Hello</p>"},
			mustReject: []string{"<script", "alert"},
		},
		{
			name:       "event handler",
			input:      `<p onclick="steal()">click me</p>`,
			mustKeep:   []string{"click me"},
			mustReject: []string{"onclick", "steal"},
		},
		{
			name:       "javascript url",
			input:      `<a href="javascript:alert(1)">link</a>`,
			mustKeep:   []string{"link"},
			mustReject: []string{"javascript:"},
		},
		{
			name:       "iframe",
			input:      `before<iframe src="https://evil.example"></iframe>after`,
			mustKeep:   []string{"before", "after"},
			mustReject: []string{"iframe"},
		},
		{
			name:       "disallowed style property",
			input:      `<span style="position:absolute;font-weight:bold">x</span>`,
			mustKeep:   []string{"font-weight: bold"},
			mustReject: []string{"position"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.SanitizeHTML(tt.input)
			for _, want := range tt.mustKeep {
				if !strings.Contains(got, want) {
					t.Errorf("output %q missing %q", got, want)
				}
			}
			for _, bad := range tt.mustReject {
				if strings.Contains(got, bad) {
					t.Errorf("output %q still contains %q", got, bad)
				}
			}
		})
	}
}

func TestSanitizeHTMLKeepsAllowedMarkup(t *testing.T) {
	input := `<p>Hi <strong>there</strong>, see <em>this</em> and <u>that</u>.</p><ul><li>one</li></ul><blockquote>quote</blockquote>`

	got := sanitizer.SanitizeHTML(input)
	if got != input {
		t.Errorf("allow-listed markup changed:\n in: %s\nout: %s", input, got)
	}
}

func TestSanitizeHTMLKeepsSafeLinks(t *testing.T) {
	input := `<a href="https://example.com" rel="nofollow">site</a>`

	got := sanitizer.SanitizeHTML(input)
	if !strings.Contains(got, `href="https://example.com"`) {
		t.Errorf("https link dropped: %q", got)
	}
	if !strings.Contains(got, ">site</a>") {
		t.Errorf("link text lost: %q", got)
	}
}

func TestSanitizeHTMLIdempotent(t *testing.T) {
	inputs := []string{
		`<p>Hi <strong>there</strong></p>`,
		`<div><span style="font-style:italic">x</span></div>`,
		`<a href="mailto:a@b.c">mail</a>`,
		`plain text & ampersand`,
	}

	for _, input := range inputs {
		once := sanitizer.SanitizeHTML(input)
		twice := sanitizer.SanitizeHTML(once)
		if once != twice {
			t.Errorf("not idempotent for %q:\nonce:  %q\ntwice: %q", input, once, twice)
		}
	}
}

func TestEscapeText(t *testing.T) {
	got := sanitizer.EscapeText("a < b & c > \"d\" 'e'\nnext line")

	for _, want := range []string{"&lt;", "&amp;", "&gt;", "&#34;", "&#39;", "<br>"} {
		if !strings.Contains(got, want) {
			t.Errorf("escaped output %q missing %q", got, want)
		}
	}
	if strings.Contains(got, "<b") && !strings.Contains(got, "<br>") {
		t.Errorf("unexpected markup in %q", got)
	}
}

func TestNormalizeBlankRichBody(t *testing.T) {
	html, text := sanitizer.Normalize("line one\nline two", "   ")

	if text != "line one\nline two" {
		t.Errorf("text = %q", text)
	}
	if html != "line one<br>\nline two" {
		t.Errorf("html = %q", html)
	}
}

func TestNormalizeRichBody(t *testing.T) {
	html, text := sanitizer.Normalize("fallback text", `<p>Rich <strong>body</strong></p>`)

	if html != `<p>Rich <strong>body</strong></p>` {
		t.Errorf("html = %q", html)
	}
	if text != "fallback text" {
		t.Errorf("text = %q", text)
	}
}

// Scenario: bodyHtml present, bodyText blank. The plain text is derived from
// the sanitized HTML.
func TestNormalizeDerivesTextFromHTML(t *testing.T) {
	html, text := sanitizer.Normalize("", `<p>Hello</p><script>alert('x')</script>`)

	if html != "<p>Hello</p>" {
		t.Errorf("html = %q", html)
	}
	if text != "Hello" {
		t.Errorf("text = %q", text)
	}
}

func TestNormalizeSanitizedEmptyFallsBack(t *testing.T) {
	html, text := sanitizer.Normalize("plain body", `<script>alert('x')</script>`)

	if text != "plain body" {
		t.Errorf("text = %q", text)
	}
	if html != "plain body" {
		t.Errorf("html = %q, want escaped plain text fallback", html)
	}
}
