package sanitizer_test

import (
	"testing"

	"github.com/rishikeshydv/bulk-email-sender/internal/sanitizer"
)

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "paragraphs become lines",
			input: "<p>one</p><p>two</p>",
			want:  "one\ntwo",
		},
		{
			name:  "br inside paragraph",
			input: "<p>one<br>two</p>",
			want:  "one\ntwo",
		},
		{
			name:  "link renders text and href",
			input: `<p>see <a href="https://example.com">our site</a></p>`,
			want:  "see our site (https://example.com)",
		},
		{
			name:  "link text equal to href is not repeated",
			input: `<a href="https://example.com">https://example.com</a>`,
			want:  "https://example.com",
		},
		{
			name:  "images are dropped",
			input: `<p>before<img src="pic.png" alt="pic">after</p>`,
			want:  "beforeafter",
		},
		{
			name:  "list items get dashes",
			input: "<ul><li>first</li><li>second</li></ul>",
			want:  "- first\n- second",
		},
		{
			name:  "nested inline formatting flattens",
			input: "<p>Hi <strong>there</strong>, <em>friend</em></p>",
			want:  "Hi there, friend",
		},
		{
			name:  "plain text passes through",
			input: "no markup here",
			want:  "no markup here",
		},
		{
			name:  "blank runs collapse",
			input: "<div><p>a</p></div><div><p>b</p></div>",
			want:  "a\n\nb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizer.HTMLToText(tt.input); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
