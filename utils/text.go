package utils

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// PreviewLength matches the snippet length the assistant API produces
const PreviewLength = 50

// PlainText extracts the visible text of an HTML fragment, skipping
// script and style contents. Plain text input passes through unchanged
// apart from whitespace normalization.
func PlainText(s string) string {
	if !LooksLikeHTML(s) {
		return strings.Join(strings.Fields(s), " ")
	}

	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(sb.String()), " ")
		case html.StartTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				skip++
			case "br", "p", "div", "li", "tr":
				sb.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if n := string(name); (n == "script" || n == "style") && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				sb.Write(z.Text())
				sb.WriteByte(' ')
			}
		}
	}
}

// Preview returns the first n characters of the body's text, with an
// ellipsis when it was cut.
func Preview(body string, n int) string {
	text := PlainText(body)
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:n])) + "..."
}
