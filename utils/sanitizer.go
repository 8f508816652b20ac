package utils

import (
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// StrictPolicy removes all markup
	StrictPolicy *bluemonday.Policy
	// UGCPolicy keeps the formatting a mail body legitimately uses
	UGCPolicy *bluemonday.Policy
)

func init() {
	StrictPolicy = bluemonday.StrictPolicy()

	UGCPolicy = bluemonday.UGCPolicy()
	UGCPolicy.AllowElements("p", "br", "div", "span", "h1", "h2", "h3", "h4", "h5", "h6")
	UGCPolicy.AllowElements("strong", "em", "u", "s", "code", "pre")
	UGCPolicy.AllowElements("ul", "ol", "li", "blockquote")
	UGCPolicy.AllowElements("a", "table", "thead", "tbody", "tr", "th", "td")
	UGCPolicy.AllowAttrs("href").OnElements("a")
	UGCPolicy.AllowAttrs("class").Globally()
	UGCPolicy.RequireParseableURLs(true)
	UGCPolicy.AllowURLSchemes("http", "https", "mailto")
	UGCPolicy.RequireNoFollowOnLinks(true)
	UGCPolicy.AddTargetBlankToFullyQualifiedLinks(true)
}

// SanitizeHTML sanitizes HTML content using the UGC policy
func SanitizeHTML(html string) string {
	return UGCPolicy.Sanitize(html)
}

// StripHTML removes all HTML tags from content
func StripHTML(html string) string {
	return StrictPolicy.Sanitize(html)
}

// RenderBody turns an email body into markup safe to embed in a page.
// Bodies without tags are plain text: they are escaped and their line
// breaks kept.
func RenderBody(body string) template.HTML {
	if !LooksLikeHTML(body) {
		escaped := template.HTMLEscapeString(body)
		return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
	}
	return template.HTML(SanitizeHTML(body))
}

// LooksLikeHTML reports whether s contains something resembling a tag
func LooksLikeHTML(s string) bool {
	open := strings.IndexByte(s, '<')
	return open >= 0 && strings.IndexByte(s[open:], '>') > 0
}
