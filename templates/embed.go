// Package templates embeds the HTML views
package templates

import "embed"

//go:embed *.html layouts/*.html partials/*.html
var FS embed.FS
