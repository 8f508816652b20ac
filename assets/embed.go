// Package assets embeds the static files served under /assets
package assets

import "embed"

//go:embed app.js app.css avatar.svg
var FS embed.FS
