// Package locales ships the translation files with the binary.
package locales

import "embed"

//go:embed *.toml
var FS embed.FS
