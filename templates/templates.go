// Package templates embeds the default text templates rendered into collections.
package templates

import "embed"

//go:embed postman/*.tmpl
var FS embed.FS
