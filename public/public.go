// Package public embeds the portal's static assets.
package public

import "embed"

//go:embed css
var Assets embed.FS
