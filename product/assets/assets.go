// Package assets holds files compiled into the binary.
package assets

import _ "embed"

const DefaultImageContentType = "image/png"

//go:embed default.png
var DefaultImage []byte
