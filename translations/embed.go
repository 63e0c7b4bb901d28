// Package translations embeds the bundled desk translations, one YAML file
// per language mapping source strings to their translation.
package translations

import "embed"

//go:embed *.yaml
var FS embed.FS
