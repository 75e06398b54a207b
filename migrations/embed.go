// Package migrations embeds the goose SQL migrations so binaries can
// bring the schema up without shipping loose files.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
