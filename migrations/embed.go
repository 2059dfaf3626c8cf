// Package migrations embeds the goose SQL migrations so the binary can
// migrate without a checkout of the repository.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
