// Package migrations embeds the schema of the local driver store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
