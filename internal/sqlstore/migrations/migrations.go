// Package migrations embeds the goose SQL migrations shared by the SQLite and
// PostgreSQL stores.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
