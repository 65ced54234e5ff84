// Package remote embeds the goose migrations of the PostgreSQL store.
package remote

import "embed"

//go:embed *.sql
var Migrations embed.FS
