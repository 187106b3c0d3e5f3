// Package migrations embeds the SQLite DDL for the star-schema warehouse.
package migrations

import "embed"

// FS contains embedded SQLite migrations for warehouse storage.
//
//go:embed *.sql
var FS embed.FS
