// Package migrations embeds the SQLite DDL for the operational tracking schema.
package migrations

import "embed"

// FS contains embedded SQLite migrations for tracking storage.
//
//go:embed *.sql
var FS embed.FS
