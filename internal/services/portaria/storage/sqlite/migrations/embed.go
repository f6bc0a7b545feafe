// Package migrations embeds the SQLite schema migrations for ordinance storage.
package migrations

import "embed"

// FS contains embedded SQLite migrations for ordinance storage.
//
//go:embed *.sql
var FS embed.FS
