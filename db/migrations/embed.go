// Package migrations embeds the SQL schema applied by gormrepo.ApplyMigrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
