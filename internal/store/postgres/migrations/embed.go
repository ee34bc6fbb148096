// Package migrations embeds the SQL migrations for the primary tier.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
