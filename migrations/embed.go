// Package migrations embeds the goose SQL migrations applied at startup,
// by passctl, and by integration test containers.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
