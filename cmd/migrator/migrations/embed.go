// Package migrations bundles the snapshot export schema.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
