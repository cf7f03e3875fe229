// Package migrations embeds the goose schema migrations for every supported
// SQL dialect.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed postgres/*.sql sqlite/*.sql
var all embed.FS

// Postgres returns the migrations for the PostgreSQL schema.
func Postgres() fs.FS { return sub("postgres") }

// SQLite returns the migrations for the SQLite schema.
func SQLite() fs.FS { return sub("sqlite") }

func sub(dir string) fs.FS {
	f, err := fs.Sub(all, dir)
	if err != nil {
		// dir is a compile-time constant matched by the embed pattern
		panic(err)
	}
	return f
}
