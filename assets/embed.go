// Package assets embeds the default poem corpora and the SQL migrations.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed poems/*.json sql/*.sql
var FS embed.FS

// PoemFile returns the embedded corpus for a level name ("elementary", ...).
func PoemFile(level string) ([]byte, error) {
	return FS.ReadFile("poems/" + level + ".json")
}

// Migrations returns the migration scripts rooted at the sql directory.
func Migrations() (fs.FS, error) {
	return fs.Sub(FS, "sql")
}
