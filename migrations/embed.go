// Package migrations embeds the SQL schema migrations into the binary.
//
// Importing this package (usually with a blank import from main) registers
// the embedded files with the database package so DB.Migrate can apply
// them at startup.
package migrations

import (
	"embed"

	"github.com/patra-io/patra/internal/infrastructure/database"
)

//go:embed *.sql
var files embed.FS

func init() {
	database.MigrationsFS = files
	database.MigrationsDir = "."
}
