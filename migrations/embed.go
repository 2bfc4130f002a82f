// Package migrations compiles the schema migration SQL into the binary
// and registers it with the database package. Importing it for side
// effect is enough:
//
//	import _ "github.com/hearthline/hearth-core/migrations"
package migrations

import (
	"embed"

	"github.com/hearthline/hearth-core/internal/infrastructure/database"
)

//go:embed *.sql
var files embed.FS

func init() {
	database.SetMigrations(files)
}
