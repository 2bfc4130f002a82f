// Package database opens the SQLite store behind Hearthline Core and
// runs its schema migrations.
//
// Open pins the pool to one connection with foreign keys on and, when
// configured, WAL journaling. Migrations are versioned SQL files
// registered by the migrations package and applied by Migrate, each in
// its own transaction.
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
