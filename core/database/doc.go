// Package database opens the checkpoint database and inspects its schema.
//
// Connect wraps GORM and selects the dialector from the configured driver: MySQL in
// production, SQLite for local runs and tests. GetTableColumns and MissingColumns back the
// schema check run before a replication pair is allowed to resume from a checkpoint.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "diff_checkpoints", []string{"pair_key", "state"})
package database
