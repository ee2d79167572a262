// Package database handles database connections and schema inspection.
//
// It wraps GORM to open MySQL or SQLite connections from the application's
// configuration. The connection serves two purposes: loading tables as datasets
// and persisting diff records.
//
// # Schema Inspection
//
// GetTableColumns returns the column definitions of a table, which the tables
// command uses to compare two table schemas without loading their rows.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "orders")
package database
