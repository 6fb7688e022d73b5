// Package database opens the optional SQL connection used by the database
// build cache backend.
//
// Connect configures GORM for MySQL or SQLite from Config and verifies the
// connection with a bounded ping. Callers treat a failed connection as fatal
// only when a component actually requires the database.
//
// The inspector helpers read a table's columns so integrity checks can
// detect a schema that drifted from what the application writes.
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	missing, err := database.MissingColumns(db, "build_cache_records", []string{"owner"})
package database
