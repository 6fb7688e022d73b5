package checks

import (
	"fmt"

	"content-manager/core/buildcache"
	"content-manager/core/database"

	"gorm.io/gorm"
)

// DatabaseReport describes the build cache table.
type DatabaseReport struct {
	Driver         string   `json:"driver"`
	Table          string   `json:"table"`
	Exists         bool     `json:"exists"`
	MissingColumns []string `json:"missing_columns"`
	Status         string   `json:"status"` // "ok", "error"
}

// CheckDatabase verifies that the build cache table has every column the
// database store writes. A table that does not exist yet is reported but
// not an error; it is created on the first save.
func CheckDatabase(db *gorm.DB) (*DatabaseReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &DatabaseReport{
		Driver:         db.Dialector.Name(),
		Table:          buildcache.TableName,
		MissingColumns: []string{},
		Status:         "ok",
	}

	report.Exists = db.Migrator().HasTable(buildcache.TableName)
	if !report.Exists {
		return report, nil
	}

	missing, err := database.MissingColumns(db, buildcache.TableName, buildcache.Columns())
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		report.MissingColumns = missing
		report.Status = "error"
	}
	return report, nil
}
