package buildcache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"content-manager/core/fingerprint"

	"gorm.io/gorm"
)

// TableName is the table DBStore writes to.
const TableName = "build_cache_records"

// Columns lists the columns DBStore reads and writes.
func Columns() []string {
	return []string{"owner", "source_fingerprint", "artifact_fingerprint", "updated_at"}
}

// recordRow is the database form of a Record.
type recordRow struct {
	Owner               string    `gorm:"column:owner;primaryKey;size:191"`
	SourceFingerprint   string    `gorm:"column:source_fingerprint;size:64;not null"`
	ArtifactFingerprint string    `gorm:"column:artifact_fingerprint;size:64;not null"`
	UpdatedAt           time.Time `gorm:"column:updated_at"`
}

func (recordRow) TableName() string {
	return TableName
}

// DBStore keeps the index in the TableName table.
type DBStore struct {
	db       *gorm.DB
	migrated atomic.Bool
}

// NewDBStore returns a store backed by db.
func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

// Load reads every row. A missing table means no index exists yet.
func (s *DBStore) Load(ctx context.Context) ([]Record, bool, error) {
	db := s.db.WithContext(ctx)
	if !db.Migrator().HasTable(&recordRow{}) {
		return nil, false, nil
	}
	s.migrated.Store(true)

	var rows []recordRow
	if err := db.Order("owner").Find(&rows).Error; err != nil {
		return nil, true, fmt.Errorf("%w: querying %s: %v", ErrCorruptIndex, TableName, err)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		src, err := fingerprint.Parse(row.SourceFingerprint)
		if err != nil {
			return nil, true, fmt.Errorf("%w: owner %s: %v", ErrCorruptIndex, row.Owner, err)
		}
		art, err := fingerprint.Parse(row.ArtifactFingerprint)
		if err != nil {
			return nil, true, fmt.Errorf("%w: owner %s: %v", ErrCorruptIndex, row.Owner, err)
		}
		records = append(records, Record{Owner: row.Owner, Source: src, Artifact: art})
	}
	return records, true, nil
}

// Save replaces all rows inside one transaction.
func (s *DBStore) Save(ctx context.Context, records []Record) error {
	db := s.db.WithContext(ctx)
	if !s.migrated.Load() {
		if err := db.AutoMigrate(&recordRow{}); err != nil {
			return fmt.Errorf("migrating %s: %w", TableName, err)
		}
		s.migrated.Store(true)
	}

	now := time.Now()
	rows := make([]recordRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, recordRow{
			Owner:               r.Owner,
			SourceFingerprint:   r.Source.String(),
			ArtifactFingerprint: r.Artifact.String(),
			UpdatedAt:           now,
		})
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&recordRow{}).Error; err != nil {
			return fmt.Errorf("clearing build index: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, 500).Error; err != nil {
			return fmt.Errorf("writing build index: %w", err)
		}
		return nil
	})
}
