package db

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// MigrationModel records which manual migrations have been applied
type MigrationModel struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null;unique"`
	AppliedAt time.Time
}

func (MigrationModel) TableName() string {
	return "migrations"
}

// Migration represents a single database migration
type Migration struct {
	ID   int
	Name string
	Up   func(*gorm.DB) error
}

// allMigrations is the ordered list of all migrations
// Each migration has a unique ID and is applied in order
var allMigrations = []Migration{
	{
		ID:   1,
		Name: "0001_add_one_latest_version_index",
		Up:   migration0001AddOneLatestVersionIndex,
	},
}

// AllModels returns all the models that need to be migrated
// This is the single source of truth for database migrations
func AllModels() []any {
	return []any{
		&MigrationModel{},
		&ProjectModel{},
		&StepModel{},
		&DeliverableVersionModel{},
		&CommentModel{},
		&SharedFileModel{},
	}
}

// AutoMigrateAll runs auto-migration for all application models and then
// applies the manual migrations.
func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(&MigrationModel{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(AllModels()...); err != nil {
		return err
	}

	return RunMigrations(db, len(allMigrations))
}

// RunMigrations runs all migrations up to and including the specified ID
// If targetID is 0 or negative, all migrations are run
func RunMigrations(db *gorm.DB, targetID int) error {
	if targetID <= 0 {
		targetID = len(allMigrations)
	}

	for _, migration := range allMigrations {
		if migration.ID > targetID {
			break
		}

		applied, err := migrationApplied(db, migration.Name)
		if err != nil {
			return fmt.Errorf("failed to check migration %s: %w", migration.Name, err)
		}
		if applied {
			continue
		}

		if err := migration.Up(db); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Name, err)
		}

		if err := recordMigration(db, migration.Name); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", migration.Name, err)
		}
	}

	return nil
}

// migrationApplied checks if a migration has already been applied
func migrationApplied(db *gorm.DB, name string) (bool, error) {
	var count int64
	err := db.Model(&MigrationModel{}).Where("name = ?", name).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// recordMigration records that a migration has been applied
func recordMigration(db *gorm.DB, name string) error {
	migration := MigrationModel{
		Name:      name,
		AppliedAt: time.Now(),
	}
	return db.Create(&migration).Error
}

// migration0001AddOneLatestVersionIndex creates a partial unique index so
// that at most one deliverable version per (project_id, step_id) group can
// carry is_latest. SQLite treats NULLs as distinct in unique indexes, so
// step_id is coalesced to group unattached versions together.
func migration0001AddOneLatestVersionIndex(db *gorm.DB) error {
	return db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_deliverables_one_latest
		ON deliverables (project_id, ifnull(step_id, ''))
		WHERE is_latest
	`).Error
}
