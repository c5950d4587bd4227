package db

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMigratedDB(t *testing.T) *gorm.DB {
	database, err := InitDatabase(DBConfig{Path: ":memory:", LogLevel: logger.Silent})
	require.NoError(t, err)
	require.NoError(t, AutoMigrateAll(database))
	return database
}

func createProjectRow(t *testing.T, database *gorm.DB) *ProjectModel {
	project := &ProjectModel{
		BaseModel: BaseModel{ID: uuid.New()},
		Title:     "Test Project",
		ClientID:  uuid.New(),
		StartDate: time.Now(),
		Status:    "active",
	}
	require.NoError(t, database.Create(project).Error)
	return project
}

func versionRow(projectID uuid.UUID, stepID *uuid.UUID, number int, latest bool) *DeliverableVersionModel {
	return &DeliverableVersionModel{
		BaseModel:     BaseModel{ID: uuid.New()},
		ProjectID:     projectID,
		StepID:        stepID,
		Name:          "Draft",
		VersionNumber: number,
		IsLatest:      latest,
		FileURL:       "http://localhost/files/draft.pdf",
		Status:        "pending",
		CreatedBy:     uuid.New(),
	}
}

func TestAutoMigrateAllIdempotent(t *testing.T) {
	database := setupMigratedDB(t)

	// Re-running migrations is safe
	require.NoError(t, AutoMigrateAll(database))

	var count int64
	require.NoError(t, database.Model(&MigrationModel{}).Count(&count).Error)
	assert.Equal(t, int64(len(allMigrations)), count)
}

func TestOneLatestVersionIndex(t *testing.T) {
	database := setupMigratedDB(t)
	project := createProjectRow(t, database)
	stepID := uuid.New()

	require.NoError(t, database.Create(versionRow(project.ID, &stepID, 1, true)).Error)

	// A second latest row in the same group violates the partial index
	err := database.Create(versionRow(project.ID, &stepID, 2, true)).Error
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNIQUE constraint failed")

	// A non-latest sibling is fine
	require.NoError(t, database.Create(versionRow(project.ID, &stepID, 2, false)).Error)
}

func TestOneLatestVersionIndexPerGroup(t *testing.T) {
	database := setupMigratedDB(t)
	project := createProjectRow(t, database)
	firstStep := uuid.New()
	secondStep := uuid.New()

	// One latest per group, including the NULL step group
	require.NoError(t, database.Create(versionRow(project.ID, &firstStep, 1, true)).Error)
	require.NoError(t, database.Create(versionRow(project.ID, &secondStep, 1, true)).Error)
	require.NoError(t, database.Create(versionRow(project.ID, nil, 1, true)).Error)

	// The NULL step group is one group, not many
	err := database.Create(versionRow(project.ID, nil, 2, true)).Error
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNIQUE constraint failed")
}

func TestGroupNumberUniqueness(t *testing.T) {
	database := setupMigratedDB(t)
	project := createProjectRow(t, database)
	stepID := uuid.New()

	require.NoError(t, database.Create(versionRow(project.ID, &stepID, 1, false)).Error)

	// Same number in the same group is rejected
	err := database.Create(versionRow(project.ID, &stepID, 1, true)).Error
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNIQUE constraint failed")

	// Same number in another group is fine
	otherStep := uuid.New()
	require.NoError(t, database.Create(versionRow(project.ID, &otherStep, 1, true)).Error)
}
