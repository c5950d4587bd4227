package repository

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/handoff-dev/handoff/db"
	"github.com/handoff-dev/handoff/domain"
	"gorm.io/gorm"
)

type VersionRepository interface {
	FindByID(id uuid.UUID) (*domain.DeliverableVersion, error)
	Create(version *domain.DeliverableVersion) (*domain.DeliverableVersion, error)
	ListByProjectID(projectID uuid.UUID) ([]*domain.DeliverableVersion, error)
	// ListByGroup returns all versions of one (project, step) group, newest
	// version number first. A nil stepID addresses the unattached group.
	ListByGroup(projectID uuid.UUID, stepID *uuid.UUID) ([]*domain.DeliverableVersion, error)
	// MaxVersionNumber returns the highest version number in the group, or 0
	// if the group has no versions yet.
	MaxVersionNumber(projectID uuid.UUID, stepID *uuid.UUID) (int, error)
	// ClearLatest drops the is_latest flag on every version in the group.
	ClearLatest(projectID uuid.UUID, stepID *uuid.UUID) error
	UpdateStatus(id uuid.UUID, status domain.VersionStatus) error
	WithTx(tx *gorm.DB) VersionRepository
}

type versionRepository struct {
	db     *gorm.DB
	mapper *VersionMapper
}

func NewVersionRepository(database *gorm.DB) VersionRepository {
	return &versionRepository{db: database, mapper: &VersionMapper{}}
}

func (r *versionRepository) WithTx(tx *gorm.DB) VersionRepository {
	return &versionRepository{db: tx, mapper: r.mapper}
}

// groupScope narrows a query to a (project, step) version group. NULL step_id
// rows form their own group.
func groupScope(q *gorm.DB, projectID uuid.UUID, stepID *uuid.UUID) *gorm.DB {
	q = q.Where("project_id = ?", projectID)
	if stepID == nil {
		return q.Where("step_id IS NULL")
	}
	return q.Where("step_id = ?", *stepID)
}

func (r *versionRepository) FindByID(id uuid.UUID) (*domain.DeliverableVersion, error) {
	var m db.DeliverableVersionModel
	if err := r.db.First(&m, "id = ?", id).Error; err != nil {
		slog.Error("Database operation failed",
			"layer", "repository",
			"operation", "find_version",
			"version_id", id,
			"error", err)
		return nil, err // Pass through as-is
	}
	return r.mapper.ToDomain(&m), nil
}

func (r *versionRepository) Create(version *domain.DeliverableVersion) (*domain.DeliverableVersion, error) {
	m := r.mapper.ToModel(version)
	if err := r.db.Create(m).Error; err != nil {
		slog.Error("Database operation failed",
			"layer", "repository",
			"operation", "create_version",
			"version_id", version.ID,
			"project_id", version.ProjectID,
			"error", err)
		return nil, err // Pass through as-is
	}
	return r.mapper.ToDomain(m), nil
}

func (r *versionRepository) ListByProjectID(projectID uuid.UUID) ([]*domain.DeliverableVersion, error) {
	var models []db.DeliverableVersionModel
	if err := r.db.Where("project_id = ?", projectID).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	versions := make([]*domain.DeliverableVersion, len(models))
	for i, m := range models {
		versions[i] = r.mapper.ToDomain(&m)
	}
	return versions, nil
}

func (r *versionRepository) ListByGroup(projectID uuid.UUID, stepID *uuid.UUID) ([]*domain.DeliverableVersion, error) {
	var models []db.DeliverableVersionModel
	q := groupScope(r.db.Model(&db.DeliverableVersionModel{}), projectID, stepID)
	if err := q.Order("version_number DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	versions := make([]*domain.DeliverableVersion, len(models))
	for i, m := range models {
		versions[i] = r.mapper.ToDomain(&m)
	}
	return versions, nil
}

func (r *versionRepository) MaxVersionNumber(projectID uuid.UUID, stepID *uuid.UUID) (int, error) {
	var max *int
	q := groupScope(r.db.Model(&db.DeliverableVersionModel{}), projectID, stepID)
	if err := q.Select("MAX(version_number)").Scan(&max).Error; err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *versionRepository) ClearLatest(projectID uuid.UUID, stepID *uuid.UUID) error {
	q := groupScope(r.db.Model(&db.DeliverableVersionModel{}), projectID, stepID)
	err := q.Where("is_latest = ?", true).Update("is_latest", false).Error
	if err != nil {
		slog.Error("Database operation failed",
			"layer", "repository",
			"operation", "clear_latest",
			"project_id", projectID,
			"error", err)
	}
	return err // Pass through as-is
}

func (r *versionRepository) UpdateStatus(id uuid.UUID, status domain.VersionStatus) error {
	err := r.db.Model(&db.DeliverableVersionModel{}).
		Where("id = ?", id).
		Update("status", status.String()).
		Error
	if err != nil {
		slog.Error("Database operation failed",
			"layer", "repository",
			"operation", "update_version_status",
			"version_id", id,
			"status", status,
			"error", err)
	}
	return err // Pass through as-is
}
