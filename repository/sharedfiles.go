package repository

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/handoff-dev/handoff/db"
	"github.com/handoff-dev/handoff/domain"
	"gorm.io/gorm"
)

type SharedFileRepository interface {
	FindByID(id uuid.UUID) (*domain.SharedFile, error)
	Create(file *domain.SharedFile) (*domain.SharedFile, error)
	ListByProjectID(projectID uuid.UUID) ([]*domain.SharedFile, error)
	UpdateStatus(id uuid.UUID, status domain.FileStatus) error
	WithTx(tx *gorm.DB) SharedFileRepository
}

type sharedFileRepository struct {
	db     *gorm.DB
	mapper *SharedFileMapper
}

func NewSharedFileRepository(database *gorm.DB) SharedFileRepository {
	return &sharedFileRepository{db: database, mapper: &SharedFileMapper{}}
}

func (r *sharedFileRepository) WithTx(tx *gorm.DB) SharedFileRepository {
	return &sharedFileRepository{db: tx, mapper: r.mapper}
}

func (r *sharedFileRepository) FindByID(id uuid.UUID) (*domain.SharedFile, error) {
	var m db.SharedFileModel
	if err := r.db.First(&m, "id = ?", id).Error; err != nil {
		slog.Error("Database operation failed",
			"layer", "repository",
			"operation", "find_shared_file",
			"file_id", id,
			"error", err)
		return nil, err // Pass through as-is
	}
	return r.mapper.ToDomain(&m), nil
}

func (r *sharedFileRepository) Create(file *domain.SharedFile) (*domain.SharedFile, error) {
	m := r.mapper.ToModel(file)
	if err := r.db.Create(m).Error; err != nil {
		slog.Error("Database operation failed",
			"layer", "repository",
			"operation", "create_shared_file",
			"file_id", file.ID,
			"project_id", file.ProjectID,
			"error", err)
		return nil, err // Pass through as-is
	}
	return r.mapper.ToDomain(m), nil
}

func (r *sharedFileRepository) ListByProjectID(projectID uuid.UUID) ([]*domain.SharedFile, error) {
	var models []db.SharedFileModel
	if err := r.db.Where("project_id = ?", projectID).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	files := make([]*domain.SharedFile, len(models))
	for i, m := range models {
		files[i] = r.mapper.ToDomain(&m)
	}
	return files, nil
}

func (r *sharedFileRepository) UpdateStatus(id uuid.UUID, status domain.FileStatus) error {
	err := r.db.Model(&db.SharedFileModel{}).
		Where("id = ?", id).
		Update("status", status.String()).
		Error
	if err != nil {
		slog.Error("Database operation failed",
			"layer", "repository",
			"operation", "update_shared_file_status",
			"file_id", id,
			"status", status,
			"error", err)
	}
	return err // Pass through as-is
}
