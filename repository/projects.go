package repository

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/handoff-dev/handoff/db"
	"github.com/handoff-dev/handoff/domain"
	"github.com/handoff-dev/handoff/encryption"
	"gorm.io/gorm"
)

type ProjectRepository interface {
	FindByID(id uuid.UUID) (*domain.Project, error)
	Create(project *domain.Project) (*domain.Project, error)
	Update(project *domain.Project) error
	UpdateProgress(id uuid.UUID, progress int) error
	List() ([]*domain.Project, error)
	Delete(id uuid.UUID) error
	WithTx(tx *gorm.DB) ProjectRepository
}

type projectRepository struct {
	db     *gorm.DB
	mapper *ProjectMapper
}

func NewProjectRepository(database *gorm.DB, encryptionSvc *encryption.EncryptionService) ProjectRepository {
	return &projectRepository{
		db:     database,
		mapper: NewProjectMapper(encryptionSvc),
	}
}

// WithTx returns a repository bound to the given transaction
func (r *projectRepository) WithTx(tx *gorm.DB) ProjectRepository {
	return &projectRepository{db: tx, mapper: r.mapper}
}

func (r *projectRepository) List() ([]*domain.Project, error) {
	var models []db.ProjectModel
	if err := r.db.Order("created_at").Find(&models).Error; err != nil {
		return nil, err
	}

	projects := make([]*domain.Project, len(models))
	for i, model := range models {
		projects[i] = r.mapper.ToDomain(&model)
	}
	return projects, nil
}

func (r *projectRepository) FindByID(id uuid.UUID) (*domain.Project, error) {
	var m db.ProjectModel
	err := r.db.Preload("Steps", func(q *gorm.DB) *gorm.DB {
		return q.Order("order_index")
	}).First(&m, "id = ?", id).Error
	if err != nil {
		slog.Error("Database operation failed",
			"layer", "repository",
			"operation", "find_project",
			"project_id", id,
			"error", err)
		return nil, err // Pass through as-is
	}
	return r.mapper.ToDomain(&m), nil
}

func (r *projectRepository) Create(project *domain.Project) (*domain.Project, error) {
	m := r.mapper.ToModel(project)
	res := r.db.Create(m)
	if res.Error != nil {
		slog.Error("Database operation failed",
			"layer", "repository",
			"operation", "create_project",
			"project_id", project.ID,
			"project_title", project.Title,
			"error", res.Error)
		return nil, res.Error // Pass through as-is
	}
	return r.mapper.ToDomain(m), nil
}

func (r *projectRepository) Update(project *domain.Project) error {
	m := r.mapper.ToModel(project)

	// Select("*") so zero values (progress 0, cleared end date) are written
	// too. CreatedAt is never touched after creation.
	return r.db.Model(&db.ProjectModel{}).
		Where("id = ?", m.ID).
		Select("*").
		Omit("created_at").
		Updates(m).
		Error
}

func (r *projectRepository) UpdateProgress(id uuid.UUID, progress int) error {
	err := r.db.Model(&db.ProjectModel{}).
		Where("id = ?", id).
		Update("progress", progress).
		Error
	if err != nil {
		slog.Error("Database operation failed",
			"layer", "repository",
			"operation", "update_project_progress",
			"project_id", id,
			"error", err)
	}
	return err // Pass through as-is
}

func (r *projectRepository) Delete(id uuid.UUID) error {
	err := r.db.Delete(&db.ProjectModel{}, "id = ?", id).Error
	if err != nil {
		slog.Error("Database operation failed",
			"layer", "repository",
			"operation", "delete_project",
			"project_id", id,
			"error", err)
	}
	return err // Pass through as-is
}
