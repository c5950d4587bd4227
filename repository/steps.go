package repository

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/handoff-dev/handoff/db"
	"github.com/handoff-dev/handoff/domain"
	"gorm.io/gorm"
)

type StepRepository interface {
	FindByID(id uuid.UUID) (*domain.Step, error)
	ListByProjectID(projectID uuid.UUID) ([]*domain.Step, error)
	// FindSuccessor returns the step of the same project with the next-higher
	// order index, or nil if the given step is the last one.
	FindSuccessor(projectID uuid.UUID, orderIndex int) (*domain.Step, error)
	Create(step *domain.Step) (*domain.Step, error)
	// UpdateStatus is the only status mutation on steps. The approval flow is
	// the only caller; no other code path may set step status directly.
	UpdateStatus(id uuid.UUID, status domain.StepStatus) error
	WithTx(tx *gorm.DB) StepRepository
}

type stepRepository struct {
	db     *gorm.DB
	mapper *StepMapper
}

func NewStepRepository(database *gorm.DB) StepRepository {
	return &stepRepository{db: database, mapper: &StepMapper{}}
}

func (r *stepRepository) WithTx(tx *gorm.DB) StepRepository {
	return &stepRepository{db: tx, mapper: r.mapper}
}

func (r *stepRepository) FindByID(id uuid.UUID) (*domain.Step, error) {
	var m db.StepModel
	if err := r.db.First(&m, "id = ?", id).Error; err != nil {
		slog.Error("Database operation failed",
			"layer", "repository",
			"operation", "find_step",
			"step_id", id,
			"error", err)
		return nil, err // Pass through as-is
	}
	return r.mapper.ToDomain(&m), nil
}

func (r *stepRepository) ListByProjectID(projectID uuid.UUID) ([]*domain.Step, error) {
	var models []db.StepModel
	if err := r.db.Where("project_id = ?", projectID).Order("order_index").Find(&models).Error; err != nil {
		return nil, err
	}

	steps := make([]*domain.Step, len(models))
	for i, m := range models {
		steps[i] = r.mapper.ToDomain(&m)
	}
	return steps, nil
}

func (r *stepRepository) FindSuccessor(projectID uuid.UUID, orderIndex int) (*domain.Step, error) {
	var m db.StepModel
	err := r.db.Where("project_id = ? AND order_index > ?", projectID, orderIndex).
		Order("order_index").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Last step has no successor
	}
	if err != nil {
		return nil, err
	}
	return r.mapper.ToDomain(&m), nil
}

func (r *stepRepository) Create(step *domain.Step) (*domain.Step, error) {
	m := r.mapper.ToModel(step)
	if err := r.db.Create(m).Error; err != nil {
		slog.Error("Database operation failed",
			"layer", "repository",
			"operation", "create_step",
			"step_id", step.ID,
			"project_id", step.ProjectID,
			"error", err)
		return nil, err // Pass through as-is
	}
	return r.mapper.ToDomain(m), nil
}

func (r *stepRepository) UpdateStatus(id uuid.UUID, status domain.StepStatus) error {
	err := r.db.Model(&db.StepModel{}).
		Where("id = ?", id).
		Update("status", status.String()).
		Error
	if err != nil {
		slog.Error("Database operation failed",
			"layer", "repository",
			"operation", "update_step_status",
			"step_id", id,
			"status", status,
			"error", err)
	}
	return err // Pass through as-is
}
