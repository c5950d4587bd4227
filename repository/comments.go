package repository

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/handoff-dev/handoff/db"
	"github.com/handoff-dev/handoff/domain"
	"gorm.io/gorm"
)

// CommentRepository is append-only: comments are never updated or deleted.
type CommentRepository interface {
	Create(comment *domain.Comment) (*domain.Comment, error)
	ListByDeliverableID(deliverableID uuid.UUID) ([]*domain.Comment, error)
	WithTx(tx *gorm.DB) CommentRepository
}

type commentRepository struct {
	db     *gorm.DB
	mapper *CommentMapper
}

func NewCommentRepository(database *gorm.DB) CommentRepository {
	return &commentRepository{db: database, mapper: &CommentMapper{}}
}

func (r *commentRepository) WithTx(tx *gorm.DB) CommentRepository {
	return &commentRepository{db: tx, mapper: r.mapper}
}

func (r *commentRepository) Create(comment *domain.Comment) (*domain.Comment, error) {
	m := r.mapper.ToModel(comment)
	if err := r.db.Create(m).Error; err != nil {
		slog.Error("Database operation failed",
			"layer", "repository",
			"operation", "create_comment",
			"comment_id", comment.ID,
			"deliverable_id", comment.DeliverableID,
			"error", err)
		return nil, err // Pass through as-is
	}
	return r.mapper.ToDomain(m), nil
}

func (r *commentRepository) ListByDeliverableID(deliverableID uuid.UUID) ([]*domain.Comment, error) {
	var models []db.CommentModel
	if err := r.db.Where("deliverable_id = ?", deliverableID).Order("created_at").Find(&models).Error; err != nil {
		return nil, err
	}

	comments := make([]*domain.Comment, len(models))
	for i, m := range models {
		comments[i] = r.mapper.ToDomain(&m)
	}
	return comments, nil
}
