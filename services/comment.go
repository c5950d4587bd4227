package services

import (
	"github.com/google/uuid"
	"github.com/handoff-dev/handoff/domain"
	"github.com/handoff-dev/handoff/notify"
	"github.com/handoff-dev/handoff/repository"
)

// AddCommentInput carries a new comment for a deliverable version's thread.
// AuthorID equal to domain.SystemAuthorID marks an automated notice.
type AddCommentInput struct {
	DeliverableID uuid.UUID
	AuthorID      uuid.UUID
	Content       string
	IsClient      bool
}

// CommentService appends comments to deliverable version threads. Comments
// are immutable once written; there is no edit or delete.
type CommentService struct {
	steps    repository.StepRepository
	versions repository.VersionRepository
	comments repository.CommentRepository
	notifier notify.Notifier
}

func NewCommentService(
	steps repository.StepRepository,
	versions repository.VersionRepository,
	comments repository.CommentRepository,
	notifier notify.Notifier,
) *CommentService {
	return &CommentService{
		steps:    steps,
		versions: versions,
		comments: comments,
		notifier: notifier,
	}
}

// Add validates that the deliverable resolves, denormalizes the milestone
// and version names at write time, and persists the comment.
func (s *CommentService) Add(input AddCommentInput) (*domain.Comment, error) {
	if input.Content == "" {
		return nil, validationError("content is required")
	}

	version, err := s.versions.FindByID(input.DeliverableID)
	if err != nil {
		return nil, notFoundError("deliverable version", err)
	}

	var milestoneName string
	if version.StepID != nil {
		step, err := s.steps.FindByID(*version.StepID)
		if err != nil {
			return nil, notFoundError("step", err)
		}
		milestoneName = step.Title
	}

	comment := domain.NewComment(version.ID, version.ProjectID, input.AuthorID, input.Content, input.IsClient)
	comment.MilestoneName = milestoneName
	comment.VersionName = version.Name

	created, err := s.comments.Create(&comment)
	if err != nil {
		return nil, persistenceError(err)
	}

	s.notifier.Publish(notify.NewEvent(notify.EventCommentCreated, created.ProjectID, map[string]any{
		"comment_id":     created.ID,
		"deliverable_id": created.DeliverableID,
		"is_client":      created.IsClient,
	}))

	return created, nil
}

// ListByDeliverable returns a version's thread in chronological order
func (s *CommentService) ListByDeliverable(deliverableID uuid.UUID) ([]*domain.Comment, error) {
	if _, err := s.versions.FindByID(deliverableID); err != nil {
		return nil, notFoundError("deliverable version", err)
	}

	comments, err := s.comments.ListByDeliverableID(deliverableID)
	if err != nil {
		return nil, persistenceError(err)
	}
	return comments, nil
}
