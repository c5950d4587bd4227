package services

import (
	"math"

	"github.com/google/uuid"
	"github.com/handoff-dev/handoff/domain"
	"github.com/handoff-dev/handoff/notify"
	"github.com/handoff-dev/handoff/repository"
	"gorm.io/gorm"
)

// ApprovalService transitions deliverable versions through review and
// cascades the outcome to the step sequence and the project progress.
// Approval is all-or-nothing: the version status, step completion, successor
// promotion and progress recompute commit in one transaction.
type ApprovalService struct {
	db       *gorm.DB
	projects repository.ProjectRepository
	steps    repository.StepRepository
	versions repository.VersionRepository
	comments repository.CommentRepository
	notifier notify.Notifier
}

func NewApprovalService(
	database *gorm.DB,
	projects repository.ProjectRepository,
	steps repository.StepRepository,
	versions repository.VersionRepository,
	comments repository.CommentRepository,
	notifier notify.Notifier,
) *ApprovalService {
	return &ApprovalService{
		db:       database,
		projects: projects,
		steps:    steps,
		versions: versions,
		comments: comments,
		notifier: notifier,
	}
}

// Approve marks a pending version approved, completes its step, promotes the
// next step to current (if any) and recomputes the project progress from
// scratch. The approved step being the last one is a valid terminal state:
// no step remains current afterwards.
func (s *ApprovalService) Approve(deliverableID, clientID uuid.UUID) (*domain.DeliverableVersion, error) {
	if clientID == uuid.Nil {
		return nil, validationError("client_id is required")
	}

	version, err := s.versions.FindByID(deliverableID)
	if err != nil {
		return nil, notFoundError("deliverable version", err)
	}
	if version.Status != domain.VersionStatusPending {
		return nil, validationError("version is already %s", version.Status)
	}
	if version.StepID == nil {
		return nil, validationError("version is not attached to a step")
	}

	step, err := s.steps.FindByID(*version.StepID)
	if err != nil {
		return nil, notFoundError("step", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		versions := s.versions.WithTx(tx)
		steps := s.steps.WithTx(tx)
		projects := s.projects.WithTx(tx)

		if err := versions.UpdateStatus(version.ID, domain.VersionStatusApproved); err != nil {
			return err
		}

		if err := steps.UpdateStatus(step.ID, domain.StepStatusCompleted); err != nil {
			return err
		}

		successor, err := steps.FindSuccessor(step.ProjectID, step.OrderIndex)
		if err != nil {
			return err
		}
		if successor != nil {
			if err := steps.UpdateStatus(successor.ID, domain.StepStatusCurrent); err != nil {
				return err
			}
		}

		progress, err := computeProgress(steps, step.ProjectID)
		if err != nil {
			return err
		}
		return projects.UpdateProgress(step.ProjectID, progress)
	})
	if err != nil {
		return nil, persistenceError(err)
	}

	version.Status = domain.VersionStatusApproved

	s.notifier.Publish(notify.NewEvent(notify.EventVersionApproved, version.ProjectID, map[string]any{
		"version_id": version.ID,
		"step_id":    version.StepID,
		"name":       version.Name,
	}))

	return version, nil
}

// Reject marks a pending version rejected and records the client's feedback
// as a comment on its thread. The step stays current so a corrective version
// can be uploaded; nothing cascades to the project.
func (s *ApprovalService) Reject(deliverableID, clientID uuid.UUID, feedback string) (*domain.DeliverableVersion, error) {
	if clientID == uuid.Nil {
		return nil, validationError("client_id is required")
	}
	if feedback == "" {
		return nil, validationError("feedback is required to reject a version")
	}

	version, err := s.versions.FindByID(deliverableID)
	if err != nil {
		return nil, notFoundError("deliverable version", err)
	}
	if version.Status != domain.VersionStatusPending {
		return nil, validationError("version is already %s", version.Status)
	}

	// Denormalize the step title now so the comment keeps displaying
	// correctly even if the step is renamed later
	var milestoneName string
	if version.StepID != nil {
		step, err := s.steps.FindByID(*version.StepID)
		if err != nil {
			return nil, notFoundError("step", err)
		}
		milestoneName = step.Title
	}

	comment := domain.NewComment(version.ID, version.ProjectID, clientID, feedback, true)
	comment.MilestoneName = milestoneName
	comment.VersionName = version.Name

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.versions.WithTx(tx).UpdateStatus(version.ID, domain.VersionStatusRejected); err != nil {
			return err
		}
		_, err := s.comments.WithTx(tx).Create(&comment)
		return err
	})
	if err != nil {
		return nil, persistenceError(err)
	}

	version.Status = domain.VersionStatusRejected

	s.notifier.Publish(notify.NewEvent(notify.EventVersionRejected, version.ProjectID, map[string]any{
		"version_id": version.ID,
		"step_id":    version.StepID,
		"name":       version.Name,
		"feedback":   feedback,
	}))

	return version, nil
}

// computeProgress derives the project progress from scratch: the rounded
// percentage of completed steps over all steps. Recomputing instead of
// incrementing keeps it idempotent.
func computeProgress(steps repository.StepRepository, projectID uuid.UUID) (int, error) {
	all, err := steps.ListByProjectID(projectID)
	if err != nil {
		return 0, err
	}
	if len(all) == 0 {
		return 0, nil
	}

	completed := 0
	for _, step := range all {
		if step.Status == domain.StepStatusCompleted {
			completed++
		}
	}
	return int(math.Round(100 * float64(completed) / float64(len(all)))), nil
}
