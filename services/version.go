// Package services implements the business logic of the Handoff portal.
package services

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/handoff-dev/handoff/domain"
	"github.com/handoff-dev/handoff/notify"
	"github.com/handoff-dev/handoff/repository"
	"gorm.io/gorm"
)

// FileUpload is an incoming binary payload
type FileUpload struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// CreateVersionInput carries everything needed to record a new deliverable
// version. Exactly one of File and FileURL must be set: the multipart
// endpoint passes the raw upload, the JSON endpoint passes an already
// resolved URL. Both run through the same code path.
type CreateVersionInput struct {
	ProjectID   uuid.UUID
	StepID      *uuid.UUID
	Name        string
	Description string
	// CreatedBy is mandatory: every version must be attributable to the
	// user who uploaded it.
	CreatedBy uuid.UUID

	File *FileUpload

	// Pre-resolved file location, for callers that uploaded elsewhere
	FileURL  string
	FileName string
	FileType string
}

// VersionService creates deliverable versions with correct sequencing:
// version numbers are contiguous per (project, step) group and exactly one
// version per group is flagged latest.
type VersionService struct {
	db       *gorm.DB
	projects repository.ProjectRepository
	steps    repository.StepRepository
	versions repository.VersionRepository
	blobs    BlobStore
	notifier notify.Notifier
}

func NewVersionService(
	database *gorm.DB,
	projects repository.ProjectRepository,
	steps repository.StepRepository,
	versions repository.VersionRepository,
	blobs BlobStore,
	notifier notify.Notifier,
) *VersionService {
	return &VersionService{
		db:       database,
		projects: projects,
		steps:    steps,
		versions: versions,
		blobs:    blobs,
		notifier: notifier,
	}
}

// Create validates the input, stores the file, and inserts the version row
// inside one transaction together with the is_latest flip on its siblings.
// The transaction also serializes concurrent uploads to the same group, so
// version numbers cannot collide.
func (s *VersionService) Create(input CreateVersionInput) (*domain.DeliverableVersion, error) {
	if err := s.validate(&input); err != nil {
		return nil, err
	}

	if _, err := s.projects.FindByID(input.ProjectID); err != nil {
		return nil, notFoundError("project", err)
	}

	if input.StepID != nil {
		step, err := s.steps.FindByID(*input.StepID)
		if err != nil {
			return nil, notFoundError("step", err)
		}
		// A step from another project is rejected outright rather than
		// silently detached
		if step.ProjectID != input.ProjectID {
			return nil, validationError("step %s does not belong to project %s", step.ID, input.ProjectID)
		}
	}

	fileURL := input.FileURL
	fileName := input.FileName
	fileType := input.FileType
	uploaded := false

	if input.File != nil {
		// Upload first: a version row must never point at a missing file
		blob, err := s.blobs.Save(input.ProjectID, input.File.Filename, input.File.Reader)
		if err != nil {
			slog.Error("Version file upload failed",
				"layer", "service",
				"operation", "create_version",
				"project_id", input.ProjectID,
				"error", err)
			return nil, storageError(err)
		}
		fileURL = blob.URL
		fileName = input.File.Filename
		if fileType == "" {
			fileType = input.File.ContentType
		}
		uploaded = true
	}

	version := domain.NewDeliverableVersion(input.ProjectID, input.StepID, input.Name, input.Description, input.CreatedBy)
	version.FileURL = fileURL
	version.FileName = fileName
	version.FileType = fileType
	version.IsLatest = true

	var created *domain.DeliverableVersion
	err := s.db.Transaction(func(tx *gorm.DB) error {
		versions := s.versions.WithTx(tx)

		max, err := versions.MaxVersionNumber(input.ProjectID, input.StepID)
		if err != nil {
			return err
		}
		version.VersionNumber = max + 1

		// Flip the previous latest before inserting: the partial unique
		// index allows only one latest row per group at any point
		if err := versions.ClearLatest(input.ProjectID, input.StepID); err != nil {
			return err
		}

		created, err = versions.Create(&version)
		return err
	})
	if err != nil {
		if uploaded {
			// The stored blob is orphaned; log it so it can be reaped,
			// there is no compensating delete here
			slog.Warn("Version insert failed after upload, blob orphaned",
				"layer", "service",
				"operation", "create_version",
				"project_id", input.ProjectID,
				"file_url", fileURL,
				"error", err)
		}
		return nil, persistenceError(err)
	}

	s.notifier.Publish(notify.NewEvent(notify.EventVersionUploaded, created.ProjectID, map[string]any{
		"version_id":     created.ID,
		"step_id":        created.StepID,
		"name":           created.Name,
		"version_number": created.VersionNumber,
	}))

	return created, nil
}

// Get returns a single version by id
func (s *VersionService) Get(id uuid.UUID) (*domain.DeliverableVersion, error) {
	version, err := s.versions.FindByID(id)
	if err != nil {
		return nil, notFoundError("deliverable version", err)
	}
	return version, nil
}

// ListByProject returns all versions of a project, newest first
func (s *VersionService) ListByProject(projectID uuid.UUID) ([]*domain.DeliverableVersion, error) {
	if _, err := s.projects.FindByID(projectID); err != nil {
		return nil, notFoundError("project", err)
	}
	versions, err := s.versions.ListByProjectID(projectID)
	if err != nil {
		return nil, persistenceError(err)
	}
	return versions, nil
}

// ListByGroup returns the version history of one (project, step) group,
// newest version first
func (s *VersionService) ListByGroup(projectID uuid.UUID, stepID *uuid.UUID) ([]*domain.DeliverableVersion, error) {
	versions, err := s.versions.ListByGroup(projectID, stepID)
	if err != nil {
		return nil, persistenceError(err)
	}
	return versions, nil
}

func (s *VersionService) validate(input *CreateVersionInput) error {
	if input.Name == "" {
		return validationError("name is required")
	}
	if input.ProjectID == uuid.Nil {
		return validationError("project_id is required")
	}
	if input.CreatedBy == uuid.Nil {
		return validationError("user_id is required")
	}
	if input.File == nil && input.FileURL == "" {
		return validationError("file is required")
	}
	if input.File != nil && input.FileURL != "" {
		return validationError("provide either a file or a file_url, not both")
	}
	if input.File != nil && input.File.Filename == "" {
		return validationError("file name is required")
	}
	return nil
}
