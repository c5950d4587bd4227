package services

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/handoff-dev/handoff/domain"
	"github.com/handoff-dev/handoff/notify"
	"github.com/handoff-dev/handoff/repository"
)

// UploadSharedFileInput carries a project-scoped file shared outside the
// step hierarchy
type UploadSharedFileInput struct {
	ProjectID   uuid.UUID
	Title       string
	Description string
	UploadedBy  uuid.UUID
	IsClient    bool
	File        *FileUpload
}

// SharedFileService manages project-scoped shared files
type SharedFileService struct {
	projects repository.ProjectRepository
	files    repository.SharedFileRepository
	blobs    BlobStore
	notifier notify.Notifier
}

func NewSharedFileService(
	projects repository.ProjectRepository,
	files repository.SharedFileRepository,
	blobs BlobStore,
	notifier notify.Notifier,
) *SharedFileService {
	return &SharedFileService{
		projects: projects,
		files:    files,
		blobs:    blobs,
		notifier: notifier,
	}
}

// Upload stores the file and records it with status new
func (s *SharedFileService) Upload(input UploadSharedFileInput) (*domain.SharedFile, error) {
	if input.Title == "" {
		return nil, validationError("title is required")
	}
	if input.UploadedBy == uuid.Nil {
		return nil, validationError("user_id is required")
	}
	if input.File == nil || input.File.Filename == "" {
		return nil, validationError("file is required")
	}

	if _, err := s.projects.FindByID(input.ProjectID); err != nil {
		return nil, notFoundError("project", err)
	}

	blob, err := s.blobs.Save(input.ProjectID, input.File.Filename, input.File.Reader)
	if err != nil {
		slog.Error("Shared file upload failed",
			"layer", "service",
			"operation", "upload_shared_file",
			"project_id", input.ProjectID,
			"error", err)
		return nil, storageError(err)
	}

	file := domain.NewSharedFile(input.ProjectID, input.Title, input.Description, input.UploadedBy, input.IsClient)
	file.FileURL = blob.URL
	file.FileName = input.File.Filename
	file.FileType = input.File.ContentType
	file.FileSize = blob.Size

	created, err := s.files.Create(&file)
	if err != nil {
		slog.Warn("Shared file insert failed after upload, blob orphaned",
			"layer", "service",
			"operation", "upload_shared_file",
			"project_id", input.ProjectID,
			"file_url", blob.URL,
			"error", err)
		return nil, persistenceError(err)
	}

	s.notifier.Publish(notify.NewEvent(notify.EventFileShared, created.ProjectID, map[string]any{
		"file_id":   created.ID,
		"title":     created.Title,
		"is_client": created.IsClient,
	}))

	return created, nil
}

// ListByProject returns a project's shared files, newest first
func (s *SharedFileService) ListByProject(projectID uuid.UUID) ([]*domain.SharedFile, error) {
	if _, err := s.projects.FindByID(projectID); err != nil {
		return nil, notFoundError("project", err)
	}
	files, err := s.files.ListByProjectID(projectID)
	if err != nil {
		return nil, persistenceError(err)
	}
	return files, nil
}

// MarkViewed flips a file from new to viewed. Already-viewed files are a
// no-op, not an error.
func (s *SharedFileService) MarkViewed(id uuid.UUID) (*domain.SharedFile, error) {
	file, err := s.files.FindByID(id)
	if err != nil {
		return nil, notFoundError("shared file", err)
	}
	if file.Status == domain.FileStatusViewed {
		return file, nil
	}

	if err := s.files.UpdateStatus(id, domain.FileStatusViewed); err != nil {
		return nil, persistenceError(err)
	}
	file.Status = domain.FileStatusViewed
	return file, nil
}
