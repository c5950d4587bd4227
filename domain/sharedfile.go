package domain

import (
	"time"

	"github.com/google/uuid"
)

// SharedFile is a project-scoped attachment outside the step hierarchy:
// reference material, contracts, assets either party wants the other to
// see. It carries a simple new/viewed flag instead of a review lifecycle.
type SharedFile struct {
	ID          uuid.UUID
	ProjectID   uuid.UUID
	Title       string
	Description string
	FileURL     string
	FileName    string
	FileType    string
	FileSize    int64
	UploadedBy  uuid.UUID
	IsClient    bool
	Status      FileStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewSharedFile(projectID uuid.UUID, title, description string, uploadedBy uuid.UUID, isClient bool) SharedFile {
	return SharedFile{
		ID:          uuid.New(),
		ProjectID:   projectID,
		Title:       title,
		Description: description,
		UploadedBy:  uploadedBy,
		IsClient:    isClient,
		Status:      FileStatusNew,
	}
}
