package domain

import (
	"time"

	"github.com/google/uuid"
)

// DeliverableVersion is one uploaded artifact tied to a step. Version
// numbers are 1-based and sequential within a (project, step) group, and
// exactly one version per group carries IsLatest. Once created a version
// is immutable except for Status and IsLatest.
type DeliverableVersion struct {
	ID            uuid.UUID
	ProjectID     uuid.UUID
	StepID        *uuid.UUID // nil for versions not attached to a step
	Name          string
	Description   string
	VersionNumber int
	IsLatest      bool
	FileURL       string
	FileName      string
	FileType      string
	Status        VersionStatus
	CreatedBy     uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func NewDeliverableVersion(projectID uuid.UUID, stepID *uuid.UUID, name, description string, createdBy uuid.UUID) DeliverableVersion {
	return DeliverableVersion{
		ID:          uuid.New(),
		ProjectID:   projectID,
		StepID:      stepID,
		Name:        name,
		Description: description,
		Status:      VersionStatusPending,
		CreatedBy:   createdBy,
	}
}
