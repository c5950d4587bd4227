// Package domain defines the core entities of the Handoff delivery portal.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Project is a client engagement: a sequence of steps, the deliverable
// versions uploaded against them, and the files shared alongside.
type Project struct {
	ID        uuid.UUID
	Title     string
	ClientID  uuid.UUID
	StartDate time.Time
	EndDate   *time.Time
	// Progress is derived: recomputed from step completion on every
	// approval, never incremented in place.
	Progress int
	Status   ProjectStatus
	// ClientAccessToken is embedded in the portal share link sent to the
	// client. Stored encrypted at rest.
	ClientAccessToken string
	Steps             []*Step
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func NewProject(title string, clientID uuid.UUID, startDate time.Time, endDate *time.Time) Project {
	return Project{
		ID:                uuid.New(),
		Title:             title,
		ClientID:          clientID,
		StartDate:         startDate,
		EndDate:           endDate,
		Status:            ProjectStatusActive,
		ClientAccessToken: uuid.NewString(),
	}
}

// CurrentStep returns the step currently in review, or nil if none.
// At most one step per project carries StepStatusCurrent; after the last
// step is approved no step remains current.
func (p *Project) CurrentStep() *Step {
	for _, s := range p.Steps {
		if s.Status == StepStatusCurrent {
			return s
		}
	}
	return nil
}
