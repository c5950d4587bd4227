package domain

import (
	"time"

	"github.com/google/uuid"
)

// Step is a named phase of a project, sequenced by OrderIndex.
// Steps are created once when the project is set up; only the approval
// flow mutates their status afterwards.
type Step struct {
	ID          uuid.UUID
	ProjectID   uuid.UUID
	Title       string
	Description string
	Status      StepStatus
	OrderIndex  int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewStep(projectID uuid.UUID, title, description string, orderIndex int) Step {
	status := StepStatusUpcoming
	if orderIndex == 0 {
		status = StepStatusCurrent
	}
	return Step{
		ID:          uuid.New(),
		ProjectID:   projectID,
		Title:       title,
		Description: description,
		Status:      status,
		OrderIndex:  orderIndex,
	}
}
