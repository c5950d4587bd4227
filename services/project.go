package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/handoff-dev/handoff/domain"
	"github.com/handoff-dev/handoff/repository"
	"gorm.io/gorm"
)

// StepSeed describes one milestone of a new project
type StepSeed struct {
	Title       string
	Description string
}

// CreateProjectInput carries a new engagement: the project itself plus its
// milestone sequence, created together.
type CreateProjectInput struct {
	Title     string
	ClientID  uuid.UUID
	StartDate time.Time
	EndDate   *time.Time
	Steps     []StepSeed
}

// ProjectService manages projects and their step sequences
type ProjectService struct {
	db       *gorm.DB
	projects repository.ProjectRepository
	steps    repository.StepRepository
}

func NewProjectService(database *gorm.DB, projects repository.ProjectRepository, steps repository.StepRepository) *ProjectService {
	return &ProjectService{
		db:       database,
		projects: projects,
		steps:    steps,
	}
}

// Create persists a project and seeds its steps in one transaction. The
// first step starts out current, the rest upcoming; a fresh client access
// token is generated for the share link.
func (s *ProjectService) Create(input CreateProjectInput) (*domain.Project, error) {
	if input.Title == "" {
		return nil, validationError("title is required")
	}
	if input.ClientID == uuid.Nil {
		return nil, validationError("client_id is required")
	}
	for i, seed := range input.Steps {
		if seed.Title == "" {
			return nil, validationError("step %d: title is required", i+1)
		}
	}

	startDate := input.StartDate
	if startDate.IsZero() {
		startDate = time.Now()
	}

	project := domain.NewProject(input.Title, input.ClientID, startDate, input.EndDate)

	var created *domain.Project
	err := s.db.Transaction(func(tx *gorm.DB) error {
		projects := s.projects.WithTx(tx)
		steps := s.steps.WithTx(tx)

		var err error
		created, err = projects.Create(&project)
		if err != nil {
			return err
		}

		for i, seed := range input.Steps {
			step := domain.NewStep(project.ID, seed.Title, seed.Description, i)
			createdStep, err := steps.Create(&step)
			if err != nil {
				return err
			}
			created.Steps = append(created.Steps, createdStep)
		}
		return nil
	})
	if err != nil {
		return nil, persistenceError(err)
	}

	return created, nil
}

// Get returns a project with its steps ordered by sequence
func (s *ProjectService) Get(id uuid.UUID) (*domain.Project, error) {
	project, err := s.projects.FindByID(id)
	if err != nil {
		return nil, notFoundError("project", err)
	}
	return project, nil
}

// List returns all projects, oldest first
func (s *ProjectService) List() ([]*domain.Project, error) {
	projects, err := s.projects.List()
	if err != nil {
		return nil, persistenceError(err)
	}
	return projects, nil
}

// ListSteps returns a project's steps ordered by sequence
func (s *ProjectService) ListSteps(projectID uuid.UUID) ([]*domain.Step, error) {
	if _, err := s.projects.FindByID(projectID); err != nil {
		return nil, notFoundError("project", err)
	}
	steps, err := s.steps.ListByProjectID(projectID)
	if err != nil {
		return nil, persistenceError(err)
	}
	return steps, nil
}
