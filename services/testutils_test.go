package services

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/handoff-dev/handoff/db"
	"github.com/handoff-dev/handoff/domain"
	"github.com/handoff-dev/handoff/encryption"
	"github.com/handoff-dev/handoff/notify"
	"github.com/handoff-dev/handoff/repository"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	database, err := db.InitDatabase(db.DBConfig{
		Path:     ":memory:",
		LogLevel: logger.Silent,
	})
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	// Run migrations for all models (single source of truth)
	if err := db.AutoMigrateAll(database); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return database
}

// setupTestEncryption creates a test encryption service with a fresh key
func setupTestEncryption(t *testing.T) *encryption.EncryptionService {
	key, err := encryption.GenerateKey()
	if err != nil {
		t.Fatalf("Failed to generate test encryption key: %v", err)
	}
	svc, err := encryption.NewEncryptionService(key)
	if err != nil {
		t.Fatalf("Failed to create test encryption service: %v", err)
	}
	return svc
}

// recordingNotifier captures published events for assertions
type recordingNotifier struct {
	events []notify.Event
}

func (n *recordingNotifier) Publish(event notify.Event) {
	n.events = append(n.events, event)
}

func (n *recordingNotifier) eventsOfType(eventType string) []notify.Event {
	var matched []notify.Event
	for _, e := range n.events {
		if e.Type == eventType {
			matched = append(matched, e)
		}
	}
	return matched
}

// testEnv wires all services against one in-memory database and a temp-dir
// blob store
type testEnv struct {
	db       *gorm.DB
	projects repository.ProjectRepository
	steps    repository.StepRepository
	versions repository.VersionRepository
	comments repository.CommentRepository
	files    repository.SharedFileRepository

	projectService *ProjectService
	versionService *VersionService
	approvals      *ApprovalService
	commentService *CommentService
	fileService    *SharedFileService

	blobs    *LocalBlobStore
	notifier *recordingNotifier
}

func setupTestEnv(t *testing.T) *testEnv {
	database := setupTestDB(t)
	encryptionSvc := setupTestEncryption(t)

	blobs, err := NewLocalBlobStore(t.TempDir(), "http://localhost:8080", 1<<20)
	if err != nil {
		t.Fatalf("Failed to create test blob store: %v", err)
	}

	notifier := &recordingNotifier{}

	projects := repository.NewProjectRepository(database, encryptionSvc)
	steps := repository.NewStepRepository(database)
	versions := repository.NewVersionRepository(database)
	comments := repository.NewCommentRepository(database)
	files := repository.NewSharedFileRepository(database)

	return &testEnv{
		db:       database,
		projects: projects,
		steps:    steps,
		versions: versions,
		comments: comments,
		files:    files,

		projectService: NewProjectService(database, projects, steps),
		versionService: NewVersionService(database, projects, steps, versions, blobs, notifier),
		approvals:      NewApprovalService(database, projects, steps, versions, comments, notifier),
		commentService: NewCommentService(steps, versions, comments, notifier),
		fileService:    NewSharedFileService(projects, files, blobs, notifier),

		blobs:    blobs,
		notifier: notifier,
	}
}

// createTestProject creates a project with the given number of steps
func createTestProject(t *testing.T, env *testEnv, stepCount int) *domain.Project {
	input := CreateProjectInput{
		Title:     "Brand Refresh",
		ClientID:  uuid.New(),
		StartDate: time.Now(),
	}
	for i := 0; i < stepCount; i++ {
		input.Steps = append(input.Steps, StepSeed{
			Title:       "Milestone " + string(rune('A'+i)),
			Description: "Phase of the engagement",
		})
	}

	project, err := env.projectService.Create(input)
	if err != nil {
		t.Fatalf("Failed to create test project: %v", err)
	}
	return project
}

// uploadTestVersion uploads a version for the given step (nil for unattached)
func uploadTestVersion(t *testing.T, env *testEnv, projectID uuid.UUID, stepID *uuid.UUID, name string) *domain.DeliverableVersion {
	version, err := env.versionService.Create(CreateVersionInput{
		ProjectID: projectID,
		StepID:    stepID,
		Name:      name,
		CreatedBy: uuid.New(),
		File: &FileUpload{
			Filename:    "draft.pdf",
			ContentType: "application/pdf",
			Reader:      strings.NewReader("pdf bytes"),
		},
	})
	if err != nil {
		t.Fatalf("Failed to upload test version: %v", err)
	}
	return version
}
