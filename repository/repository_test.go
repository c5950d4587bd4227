package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/handoff-dev/handoff/db"
	"github.com/handoff-dev/handoff/domain"
	"github.com/handoff-dev/handoff/encryption"
)

type testRepos struct {
	db       *gorm.DB
	projects ProjectRepository
	steps    StepRepository
	versions VersionRepository
	comments CommentRepository
	files    SharedFileRepository
}

func setupTestRepos(t *testing.T) *testRepos {
	database, err := db.InitDatabase(db.DBConfig{Path: ":memory:", LogLevel: logger.Silent})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrateAll(database))

	key, err := encryption.GenerateKey()
	require.NoError(t, err)
	encryptionSvc, err := encryption.NewEncryptionService(key)
	require.NoError(t, err)

	return &testRepos{
		db:       database,
		projects: NewProjectRepository(database, encryptionSvc),
		steps:    NewStepRepository(database),
		versions: NewVersionRepository(database),
		comments: NewCommentRepository(database),
		files:    NewSharedFileRepository(database),
	}
}

func createProject(t *testing.T, repos *testRepos) *domain.Project {
	project := domain.NewProject("Brand Refresh", uuid.New(), time.Now(), nil)
	created, err := repos.projects.Create(&project)
	require.NoError(t, err)
	return created
}

func createStep(t *testing.T, repos *testRepos, projectID uuid.UUID, orderIndex int) *domain.Step {
	step := domain.NewStep(projectID, "Milestone", "", orderIndex)
	created, err := repos.steps.Create(&step)
	require.NoError(t, err)
	return created
}

func createVersion(t *testing.T, repos *testRepos, projectID uuid.UUID, stepID *uuid.UUID, number int, latest bool) *domain.DeliverableVersion {
	version := domain.NewDeliverableVersion(projectID, stepID, "Draft", "", uuid.New())
	version.VersionNumber = number
	version.IsLatest = latest
	version.FileURL = "http://localhost/files/draft.pdf"
	created, err := repos.versions.Create(&version)
	require.NoError(t, err)
	return created
}

func TestProjectRepositoryTokenEncryptedAtRest(t *testing.T) {
	repos := setupTestRepos(t)
	created := createProject(t, repos)
	require.NotEmpty(t, created.ClientAccessToken)

	// The raw row never contains the plaintext token
	var m db.ProjectModel
	require.NoError(t, repos.db.First(&m, "id = ?", created.ID).Error)
	require.NotNil(t, m.ClientAccessToken)
	assert.NotEqual(t, created.ClientAccessToken, *m.ClientAccessToken)

	// But the repository hands the plaintext back
	found, err := repos.projects.FindByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ClientAccessToken, found.ClientAccessToken)
}

func TestProjectRepositoryFindByIDPreloadsSteps(t *testing.T) {
	repos := setupTestRepos(t)
	project := createProject(t, repos)

	// Create out of order to verify the preload sorts by sequence
	createStep(t, repos, project.ID, 2)
	createStep(t, repos, project.ID, 0)
	createStep(t, repos, project.ID, 1)

	found, err := repos.projects.FindByID(project.ID)
	require.NoError(t, err)
	require.Len(t, found.Steps, 3)
	for i, step := range found.Steps {
		assert.Equal(t, i, step.OrderIndex)
	}
}

func TestProjectRepositoryUpdateProgress(t *testing.T) {
	repos := setupTestRepos(t)
	project := createProject(t, repos)

	require.NoError(t, repos.projects.UpdateProgress(project.ID, 67))

	found, err := repos.projects.FindByID(project.ID)
	require.NoError(t, err)
	assert.Equal(t, 67, found.Progress)
}

func TestProjectRepositoryDeleteCascades(t *testing.T) {
	repos := setupTestRepos(t)
	project := createProject(t, repos)
	step := createStep(t, repos, project.ID, 0)
	stepID := step.ID
	createVersion(t, repos, project.ID, &stepID, 1, true)

	require.NoError(t, repos.projects.Delete(project.ID))

	steps, err := repos.steps.ListByProjectID(project.ID)
	require.NoError(t, err)
	assert.Empty(t, steps)

	versions, err := repos.versions.ListByProjectID(project.ID)
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestStepRepositoryFindSuccessor(t *testing.T) {
	repos := setupTestRepos(t)
	project := createProject(t, repos)
	createStep(t, repos, project.ID, 0)
	second := createStep(t, repos, project.ID, 1)
	third := createStep(t, repos, project.ID, 2)

	successor, err := repos.steps.FindSuccessor(project.ID, 0)
	require.NoError(t, err)
	require.NotNil(t, successor)
	assert.Equal(t, second.ID, successor.ID)

	successor, err = repos.steps.FindSuccessor(project.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, successor)
	assert.Equal(t, third.ID, successor.ID)

	// The last step has no successor
	successor, err = repos.steps.FindSuccessor(project.ID, 2)
	require.NoError(t, err)
	assert.Nil(t, successor)
}

func TestVersionRepositoryMaxVersionNumber(t *testing.T) {
	repos := setupTestRepos(t)
	project := createProject(t, repos)
	step := createStep(t, repos, project.ID, 0)
	stepID := step.ID

	// Empty group reports zero
	max, err := repos.versions.MaxVersionNumber(project.ID, &stepID)
	require.NoError(t, err)
	assert.Equal(t, 0, max)

	createVersion(t, repos, project.ID, &stepID, 1, false)
	createVersion(t, repos, project.ID, &stepID, 2, true)

	max, err = repos.versions.MaxVersionNumber(project.ID, &stepID)
	require.NoError(t, err)
	assert.Equal(t, 2, max)

	// Other groups are not counted
	max, err = repos.versions.MaxVersionNumber(project.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, max)
}

func TestVersionRepositoryClearLatest(t *testing.T) {
	repos := setupTestRepos(t)
	project := createProject(t, repos)
	step := createStep(t, repos, project.ID, 0)
	other := createStep(t, repos, project.ID, 1)
	stepID := step.ID
	otherID := other.ID

	v1 := createVersion(t, repos, project.ID, &stepID, 1, true)
	untouched := createVersion(t, repos, project.ID, &otherID, 1, true)

	require.NoError(t, repos.versions.ClearLatest(project.ID, &stepID))

	found, err := repos.versions.FindByID(v1.ID)
	require.NoError(t, err)
	assert.False(t, found.IsLatest)

	// The sibling group keeps its latest flag
	found, err = repos.versions.FindByID(untouched.ID)
	require.NoError(t, err)
	assert.True(t, found.IsLatest)
}

func TestVersionRepositoryListByGroup(t *testing.T) {
	repos := setupTestRepos(t)
	project := createProject(t, repos)
	step := createStep(t, repos, project.ID, 0)
	stepID := step.ID

	createVersion(t, repos, project.ID, &stepID, 1, false)
	createVersion(t, repos, project.ID, &stepID, 2, true)
	createVersion(t, repos, project.ID, nil, 1, true)

	grouped, err := repos.versions.ListByGroup(project.ID, &stepID)
	require.NoError(t, err)
	require.Len(t, grouped, 2)
	assert.Equal(t, 2, grouped[0].VersionNumber)
	assert.Equal(t, 1, grouped[1].VersionNumber)

	unattached, err := repos.versions.ListByGroup(project.ID, nil)
	require.NoError(t, err)
	require.Len(t, unattached, 1)
	assert.Nil(t, unattached[0].StepID)
}

func TestCommentRepositoryRoundTrip(t *testing.T) {
	repos := setupTestRepos(t)
	project := createProject(t, repos)
	version := createVersion(t, repos, project.ID, nil, 1, true)

	clientID := uuid.New()
	comment := domain.NewComment(version.ID, project.ID, clientID, "Needs work", true)
	comment.MilestoneName = "Design"
	comment.VersionName = "Draft"

	created, err := repos.comments.Create(&comment)
	require.NoError(t, err)

	listed, err := repos.comments.ListByDeliverableID(version.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
	assert.Equal(t, "Needs work", listed[0].Content)
	assert.Equal(t, "Design", listed[0].MilestoneName)
	assert.Equal(t, "Draft", listed[0].VersionName)
	require.NotNil(t, listed[0].ClientID)
	assert.Equal(t, clientID, *listed[0].ClientID)
}

func TestSharedFileRepositoryUpdateStatus(t *testing.T) {
	repos := setupTestRepos(t)
	project := createProject(t, repos)

	file := domain.NewSharedFile(project.ID, "Brief", "", uuid.New(), false)
	file.FileURL = "http://localhost/files/brief.pdf"
	created, err := repos.files.Create(&file)
	require.NoError(t, err)
	assert.Equal(t, domain.FileStatusNew, created.Status)

	require.NoError(t, repos.files.UpdateStatus(created.ID, domain.FileStatusViewed))

	found, err := repos.files.FindByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FileStatusViewed, found.Status)
}
