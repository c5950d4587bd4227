// Package app provides the main application context for Handoff, managing
// the database and services.
package app

import (
	"os"

	"github.com/handoff-dev/handoff/config"
	"github.com/handoff-dev/handoff/db"
	"github.com/handoff-dev/handoff/encryption"
	"github.com/handoff-dev/handoff/notify"
	"github.com/handoff-dev/handoff/repository"
	"github.com/handoff-dev/handoff/services"
	"gorm.io/gorm"
)

var (
	// Version is set at build time via -ldflags
	Version = "dev"

	database       *gorm.DB
	appConfig      *config.Config
	blobStore      *services.LocalBlobStore
	projectService *services.ProjectService
	versionService *services.VersionService
	approvalSvc    *services.ApprovalService
	commentService *services.CommentService
	fileService    *services.SharedFileService
)

// InitializeWithConfig initializes the app with a pre-configured Config.
// The notifier is injected so the server can wire the websocket hub while
// the CLI runs without one.
func InitializeWithConfig(cfg *config.Config, notifier notify.Notifier) error {
	var err error

	appConfig = cfg
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}

	if err := os.MkdirAll(appConfig.DataDir, 0o755); err != nil {
		return err
	}

	database, err = db.InitDB(appConfig.DatabasePath)
	if err != nil {
		return err
	}

	if err := db.AutoMigrateAll(database); err != nil {
		return err
	}

	encryptionSvc, err := encryption.NewEncryptionService(appConfig.EncryptionKey)
	if err != nil {
		return err
	}

	blobStore, err = services.NewLocalBlobStore(appConfig.UploadsDir, appConfig.PublicBaseURL, appConfig.MaxUploadSize)
	if err != nil {
		return err
	}

	projectRepo := repository.NewProjectRepository(database, encryptionSvc)
	stepRepo := repository.NewStepRepository(database)
	versionRepo := repository.NewVersionRepository(database)
	commentRepo := repository.NewCommentRepository(database)
	fileRepo := repository.NewSharedFileRepository(database)

	projectService = services.NewProjectService(database, projectRepo, stepRepo)
	versionService = services.NewVersionService(database, projectRepo, stepRepo, versionRepo, blobStore, notifier)
	approvalSvc = services.NewApprovalService(database, projectRepo, stepRepo, versionRepo, commentRepo, notifier)
	commentService = services.NewCommentService(stepRepo, versionRepo, commentRepo, notifier)
	fileService = services.NewSharedFileService(projectRepo, fileRepo, blobStore, notifier)

	return nil
}

func GetConfig() *config.Config {
	return appConfig
}

func GetBlobStore() *services.LocalBlobStore {
	return blobStore
}

func GetProjectService() *services.ProjectService {
	return projectService
}

func GetVersionService() *services.VersionService {
	return versionService
}

func GetApprovalService() *services.ApprovalService {
	return approvalSvc
}

func GetCommentService() *services.CommentService {
	return commentService
}

func GetSharedFileService() *services.SharedFileService {
	return fileService
}
