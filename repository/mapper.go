// Package repository provides the data access layer for the Handoff portal.
package repository

import (
	"log/slog"

	"github.com/handoff-dev/handoff/db"
	"github.com/handoff-dev/handoff/domain"
	"github.com/handoff-dev/handoff/encryption"
)

type ProjectMapper struct {
	encryption *encryption.EncryptionService
}

func NewProjectMapper(encryptionSvc *encryption.EncryptionService) *ProjectMapper {
	return &ProjectMapper{encryption: encryptionSvc}
}

func (m *ProjectMapper) ToDomain(p *db.ProjectModel) *domain.Project {
	status, err := domain.ParseProjectStatus(p.Status)
	if err != nil {
		status = domain.ProjectStatusUnknown
	}

	// Decrypt the client access token if present
	var accessToken string
	if p.ClientAccessToken != nil && m.encryption != nil {
		accessToken, err = m.encryption.Decrypt(*p.ClientAccessToken)
		if err != nil {
			// Log but don't fail - the project stays usable, the share link
			// just has to be re-issued. Happens if the encryption key changed.
			slog.Error("Failed to decrypt client access token",
				"project_id", p.ID,
				"project_title", p.Title,
				"error", err)
			accessToken = ""
		}
	}

	stepMapper := &StepMapper{}
	steps := make([]*domain.Step, len(p.Steps))
	for i, s := range p.Steps {
		steps[i] = stepMapper.ToDomain(&s)
	}

	return &domain.Project{
		ID:                p.ID,
		Title:             p.Title,
		ClientID:          p.ClientID,
		StartDate:         p.StartDate,
		EndDate:           p.EndDate,
		Progress:          p.Progress,
		Status:            status,
		ClientAccessToken: accessToken,
		Steps:             steps,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func (m *ProjectMapper) ToModel(p *domain.Project) *db.ProjectModel {
	modelObj := &db.ProjectModel{
		BaseModel: db.BaseModel{
			ID:        p.ID,
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		},
		Title:     p.Title,
		ClientID:  p.ClientID,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Progress:  p.Progress,
		Status:    p.Status.String(),
	}

	if p.ClientAccessToken != "" && m.encryption != nil {
		encrypted, err := m.encryption.Encrypt(p.ClientAccessToken)
		if err != nil {
			slog.Error("Failed to encrypt client access token",
				"project_id", p.ID,
				"project_title", p.Title,
				"error", err)
			return modelObj
		}
		modelObj.ClientAccessToken = &encrypted
	}

	return modelObj
}

type StepMapper struct{}

func (m *StepMapper) ToDomain(s *db.StepModel) *domain.Step {
	status, err := domain.ParseStepStatus(s.Status)
	if err != nil {
		status = domain.StepStatusUnknown
	}

	return &domain.Step{
		ID:          s.ID,
		ProjectID:   s.ProjectID,
		Title:       s.Title,
		Description: s.Description,
		Status:      status,
		OrderIndex:  s.OrderIndex,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func (m *StepMapper) ToModel(s *domain.Step) *db.StepModel {
	return &db.StepModel{
		BaseModel: db.BaseModel{
			ID:        s.ID,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		},
		ProjectID:   s.ProjectID,
		Title:       s.Title,
		Description: s.Description,
		Status:      s.Status.String(),
		OrderIndex:  s.OrderIndex,
	}
}

type VersionMapper struct{}

func (m *VersionMapper) ToDomain(v *db.DeliverableVersionModel) *domain.DeliverableVersion {
	status, err := domain.ParseVersionStatus(v.Status)
	if err != nil {
		status = domain.VersionStatusUnknown
	}

	return &domain.DeliverableVersion{
		ID:            v.ID,
		ProjectID:     v.ProjectID,
		StepID:        v.StepID,
		Name:          v.Name,
		Description:   v.Description,
		VersionNumber: v.VersionNumber,
		IsLatest:      v.IsLatest,
		FileURL:       v.FileURL,
		FileName:      v.FileName,
		FileType:      v.FileType,
		Status:        status,
		CreatedBy:     v.CreatedBy,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

func (m *VersionMapper) ToModel(v *domain.DeliverableVersion) *db.DeliverableVersionModel {
	return &db.DeliverableVersionModel{
		BaseModel: db.BaseModel{
			ID:        v.ID,
			CreatedAt: v.CreatedAt,
			UpdatedAt: v.UpdatedAt,
		},
		ProjectID:     v.ProjectID,
		StepID:        v.StepID,
		Name:          v.Name,
		Description:   v.Description,
		VersionNumber: v.VersionNumber,
		IsLatest:      v.IsLatest,
		FileURL:       v.FileURL,
		FileName:      v.FileName,
		FileType:      v.FileType,
		Status:        v.Status.String(),
		CreatedBy:     v.CreatedBy,
	}
}

type CommentMapper struct{}

func (m *CommentMapper) ToDomain(c *db.CommentModel) *domain.Comment {
	return &domain.Comment{
		ID:              c.ID,
		DeliverableID:   c.DeliverableID,
		ProjectID:       c.ProjectID,
		UserID:          c.UserID,
		ClientID:        c.ClientID,
		Content:         c.Content,
		IsClient:        c.IsClient,
		IsSystemMessage: c.IsSystemMessage,
		MilestoneName:   c.MilestoneName,
		VersionName:     c.VersionName,
		CreatedAt:       c.CreatedAt,
	}
}

func (m *CommentMapper) ToModel(c *domain.Comment) *db.CommentModel {
	return &db.CommentModel{
		BaseModel: db.BaseModel{
			ID:        c.ID,
			CreatedAt: c.CreatedAt,
		},
		DeliverableID:   c.DeliverableID,
		ProjectID:       c.ProjectID,
		UserID:          c.UserID,
		ClientID:        c.ClientID,
		Content:         c.Content,
		IsClient:        c.IsClient,
		IsSystemMessage: c.IsSystemMessage,
		MilestoneName:   c.MilestoneName,
		VersionName:     c.VersionName,
	}
}

type SharedFileMapper struct{}

func (m *SharedFileMapper) ToDomain(f *db.SharedFileModel) *domain.SharedFile {
	status, err := domain.ParseFileStatus(f.Status)
	if err != nil {
		status = domain.FileStatusUnknown
	}

	return &domain.SharedFile{
		ID:          f.ID,
		ProjectID:   f.ProjectID,
		Title:       f.Title,
		Description: f.Description,
		FileURL:     f.FileURL,
		FileName:    f.FileName,
		FileType:    f.FileType,
		FileSize:    f.FileSize,
		UploadedBy:  f.UploadedBy,
		IsClient:    f.IsClient,
		Status:      status,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

func (m *SharedFileMapper) ToModel(f *domain.SharedFile) *db.SharedFileModel {
	return &db.SharedFileModel{
		BaseModel: db.BaseModel{
			ID:        f.ID,
			CreatedAt: f.CreatedAt,
			UpdatedAt: f.UpdatedAt,
		},
		ProjectID:   f.ProjectID,
		Title:       f.Title,
		Description: f.Description,
		FileURL:     f.FileURL,
		FileName:    f.FileName,
		FileType:    f.FileType,
		FileSize:    f.FileSize,
		UploadedBy:  f.UploadedBy,
		IsClient:    f.IsClient,
		Status:      f.Status.String(),
	}
}
