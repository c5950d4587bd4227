package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/handoff-dev/handoff/domain"
	"github.com/handoff-dev/handoff/services"
)

// versionMetadata is the metadata document accepted by both version
// endpoints: as a JSON form field on the multipart route, as the request
// body on the JSON route.
type versionMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ProjectID   string `json:"project_id"`
	StepID      string `json:"step_id,omitempty"`
	UserID      string `json:"user_id"`
	FileURL     string `json:"file_url,omitempty"`
	FileName    string `json:"file_name,omitempty"`
	FileType    string `json:"file_type,omitempty"`
}

type versionResponse struct {
	ID            uuid.UUID  `json:"id"`
	ProjectID     uuid.UUID  `json:"project_id"`
	StepID        *uuid.UUID `json:"step_id,omitempty"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	VersionNumber int        `json:"version_number"`
	IsLatest      bool       `json:"is_latest"`
	FileURL       string     `json:"file_url"`
	FileName      string     `json:"file_name"`
	FileType      string     `json:"file_type"`
	Status        string     `json:"status"`
	CreatedBy     uuid.UUID  `json:"created_by"`
	CreatedAt     string     `json:"created_at"`
}

func toVersionResponse(v *domain.DeliverableVersion) versionResponse {
	return versionResponse{
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
		Status:        v.Status.String(),
		CreatedBy:     v.CreatedBy,
		CreatedAt:     v.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// VersionHandlers serves the deliverable version endpoints
type VersionHandlers struct {
	versions  *services.VersionService
	approvals *services.ApprovalService
	comments  *services.CommentService
}

func NewVersionHandlers(
	versions *services.VersionService,
	approvals *services.ApprovalService,
	comments *services.CommentService,
) *VersionHandlers {
	return &VersionHandlers{
		versions:  versions,
		approvals: approvals,
		comments:  comments,
	}
}

// buildCreateInput turns parsed metadata into a service input, validating
// the UUID fields at the boundary
func buildCreateInput(meta *versionMetadata) (services.CreateVersionInput, bool, string) {
	var input services.CreateVersionInput

	if meta.ProjectID == "" || meta.Name == "" {
		return input, false, "incomplete data: name and project_id are required"
	}
	projectID, err := uuid.Parse(meta.ProjectID)
	if err != nil {
		return input, false, "invalid project_id"
	}
	stepID, err := parseOptionalUUID(meta.StepID)
	if err != nil {
		return input, false, "invalid step_id"
	}
	if meta.UserID == "" {
		return input, false, "user_id is required"
	}
	userID, err := uuid.Parse(meta.UserID)
	if err != nil {
		return input, false, "invalid user_id"
	}

	input = services.CreateVersionInput{
		ProjectID:   projectID,
		StepID:      stepID,
		Name:        meta.Name,
		Description: meta.Description,
		CreatedBy:   userID,
		FileURL:     meta.FileURL,
		FileName:    meta.FileName,
		FileType:    meta.FileType,
	}
	return input, true, ""
}

// Upload handles POST /api/versions-upload (multipart/form-data with a
// binary "file" field and a "metadata" JSON string field).
func (h *VersionHandlers) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeBadRequest(w, "invalid multipart form data")
		return
	}

	metadataRaw := r.FormValue("metadata")
	if metadataRaw == "" {
		writeBadRequest(w, "metadata is required")
		return
	}
	var meta versionMetadata
	if err := json.Unmarshal([]byte(metadataRaw), &meta); err != nil {
		writeBadRequest(w, "invalid metadata JSON")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "file is required")
		return
	}
	defer file.Close()

	input, ok, msg := buildCreateInput(&meta)
	if !ok {
		writeBadRequest(w, msg)
		return
	}

	filename := header.Filename
	if meta.FileName != "" {
		filename = meta.FileName
	}
	input.FileURL = "" // the upload resolves the URL
	input.File = &services.FileUpload{
		Filename:    filename,
		ContentType: header.Header.Get("Content-Type"),
		Reader:      file,
	}

	version, err := h.versions.Create(input)
	if err != nil {
		writeError(w, "upload_version", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":       version.ID,
		"message":  "version uploaded",
		"file_url": version.FileURL,
	})
}

// Create handles POST /api/versions (application/json with a pre-resolved
// file_url). Shares the sequencing code path with Upload.
func (h *VersionHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var meta versionMetadata
	if err := json.NewDecoder(r.Body).Decode(&meta); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	input, ok, msg := buildCreateInput(&meta)
	if !ok {
		writeBadRequest(w, msg)
		return
	}
	if input.FileURL == "" {
		writeBadRequest(w, "file_url is required")
		return
	}

	version, err := h.versions.Create(input)
	if err != nil {
		writeError(w, "create_version", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    toVersionResponse(version),
	})
}

type reviewRequest struct {
	ClientID string `json:"client_id"`
	Feedback string `json:"feedback,omitempty"`
}

// Approve handles POST /api/versions/{id}/approve
func (h *VersionHandlers) Approve(w http.ResponseWriter, r *http.Request) {
	versionID, err := parseIDParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid version id")
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		writeBadRequest(w, "invalid client_id")
		return
	}

	version, err := h.approvals.Approve(versionID, clientID)
	if err != nil {
		writeError(w, "approve_version", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    toVersionResponse(version),
	})
}

// Reject handles POST /api/versions/{id}/reject
func (h *VersionHandlers) Reject(w http.ResponseWriter, r *http.Request) {
	versionID, err := parseIDParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid version id")
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		writeBadRequest(w, "invalid client_id")
		return
	}

	version, err := h.approvals.Reject(versionID, clientID, req.Feedback)
	if err != nil {
		writeError(w, "reject_version", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    toVersionResponse(version),
	})
}

type commentRequest struct {
	AuthorID string `json:"author_id"`
	Content  string `json:"content"`
	IsClient bool   `json:"is_client"`
}

type commentResponse struct {
	ID            uuid.UUID  `json:"id"`
	DeliverableID uuid.UUID  `json:"deliverable_id"`
	ProjectID     uuid.UUID  `json:"project_id"`
	UserID        *uuid.UUID `json:"user_id,omitempty"`
	ClientID      *uuid.UUID `json:"client_id,omitempty"`
	Content       string     `json:"content"`
	IsClient      bool       `json:"is_client"`
	IsSystem      bool       `json:"is_system_message"`
	MilestoneName string     `json:"milestone_name"`
	VersionName   string     `json:"version_name"`
	CreatedAt     string     `json:"created_at"`
}

func toCommentResponse(c *domain.Comment) commentResponse {
	return commentResponse{
		ID:            c.ID,
		DeliverableID: c.DeliverableID,
		ProjectID:     c.ProjectID,
		UserID:        c.UserID,
		ClientID:      c.ClientID,
		Content:       c.Content,
		IsClient:      c.IsClient,
		IsSystem:      c.IsSystemMessage,
		MilestoneName: c.MilestoneName,
		VersionName:   c.VersionName,
		CreatedAt:     c.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// AddComment handles POST /api/versions/{id}/comments
func (h *VersionHandlers) AddComment(w http.ResponseWriter, r *http.Request) {
	versionID, err := parseIDParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid version id")
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.AuthorID == "" {
		writeBadRequest(w, "author_id is required")
		return
	}
	authorID, err := uuid.Parse(req.AuthorID)
	if err != nil {
		writeBadRequest(w, "invalid author_id")
		return
	}

	comment, err := h.comments.Add(services.AddCommentInput{
		DeliverableID: versionID,
		AuthorID:      authorID,
		Content:       req.Content,
		IsClient:      req.IsClient,
	})
	if err != nil {
		writeError(w, "add_comment", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    toCommentResponse(comment),
	})
}

// ListComments handles GET /api/versions/{id}/comments
func (h *VersionHandlers) ListComments(w http.ResponseWriter, r *http.Request) {
	versionID, err := parseIDParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid version id")
		return
	}

	comments, err := h.comments.ListByDeliverable(versionID)
	if err != nil {
		writeError(w, "list_comments", err)
		return
	}

	resp := make([]commentResponse, len(comments))
	for i, c := range comments {
		resp[i] = toCommentResponse(c)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    resp,
	})
}

// Get handles GET /api/versions/{id}
func (h *VersionHandlers) Get(w http.ResponseWriter, r *http.Request) {
	versionID, err := parseIDParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid version id")
		return
	}

	version, err := h.versions.Get(versionID)
	if err != nil {
		writeError(w, "get_version", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    toVersionResponse(version),
	})
}
