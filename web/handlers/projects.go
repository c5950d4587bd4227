package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/handoff-dev/handoff/domain"
	"github.com/handoff-dev/handoff/services"
)

type stepResponse struct {
	ID          uuid.UUID `json:"id"`
	ProjectID   uuid.UUID `json:"project_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	OrderIndex  int       `json:"order_index"`
}

func toStepResponse(s *domain.Step) stepResponse {
	return stepResponse{
		ID:          s.ID,
		ProjectID:   s.ProjectID,
		Title:       s.Title,
		Description: s.Description,
		Status:      s.Status.String(),
		OrderIndex:  s.OrderIndex,
	}
}

type projectResponse struct {
	ID        uuid.UUID      `json:"id"`
	Title     string         `json:"title"`
	ClientID  uuid.UUID      `json:"client_id"`
	StartDate string         `json:"start_date"`
	EndDate   *string        `json:"end_date,omitempty"`
	Progress  int            `json:"progress"`
	Status    string         `json:"status"`
	Steps     []stepResponse `json:"steps,omitempty"`
}

func toProjectResponse(p *domain.Project) projectResponse {
	resp := projectResponse{
		ID:        p.ID,
		Title:     p.Title,
		ClientID:  p.ClientID,
		StartDate: p.StartDate.Format("2006-01-02"),
		Progress:  p.Progress,
		Status:    p.Status.String(),
	}
	if p.EndDate != nil {
		endDate := p.EndDate.Format("2006-01-02")
		resp.EndDate = &endDate
	}
	for _, s := range p.Steps {
		resp.Steps = append(resp.Steps, toStepResponse(s))
	}
	return resp
}

type fileResponse struct {
	ID          uuid.UUID `json:"id"`
	ProjectID   uuid.UUID `json:"project_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	FileURL     string    `json:"file_url"`
	FileName    string    `json:"file_name"`
	FileType    string    `json:"file_type"`
	FileSize    int64     `json:"file_size"`
	UploadedBy  uuid.UUID `json:"uploaded_by"`
	IsClient    bool      `json:"is_client"`
	Status      string    `json:"status"`
}

func toFileResponse(f *domain.SharedFile) fileResponse {
	return fileResponse{
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
		Status:      f.Status.String(),
	}
}

// ProjectHandlers serves project, step and shared file endpoints
type ProjectHandlers struct {
	projects *services.ProjectService
	versions *services.VersionService
	files    *services.SharedFileService
}

func NewProjectHandlers(
	projects *services.ProjectService,
	versions *services.VersionService,
	files *services.SharedFileService,
) *ProjectHandlers {
	return &ProjectHandlers{
		projects: projects,
		versions: versions,
		files:    files,
	}
}

// List handles GET /api/projects
func (h *ProjectHandlers) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.List()
	if err != nil {
		writeError(w, "list_projects", err)
		return
	}

	resp := make([]projectResponse, len(projects))
	for i, p := range projects {
		resp[i] = toProjectResponse(p)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    resp,
	})
}

type createProjectRequest struct {
	Title     string `json:"title"`
	ClientID  string `json:"client_id"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Steps     []struct {
		Title       string `json:"title"`
		Description string `json:"description,omitempty"`
	} `json:"steps,omitempty"`
}

// Create handles POST /api/projects
func (h *ProjectHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.ClientID == "" {
		writeBadRequest(w, "client_id is required")
		return
	}
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		writeBadRequest(w, "invalid client_id")
		return
	}

	input := services.CreateProjectInput{
		Title:    req.Title,
		ClientID: clientID,
	}
	if req.StartDate != "" {
		startDate, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			writeBadRequest(w, "invalid start_date, expected YYYY-MM-DD")
			return
		}
		input.StartDate = startDate
	}
	if req.EndDate != "" {
		endDate, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			writeBadRequest(w, "invalid end_date, expected YYYY-MM-DD")
			return
		}
		input.EndDate = &endDate
	}
	for _, s := range req.Steps {
		input.Steps = append(input.Steps, services.StepSeed{
			Title:       s.Title,
			Description: s.Description,
		})
	}

	project, err := h.projects.Create(input)
	if err != nil {
		writeError(w, "create_project", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    toProjectResponse(project),
	})
}

// Get handles GET /api/projects/{id}
func (h *ProjectHandlers) Get(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseIDParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid project id")
		return
	}

	project, err := h.projects.Get(projectID)
	if err != nil {
		writeError(w, "get_project", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    toProjectResponse(project),
	})
}

// ListSteps handles GET /api/projects/{id}/steps
func (h *ProjectHandlers) ListSteps(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseIDParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid project id")
		return
	}

	steps, err := h.projects.ListSteps(projectID)
	if err != nil {
		writeError(w, "list_steps", err)
		return
	}

	resp := make([]stepResponse, len(steps))
	for i, s := range steps {
		resp[i] = toStepResponse(s)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    resp,
	})
}

// ListVersions handles GET /api/projects/{id}/versions
func (h *ProjectHandlers) ListVersions(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseIDParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid project id")
		return
	}

	versions, err := h.versions.ListByProject(projectID)
	if err != nil {
		writeError(w, "list_versions", err)
		return
	}

	resp := make([]versionResponse, len(versions))
	for i, v := range versions {
		resp[i] = toVersionResponse(v)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    resp,
	})
}

// ListFiles handles GET /api/projects/{id}/files
func (h *ProjectHandlers) ListFiles(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseIDParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid project id")
		return
	}

	files, err := h.files.ListByProject(projectID)
	if err != nil {
		writeError(w, "list_files", err)
		return
	}

	resp := make([]fileResponse, len(files))
	for i, f := range files {
		resp[i] = toFileResponse(f)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    resp,
	})
}

// UploadFile handles POST /api/files-upload (multipart/form-data)
func (h *ProjectHandlers) UploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeBadRequest(w, "invalid multipart form data")
		return
	}

	projectID, err := uuid.Parse(r.FormValue("project_id"))
	if err != nil {
		writeBadRequest(w, "invalid or missing project_id")
		return
	}
	uploadedBy, err := uuid.Parse(r.FormValue("user_id"))
	if err != nil {
		writeBadRequest(w, "invalid or missing user_id")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "file is required")
		return
	}
	defer file.Close()

	created, err := h.files.Upload(services.UploadSharedFileInput{
		ProjectID:   projectID,
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		UploadedBy:  uploadedBy,
		IsClient:    r.FormValue("is_client") == "true",
		File: &services.FileUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Reader:      file,
		},
	})
	if err != nil {
		writeError(w, "upload_file", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":       created.ID,
		"message":  "file shared",
		"file_url": created.FileURL,
	})
}

// MarkFileViewed handles POST /api/files/{id}/viewed
func (h *ProjectHandlers) MarkFileViewed(w http.ResponseWriter, r *http.Request) {
	fileID, err := parseIDParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid file id")
		return
	}

	file, err := h.files.MarkViewed(fileID)
	if err != nil {
		writeError(w, "mark_file_viewed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    toFileResponse(file),
	})
}
