package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/handoff-dev/handoff/db"
	"github.com/handoff-dev/handoff/encryption"
	"github.com/handoff-dev/handoff/notify"
	"github.com/handoff-dev/handoff/repository"
	"github.com/handoff-dev/handoff/services"
	"github.com/handoff-dev/handoff/web/handlers"
	"github.com/handoff-dev/handoff/web/routes"
)

// setupTestServer wires the full API against an in-memory database and a
// temp-dir blob store
func setupTestServer(t *testing.T) *httptest.Server {
	database, err := db.InitDatabase(db.DBConfig{Path: ":memory:", LogLevel: logger.Silent})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrateAll(database))

	key, err := encryption.GenerateKey()
	require.NoError(t, err)
	encryptionSvc, err := encryption.NewEncryptionService(key)
	require.NoError(t, err)

	blobs, err := services.NewLocalBlobStore(t.TempDir(), "http://localhost:8080", 1<<20)
	require.NoError(t, err)

	notifier := notify.NopNotifier{}

	projects := repository.NewProjectRepository(database, encryptionSvc)
	steps := repository.NewStepRepository(database)
	versions := repository.NewVersionRepository(database)
	comments := repository.NewCommentRepository(database)
	files := repository.NewSharedFileRepository(database)

	projectService := services.NewProjectService(database, projects, steps)
	versionService := services.NewVersionService(database, projects, steps, versions, blobs, notifier)
	approvalService := services.NewApprovalService(database, projects, steps, versions, comments, notifier)
	commentService := services.NewCommentService(steps, versions, comments, notifier)
	fileService := services.NewSharedFileService(projects, files, blobs, notifier)

	r := chi.NewRouter()
	routes.RegisterAPIRoutes(r,
		handlers.NewProjectHandlers(projectService, versionService, fileService),
		handlers.NewVersionHandlers(versionService, approvalService, commentService),
	)
	routes.RegisterHealthRoutes(r)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, server *httptest.Server, path string, body any) (*http.Response, map[string]any) {
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(server.URL+path, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp, decodeBody(t, resp)
}

func getJSON(t *testing.T, server *httptest.Server, path string) (*http.Response, map[string]any) {
	resp, err := http.Get(server.URL + path)
	require.NoError(t, err)
	return resp, decodeBody(t, resp)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body), "response body: %s", raw)
	return body
}

// createProjectViaAPI creates a project with two steps and returns its
// response document
func createProjectViaAPI(t *testing.T, server *httptest.Server) map[string]any {
	resp, body := postJSON(t, server, "/api/projects", map[string]any{
		"title":      "Brand Refresh",
		"client_id":  uuid.NewString(),
		"start_date": "2026-01-15",
		"steps": []map[string]string{
			{"title": "Discovery"},
			{"title": "Design"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return body["data"].(map[string]any)
}

func projectSteps(t *testing.T, project map[string]any) []map[string]any {
	rawSteps, ok := project["steps"].([]any)
	require.True(t, ok)

	steps := make([]map[string]any, len(rawSteps))
	for i, s := range rawSteps {
		steps[i] = s.(map[string]any)
	}
	return steps
}

func uploadVersionMultipart(t *testing.T, server *httptest.Server, metadata map[string]any, filename, contents string) (*http.Response, map[string]any) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	metaJSON, err := json.Marshal(metadata)
	require.NoError(t, err)
	require.NoError(t, writer.WriteField("metadata", string(metaJSON)))

	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(contents))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	resp, err := http.Post(server.URL+"/api/versions-upload", writer.FormDataContentType(), &buf)
	require.NoError(t, err)
	return resp, decodeBody(t, resp)
}

func TestHealthEndpoint(t *testing.T) {
	server := setupTestServer(t)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateAndGetProject(t *testing.T) {
	server := setupTestServer(t)
	project := createProjectViaAPI(t, server)

	assert.Equal(t, "Brand Refresh", project["title"])
	assert.Equal(t, float64(0), project["progress"])
	assert.Equal(t, "active", project["status"])

	steps := projectSteps(t, project)
	require.Len(t, steps, 2)
	assert.Equal(t, "current", steps[0]["status"])
	assert.Equal(t, "upcoming", steps[1]["status"])

	resp, body := getJSON(t, server, "/api/projects/"+project["id"].(string))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	fetched := body["data"].(map[string]any)
	assert.Equal(t, project["id"], fetched["id"])
	assert.Equal(t, "2026-01-15", fetched["start_date"])
}

func TestCreateProjectValidation(t *testing.T) {
	server := setupTestServer(t)

	resp, body := postJSON(t, server, "/api/projects", map[string]any{
		"client_id": uuid.NewString(),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "title is required")

	resp, body = postJSON(t, server, "/api/projects", map[string]any{
		"title": "No Client",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "client_id is required")
}

func TestGetProjectNotFound(t *testing.T) {
	server := setupTestServer(t)

	resp, _ := getJSON(t, server, "/api/projects/"+uuid.NewString())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestVersionUploadMultipart(t *testing.T) {
	server := setupTestServer(t)
	project := createProjectViaAPI(t, server)
	stepID := projectSteps(t, project)[0]["id"].(string)

	resp, body := uploadVersionMultipart(t, server, map[string]any{
		"name":       "Logo Concepts",
		"project_id": project["id"],
		"step_id":    stepID,
		"user_id":    uuid.NewString(),
	}, "logo.pdf", "pdf bytes")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["id"])
	assert.Contains(t, body["file_url"], "/files/projects/")
}

func TestVersionUploadRequiresMetadata(t *testing.T) {
	server := setupTestServer(t)
	project := createProjectViaAPI(t, server)

	// Missing user_id is rejected at the boundary
	resp, body := uploadVersionMultipart(t, server, map[string]any{
		"name":       "Logo Concepts",
		"project_id": project["id"],
	}, "logo.pdf", "pdf bytes")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "user_id is required")

	// Missing name and project_id
	resp, body = uploadVersionMultipart(t, server, map[string]any{
		"user_id": uuid.NewString(),
	}, "logo.pdf", "pdf bytes")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "incomplete data")
}

func TestVersionCreateJSON(t *testing.T) {
	server := setupTestServer(t)
	project := createProjectViaAPI(t, server)
	stepID := projectSteps(t, project)[0]["id"].(string)

	resp, body := postJSON(t, server, "/api/versions", map[string]any{
		"name":       "External Deck",
		"project_id": project["id"],
		"step_id":    stepID,
		"user_id":    uuid.NewString(),
		"file_url":   "https://cdn.example.com/deck.pdf",
		"file_name":  "deck.pdf",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]any)
	assert.Equal(t, float64(1), data["version_number"])
	assert.Equal(t, true, data["is_latest"])
	assert.Equal(t, "pending", data["status"])
}

func TestVersionCreateJSONRequiresFileURL(t *testing.T) {
	server := setupTestServer(t)
	project := createProjectViaAPI(t, server)

	resp, body := postJSON(t, server, "/api/versions", map[string]any{
		"name":       "No File",
		"project_id": project["id"],
		"user_id":    uuid.NewString(),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "file_url is required")
}

func TestVersionSequencingAcrossEndpoints(t *testing.T) {
	server := setupTestServer(t)
	project := createProjectViaAPI(t, server)
	stepID := projectSteps(t, project)[0]["id"].(string)

	// First version through the multipart endpoint
	resp, _ := uploadVersionMultipart(t, server, map[string]any{
		"name":       "Draft",
		"project_id": project["id"],
		"step_id":    stepID,
		"user_id":    uuid.NewString(),
	}, "draft.pdf", "v1")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Second through the JSON endpoint continues the same sequence
	resp, body := postJSON(t, server, "/api/versions", map[string]any{
		"name":       "Draft",
		"project_id": project["id"],
		"step_id":    stepID,
		"user_id":    uuid.NewString(),
		"file_url":   "https://cdn.example.com/draft-v2.pdf",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]any)
	assert.Equal(t, float64(2), data["version_number"])
	assert.Equal(t, true, data["is_latest"])
}

func TestApproveVersionFlow(t *testing.T) {
	server := setupTestServer(t)
	project := createProjectViaAPI(t, server)
	stepID := projectSteps(t, project)[0]["id"].(string)

	_, uploaded := uploadVersionMultipart(t, server, map[string]any{
		"name":       "Concepts",
		"project_id": project["id"],
		"step_id":    stepID,
		"user_id":    uuid.NewString(),
	}, "concepts.pdf", "pdf bytes")
	versionID := uploaded["id"].(string)

	resp, body := postJSON(t, server, fmt.Sprintf("/api/versions/%s/approve", versionID), map[string]any{
		"client_id": project["client_id"],
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "approved", body["data"].(map[string]any)["status"])

	// The cascade completed the first step and promoted the second
	_, projectBody := getJSON(t, server, "/api/projects/"+project["id"].(string))
	reloaded := projectBody["data"].(map[string]any)
	assert.Equal(t, float64(50), reloaded["progress"])

	steps := projectSteps(t, reloaded)
	assert.Equal(t, "completed", steps[0]["status"])
	assert.Equal(t, "current", steps[1]["status"])

	// Double review is a client error
	resp, _ = postJSON(t, server, fmt.Sprintf("/api/versions/%s/approve", versionID), map[string]any{
		"client_id": project["client_id"],
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRejectVersionFlow(t *testing.T) {
	server := setupTestServer(t)
	project := createProjectViaAPI(t, server)
	stepID := projectSteps(t, project)[0]["id"].(string)

	_, uploaded := uploadVersionMultipart(t, server, map[string]any{
		"name":       "Concepts",
		"project_id": project["id"],
		"step_id":    stepID,
		"user_id":    uuid.NewString(),
	}, "concepts.pdf", "pdf bytes")
	versionID := uploaded["id"].(string)

	// Rejection without feedback is refused
	resp, body := postJSON(t, server, fmt.Sprintf("/api/versions/%s/reject", versionID), map[string]any{
		"client_id": project["client_id"],
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "feedback is required")

	resp, body = postJSON(t, server, fmt.Sprintf("/api/versions/%s/reject", versionID), map[string]any{
		"client_id": project["client_id"],
		"feedback":  "The palette feels off",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "rejected", body["data"].(map[string]any)["status"])

	// The feedback landed in the comment thread
	resp, body = getJSON(t, server, fmt.Sprintf("/api/versions/%s/comments", versionID))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	comments := body["data"].([]any)
	require.Len(t, comments, 1)
	comment := comments[0].(map[string]any)
	assert.Equal(t, "The palette feels off", comment["content"])
	assert.Equal(t, true, comment["is_client"])
	assert.Equal(t, "Discovery", comment["milestone_name"])
}

func TestCommentEndpoints(t *testing.T) {
	server := setupTestServer(t)
	project := createProjectViaAPI(t, server)

	resp, body := postJSON(t, server, "/api/versions", map[string]any{
		"name":       "Moodboard",
		"project_id": project["id"],
		"user_id":    uuid.NewString(),
		"file_url":   "https://cdn.example.com/moodboard.pdf",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	versionID := body["data"].(map[string]any)["id"].(string)

	resp, body = postJSON(t, server, fmt.Sprintf("/api/versions/%s/comments", versionID), map[string]any{
		"author_id": uuid.NewString(),
		"content":   "Uploaded a first pass",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Uploaded a first pass", body["data"].(map[string]any)["content"])

	// Empty content is refused by the service
	resp, _ = postJSON(t, server, fmt.Sprintf("/api/versions/%s/comments", versionID), map[string]any{
		"author_id": uuid.NewString(),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown version is a 404
	resp, _ = getJSON(t, server, fmt.Sprintf("/api/versions/%s/comments", uuid.NewString()))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSharedFileEndpoints(t *testing.T) {
	server := setupTestServer(t)
	project := createProjectViaAPI(t, server)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("project_id", project["id"].(string)))
	require.NoError(t, writer.WriteField("user_id", uuid.NewString()))
	require.NoError(t, writer.WriteField("title", "Project Brief"))
	require.NoError(t, writer.WriteField("is_client", "true"))
	part, err := writer.CreateFormFile("file", "brief.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("brief contents"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	resp, err := http.Post(server.URL+"/api/files-upload", writer.FormDataContentType(), &buf)
	require.NoError(t, err)
	body := decodeBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fileID := body["id"].(string)

	resp, body = getJSON(t, server, "/api/projects/"+project["id"].(string)+"/files")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	files := body["data"].([]any)
	require.Len(t, files, 1)
	assert.Equal(t, "new", files[0].(map[string]any)["status"])

	resp, body = postJSON(t, server, fmt.Sprintf("/api/files/%s/viewed", fileID), map[string]any{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "viewed", body["data"].(map[string]any)["status"])
}

func TestListProjectVersions(t *testing.T) {
	server := setupTestServer(t)
	project := createProjectViaAPI(t, server)

	for i := 0; i < 2; i++ {
		resp, _ := postJSON(t, server, "/api/versions", map[string]any{
			"name":       "Draft",
			"project_id": project["id"],
			"user_id":    uuid.NewString(),
			"file_url":   fmt.Sprintf("https://cdn.example.com/draft-%d.pdf", i),
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, body := getJSON(t, server, "/api/projects/"+project["id"].(string)+"/versions")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"].([]any), 2)
}
