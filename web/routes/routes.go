// Package routes provides HTTP route registration for the Handoff API.
package routes

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/handoff-dev/handoff/web/handlers"
	"github.com/handoff-dev/handoff/web/ws"
)

// RegisterAPIRoutes mounts the JSON API
func RegisterAPIRoutes(r chi.Router, projectHandlers *handlers.ProjectHandlers, versionHandlers *handlers.VersionHandlers) {
	r.Route("/api", func(r chi.Router) {
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", projectHandlers.List)
			r.Post("/", projectHandlers.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", projectHandlers.Get)
				r.Get("/steps", projectHandlers.ListSteps)
				r.Get("/versions", projectHandlers.ListVersions)
				r.Get("/files", projectHandlers.ListFiles)
			})
		})

		// The multipart and JSON version endpoints share one service code
		// path; only the file transport differs
		r.Post("/versions-upload", versionHandlers.Upload)
		r.Route("/versions", func(r chi.Router) {
			r.Post("/", versionHandlers.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", versionHandlers.Get)
				r.Post("/approve", versionHandlers.Approve)
				r.Post("/reject", versionHandlers.Reject)
				r.Get("/comments", versionHandlers.ListComments)
				r.Post("/comments", versionHandlers.AddComment)
			})
		})

		r.Post("/files-upload", projectHandlers.UploadFile)
		r.Post("/files/{id}/viewed", projectHandlers.MarkFileViewed)
	})
}

// RegisterWSRoutes mounts the notification websocket endpoint
func RegisterWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/ws", hub.ServeWS)
}

// RegisterFileRoutes serves stored uploads from the blob store root
func RegisterFileRoutes(r chi.Router, uploadsRoot string) {
	r.Handle("/files/*", http.StripPrefix("/files/", http.FileServer(http.Dir(uploadsRoot))))
}

// RegisterHealthRoutes mounts the health check endpoint
func RegisterHealthRoutes(r chi.Router) {
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Failed to write health check response",
				"layer", "main",
				"operation", "health_check",
				"error", err)
		}
	})
}
