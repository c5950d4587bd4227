// Package notify defines the portal's realtime event model. Delivery is
// best-effort and at-most-once: a disconnected client misses events with no
// replay or backfill.
package notify

import (
	"time"

	"github.com/google/uuid"
)

// Event types pushed to connected portal sessions
const (
	EventVersionUploaded = "version.uploaded"
	EventVersionApproved = "version.approved"
	EventVersionRejected = "version.rejected"
	EventCommentCreated  = "comment.created"
	EventFileShared      = "file.shared"
)

// Event is one notification scoped to a project. Payload must be
// JSON-serializable.
type Event struct {
	Type      string    `json:"type"`
	ProjectID uuid.UUID `json:"project_id"`
	Payload   any       `json:"payload,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewEvent(eventType string, projectID uuid.UUID, payload any) Event {
	return Event{
		Type:      eventType,
		ProjectID: projectID,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
}

// Notifier publishes events to whoever is listening. Implementations must
// never block the caller; a failed or dropped delivery is not an error the
// domain services care about.
type Notifier interface {
	Publish(event Event)
}

// NopNotifier discards all events. Used by the CLI and in tests.
type NopNotifier struct{}

func (NopNotifier) Publish(Event) {}
