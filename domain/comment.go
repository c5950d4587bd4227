package domain

import (
	"time"

	"github.com/google/uuid"
)

// SystemAuthorID is the sentinel author for automated notices. Comments
// written by it carry IsSystemMessage instead of a user or client author.
var SystemAuthorID = uuid.Nil

// Comment is one entry in a deliverable version's feedback thread.
// Comments are append-only: never edited or deleted. MilestoneName and
// VersionName are captured at write time so historic comments keep
// displaying correctly after a step or version is renamed.
type Comment struct {
	ID              uuid.UUID
	DeliverableID   uuid.UUID
	ProjectID       uuid.UUID
	UserID          *uuid.UUID // set for designer-side authors
	ClientID        *uuid.UUID // set for client-side authors
	Content         string
	IsClient        bool
	IsSystemMessage bool
	MilestoneName   string
	VersionName     string
	CreatedAt       time.Time
}

func NewComment(deliverableID, projectID uuid.UUID, authorID uuid.UUID, content string, isClient bool) Comment {
	c := Comment{
		ID:              uuid.New(),
		DeliverableID:   deliverableID,
		ProjectID:       projectID,
		Content:         content,
		IsClient:        isClient,
		IsSystemMessage: authorID == SystemAuthorID,
	}
	if c.IsSystemMessage {
		return c
	}
	if isClient {
		c.ClientID = &authorID
	} else {
		c.UserID = &authorID
	}
	return c
}
