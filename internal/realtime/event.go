package realtime

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	ProjectCreated EventType = "project.created"
	ProjectUpdated EventType = "project.updated"
	ProjectDeleted EventType = "project.deleted"
	TaskCreated    EventType = "task.created"
	TaskUpdated    EventType = "task.updated"
	TaskDeleted    EventType = "task.deleted"
	UserCreated    EventType = "user.created"
	UserUpdated    EventType = "user.updated"
	UserDeleted    EventType = "user.deleted"
)

// Event notifies subscribers of one tenant that an entity changed. It only
// carries ids; clients refetch through the REST API, which applies the
// usual access checks.
type Event struct {
	Type      EventType  `json:"type"`
	TenantID  uuid.UUID  `json:"tenantId"`
	ProjectID *uuid.UUID `json:"projectId,omitempty"`
	EntityID  uuid.UUID  `json:"entityId"`
	At        time.Time  `json:"at"`
}
