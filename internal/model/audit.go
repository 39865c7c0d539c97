package model

import (
	"time"

	"gorm.io/datatypes"
)

// AuditEvent is a persisted domain event row.
type AuditEvent struct {
	EventID   string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"event_id"`
	EventType string         `gorm:"type:varchar(40);not null"                      json:"event_type"`
	ActorID   *string        `gorm:"type:uuid"                                      json:"actor_id,omitempty"`
	Target    *string        `gorm:"type:varchar(120)"                              json:"target,omitempty"`
	Details   datatypes.JSON `json:"details,omitempty"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

func (AuditEvent) TableName() string { return "audit_events" }
