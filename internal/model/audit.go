package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuditEventType names a session lifecycle event.
type AuditEventType string

const (
	AuditLoginSucceeded AuditEventType = "login.succeeded"
	AuditLoginFailed    AuditEventType = "login.failed"
	AuditLogout         AuditEventType = "logout"
	AuditTokenRenewed   AuditEventType = "token.renewed"
	AuditTokenRotated   AuditEventType = "token.rotated"
)

// AuditEvent describes a session lifecycle event. It never carries token values.
type AuditEvent struct {
	ID         uuid.UUID      `json:"id"`
	Type       AuditEventType `json:"type"`
	SubjectID  string         `json:"subject_id"`
	Reason     string         `json:"reason,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// NewAuditEvent creates an event with a fresh id.
func NewAuditEvent(eventType AuditEventType, subjectID string, occurredAt time.Time) AuditEvent {
	return AuditEvent{
		ID:         uuid.New(),
		Type:       eventType,
		SubjectID:  subjectID,
		OccurredAt: occurredAt,
	}
}

// AuditSink records audit events.
type AuditSink interface {
	Record(ctx context.Context, event AuditEvent) error
}
