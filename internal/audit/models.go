package audit

import (
	"time"

	id "github.com/geekskaran/cattel/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing downstream.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance:
	// every lifecycle transition of a registration. These require
	// durable storage and long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring:
	// failed logins, revoked sessions, denied actions.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity useful for debugging.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	Actor     id.UserID     `json:"actor"`
	ActorRole id.Role       `json:"actor_role,omitempty"`
	RecordID  id.RecordID   `json:"record_id,omitempty"`
	Region    id.Region     `json:"region,omitempty"`
	Action    string        `json:"action"`
	Decision  string        `json:"decision,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
}

// AuditEvent names the actions this service emits.
type AuditEvent string

const (
	// Registration lifecycle events
	EventRegistrationSubmitted AuditEvent = "registration_submitted"
	EventRegistrationApproved  AuditEvent = "registration_approved"
	EventRegistrationDeclined  AuditEvent = "registration_declined"
	EventRegistrationArchived  AuditEvent = "registration_archived"
	EventTransferInitiated     AuditEvent = "transfer_initiated"
	EventTransferCompleted     AuditEvent = "transfer_completed"
	EventTransferCancelled     AuditEvent = "transfer_cancelled"

	// Region directory events
	EventRegionAdminAssigned   AuditEvent = "region_admin_assigned"
	EventRegionAdminUnassigned AuditEvent = "region_admin_unassigned"

	// Account events
	EventUserCreated    AuditEvent = "user_created"
	EventSessionCreated AuditEvent = "session_created"
	EventSessionRevoked AuditEvent = "session_revoked"
	EventAuthFailed     AuditEvent = "auth_failed"
	EventActionDenied   AuditEvent = "action_denied"
)

// eventCategories maps each audit event to its category. Lifecycle
// transitions are compliance: they are the authoritative evidence that
// every approval was a manual administrator action.
var eventCategories = map[AuditEvent]EventCategory{
	EventRegistrationSubmitted: CategoryCompliance,
	EventRegistrationApproved:  CategoryCompliance,
	EventRegistrationDeclined:  CategoryCompliance,
	EventRegistrationArchived:  CategoryCompliance,
	EventTransferInitiated:     CategoryCompliance,
	EventTransferCompleted:     CategoryCompliance,
	EventTransferCancelled:     CategoryCompliance,
	EventRegionAdminAssigned:   CategoryCompliance,
	EventRegionAdminUnassigned: CategoryCompliance,

	EventSessionRevoked: CategorySecurity,
	EventAuthFailed:     CategorySecurity,
	EventActionDenied:   CategorySecurity,

	EventUserCreated:    CategoryOperations,
	EventSessionCreated: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
