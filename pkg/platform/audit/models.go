package audit

import (
	"context"
	"time"

	id "clinic/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategoryClinical covers changes to the clinical record (reports, operations).
	CategoryClinical EventCategory = "clinical"

	// CategoryFinancial covers payments and receipts.
	CategoryFinancial EventCategory = "financial"

	// CategoryAccess covers user registration and activation changes.
	CategoryAccess EventCategory = "access"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// UserID is the user the record belongs to (patient for clinical and
	// financial events, the affected user for access events).
	UserID     id.UserID
	Action     string
	EntityKind string
	EntityID   int64
	RequestID  string
	Reason     string
}

type AuditEvent string

const (
	EventUserCreated     AuditEvent = "user_created"
	EventUserActivated   AuditEvent = "user_activated"
	EventUserDeactivated AuditEvent = "user_deactivated"

	EventOperationScheduled     AuditEvent = "operation_scheduled"
	EventOperationStatusChanged AuditEvent = "operation_status_changed"

	EventReportCreated AuditEvent = "report_created"
	EventReportUpdated AuditEvent = "report_updated"

	EventPaymentRegistered AuditEvent = "payment_registered"
	EventReceiptEmitted    AuditEvent = "receipt_emitted"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventUserCreated:     CategoryAccess,
	EventUserActivated:   CategoryAccess,
	EventUserDeactivated: CategoryAccess,

	EventOperationScheduled:     CategoryClinical,
	EventOperationStatusChanged: CategoryClinical,
	EventReportCreated:          CategoryClinical,
	EventReportUpdated:          CategoryClinical,

	EventPaymentRegistered: CategoryFinancial,
	EventReceiptEmitted:    CategoryFinancial,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryAccess.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryAccess
}

// Store persists audit events. The Postgres implementation joins any
// transaction carried in ctx so the event commits with the record change.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID id.UserID) ([]Event, error)
}
