// Package submission implements the claim submission aggregate and its
// domain events.
package submission

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of domain event
type EventType string

const (
	EventSubmissionCreated      EventType = "SubmissionCreated"
	EventSubmissionTransmitted  EventType = "SubmissionTransmitted"
	EventSubmissionAcknowledged EventType = "SubmissionAcknowledged"
	EventSubmissionAdjudicated  EventType = "SubmissionAdjudicated"
	EventSubmissionErrored      EventType = "SubmissionErrored"
	EventSubmissionCancelled    EventType = "SubmissionCancelled"
)

// Event represents a domain event
type Event struct {
	ID              string          `json:"id"`
	AggregateID     string          `json:"aggregate_id"`
	AggregateType   string          `json:"aggregate_type"`
	EventType       EventType       `json:"event_type"`
	EventData       json.RawMessage `json:"event_data"`
	Version         int             `json:"version"`
	Timestamp       time.Time       `json:"timestamp"`
	ProviderLicense string          `json:"provider_license,omitempty"`
	InsurerLicense  string          `json:"insurer_license,omitempty"`
	MemberID        string          `json:"member_id,omitempty"`
	CorrelationID   string          `json:"correlation_id,omitempty"`
}

// NewEvent creates a new event
func NewEvent(aggregateID string, eventType EventType, data interface{}) (*Event, error) {
	eventData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:            uuid.New().String(),
		AggregateID:   aggregateID,
		AggregateType: "Submission",
		EventType:     eventType,
		EventData:     eventData,
		Timestamp:     time.Now().UTC(),
	}, nil
}

// WithAuditInfo sets audit fields
func (e *Event) WithAuditInfo(providerLicense, insurerLicense, memberID string) *Event {
	e.ProviderLicense = providerLicense
	e.InsurerLicense = insurerLicense
	e.MemberID = memberID
	return e
}

// SubmissionCreatedData contains the encoded request details
type SubmissionCreatedData struct {
	SubmissionID    string          `json:"submission_id"`
	RequestNumber   string          `json:"request_number"`
	Use             string          `json:"use"` // preauthorization | claim
	Category        string          `json:"category"`
	ProviderLicense string          `json:"provider_license"`
	InsurerLicense  string          `json:"insurer_license"`
	MemberID        string          `json:"member_id,omitempty"`
	BundleID        string          `json:"bundle_id"`
	Total           float64         `json:"total"`
	Bundle          json.RawMessage `json:"bundle,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// SubmissionTransmittedData contains transmission details
type SubmissionTransmittedData struct {
	SubmissionID  string    `json:"submission_id"`
	BundleID      string    `json:"bundle_id"`
	TransmittedAt time.Time `json:"transmitted_at"`
}

// SubmissionAcknowledgedData records the exchange queue acknowledgment
type SubmissionAcknowledgedData struct {
	SubmissionID   string    `json:"submission_id"`
	QueueReference string    `json:"queue_reference,omitempty"`
	AcknowledgedAt time.Time `json:"acknowledged_at"`
}

// SubmissionAdjudicatedData contains the decoded adjudication outcome
type SubmissionAdjudicatedData struct {
	SubmissionID        string    `json:"submission_id"`
	ResponseID          string    `json:"response_id,omitempty"`
	Outcome             string    `json:"outcome"`
	AdjudicationOutcome string    `json:"adjudication_outcome,omitempty"`
	Success             bool      `json:"success"`
	PreAuthRef          string    `json:"pre_auth_ref,omitempty"`
	AdjudicatedAt       time.Time `json:"adjudicated_at"`
}

// SubmissionErroredData contains the failure details
type SubmissionErroredData struct {
	SubmissionID string    `json:"submission_id"`
	Code         string    `json:"code,omitempty"`
	Message      string    `json:"message"`
	ErroredAt    time.Time `json:"errored_at"`
}

// SubmissionCancelledData contains cancellation details
type SubmissionCancelledData struct {
	SubmissionID string    `json:"submission_id"`
	ReasonCode   string    `json:"reason_code"`
	Reason       string    `json:"reason,omitempty"`
	CancelledAt  time.Time `json:"cancelled_at"`
}
