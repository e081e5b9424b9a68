// Package submission implements the claim submission aggregate.
package submission

import (
	"encoding/json"
	"errors"
	"time"
)

// Status represents submission status
type Status string

const (
	StatusDraft        Status = "draft"
	StatusEncoded      Status = "encoded"
	StatusTransmitted  Status = "transmitted"
	StatusAcknowledged Status = "acknowledged"
	StatusAdjudicated  Status = "adjudicated"
	StatusErrored      Status = "errored"
	StatusCancelled    Status = "cancelled"
)

// Aggregate represents the submission aggregate root
type Aggregate struct {
	id              string
	version         int
	status          Status
	requestNumber   string
	use             string
	category        string
	providerLicense string
	insurerLicense  string
	memberID        string
	bundleID        string
	responseID      string
	outcome         string
	preAuthRef      string
	total           float64
	createdAt       time.Time
	updatedAt       time.Time
	changes         []*Event
}

// NewAggregate creates a new submission aggregate
func NewAggregate(id string) *Aggregate {
	return &Aggregate{
		id:        id,
		status:    StatusDraft,
		createdAt: time.Now().UTC(),
		updatedAt: time.Now().UTC(),
		changes:   make([]*Event, 0),
	}
}

// ID returns the aggregate ID
func (a *Aggregate) ID() string { return a.id }

// Version returns the current version
func (a *Aggregate) Version() int { return a.version }

// Status returns the current status
func (a *Aggregate) Status() Status { return a.status }

// RequestNumber returns the provider's request number
func (a *Aggregate) RequestNumber() string { return a.requestNumber }

// PreAuthRef returns the payer's prior authorization reference, if any
func (a *Aggregate) PreAuthRef() string { return a.preAuthRef }

// Outcome returns the decoded adjudication outcome, if any
func (a *Aggregate) Outcome() string { return a.outcome }

// Changes returns uncommitted events
func (a *Aggregate) Changes() []*Event { return a.changes }

// ClearChanges clears uncommitted events
func (a *Aggregate) ClearChanges() { a.changes = make([]*Event, 0) }

// Create records the encoded request. The encode step is the only
// draft transition; everything after is driven by the exchange.
func (a *Aggregate) Create(data *SubmissionCreatedData) error {
	if a.status != StatusDraft {
		return errors.New("submission already created")
	}

	event, err := NewEvent(a.id, EventSubmissionCreated, data)
	if err != nil {
		return err
	}
	event.WithAuditInfo(data.ProviderLicense, data.InsurerLicense, data.MemberID)

	a.apply(event)
	a.changes = append(a.changes, event)
	return nil
}

// MarkTransmitted records successful handoff to the exchange
func (a *Aggregate) MarkTransmitted(bundleID string) error {
	if a.status != StatusEncoded {
		return errors.New("submission not encoded")
	}

	data := &SubmissionTransmittedData{
		SubmissionID:  a.id,
		BundleID:      bundleID,
		TransmittedAt: time.Now().UTC(),
	}

	event, err := NewEvent(a.id, EventSubmissionTransmitted, data)
	if err != nil {
		return err
	}

	a.apply(event)
	a.changes = append(a.changes, event)
	return nil
}

// MarkAcknowledged records the exchange's queue acknowledgment
func (a *Aggregate) MarkAcknowledged(queueRef string) error {
	if a.status != StatusTransmitted {
		return errors.New("submission not transmitted")
	}

	data := &SubmissionAcknowledgedData{
		SubmissionID:   a.id,
		QueueReference: queueRef,
		AcknowledgedAt: time.Now().UTC(),
	}

	event, err := NewEvent(a.id, EventSubmissionAcknowledged, data)
	if err != nil {
		return err
	}

	a.apply(event)
	a.changes = append(a.changes, event)
	return nil
}

// RecordAdjudication records the decoded response outcome
func (a *Aggregate) RecordAdjudication(data *SubmissionAdjudicatedData) error {
	if a.status != StatusTransmitted && a.status != StatusAcknowledged {
		return errors.New("submission not awaiting adjudication")
	}

	event, err := NewEvent(a.id, EventSubmissionAdjudicated, data)
	if err != nil {
		return err
	}

	a.apply(event)
	a.changes = append(a.changes, event)
	return nil
}

// MarkErrored records a terminal failure
func (a *Aggregate) MarkErrored(code, message string) error {
	if a.status == StatusErrored || a.status == StatusCancelled {
		return errors.New("submission already terminal")
	}

	data := &SubmissionErroredData{
		SubmissionID: a.id,
		Code:         code,
		Message:      message,
		ErroredAt:    time.Now().UTC(),
	}

	event, err := NewEvent(a.id, EventSubmissionErrored, data)
	if err != nil {
		return err
	}

	a.apply(event)
	a.changes = append(a.changes, event)
	return nil
}

// Cancel voids a previously submitted request
func (a *Aggregate) Cancel(reasonCode, reason string) error {
	switch a.status {
	case StatusEncoded, StatusTransmitted, StatusAcknowledged, StatusAdjudicated:
	default:
		return errors.New("submission not cancellable")
	}

	data := &SubmissionCancelledData{
		SubmissionID: a.id,
		ReasonCode:   reasonCode,
		Reason:       reason,
		CancelledAt:  time.Now().UTC(),
	}

	event, err := NewEvent(a.id, EventSubmissionCancelled, data)
	if err != nil {
		return err
	}

	a.apply(event)
	a.changes = append(a.changes, event)
	return nil
}

// apply applies an event to update state
func (a *Aggregate) apply(event *Event) {
	a.version++
	a.updatedAt = event.Timestamp

	switch event.EventType {
	case EventSubmissionCreated:
		a.applyCreated(event)
	case EventSubmissionTransmitted:
		a.applyTransmitted(event)
	case EventSubmissionAcknowledged:
		a.status = StatusAcknowledged
	case EventSubmissionAdjudicated:
		a.applyAdjudicated(event)
	case EventSubmissionErrored:
		a.status = StatusErrored
	case EventSubmissionCancelled:
		a.status = StatusCancelled
	}
}

func (a *Aggregate) applyCreated(event *Event) {
	var data SubmissionCreatedData
	if err := json.Unmarshal(event.EventData, &data); err != nil {
		return
	}
	a.status = StatusEncoded
	a.requestNumber = data.RequestNumber
	a.use = data.Use
	a.category = data.Category
	a.providerLicense = data.ProviderLicense
	a.insurerLicense = data.InsurerLicense
	a.memberID = data.MemberID
	a.bundleID = data.BundleID
	a.total = data.Total
}

func (a *Aggregate) applyTransmitted(event *Event) {
	var data SubmissionTransmittedData
	if err := json.Unmarshal(event.EventData, &data); err != nil {
		return
	}
	a.status = StatusTransmitted
	a.bundleID = data.BundleID
}

func (a *Aggregate) applyAdjudicated(event *Event) {
	var data SubmissionAdjudicatedData
	if err := json.Unmarshal(event.EventData, &data); err != nil {
		return
	}
	a.status = StatusAdjudicated
	a.responseID = data.ResponseID
	a.outcome = data.Outcome
	a.preAuthRef = data.PreAuthRef
}

// LoadFromHistory rebuilds state from events
func (a *Aggregate) LoadFromHistory(events []*Event) {
	for _, event := range events {
		a.apply(event)
	}
}
