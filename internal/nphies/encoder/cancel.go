package encoder

import (
	"strings"
	"time"

	r4 "github.com/sahlcare/go-nphies/internal/fhir/r4"
	"github.com/sahlcare/go-nphies/internal/nphies/model"
)

// cancelReasonCoding maps a free-text or canonical cancellation reason to the
// closed task-reason code set. Unrecognized text maps to wrong-information.
func cancelReasonCoding(reason string) r4.Coding {
	code := "WI"
	switch key := strings.ToLower(strings.TrimSpace(reason)); {
	case key == "wi" || strings.Contains(key, "wrong") || strings.Contains(key, "incorrect"):
		code = "WI"
	case key == "np" || strings.Contains(key, "not performed") || strings.Contains(key, "not rendered"):
		code = "NP"
	case key == "tas" || strings.Contains(key, "duplicate") || strings.Contains(key, "already submitted"):
		code = "TAS"
	case key == "su" || strings.Contains(key, "in error") || strings.Contains(key, "submitted by mistake"):
		code = "SU"
	case key == "resubmission" || strings.Contains(key, "resubmi"):
		code = "resubmission"
	}
	displays := map[string]string{
		"WI":           "Wrong Information",
		"NP":           "Service Not Performed",
		"TAS":          "Transaction Already Submitted",
		"SU":           "Submitted in Error",
		"resubmission": "Resubmission",
	}
	return r4.Coding{System: SystemCancelReason, Code: code, Display: displays[code]}
}

// EncodeCancel builds a cancellation bundle for a previously submitted claim
// or prior authorization: a MessageHeader with the cancel-request event, a
// Task referencing the original request's identifier, and the two
// Organization resources.
func (r *Registry) EncodeCancel(req *model.CancelRequest) (*r4.Bundle, error) {
	if req.RequestNumber == "" {
		return nil, ErrMissingRequestNumber
	}
	b := r.builder

	// party builders and license fallbacks are shared with the claim path
	claimShape := &model.ClaimRequest{Provider: req.Provider, Insurer: req.Insurer}

	bundleID := b.opts.NewID()
	headerID := b.opts.NewID()
	ids := &ResourceIDs{
		Task:     b.opts.NewID(),
		Provider: b.opts.NewID(),
		Insurer:  b.opts.NewID(),
	}

	created := req.Created
	if created.IsZero() {
		created = b.opts.Now()
	}

	task := b.buildCancelTask(req, ids, created)
	header := &r4.MessageHeader{
		ResourceType: "MessageHeader",
		ID:           headerID,
		Meta:         &r4.Meta{Profile: []string{profileBase + "message-header" + profileVersion}},
		EventCoding:  &r4.Coding{System: SystemMessageEvents, Code: EventCancelRequest},
		Destination: []r4.MessageDestination{{
			Endpoint: SystemPayerLicense + "/" + b.insurerLicense(claimShape),
			Receiver: b.ref("Organization", ids.Insurer),
		}},
		Sender: b.ref("Organization", ids.Provider),
		Source: &r4.MessageSource{Endpoint: b.opts.BaseURL},
		Focus:  []r4.Reference{*b.ref("Task", ids.Task)},
	}

	bundle := r4.NewMessageBundle(bundleID, DateTimeOffset(created))
	bundle.Meta = &r4.Meta{Profile: []string{profileBase + "bundle" + profileVersion}}
	bundle.Entry = []r4.BundleEntry{
		{FullURL: "urn:uuid:" + headerID, Resource: header},
		{FullURL: b.url("Task", ids.Task), Resource: task},
		{FullURL: b.url("Organization", ids.Provider), Resource: b.buildProviderOrganization(claimShape, ids.Provider)},
		{FullURL: b.url("Organization", ids.Insurer), Resource: b.buildInsurerOrganization(claimShape, ids.Insurer)},
	}
	return bundle, nil
}

// buildCancelTask builds the Task resource voiding the original request.
func (b *builder) buildCancelTask(req *model.CancelRequest, ids *ResourceIDs, created time.Time) *r4.Task {
	return &r4.Task{
		ResourceType: "Task",
		ID:           ids.Task,
		Meta:         &r4.Meta{Profile: []string{profileBase + "task" + profileVersion}},
		Identifier:   []r4.Identifier{{System: b.opts.BaseURL + "/task", Value: "Cancel-" + req.RequestNumber}},
		Status:       "requested",
		Intent:       "order",
		Code: &r4.CodeableConcept{Coding: []r4.Coding{{
			System: terminologyBase + "task-code",
			Code:   "cancel",
		}}},
		Focus: &r4.Reference{
			Type: "Claim",
			Identifier: &r4.Identifier{
				System: b.opts.BaseURL + "/claim",
				Value:  req.RequestNumber,
			},
		},
		AuthoredOn: DateTimeOffset(created),
		Requester:  b.ref("Organization", ids.Provider),
		Owner:      b.ref("Organization", ids.Insurer),
		ReasonCode: &r4.CodeableConcept{Coding: []r4.Coding{cancelReasonCoding(req.Reason)}},
	}
}
