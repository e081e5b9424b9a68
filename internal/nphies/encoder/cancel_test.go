package encoder

import (
	"errors"
	"testing"

	r4 "github.com/sahlcare/go-nphies/internal/fhir/r4"
	"github.com/sahlcare/go-nphies/internal/nphies/model"
)

func TestCancelReasonCoding(t *testing.T) {
	tests := []struct {
		reason string
		want   string
	}{
		{"", "WI"},
		{"wrong member id entered", "WI"},
		{"Incorrect diagnosis submitted", "WI"},
		{"service was not performed", "NP"},
		{"procedure not rendered to patient", "NP"},
		{"duplicate submission", "TAS"},
		{"claim already submitted last week", "TAS"},
		{"submitted in error", "SU"},
		{"submitted by mistake", "SU"},
		{"resubmission with corrections", "resubmission"},
		{"TAS", "TAS"},
		{"np", "NP"},
		{"some unrelated text", "WI"},
	}
	for _, tt := range tests {
		coding := cancelReasonCoding(tt.reason)
		if coding.Code != tt.want {
			t.Errorf("cancelReasonCoding(%q) = %q, want %q", tt.reason, coding.Code, tt.want)
		}
		if coding.System != SystemCancelReason {
			t.Errorf("cancelReasonCoding(%q) system = %q", tt.reason, coding.System)
		}
		if coding.Display == "" {
			t.Errorf("cancelReasonCoding(%q) has no display", tt.reason)
		}
	}
}

func TestEncodeCancel(t *testing.T) {
	reg := testRegistry()
	bundle, err := reg.EncodeCancel(&model.CancelRequest{
		RequestNumber: "req-00112233",
		Use:           model.UseClaim,
		Reason:        "duplicate submission",
		Provider:      &model.Provider{License: "PR-FHIR", Name: "Test Provider"},
		Insurer:       &model.Insurer{License: "INS-FHIR", Name: "Test Payer"},
	})
	if err != nil {
		t.Fatalf("EncodeCancel failed: %v", err)
	}

	if bundle.Type != "message" {
		t.Errorf("bundle type = %q, want message", bundle.Type)
	}
	header := findHeader(t, bundle)
	if header.EventCoding.Code != EventCancelRequest {
		t.Errorf("event = %q, want %q", header.EventCoding.Code, EventCancelRequest)
	}

	var task *r4.Task
	for _, e := range bundle.Entry {
		if tk, ok := e.Resource.(*r4.Task); ok {
			task = tk
		}
	}
	if task == nil {
		t.Fatal("cancel bundle has no Task")
	}
	if task.Status != "requested" || task.Intent != "order" {
		t.Errorf("task status/intent = %q/%q", task.Status, task.Intent)
	}
	if task.Code.Coding[0].Code != "cancel" {
		t.Errorf("task code = %q, want cancel", task.Code.Coding[0].Code)
	}
	// the task targets the original request by identifier, not by reference
	if task.Focus.Identifier == nil || task.Focus.Identifier.Value != "req-00112233" {
		t.Error("task focus must carry the original request number")
	}
	if task.ReasonCode.Coding[0].Code != "TAS" {
		t.Errorf("task reason = %q, want TAS", task.ReasonCode.Coding[0].Code)
	}

	// header focus resolves to the Task entry
	found := false
	for _, e := range bundle.Entry {
		if e.FullURL == header.Focus[0].Reference {
			found = true
		}
	}
	if !found {
		t.Error("header focus does not resolve to a bundle entry")
	}
}

func TestEncodeCancelRequiresRequestNumber(t *testing.T) {
	_, err := testRegistry().EncodeCancel(&model.CancelRequest{Reason: "duplicate"})
	if !errors.Is(err, ErrMissingRequestNumber) {
		t.Errorf("EncodeCancel() error = %v, want %v", err, ErrMissingRequestNumber)
	}
}
