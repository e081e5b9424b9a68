package submission

import (
	"testing"
	"time"
)

func createdData(id string) *SubmissionCreatedData {
	return &SubmissionCreatedData{
		SubmissionID:    id,
		RequestNumber:   "req-00112233",
		Use:             "preauthorization",
		Category:        "professional",
		ProviderLicense: "PR-FHIR",
		InsurerLicense:  "INS-FHIR",
		MemberID:        "0000000001",
		BundleID:        "bundle-1",
		Total:           105,
		CreatedAt:       time.Now().UTC(),
	}
}

func encodedAggregate(t *testing.T) *Aggregate {
	t.Helper()
	agg := NewAggregate("sub-001")
	if err := agg.Create(createdData("sub-001")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return agg
}

func TestCreateTransition(t *testing.T) {
	agg := encodedAggregate(t)
	if agg.Status() != StatusEncoded {
		t.Errorf("status = %q, want encoded", agg.Status())
	}
	if agg.RequestNumber() != "req-00112233" {
		t.Errorf("request number = %q", agg.RequestNumber())
	}
	if agg.Version() != 1 {
		t.Errorf("version = %d, want 1", agg.Version())
	}
	if len(agg.Changes()) != 1 {
		t.Errorf("uncommitted changes = %d, want 1", len(agg.Changes()))
	}
	// audit fields travel on the event for partitioned queries
	ev := agg.Changes()[0]
	if ev.ProviderLicense != "PR-FHIR" || ev.InsurerLicense != "INS-FHIR" || ev.MemberID != "0000000001" {
		t.Errorf("audit fields = %q/%q/%q", ev.ProviderLicense, ev.InsurerLicense, ev.MemberID)
	}

	if err := agg.Create(createdData("sub-001")); err == nil {
		t.Error("second Create must fail")
	}
}

func TestHappyPathLifecycle(t *testing.T) {
	agg := encodedAggregate(t)

	if err := agg.MarkTransmitted("bundle-1"); err != nil {
		t.Fatalf("MarkTransmitted failed: %v", err)
	}
	if agg.Status() != StatusTransmitted {
		t.Errorf("status = %q, want transmitted", agg.Status())
	}

	if err := agg.MarkAcknowledged("queue-9"); err != nil {
		t.Fatalf("MarkAcknowledged failed: %v", err)
	}
	if agg.Status() != StatusAcknowledged {
		t.Errorf("status = %q, want acknowledged", agg.Status())
	}

	if err := agg.RecordAdjudication(&SubmissionAdjudicatedData{
		SubmissionID:  "sub-001",
		ResponseID:    "cr-1",
		Outcome:       "complete",
		Success:       true,
		PreAuthRef:    "auth-778899",
		AdjudicatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("RecordAdjudication failed: %v", err)
	}
	if agg.Status() != StatusAdjudicated {
		t.Errorf("status = %q, want adjudicated", agg.Status())
	}
	if agg.Outcome() != "complete" || agg.PreAuthRef() != "auth-778899" {
		t.Errorf("outcome/preAuthRef = %q/%q", agg.Outcome(), agg.PreAuthRef())
	}
	if agg.Version() != 4 {
		t.Errorf("version = %d, want 4", agg.Version())
	}
}

func TestAdjudicationWithoutAckAllowed(t *testing.T) {
	agg := encodedAggregate(t)
	if err := agg.MarkTransmitted("bundle-1"); err != nil {
		t.Fatalf("MarkTransmitted failed: %v", err)
	}
	// synchronous exchange responses skip the queue acknowledgment
	if err := agg.RecordAdjudication(&SubmissionAdjudicatedData{Outcome: "complete"}); err != nil {
		t.Errorf("RecordAdjudication after transmit failed: %v", err)
	}
}

func TestInvalidTransitions(t *testing.T) {
	agg := NewAggregate("sub-002")

	if err := agg.MarkTransmitted("b"); err == nil {
		t.Error("transmit from draft must fail")
	}
	if err := agg.RecordAdjudication(&SubmissionAdjudicatedData{}); err == nil {
		t.Error("adjudication from draft must fail")
	}
	if err := agg.Cancel("WI", ""); err == nil {
		t.Error("cancel from draft must fail")
	}

	agg = encodedAggregate(t)
	if err := agg.MarkAcknowledged("q"); err == nil {
		t.Error("acknowledge before transmit must fail")
	}
}

func TestCancelTransitions(t *testing.T) {
	agg := encodedAggregate(t)
	if err := agg.Cancel("TAS", "duplicate submission"); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if agg.Status() != StatusCancelled {
		t.Errorf("status = %q, want cancelled", agg.Status())
	}

	// terminal states reject further transitions
	if err := agg.Cancel("WI", ""); err == nil {
		t.Error("cancel after cancel must fail")
	}
	if err := agg.MarkErrored("x", "y"); err == nil {
		t.Error("errored after cancel must fail")
	}
}

func TestMarkErrored(t *testing.T) {
	agg := encodedAggregate(t)
	if err := agg.MarkTransmitted("bundle-1"); err != nil {
		t.Fatalf("MarkTransmitted failed: %v", err)
	}
	if err := agg.MarkErrored("BV-00542", "Billable period start is in the future"); err != nil {
		t.Fatalf("MarkErrored failed: %v", err)
	}
	if agg.Status() != StatusErrored {
		t.Errorf("status = %q, want errored", agg.Status())
	}
}

func TestLoadFromHistory(t *testing.T) {
	source := encodedAggregate(t)
	if err := source.MarkTransmitted("bundle-1"); err != nil {
		t.Fatalf("MarkTransmitted failed: %v", err)
	}
	if err := source.RecordAdjudication(&SubmissionAdjudicatedData{
		ResponseID: "cr-1", Outcome: "complete", PreAuthRef: "auth-778899",
	}); err != nil {
		t.Fatalf("RecordAdjudication failed: %v", err)
	}

	rebuilt := NewAggregate("sub-001")
	rebuilt.LoadFromHistory(source.Changes())

	if rebuilt.Status() != StatusAdjudicated {
		t.Errorf("rebuilt status = %q, want adjudicated", rebuilt.Status())
	}
	if rebuilt.Version() != source.Version() {
		t.Errorf("rebuilt version = %d, want %d", rebuilt.Version(), source.Version())
	}
	if rebuilt.RequestNumber() != "req-00112233" || rebuilt.PreAuthRef() != "auth-778899" {
		t.Errorf("rebuilt fields = %q/%q", rebuilt.RequestNumber(), rebuilt.PreAuthRef())
	}
	// replay must not re-stage events
	if len(rebuilt.Changes()) != 0 {
		t.Errorf("rebuilt changes = %d, want 0", len(rebuilt.Changes()))
	}
}
