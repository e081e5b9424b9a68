package decoder

import (
	"testing"
)

const approvedResponse = `{
  "resourceType": "Bundle",
  "id": "resp-bundle-1",
  "type": "message",
  "entry": [
    {
      "fullUrl": "urn:uuid:hdr-1",
      "resource": {
        "resourceType": "MessageHeader",
        "id": "hdr-1",
        "eventCoding": {"system": "http://nphies.sa/terminology/CodeSystem/ksa-message-events", "code": "priorauth-response"}
      }
    },
    {
      "fullUrl": "http://payer.com.sa/ClaimResponse/cr-1",
      "resource": {
        "resourceType": "ClaimResponse",
        "id": "cr-1",
        "extension": [
          {"url": "http://nphies.sa/fhir/ksa/nphies-fs/StructureDefinition/extension-adjudication-outcome",
           "valueCodeableConcept": {"coding": [{"code": "approved"}]}}
        ],
        "status": "active",
        "outcome": "complete",
        "disposition": "Approved",
        "preAuthRef": "auth-778899",
        "preAuthPeriod": {"start": "2026-03-10", "end": "2026-04-10"},
        "item": [
          {
            "itemSequence": 1,
            "noteNumber": [1],
            "adjudication": [
              {"category": {"coding": [{"code": "eligible"}]}, "amount": {"value": 105, "currency": "SAR"}},
              {"category": {"coding": [{"code": "benefit"}]}, "amount": {"value": 84, "currency": "SAR"}},
              {"category": {"coding": [{"code": "copay"}]}, "amount": {"value": 21, "currency": "SAR"}},
              {"category": {"coding": [{"code": "approved-quantity"}]}, "value": 2}
            ]
          }
        ],
        "total": [
          {"category": {"coding": [{"code": "eligible"}]}, "amount": {"value": 105, "currency": "SAR"}},
          {"category": {"coding": [{"code": "benefit"}]}, "amount": {"value": 84, "currency": "SAR"}}
        ],
        "processNote": [{"number": 1, "text": "Approved per policy terms"}]
      }
    },
    {
      "fullUrl": "http://provider.com.sa/Patient/p-1",
      "resource": {
        "resourceType": "Patient",
        "id": "p-1",
        "identifier": [{"system": "http://nphies.sa/license/nationalid", "value": "1000000001"}],
        "name": [{"use": "official", "text": "Ahmad Khaled", "family": "Khaled", "given": ["Ahmad"]}],
        "gender": "male",
        "birthDate": "1984-12-25"
      }
    },
    {
      "fullUrl": "http://provider.com.sa/Organization/org-1",
      "resource": {
        "resourceType": "Organization",
        "id": "org-1",
        "identifier": [{"system": "http://nphies.sa/license/provider-license", "value": "PR-FHIR"}],
        "name": "Test Provider"
      }
    },
    {
      "fullUrl": "http://provider.com.sa/Organization/org-2",
      "resource": {
        "resourceType": "Organization",
        "id": "org-2",
        "identifier": [{"system": "http://nphies.sa/license/payer-license", "value": "INS-FHIR"}],
        "name": "Test Payer"
      }
    },
    {
      "fullUrl": "http://provider.com.sa/Coverage/cov-1",
      "resource": {
        "resourceType": "Coverage",
        "id": "cov-1",
        "subscriberId": "0000000001",
        "relationship": {"coding": [{"code": "self"}]},
        "period": {"start": "2026-01-01", "end": "2026-12-31"}
      }
    }
  ]
}`

func TestDecodeApprovedResponse(t *testing.T) {
	result := Decode([]byte(approvedResponse))

	if !result.Success {
		t.Fatalf("expected success, got errors %v", result.Errors)
	}
	if result.Outcome != OutcomeComplete {
		t.Errorf("outcome = %q, want complete", result.Outcome)
	}
	if result.AdjudicationOutcome != "approved" {
		t.Errorf("adjudication outcome = %q, want approved", result.AdjudicationOutcome)
	}
	if result.ResponseID != "cr-1" {
		t.Errorf("response id = %q", result.ResponseID)
	}
	if result.PreAuthRef != "auth-778899" {
		t.Errorf("preAuthRef = %q", result.PreAuthRef)
	}
	if result.PreAuthPeriodStart != "2026-03-10" || result.PreAuthPeriodEnd != "2026-04-10" {
		t.Errorf("preAuth period = %q..%q", result.PreAuthPeriodStart, result.PreAuthPeriodEnd)
	}

	if len(result.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(result.Items))
	}
	item := result.Items[0]
	if item.Sequence != 1 {
		t.Errorf("item sequence = %d", item.Sequence)
	}
	if item.EligibleAmount != 105 {
		t.Errorf("eligible = %v, want 105", item.EligibleAmount)
	}
	if item.BenefitAmount != 84 {
		t.Errorf("benefit = %v, want 84", item.BenefitAmount)
	}
	if item.CopayAmount != 21 {
		t.Errorf("copay = %v, want 21", item.CopayAmount)
	}
	if item.ApprovedQuantity != 2 {
		t.Errorf("approved quantity = %v, want 2", item.ApprovedQuantity)
	}
	if len(item.Notes) != 1 || item.Notes[0] != "Approved per policy terms" {
		t.Errorf("item notes = %v", item.Notes)
	}

	if result.Totals["eligible"] != 105 || result.Totals["benefit"] != 84 {
		t.Errorf("totals = %v", result.Totals)
	}

	if result.Patient == nil || result.Patient.Name != "Ahmad Khaled" {
		t.Errorf("patient snapshot = %+v", result.Patient)
	}
	if result.Patient.DocumentID != "1000000001" {
		t.Errorf("patient document id = %q", result.Patient.DocumentID)
	}
	if result.Provider == nil || result.Provider.License != "PR-FHIR" {
		t.Errorf("provider snapshot = %+v", result.Provider)
	}
	if result.Insurer == nil || result.Insurer.License != "INS-FHIR" {
		t.Errorf("insurer snapshot = %+v", result.Insurer)
	}
	if result.Coverage == nil || result.Coverage.MemberID != "0000000001" || result.Coverage.Relationship != "self" {
		t.Errorf("coverage snapshot = %+v", result.Coverage)
	}
}

const rejectedResponse = `{
  "resourceType": "Bundle",
  "type": "message",
  "entry": [
    {"resource": {"resourceType": "MessageHeader",
      "eventCoding": {"code": "claim-response"}}},
    {"resource": {
      "resourceType": "ClaimResponse",
      "id": "cr-2",
      "extension": [
        {"url": "http://nphies.sa/fhir/ksa/nphies-fs/StructureDefinition/extension-adjudication-outcome",
         "valueCodeableConcept": {"coding": [{"code": "rejected"}]}}
      ],
      "outcome": "complete",
      "disposition": "Rejected"
    }}
  ]
}`

func TestDecodeRejectedResponse(t *testing.T) {
	result := Decode([]byte(rejectedResponse))
	if result.Success {
		t.Error("rejected adjudication must not be a success")
	}
	if result.Outcome != OutcomeComplete {
		t.Errorf("outcome = %q", result.Outcome)
	}
	if result.AdjudicationOutcome != "rejected" {
		t.Errorf("adjudication outcome = %q", result.AdjudicationOutcome)
	}
}

const operationOutcomeResponse = `{
  "resourceType": "Bundle",
  "type": "message",
  "entry": [
    {"resource": {"resourceType": "MessageHeader",
      "eventCoding": {"code": "priorauth-response"}}},
    {"resource": {
      "resourceType": "OperationOutcome",
      "issue": [
        {"severity": "error", "code": "invalid",
         "details": {"coding": [{"code": "BV-00542", "display": "Billable period start is in the future"}]},
         "expression": ["Claim.billablePeriod.start"]},
        {"severity": "information", "code": "informational", "diagnostics": "ignore me"}
      ]
    }},
    {"resource": {
      "resourceType": "Patient",
      "name": [{"use": "official", "text": "Ahmad Khaled"}]
    }}
  ]
}`

func TestDecodeOperationOutcome(t *testing.T) {
	result := Decode([]byte(operationOutcomeResponse))
	if result.Success {
		t.Error("validation failure must not be a success")
	}
	if result.Outcome != OutcomeError {
		t.Errorf("outcome = %q, want error", result.Outcome)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("errors = %v, want exactly the blocking issue", result.Errors)
	}
	e := result.Errors[0]
	if e.Code != "BV-00542" {
		t.Errorf("error code = %q, want BV-00542", e.Code)
	}
	if e.Message != "Billable period start is in the future" {
		t.Errorf("error message = %q", e.Message)
	}
	if e.Location != "Claim.billablePeriod.start" {
		t.Errorf("error location = %q", e.Location)
	}
	// party snapshots survive even when adjudication fails
	if result.Patient == nil || result.Patient.Name != "Ahmad Khaled" {
		t.Errorf("patient snapshot = %+v", result.Patient)
	}
}

func TestDecodeStructuralFailures(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantCode string
	}{
		{"invalid json", `{not json`, CodeInvalidJSON},
		{"empty bundle", `{"resourceType": "Bundle", "type": "message"}`, CodeEmptyBundle},
		{"not a message bundle", `{"resourceType": "Bundle", "type": "collection", "entry": [{"resource": {"resourceType": "Patient"}}]}`, CodeNotMessageBundle},
		{"missing header", `{"resourceType": "Bundle", "type": "message", "entry": [{"resource": {"resourceType": "Patient"}}]}`, CodeMissingHeader},
		{"unexpected event", `{"resourceType": "Bundle", "type": "message", "entry": [{"resource": {"resourceType": "MessageHeader", "eventCoding": {"code": "eligibility-response"}}}]}`, CodeUnexpectedEvent},
		{"no claim response", `{"resourceType": "Bundle", "type": "message", "entry": [{"resource": {"resourceType": "MessageHeader", "eventCoding": {"code": "claim-response"}}}]}`, CodeMissingClaimResponse},
		{"wrong resource type", `{"resourceType": "Patient"}`, CodeMissingClaimResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Decode([]byte(tt.payload))
			if result == nil {
				t.Fatal("Decode returned nil")
			}
			if result.Success {
				t.Error("structural failure must not be a success")
			}
			if result.Outcome != OutcomeError {
				t.Errorf("outcome = %q, want error", result.Outcome)
			}
			if len(result.Errors) != 1 || result.Errors[0].Code != tt.wantCode {
				t.Errorf("errors = %v, want code %q", result.Errors, tt.wantCode)
			}
		})
	}
}

func TestDecodeBareClaimResponse(t *testing.T) {
	payload := `{
	  "resourceType": "ClaimResponse",
	  "id": "cr-3",
	  "outcome": "partial",
	  "error": [
	    {"itemSequence": 2, "code": {"coding": [{"code": "RE-00012", "display": "Service not covered"}]}}
	  ]
	}`
	result := Decode([]byte(payload))
	if result.Success {
		t.Error("response with errors must not be a success")
	}
	if result.Outcome != OutcomePartial {
		t.Errorf("outcome = %q", result.Outcome)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("errors = %v", result.Errors)
	}
	if result.Errors[0].Code != "RE-00012" || result.Errors[0].ItemSequence != 2 {
		t.Errorf("error = %+v", result.Errors[0])
	}
}

func TestDecodeTransferResponse(t *testing.T) {
	payload := `{
	  "resourceType": "ClaimResponse",
	  "id": "cr-4",
	  "outcome": "complete",
	  "extension": [
	    {"url": "http://nphies.sa/fhir/ksa/nphies-fs/StructureDefinition/extension-transfer", "valueBoolean": true},
	    {"url": "http://nphies.sa/fhir/ksa/nphies-fs/StructureDefinition/extension-transfer-authorization-provider",
	     "valueIdentifier": {"value": "PR-OTHER"}}
	  ]
	}`
	result := Decode([]byte(payload))
	if !result.Success {
		t.Fatalf("unexpected errors %v", result.Errors)
	}
	if result.Transfer == nil || !result.Transfer.IsTransfer {
		t.Fatal("transfer flag not decoded")
	}
	if result.Transfer.AuthorizingProvider != "PR-OTHER" {
		t.Errorf("authorizing provider = %q", result.Transfer.AuthorizingProvider)
	}
}

func TestDecodeQueuedResponse(t *testing.T) {
	payload := `{"resourceType": "ClaimResponse", "id": "cr-5", "outcome": "queued"}`
	result := Decode([]byte(payload))
	if result.Success {
		t.Error("queued response is not yet a success")
	}
	if result.Outcome != OutcomeQueued {
		t.Errorf("outcome = %q, want queued", result.Outcome)
	}
}
