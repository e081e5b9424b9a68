// Package decoder parses adjudication response bundles into structured
// outcomes. Decoding is total: malformed or unexpected payloads produce an
// error-outcome result with structured errors, never a panic.
package decoder

import (
	"encoding/json"
	"strings"

	r4 "github.com/sahlcare/go-nphies/internal/fhir/r4"
	"github.com/sahlcare/go-nphies/internal/nphies/encoder"
)

// Adjudication outcomes reported on a decoded response.
const (
	OutcomeComplete = "complete"
	OutcomePartial  = "partial"
	OutcomeError    = "error"
	OutcomeQueued   = "queued"
)

// Structural decode error codes. Exchange validation codes (BV-xxxxx,
// IC-xxxxx, RE-xxxxx, GE-xxxxx) pass through verbatim alongside these.
const (
	CodeInvalidJSON          = "invalid-json"
	CodeEmptyBundle          = "empty-bundle"
	CodeNotMessageBundle     = "not-message-bundle"
	CodeMissingHeader        = "missing-message-header"
	CodeUnexpectedEvent      = "unexpected-message-event"
	CodeMissingClaimResponse = "missing-claim-response"
)

const (
	profileBase               = "http://nphies.sa/fhir/ksa/nphies-fs/StructureDefinition/"
	extAdjudicationOutcomeURL = profileBase + "extension-adjudication-outcome"
	extTransferURL            = profileBase + "extension-transfer"
	extTransferAuthURL        = profileBase + "extension-transfer-authorization-provider"
)

// ResponseError is one structured error from the response: either a
// structural decode failure or an exchange validation code.
type ResponseError struct {
	Code         string `json:"code"`
	Message      string `json:"message,omitempty"`
	Location     string `json:"location,omitempty"`
	ItemSequence int    `json:"item_sequence,omitempty"`
}

// AdjudicationEntry is one category/amount pair of an item's decision.
type AdjudicationEntry struct {
	Category string   `json:"category"`
	Reason   string   `json:"reason,omitempty"`
	Amount   *float64 `json:"amount,omitempty"`
	Currency string   `json:"currency,omitempty"`
	Value    *float64 `json:"value,omitempty"`
}

// ItemResult is the adjudication of one claimed line. The common categories
// are pre-extracted for callers that only need the headline amounts.
type ItemResult struct {
	Sequence         int                 `json:"sequence"`
	Adjudications    []AdjudicationEntry `json:"adjudications,omitempty"`
	EligibleAmount   float64             `json:"eligible_amount"`
	BenefitAmount    float64             `json:"benefit_amount"`
	CopayAmount      float64             `json:"copay_amount"`
	ApprovedQuantity float64             `json:"approved_quantity"`
	Notes            []string            `json:"notes,omitempty"`
}

// TransferInfo carries transfer-authorization metadata from the response.
type TransferInfo struct {
	IsTransfer          bool   `json:"is_transfer"`
	AuthorizingProvider string `json:"authorizing_provider,omitempty"`
}

// PatientSnapshot is the patient identity echoed back in the response
// bundle, decoded for display regardless of adjudication outcome.
type PatientSnapshot struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name,omitempty"`
	Gender     string `json:"gender,omitempty"`
	BirthDate  string `json:"birth_date,omitempty"`
	DocumentID string `json:"document_id,omitempty"`
}

// OrganizationSnapshot is a provider or insurer echoed in the response.
type OrganizationSnapshot struct {
	Name    string `json:"name,omitempty"`
	License string `json:"license,omitempty"`
}

// CoverageSnapshot is the coverage echoed in the response.
type CoverageSnapshot struct {
	MemberID     string `json:"member_id,omitempty"`
	Relationship string `json:"relationship,omitempty"`
	Network      string `json:"network,omitempty"`
	PeriodStart  string `json:"period_start,omitempty"`
	PeriodEnd    string `json:"period_end,omitempty"`
}

// AdjudicationResult is the decoded view of an adjudication response.
type AdjudicationResult struct {
	Success             bool   `json:"success"`
	Outcome             string `json:"outcome"`
	AdjudicationOutcome string `json:"adjudication_outcome,omitempty"` // approved | rejected | partial
	Disposition         string `json:"disposition,omitempty"`

	ResponseID         string `json:"response_id,omitempty"`
	PreAuthRef         string `json:"pre_auth_ref,omitempty"`
	PreAuthPeriodStart string `json:"pre_auth_period_start,omitempty"`
	PreAuthPeriodEnd   string `json:"pre_auth_period_end,omitempty"`

	Items  []ItemResult       `json:"items,omitempty"`
	Totals map[string]float64 `json:"totals,omitempty"`

	Transfer *TransferInfo `json:"transfer,omitempty"`

	Errors       []ResponseError `json:"errors,omitempty"`
	ProcessNotes []string        `json:"process_notes,omitempty"`

	Patient  *PatientSnapshot      `json:"patient,omitempty"`
	Coverage *CoverageSnapshot     `json:"coverage,omitempty"`
	Provider *OrganizationSnapshot `json:"provider,omitempty"`
	Insurer  *OrganizationSnapshot `json:"insurer,omitempty"`
}

// expectedEvents are the message events a response bundle may carry.
var expectedEvents = map[string]bool{
	encoder.EventPriorAuthResponse: true,
	encoder.EventClaimResponse:     true,
	encoder.EventCancelResponse:    true,
}

type rawEntry struct {
	FullURL  string          `json:"fullUrl"`
	Resource json.RawMessage `json:"resource"`
}

type rawBundle struct {
	ResourceType string     `json:"resourceType"`
	Type         string     `json:"type"`
	Entry        []rawEntry `json:"entry"`
}

// Decode parses an adjudication response payload: either a message Bundle or
// a raw ClaimResponse resource. It never fails; structural problems surface
// as an error-outcome result.
func Decode(payload []byte) *AdjudicationResult {
	var probe struct {
		ResourceType string `json:"resourceType"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return structural(CodeInvalidJSON, "response is not valid JSON: "+err.Error())
	}

	switch probe.ResourceType {
	case "ClaimResponse":
		var cr r4.ClaimResponse
		if err := json.Unmarshal(payload, &cr); err != nil {
			return structural(CodeInvalidJSON, "malformed ClaimResponse: "+err.Error())
		}
		result := &AdjudicationResult{}
		decodeClaimResponse(result, &cr)
		finish(result)
		return result
	case "Bundle":
		var bundle rawBundle
		if err := json.Unmarshal(payload, &bundle); err != nil {
			return structural(CodeInvalidJSON, "malformed Bundle: "+err.Error())
		}
		return decodeBundle(&bundle)
	default:
		return structural(CodeMissingClaimResponse, "unexpected resource type "+probe.ResourceType)
	}
}

func structural(code, message string) *AdjudicationResult {
	return &AdjudicationResult{
		Outcome: OutcomeError,
		Errors:  []ResponseError{{Code: code, Message: message}},
	}
}

func decodeBundle(bundle *rawBundle) *AdjudicationResult {
	if len(bundle.Entry) == 0 {
		return structural(CodeEmptyBundle, "response bundle has no entries")
	}
	if bundle.Type != "message" {
		return structural(CodeNotMessageBundle, "response bundle type is "+bundle.Type)
	}

	var header r4.MessageHeader
	if err := json.Unmarshal(bundle.Entry[0].Resource, &header); err != nil || header.ResourceType != "MessageHeader" {
		return structural(CodeMissingHeader, "first bundle entry is not a MessageHeader")
	}
	if header.EventCoding == nil || !expectedEvents[header.EventCoding.Code] {
		event := ""
		if header.EventCoding != nil {
			event = header.EventCoding.Code
		}
		return structural(CodeUnexpectedEvent, "unexpected message event "+event)
	}

	result := &AdjudicationResult{}

	var claimResponse *r4.ClaimResponse
	var outcomes []r4.OperationOutcome
	for _, entry := range bundle.Entry[1:] {
		var probe struct {
			ResourceType string `json:"resourceType"`
		}
		if err := json.Unmarshal(entry.Resource, &probe); err != nil {
			continue
		}
		switch probe.ResourceType {
		case "ClaimResponse":
			var cr r4.ClaimResponse
			if err := json.Unmarshal(entry.Resource, &cr); err == nil {
				claimResponse = &cr
			}
		case "OperationOutcome":
			var oo r4.OperationOutcome
			if err := json.Unmarshal(entry.Resource, &oo); err == nil {
				outcomes = append(outcomes, oo)
			}
		case "Patient":
			var p r4.Patient
			if err := json.Unmarshal(entry.Resource, &p); err == nil {
				result.Patient = patientSnapshot(&p)
			}
		case "Coverage":
			var c r4.Coverage
			if err := json.Unmarshal(entry.Resource, &c); err == nil {
				result.Coverage = coverageSnapshot(&c)
			}
		case "Organization":
			var org r4.Organization
			if err := json.Unmarshal(entry.Resource, &org); err == nil {
				assignOrganization(result, &org)
			}
		}
	}

	// Blocking OperationOutcome issues short-circuit adjudication parsing.
	if errs := outcomeErrors(outcomes); len(errs) > 0 {
		result.Outcome = OutcomeError
		result.Errors = errs
		return result
	}

	if claimResponse == nil {
		result.Outcome = OutcomeError
		result.Errors = []ResponseError{{Code: CodeMissingClaimResponse, Message: "response bundle carries no ClaimResponse"}}
		return result
	}

	decodeClaimResponse(result, claimResponse)
	finish(result)
	return result
}

func outcomeErrors(outcomes []r4.OperationOutcome) []ResponseError {
	var errs []ResponseError
	for _, oo := range outcomes {
		for _, issue := range oo.Issue {
			if !issue.IsError() {
				continue
			}
			re := ResponseError{Code: issue.Code, Message: issue.Diagnostics}
			if issue.Details != nil {
				if len(issue.Details.Coding) > 0 {
					re.Code = issue.Details.Coding[0].Code
					if re.Message == "" {
						re.Message = issue.Details.Coding[0].Display
					}
				} else if issue.Details.Text != "" && re.Message == "" {
					re.Message = issue.Details.Text
				}
			}
			if len(issue.Expression) > 0 {
				re.Location = issue.Expression[0]
			} else if len(issue.Location) > 0 {
				re.Location = issue.Location[0]
			}
			errs = append(errs, re)
		}
	}
	return errs
}

func decodeClaimResponse(result *AdjudicationResult, cr *r4.ClaimResponse) {
	result.ResponseID = cr.ID
	result.Outcome = cr.Outcome
	result.Disposition = cr.Disposition
	result.PreAuthRef = cr.PreAuthRef
	if cr.PreAuthPeriod != nil {
		result.PreAuthPeriodStart = cr.PreAuthPeriod.Start
		result.PreAuthPeriodEnd = cr.PreAuthPeriod.End
	}

	if ext := cr.ExtensionValue(extAdjudicationOutcomeURL); ext != nil {
		result.AdjudicationOutcome = extensionCode(ext)
	}
	if ext := cr.ExtensionValue(extTransferURL); ext != nil && ext.ValueBoolean != nil && *ext.ValueBoolean {
		result.Transfer = &TransferInfo{IsTransfer: true}
		if auth := cr.ExtensionValue(extTransferAuthURL); auth != nil {
			result.Transfer.AuthorizingProvider = extensionText(auth)
		}
	}

	notes := make(map[int]string, len(cr.ProcessNote))
	for _, note := range cr.ProcessNote {
		notes[note.Number] = note.Text
		result.ProcessNotes = append(result.ProcessNotes, note.Text)
	}

	for _, item := range cr.Item {
		result.Items = append(result.Items, decodeItem(item, notes))
	}

	if len(cr.Total) > 0 {
		result.Totals = make(map[string]float64, len(cr.Total))
		for _, total := range cr.Total {
			key := conceptCode(total.Category)
			result.Totals[key] = total.Amount.Value
		}
	}

	for _, e := range cr.Error {
		result.Errors = append(result.Errors, ResponseError{
			Code:         conceptCode(e.Code),
			Message:      conceptDisplay(e.Code),
			ItemSequence: e.ItemSequence,
		})
	}
}

func decodeItem(item r4.ClaimResponseItem, notes map[int]string) ItemResult {
	out := ItemResult{Sequence: item.ItemSequence}
	for _, adj := range item.Adjudication {
		entry := AdjudicationEntry{Category: adj.CategoryCode(), Value: adj.Value}
		if adj.Reason != nil {
			entry.Reason = conceptCode(*adj.Reason)
		}
		if adj.Amount != nil {
			amount := adj.Amount.Value
			entry.Amount = &amount
			entry.Currency = adj.Amount.Currency
		}
		out.Adjudications = append(out.Adjudications, entry)

		switch entry.Category {
		case "eligible":
			if adj.Amount != nil {
				out.EligibleAmount = adj.Amount.Value
			}
		case "benefit":
			if adj.Amount != nil {
				out.BenefitAmount = adj.Amount.Value
			}
		case "copay":
			if adj.Amount != nil {
				out.CopayAmount = adj.Amount.Value
			}
		case "approved-quantity":
			if adj.Value != nil {
				out.ApprovedQuantity = *adj.Value
			}
		}
	}
	for _, n := range item.NoteNumber {
		if text, ok := notes[n]; ok {
			out.Notes = append(out.Notes, text)
		}
	}
	return out
}

// finish computes the overall success predicate: outcome complete or
// partial, adjudication outcome not rejected, and no structured errors.
func finish(result *AdjudicationResult) {
	ok := result.Outcome == OutcomeComplete || result.Outcome == OutcomePartial
	if result.AdjudicationOutcome == "rejected" {
		ok = false
	}
	if len(result.Errors) > 0 {
		ok = false
	}
	result.Success = ok
}

func patientSnapshot(p *r4.Patient) *PatientSnapshot {
	snap := &PatientSnapshot{
		Gender:    p.Gender,
		BirthDate: p.BirthDate,
	}
	if name := p.GetOfficialName(); name != nil {
		snap.Name = name.Text
		if snap.Name == "" {
			snap.Name = strings.TrimSpace(strings.Join(name.Given, " ") + " " + name.Family)
		}
	}
	if len(p.Identifier) > 0 {
		snap.DocumentID = p.Identifier[0].Value
	}
	snap.ID = p.ID
	return snap
}

func coverageSnapshot(c *r4.Coverage) *CoverageSnapshot {
	snap := &CoverageSnapshot{
		MemberID: c.SubscriberID,
		Network:  c.Network,
	}
	if snap.MemberID == "" && len(c.Identifier) > 0 {
		snap.MemberID = c.Identifier[0].Value
	}
	if c.Relationship != nil {
		snap.Relationship = conceptCode(*c.Relationship)
	}
	if c.Period != nil {
		snap.PeriodStart = c.Period.Start
		snap.PeriodEnd = c.Period.End
	}
	return snap
}

// assignOrganization sorts a response Organization into the provider or
// insurer slot by its license identifier system.
func assignOrganization(result *AdjudicationResult, org *r4.Organization) {
	snap := &OrganizationSnapshot{Name: org.Name, License: org.LicenseValue()}
	for _, id := range org.Identifier {
		switch id.System {
		case encoder.SystemPayerLicense:
			result.Insurer = snap
			return
		case encoder.SystemProviderLicense:
			result.Provider = snap
			return
		}
	}
	// fall back on the organization-type coding
	for _, t := range org.Type {
		for _, coding := range t.Coding {
			switch coding.Code {
			case "ins":
				result.Insurer = snap
				return
			case "prov":
				result.Provider = snap
				return
			}
		}
	}
	if result.Provider == nil {
		result.Provider = snap
	} else if result.Insurer == nil {
		result.Insurer = snap
	}
}

func conceptCode(c r4.CodeableConcept) string {
	if len(c.Coding) > 0 {
		return c.Coding[0].Code
	}
	return c.Text
}

func conceptDisplay(c r4.CodeableConcept) string {
	if len(c.Coding) > 0 && c.Coding[0].Display != "" {
		return c.Coding[0].Display
	}
	return c.Text
}

func extensionCode(ext *r4.Extension) string {
	if ext.ValueCodeableConcept != nil {
		return conceptCode(*ext.ValueCodeableConcept)
	}
	if ext.ValueCoding != nil {
		return ext.ValueCoding.Code
	}
	return ext.ValueCode
}

func extensionText(ext *r4.Extension) string {
	if ext.ValueString != "" {
		return ext.ValueString
	}
	if ext.ValueIdentifier != nil {
		return ext.ValueIdentifier.Value
	}
	if ext.ValueReference != nil {
		if ext.ValueReference.Identifier != nil {
			return ext.ValueReference.Identifier.Value
		}
		return ext.ValueReference.Display
	}
	return ""
}
