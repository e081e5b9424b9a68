package encoder

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	r4 "github.com/sahlcare/go-nphies/internal/fhir/r4"
	"github.com/sahlcare/go-nphies/internal/nphies/model"
)

// seqGen returns a deterministic identifier sequence for tests.
func seqGen() IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%04d", n)
	}
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
}

func testRegistry() *Registry {
	return NewRegistry(Options{
		BaseURL:         "http://provider.com.sa",
		ProviderLicense: "PR-FHIR",
		InsurerLicense:  "INS-FHIR",
		NewID:           seqGen(),
		Now:             fixedNow,
	})
}

func baseRequest() *model.ClaimRequest {
	return &model.ClaimRequest{
		RequestNumber: "req-00112233",
		Use:           model.UsePreauthorization,
		Patient: &model.Patient{
			ID:        "1000000001",
			IDType:    "NI",
			FirstName: "Ahmad",
			LastName:  "Khaled",
			Gender:    "male",
			BirthDate: "1984-12-25",
		},
		Provider: &model.Provider{License: "PR-FHIR", Name: "Test Provider"},
		Insurer:  &model.Insurer{License: "INS-FHIR", Name: "Test Payer"},
		Coverage: &model.Coverage{MemberID: "0000000001"},
		Diagnoses: []model.Diagnosis{
			{Code: "R07.1", Display: "Chest pain on breathing", Type: "principal"},
		},
		Items: []model.Item{
			{Code: "83620-00-10", Display: "Consultation", Quantity: 1, UnitPrice: 200},
		},
	}
}

// findClaim returns the Claim entry of a bundle.
func findClaim(t *testing.T, bundle *r4.Bundle) *r4.Claim {
	t.Helper()
	for _, e := range bundle.Entry {
		if c, ok := e.Resource.(*r4.Claim); ok {
			return c
		}
	}
	t.Fatal("bundle has no Claim entry")
	return nil
}

func findEncounter(bundle *r4.Bundle) *r4.Encounter {
	for _, e := range bundle.Entry {
		if enc, ok := e.Resource.(*r4.Encounter); ok {
			return enc
		}
	}
	return nil
}

func findHeader(t *testing.T, bundle *r4.Bundle) *r4.MessageHeader {
	t.Helper()
	if len(bundle.Entry) == 0 {
		t.Fatal("bundle has no entries")
	}
	header, ok := bundle.Entry[0].Resource.(*r4.MessageHeader)
	if !ok {
		t.Fatalf("first entry is %T, want MessageHeader", bundle.Entry[0].Resource)
	}
	return header
}

func TestNormalizeCategory(t *testing.T) {
	cases := map[string]model.Category{
		"professional": model.CategoryProfessional,
		"physician":    model.CategoryProfessional,
		"  Hospital ":  model.CategoryInstitutional,
		"oral":         model.CategoryDental,
		"DENTAL":       model.CategoryDental,
		"optical":      model.CategoryVision,
		"rx":           model.CategoryPharmacy,
		"medication":   model.CategoryPharmacy,
	}
	for key, want := range cases {
		got, ok := NormalizeCategory(key)
		if !ok || got != want {
			t.Errorf("NormalizeCategory(%q) = %q, %v; want %q", key, got, ok, want)
		}
	}
	if _, ok := NormalizeCategory("veterinary"); ok {
		t.Error("expected unknown category to be rejected")
	}
}

func TestInferCategory(t *testing.T) {
	tests := []struct {
		name string
		req  *model.ClaimRequest
		want model.Category
	}{
		{"explicit category wins", &model.ClaimRequest{Category: "oral", DaysSupply: 30}, model.CategoryDental},
		{"auth type hint", &model.ClaimRequest{AuthType: "institutional"}, model.CategoryInstitutional},
		{"inpatient encounter", &model.ClaimRequest{EncounterClass: "inpatient"}, model.CategoryInstitutional},
		{"daycase encounter", &model.ClaimRequest{EncounterClass: "daycase"}, model.CategoryInstitutional},
		{"vision prescription", &model.ClaimRequest{VisionPrescription: &model.VisionPrescription{}}, model.CategoryVision},
		{"tooth number", &model.ClaimRequest{Items: []model.Item{{Code: "97011", ToothNumber: "11"}}}, model.CategoryDental},
		{"days supply", &model.ClaimRequest{DaysSupply: 14}, model.CategoryPharmacy},
		{"medication item", &model.ClaimRequest{Items: []model.Item{{Code: "06285096001627", IsMedication: true}}}, model.CategoryPharmacy},
		{"default professional", &model.ClaimRequest{}, model.CategoryProfessional},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferCategory(tt.req); got != tt.want {
				t.Errorf("InferCategory() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	encode := func() []byte {
		bundle, err := testRegistry().Encode(baseRequest())
		if err != nil {
			t.Fatalf("encode failed: %v", err)
		}
		data, err := json.Marshal(bundle)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		return data
	}

	first := encode()
	second := encode()
	if string(first) != string(second) {
		t.Error("identical input with fixed id sequence and clock produced different bundles")
	}
}

func TestEncodeToleratesMalformedDates(t *testing.T) {
	req := baseRequest()
	req.EncounterStart = "badT"
	req.EncounterEnd = "3T"

	bundle, err := testRegistry().Encode(req)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	enc := findEncounter(bundle)
	if enc == nil {
		t.Fatal("bundle has no Encounter entry")
	}
	if enc.Period == nil {
		t.Fatal("encounter has no period")
	}
	if enc.Period.Start != "" || enc.Period.End != "" {
		t.Errorf("encounter period = %q..%q, want empty for unparseable input", enc.Period.Start, enc.Period.End)
	}
}

func TestEncodeBundleShape(t *testing.T) {
	bundle, err := testRegistry().Encode(baseRequest())
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	if bundle.Type != "message" {
		t.Errorf("bundle type = %q, want message", bundle.Type)
	}
	header := findHeader(t, bundle)
	if header.EventCoding.Code != EventPriorAuthRequest {
		t.Errorf("event = %q, want %q", header.EventCoding.Code, EventPriorAuthRequest)
	}
	if want := SystemPayerLicense + "/INS-FHIR"; header.Destination[0].Endpoint != want {
		t.Errorf("destination endpoint = %q, want %q", header.Destination[0].Endpoint, want)
	}

	claim := findClaim(t, bundle)
	if claim.Use != "preauthorization" {
		t.Errorf("claim use = %q", claim.Use)
	}
	if claim.Identifier[0].Value != "req-00112233" {
		t.Errorf("claim identifier = %q", claim.Identifier[0].Value)
	}

	// every in-bundle reference must be resolvable against an entry fullUrl
	urls := make(map[string]bool, len(bundle.Entry))
	for _, e := range bundle.Entry {
		urls[e.FullURL] = true
	}
	if !urls[claim.Patient.Reference] {
		t.Errorf("claim.patient %q does not match any entry fullUrl", claim.Patient.Reference)
	}
	if !urls[claim.Insurer.Reference] {
		t.Errorf("claim.insurer %q does not match any entry fullUrl", claim.Insurer.Reference)
	}
	if !urls[claim.Provider.Reference] {
		t.Errorf("claim.provider %q does not match any entry fullUrl", claim.Provider.Reference)
	}
}

func TestClaimTotalFromItems(t *testing.T) {
	req := baseRequest()
	req.Category = model.CategoryPharmacy
	req.Items = []model.Item{
		{Code: "06285096001627", Quantity: 2, UnitPrice: 50, Tax: 5},
	}
	req.Total = 999 // ignored when items are present

	bundle, err := testRegistry().Encode(req)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	claim := findClaim(t, bundle)
	if claim.Total.Value != 105 {
		t.Errorf("claim total = %v, want 105", claim.Total.Value)
	}
	if claim.Item[0].Net.Value != 105 {
		t.Errorf("item net = %v, want 105", claim.Item[0].Net.Value)
	}
	if claim.Total.Currency != "SAR" {
		t.Errorf("currency = %q, want SAR", claim.Total.Currency)
	}
}

func TestItemNetRules(t *testing.T) {
	tests := []struct {
		name string
		item model.Item
		want float64
	}{
		{"plain", model.Item{Quantity: 2, UnitPrice: 50, Tax: 5}, 105},
		{"zero factor counts as one", model.Item{Quantity: 3, UnitPrice: 10}, 30},
		{"explicit factor", model.Item{Quantity: 2, UnitPrice: 100, Factor: 0.5}, 100},
		{"rounded", model.Item{Quantity: 3, UnitPrice: 33.333}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.Net(); got != tt.want {
				t.Errorf("Net() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPackageItemNetFromDetails(t *testing.T) {
	req := baseRequest()
	req.Items = []model.Item{{
		Code:      "PKG-1",
		IsPackage: true,
		Quantity:  1,
		UnitPrice: 9999, // package line price is ignored, details rule
		Details: []model.ItemDetail{
			{Code: "A", Quantity: 1, UnitPrice: 60},
			{Code: "B", Quantity: 2, UnitPrice: 20, Tax: 2},
		},
	}}

	bundle, err := testRegistry().Encode(req)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	claim := findClaim(t, bundle)
	if claim.Item[0].Net.Value != 102 {
		t.Errorf("package net = %v, want 102", claim.Item[0].Net.Value)
	}
	if claim.Total.Value != 102 {
		t.Errorf("claim total = %v, want 102", claim.Total.Value)
	}
	if len(claim.Item[0].Detail) != 2 {
		t.Fatalf("detail count = %d, want 2", len(claim.Item[0].Detail))
	}
}

func TestValidateRequest(t *testing.T) {
	reg := testRegistry()

	tests := []struct {
		name    string
		mutate  func(req *model.ClaimRequest)
		wantErr error
	}{
		{"missing use", func(r *model.ClaimRequest) { r.Use = "" }, ErrMissingUse},
		{"bad use", func(r *model.ClaimRequest) { r.Use = "predetermination" }, ErrMissingUse},
		{"missing patient", func(r *model.ClaimRequest) { r.Patient = nil }, ErrMissingPatient},
		{"newborn without mother", func(r *model.ClaimRequest) { r.IsNewborn = true }, ErrMissingMother},
		{"package without details", func(r *model.ClaimRequest) {
			r.Items = []model.Item{{Code: "PKG", IsPackage: true, Quantity: 1, UnitPrice: 10}}
		}, ErrPackageWithoutDetails},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest()
			tt.mutate(req)
			if _, err := reg.Encode(req); !errors.Is(err, tt.wantErr) {
				t.Errorf("Encode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPharmacyItemRequiresCode(t *testing.T) {
	req := baseRequest()
	req.Category = model.CategoryPharmacy
	req.Items = []model.Item{{Quantity: 1, UnitPrice: 10}}

	if _, err := testRegistry().Encode(req); !errors.Is(err, ErrMissingMedicationCode) {
		t.Errorf("Encode() error = %v, want %v", err, ErrMissingMedicationCode)
	}
}

func TestResolveUnknownCategory(t *testing.T) {
	if _, err := testRegistry().Resolve("veterinary"); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("Resolve() error = %v, want %v", err, ErrUnknownCategory)
	}
}

func TestPreAuthRefOnClaimInsurance(t *testing.T) {
	req := baseRequest()
	req.Use = model.UseClaim
	req.PreAuthRef = "auth-778899"

	bundle, err := testRegistry().Encode(req)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	claim := findClaim(t, bundle)
	if len(claim.Insurance) != 1 || !claim.Insurance[0].Focal {
		t.Fatal("expected a single focal insurance line")
	}
	if len(claim.Insurance[0].PreAuthRef) != 1 || claim.Insurance[0].PreAuthRef[0] != "auth-778899" {
		t.Errorf("preAuthRef = %v, want [auth-778899]", claim.Insurance[0].PreAuthRef)
	}
	if header := findHeader(t, bundle); header.EventCoding.Code != EventClaimRequest {
		t.Errorf("event = %q, want %q", header.EventCoding.Code, EventClaimRequest)
	}
}

func TestAttachmentPlacement(t *testing.T) {
	att := model.Attachment{ContentType: "application/pdf", Data: "JVBERi0=", Title: "report.pdf"}

	// prior authorizations ship attachments as Binary entries
	pre := baseRequest()
	pre.Attachments = []model.Attachment{att}
	bundle, err := testRegistry().Encode(pre)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	var binaries int
	for _, e := range bundle.Entry {
		if _, ok := e.Resource.(*r4.Binary); ok {
			binaries++
		}
	}
	if binaries != 1 {
		t.Errorf("preauth binary entries = %d, want 1", binaries)
	}

	// claims embed them in supportingInfo instead
	cl := baseRequest()
	cl.Use = model.UseClaim
	cl.Attachments = []model.Attachment{att}
	bundle, err = testRegistry().Encode(cl)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	for _, e := range bundle.Entry {
		if _, ok := e.Resource.(*r4.Binary); ok {
			t.Fatal("claim bundle must not carry Binary entries")
		}
	}
	claim := findClaim(t, bundle)
	var embedded bool
	for _, si := range claim.SupportingInfo {
		if si.ValueAttachment != nil && si.ValueAttachment.Title == "report.pdf" {
			embedded = true
		}
	}
	if !embedded {
		t.Error("claim attachment not embedded in supportingInfo")
	}
}
