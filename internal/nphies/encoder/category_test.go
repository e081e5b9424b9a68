package encoder

import (
	"testing"

	r4 "github.com/sahlcare/go-nphies/internal/fhir/r4"
	"github.com/sahlcare/go-nphies/internal/nphies/model"
)

func subTypeCode(t *testing.T, claim *r4.Claim) string {
	t.Helper()
	if claim.SubType == nil || len(claim.SubType.Coding) == 0 {
		t.Fatal("claim has no subType coding")
	}
	return claim.SubType.Coding[0].Code
}

func hasExtension(exts []r4.Extension, url string) bool {
	for _, e := range exts {
		if e.URL == url {
			return true
		}
	}
	return false
}

func TestProfessionalEncounterClass(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(req *model.ClaimRequest)
		wantClass string
		wantSub   string
	}{
		{"default ambulatory", func(r *model.ClaimRequest) {}, "AMB", "op"},
		{"home visit", func(r *model.ClaimRequest) { r.EncounterClass = "home" }, "HH", "op"},
		{"virtual", func(r *model.ClaimRequest) { r.EncounterClass = "virtual" }, "VR", "op"},
		{"emergency class", func(r *model.ClaimRequest) { r.EncounterClass = "emergency" }, "EMER", "emr"},
		{"emr subtype forces emergency", func(r *model.ClaimRequest) { r.SubType = "emr" }, "EMER", "emr"},
		{"unsupported class falls back", func(r *model.ClaimRequest) { r.EncounterClass = "inpatient" }, "AMB", "op"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest()
			req.Category = model.CategoryProfessional
			tt.mutate(req)

			bundle, err := testRegistry().Encode(req)
			if err != nil {
				t.Fatalf("encode failed: %v", err)
			}
			claim := findClaim(t, bundle)
			if got := subTypeCode(t, claim); got != tt.wantSub {
				t.Errorf("subType = %q, want %q", got, tt.wantSub)
			}
			enc := findEncounter(bundle)
			if enc == nil {
				t.Fatal("professional bundle has no Encounter")
			}
			if enc.Class.Code != tt.wantClass {
				t.Errorf("encounter class = %q, want %q", enc.Class.Code, tt.wantClass)
			}
		})
	}
}

func TestProfessionalTriageExtensions(t *testing.T) {
	req := baseRequest()
	req.Category = model.CategoryProfessional
	req.EncounterClass = "emergency"
	req.TriageCategory = "U"
	req.TriageDate = "2026-03-09T22:15:00+03:00"

	bundle, err := testRegistry().Encode(req)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	enc := findEncounter(bundle)
	if !hasExtension(enc.Extension, extTriageCategoryURL) {
		t.Error("missing triage category extension")
	}
	if !hasExtension(enc.Extension, extTriageDateURL) {
		t.Error("missing triage date extension")
	}
}

func TestInstitutionalShape(t *testing.T) {
	req := baseRequest()
	req.Category = model.CategoryInstitutional
	req.EncounterClass = "inpatient"
	req.Diagnoses = []model.Diagnosis{
		{Code: "K35.8", Type: "principal", OnAdmission: "y"},
		{Code: "E11.9", Type: "secondary"},
	}

	bundle, err := testRegistry().Encode(req)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	claim := findClaim(t, bundle)
	if got := subTypeCode(t, claim); got != "ip" {
		t.Errorf("subType = %q, want ip", got)
	}

	// on-admission coding is mandatory on every diagnosis, unknown maps to u
	if claim.Diagnosis[0].OnAdmission.Coding[0].Code != "y" {
		t.Errorf("diagnosis 1 onAdmission = %q, want y", claim.Diagnosis[0].OnAdmission.Coding[0].Code)
	}
	if claim.Diagnosis[1].OnAdmission.Coding[0].Code != "u" {
		t.Errorf("diagnosis 2 onAdmission = %q, want u", claim.Diagnosis[1].OnAdmission.Coding[0].Code)
	}

	enc := findEncounter(bundle)
	if enc == nil {
		t.Fatal("institutional bundle has no Encounter")
	}
	if enc.Class.Code != "IMP" {
		t.Errorf("encounter class = %q, want IMP", enc.Class.Code)
	}
	if enc.Hospitalization == nil {
		t.Fatal("institutional encounter requires a hospitalization block")
	}
	if enc.Hospitalization.AdmitSource.Coding[0].Code != "IA" {
		t.Errorf("default admit source = %q, want IA", enc.Hospitalization.AdmitSource.Coding[0].Code)
	}
}

func TestInstitutionalOrgsPrecedeClaim(t *testing.T) {
	req := baseRequest()
	req.Category = model.CategoryInstitutional

	bundle, err := testRegistry().Encode(req)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	claimIdx, firstOrgIdx := -1, -1
	for i, e := range bundle.Entry {
		switch e.Resource.(type) {
		case *r4.Claim:
			claimIdx = i
		case *r4.Organization:
			if firstOrgIdx == -1 {
				firstOrgIdx = i
			}
		}
	}
	if firstOrgIdx == -1 || claimIdx < firstOrgIdx {
		t.Errorf("organizations at %d must precede claim at %d", firstOrgIdx, claimIdx)
	}
}

func TestDentalShape(t *testing.T) {
	req := baseRequest()
	req.Category = model.CategoryDental
	req.Items = []model.Item{
		{Code: "97311-00-00", Quantity: 1, UnitPrice: 150, ToothNumber: "23", ToothSurface: "MO"},
	}

	bundle, err := testRegistry().Encode(req)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	claim := findClaim(t, bundle)
	if got := subTypeCode(t, claim); got != "op" {
		t.Errorf("subType = %q, want op", got)
	}
	if claim.Type.Coding[0].Code != "oral" {
		t.Errorf("claim type = %q, want oral", claim.Type.Coding[0].Code)
	}

	item := claim.Item[0]
	if item.BodySite == nil || item.BodySite.Coding[0].Code != "23" {
		t.Error("tooth number missing from item bodySite")
	}
	if item.BodySite.Coding[0].System != SystemFDIOralRegion {
		t.Errorf("tooth system = %q", item.BodySite.Coding[0].System)
	}
	if len(item.SubSite) == 0 || item.SubSite[0].Coding[0].Code != "MO" {
		t.Error("tooth surface missing from item subSite")
	}

	enc := findEncounter(bundle)
	if enc == nil {
		t.Fatal("dental bundle has no Encounter")
	}
	if enc.Class.Code != "AMB" {
		t.Errorf("dental encounter class = %q, want AMB", enc.Class.Code)
	}
	if !hasExtension(enc.Extension, extServiceEventURL) {
		t.Error("dental encounter requires the service-event-type extension")
	}
	if enc.Hospitalization != nil {
		t.Error("dental encounter must not carry a hospitalization block")
	}
}

func TestDentalClaimLinksPriorAuthResponse(t *testing.T) {
	req := baseRequest()
	req.Category = model.CategoryDental
	req.Use = model.UseClaim
	req.PreAuthResponseID = "resp-556677"

	bundle, err := testRegistry().Encode(req)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	claim := findClaim(t, bundle)
	if !hasExtension(claim.Extension, extPriorAuthRespURL) {
		t.Error("missing prior-auth response extension on dental claim")
	}
}

func TestVisionShape(t *testing.T) {
	req := baseRequest()
	req.Category = model.CategoryVision
	req.Items = []model.Item{{Code: "E123", Quantity: 1, UnitPrice: 400}}

	bundle, err := testRegistry().Encode(req)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if findEncounter(bundle) != nil {
		t.Error("vision bundle must not carry an Encounter")
	}
	for _, e := range bundle.Entry {
		if _, ok := e.Resource.(*r4.Practitioner); ok {
			t.Error("vision bundle must not carry a Practitioner")
		}
	}
	claim := findClaim(t, bundle)
	if got := subTypeCode(t, claim); got != "op" {
		t.Errorf("subType = %q, want op", got)
	}
	if claim.Item[0].ProductOrService.Coding[0].System != SystemLensType {
		t.Errorf("vision item system = %q, want %q", claim.Item[0].ProductOrService.Coding[0].System, SystemLensType)
	}
}

func TestVisionClaimHasNoPriorAuthResponseLink(t *testing.T) {
	req := baseRequest()
	req.Category = model.CategoryVision
	req.Use = model.UseClaim
	req.PreAuthResponseID = "resp-445566"
	req.Items = []model.Item{{Code: "E123", Quantity: 1, UnitPrice: 400}}

	bundle, err := testRegistry().Encode(req)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	claim := findClaim(t, bundle)
	if hasExtension(claim.Extension, extPriorAuthRespURL) {
		t.Error("prior-auth response link is an oral-claim extension, found on vision claim")
	}
}

func TestPharmacyEncounterOnlyOnPreauth(t *testing.T) {
	req := baseRequest()
	req.Category = model.CategoryPharmacy
	req.EncounterStart = "2026-03-09T10:00:00+03:00"
	req.EncounterEnd = "2026-03-09T10:20:00+03:00"
	req.Items = []model.Item{{Code: "06285096001627", Quantity: 1, UnitPrice: 35}}

	bundle, err := testRegistry().Encode(req)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	enc := findEncounter(bundle)
	if enc == nil {
		t.Fatal("pharmacy preauth bundle has no Encounter")
	}
	// pharmacy encounter periods are date-only
	if enc.Period.Start != "2026-03-09" || enc.Period.End != "2026-03-09" {
		t.Errorf("pharmacy encounter period = %q..%q, want date-only", enc.Period.Start, enc.Period.End)
	}

	req.Use = model.UseClaim
	bundle, err = testRegistry().Encode(req)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if findEncounter(bundle) != nil {
		t.Error("pharmacy claim bundle must not carry an Encounter")
	}
}

func TestPharmacyItemExtensions(t *testing.T) {
	req := baseRequest()
	req.Category = model.CategoryPharmacy
	req.Items = []model.Item{{
		Code:                      "06285096001627",
		Quantity:                  1,
		UnitPrice:                 35,
		PrescribedMedication:      "06285096001610",
		PharmacistSelectionReason: "generic",
		PharmacistSubstitute:      "06285096001627",
	}}

	bundle, err := testRegistry().Encode(req)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	item := findClaim(t, bundle).Item[0]
	for _, url := range []string{extPrescribedMedURL, extSelectionReasonURL, extSubstituteURL} {
		if !hasExtension(item.Extension, url) {
			t.Errorf("missing pharmacy item extension %s", url)
		}
	}
	if item.ProductOrService.Coding[0].System != SystemMedicationCode {
		t.Errorf("pharmacy item system = %q", item.ProductOrService.Coding[0].System)
	}
}

func TestPharmacyClaimBatchExtensions(t *testing.T) {
	req := baseRequest()
	req.Category = model.CategoryPharmacy
	req.Use = model.UseClaim
	req.BatchIdentifier = "BATCH-2026-03"
	req.BatchNumber = 7
	req.BatchPeriodFrom = "2026-03-01"
	req.BatchPeriodTo = "2026-03-31"
	req.Items = []model.Item{{Code: "06285096001627", Quantity: 1, UnitPrice: 35}}

	bundle, err := testRegistry().Encode(req)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	claim := findClaim(t, bundle)
	for _, url := range []string{extBatchIdentifierURL, extBatchNumberURL, extBatchPeriodURL} {
		if !hasExtension(claim.Extension, url) {
			t.Errorf("missing batch extension %s", url)
		}
	}
}

func TestNewbornBundle(t *testing.T) {
	req := baseRequest()
	req.IsNewborn = true
	req.BirthWeight = 3200
	req.Patient = &model.Patient{FirstName: "Baby", LastName: "Khaled", Gender: "female", BirthDate: "2026-03-01"}
	req.MotherPatient = &model.Patient{ID: "1000000002", FirstName: "Sarah", LastName: "Khaled", Gender: "female", BirthDate: "1990-06-10"}

	bundle, err := testRegistry().Encode(req)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	var patients int
	for _, e := range bundle.Entry {
		if _, ok := e.Resource.(*r4.Patient); ok {
			patients++
		}
	}
	if patients != 2 {
		t.Errorf("patient entries = %d, want 2 (newborn and mother)", patients)
	}

	claim := findClaim(t, bundle)
	if !hasExtension(claim.Extension, extNewbornURL) {
		t.Error("missing newborn extension")
	}

	// birth weight arrives in grams and is emitted in kilograms
	var weight *r4.Quantity
	for _, si := range claim.SupportingInfo {
		if len(si.Category.Coding) > 0 && si.Category.Coding[0].Code == "birth-weight" {
			weight = si.ValueQuantity
		}
	}
	if weight == nil {
		t.Fatal("missing birth-weight supporting info")
	}
	if weight.Value != 3.2 || weight.Code != "kg" {
		t.Errorf("birth weight = %v %s, want 3.2 kg", weight.Value, weight.Code)
	}

	// the newborn rides on the mother's coverage
	var coverage *r4.Coverage
	for _, e := range bundle.Entry {
		if c, ok := e.Resource.(*r4.Coverage); ok {
			coverage = c
		}
	}
	if coverage == nil {
		t.Fatal("bundle has no Coverage")
	}
	if coverage.Subscriber.Reference == coverage.Beneficiary.Reference {
		t.Error("newborn coverage subscriber must be the mother, not the newborn")
	}
}
