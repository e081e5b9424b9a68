package encoder

import (
	r4 "github.com/sahlcare/go-nphies/internal/fhir/r4"
	"github.com/sahlcare/go-nphies/internal/nphies/model"
)

// professionalEncoder encodes physician/outpatient requests. Encounter class
// is selectable among ambulatory, emergency, home and virtual; the subtype
// must agree with the class (emr forces an emergency encounter).
type professionalEncoder struct {
	*builder
}

func (e *professionalEncoder) Category() model.Category { return model.CategoryProfessional }

func (e *professionalEncoder) Encode(req *model.ClaimRequest) (*r4.Bundle, error) {
	return e.encodeBundle(e, req, true)
}

// encounterClass resolves the class/subtype pair. Unsupported classes fall
// back to ambulatory; an emr subtype forces the emergency class.
func (e *professionalEncoder) encounterClass(req *model.ClaimRequest) (class, subType string) {
	class = req.EncounterClass
	switch class {
	case "ambulatory", "emergency", "home", "virtual":
	case "":
		class = "ambulatory"
	default:
		class = "ambulatory"
	}
	if req.SubType == "emr" {
		class = "emergency"
	}
	if class == "emergency" {
		return class, "emr"
	}
	return class, "op"
}

func (e *professionalEncoder) encodeClaim(req *model.ClaimRequest, ids *ResourceIDs) (*r4.Claim, error) {
	_, subType := e.encounterClass(req)
	claim := e.claimCore(req, ids, model.CategoryProfessional, subType)
	claim.Extension = e.commonClaimExtensions(req, ids)
	// facility always fully qualified, matching the bundle fullUrl scheme
	claim.Facility = e.ref("Organization", ids.Provider)
	claim.Diagnosis = buildDiagnoses(req, false)

	info, err := e.buildSupportingInfo(req, model.CategoryProfessional)
	if err != nil {
		return nil, err
	}
	claim.SupportingInfo = info

	items, err := e.buildItems(req, model.CategoryProfessional, nil)
	if err != nil {
		return nil, err
	}
	claim.Item = items
	return claim, nil
}

func (e *professionalEncoder) encodeEncounter(req *model.ClaimRequest, ids *ResourceIDs) (*r4.Encounter, error) {
	class, _ := e.encounterClass(req)
	enc := e.encounterBase(req, ids, class)
	if class == "emergency" {
		if req.TriageCategory != "" {
			enc.Extension = append(enc.Extension, r4.Extension{
				URL: extTriageCategoryURL,
				ValueCodeableConcept: &r4.CodeableConcept{Coding: []r4.Coding{{
					System: SystemTriageCategory,
					Code:   req.TriageCategory,
				}}},
			})
		}
		if req.TriageDate != "" {
			enc.Extension = append(enc.Extension, r4.Extension{
				URL:           extTriageDateURL,
				ValueDateTime: DateTimeOffset(req.TriageDate),
			})
		}
	}
	return enc, nil
}

// encounterBase builds the fields every encounter variant shares.
func (b *builder) encounterBase(req *model.ClaimRequest, ids *ResourceIDs, class string) *r4.Encounter {
	status := "planned"
	if req.Use == model.UseClaim {
		status = "finished"
	}
	cls := encounterClassCoding(class)
	enc := &r4.Encounter{
		ResourceType:    "Encounter",
		ID:              ids.Encounter,
		Meta:            &r4.Meta{Profile: []string{profileBase + "encounter" + profileVersion}},
		Identifier:      []r4.Identifier{{System: b.opts.BaseURL + "/encounter", Value: "Enc-" + req.RequestNumber}},
		Status:          status,
		Class:           &cls,
		Subject:         b.ref("Patient", ids.Patient),
		ServiceProvider: b.ref("Organization", ids.Provider),
	}
	if req.EncounterStart != "" || req.EncounterEnd != "" {
		enc.Period = &r4.Period{
			Start: DateTimeOffset(req.EncounterStart),
			End:   DateTimeOffset(req.EncounterEnd),
		}
	}
	return enc
}
