package encoder

import (
	r4 "github.com/sahlcare/go-nphies/internal/fhir/r4"
	"github.com/sahlcare/go-nphies/internal/nphies/model"
)

// institutionalEncoder encodes hospital admission requests. The encounter
// class is restricted to inpatient and daycase, the subtype is always "ip",
// a hospitalization block is required and every diagnosis must carry the
// on-admission coding.
type institutionalEncoder struct {
	*builder
}

func (e *institutionalEncoder) Category() model.Category { return model.CategoryInstitutional }

func (e *institutionalEncoder) Encode(req *model.ClaimRequest) (*r4.Bundle, error) {
	return e.encodeBundle(e, req, true)
}

func (e *institutionalEncoder) encodeClaim(req *model.ClaimRequest, ids *ResourceIDs) (*r4.Claim, error) {
	claim := e.claimCore(req, ids, model.CategoryInstitutional, "ip")
	claim.Extension = e.commonClaimExtensions(req, ids)
	claim.Facility = e.ref("Organization", ids.Provider)
	claim.Diagnosis = buildDiagnoses(req, true)

	info, err := e.buildSupportingInfo(req, model.CategoryInstitutional)
	if err != nil {
		return nil, err
	}
	claim.SupportingInfo = info

	items, err := e.buildItems(req, model.CategoryInstitutional, nil)
	if err != nil {
		return nil, err
	}
	claim.Item = items
	return claim, nil
}

func (e *institutionalEncoder) encodeEncounter(req *model.ClaimRequest, ids *ResourceIDs) (*r4.Encounter, error) {
	class := req.EncounterClass
	switch class {
	case "inpatient", "daycase":
	default:
		class = "inpatient"
	}
	enc := e.encounterBase(req, ids, class)

	admitSource := req.AdmitSource
	if admitSource == "" {
		admitSource = "IA"
	}
	hosp := &r4.EncounterHospitalization{
		AdmitSource: &r4.CodeableConcept{Coding: []r4.Coding{admitSourceCoding(admitSource)}},
	}
	if req.AdmissionSpecialty != "" {
		hosp.Extension = append(hosp.Extension, r4.Extension{
			URL: extAdmissionSpecialtyURL,
			ValueCodeableConcept: &r4.CodeableConcept{Coding: []r4.Coding{
				practiceCoding(req.AdmissionSpecialty),
			}},
		})
	}
	enc.Hospitalization = hosp
	return enc, nil
}
