package encoder

import (
	r4 "github.com/sahlcare/go-nphies/internal/fhir/r4"
	"github.com/sahlcare/go-nphies/internal/nphies/model"
)

// pharmacyEncoder encodes medication dispense requests. Prior authorizations
// carry an ambulatory encounter with a date-only period; claims carry no
// encounter at all. The subtype is always "op" and every item must be a
// coded medication.
type pharmacyEncoder struct {
	*builder
}

func (e *pharmacyEncoder) Category() model.Category { return model.CategoryPharmacy }

func (e *pharmacyEncoder) Encode(req *model.ClaimRequest) (*r4.Bundle, error) {
	return e.encodeBundle(e, req, false)
}

func (e *pharmacyEncoder) encodeClaim(req *model.ClaimRequest, ids *ResourceIDs) (*r4.Claim, error) {
	claim := e.claimCore(req, ids, model.CategoryPharmacy, "op")
	claim.Extension = e.commonClaimExtensions(req, ids)
	if req.Use == model.UseClaim {
		claim.Extension = append(claim.Extension, e.batchExtensions(req)...)
	}
	claim.Diagnosis = buildDiagnoses(req, false)

	info, err := e.buildSupportingInfo(req, model.CategoryPharmacy)
	if err != nil {
		return nil, err
	}
	claim.SupportingInfo = info

	items, err := e.buildItems(req, model.CategoryPharmacy, e.itemExtensions)
	if err != nil {
		return nil, err
	}
	claim.Item = items
	return claim, nil
}

// itemExtensions attaches the pharmacy line extensions: the originally
// prescribed medication, the pharmacist's selection reason and the
// substitute actually dispensed.
func (e *pharmacyEncoder) itemExtensions(item model.Item) []r4.Extension {
	var exts []r4.Extension
	if item.PrescribedMedication != "" {
		exts = append(exts, r4.Extension{
			URL: extPrescribedMedURL,
			ValueCodeableConcept: &r4.CodeableConcept{Coding: []r4.Coding{{
				System: SystemMedicationCode,
				Code:   item.PrescribedMedication,
			}}},
		})
	}
	if item.PharmacistSelectionReason != "" {
		exts = append(exts, r4.Extension{
			URL: extSelectionReasonURL,
			ValueCodeableConcept: &r4.CodeableConcept{Coding: []r4.Coding{{
				System: SystemSelectionReason,
				Code:   item.PharmacistSelectionReason,
			}}},
		})
	}
	if item.PharmacistSubstitute != "" {
		exts = append(exts, r4.Extension{
			URL: extSubstituteURL,
			ValueCodeableConcept: &r4.CodeableConcept{Coding: []r4.Coding{{
				System: SystemMedicationCode,
				Code:   item.PharmacistSubstitute,
			}}},
		})
	}
	return exts
}

func (e *pharmacyEncoder) encodeEncounter(req *model.ClaimRequest, ids *ResourceIDs) (*r4.Encounter, error) {
	if ids.Encounter == "" {
		return nil, nil
	}
	enc := e.encounterBase(req, ids, "ambulatory")
	// pharmacy encounters carry a date-only period
	if enc.Period != nil {
		enc.Period.Start = DateOnly(req.EncounterStart)
		enc.Period.End = DateOnly(req.EncounterEnd)
	}
	return enc, nil
}
