package encoder

import (
	r4 "github.com/sahlcare/go-nphies/internal/fhir/r4"
	"github.com/sahlcare/go-nphies/internal/nphies/model"
)

// dentalEncoder encodes oral/dental requests. The encounter class is always
// ambulatory with a service-event-type extension and no hospitalization
// block; the subtype is always "op". Dental claims referencing an approved
// prior authorization carry its response reference.
type dentalEncoder struct {
	*builder
}

func (e *dentalEncoder) Category() model.Category { return model.CategoryDental }

func (e *dentalEncoder) Encode(req *model.ClaimRequest) (*r4.Bundle, error) {
	return e.encodeBundle(e, req, false)
}

func (e *dentalEncoder) encodeClaim(req *model.ClaimRequest, ids *ResourceIDs) (*r4.Claim, error) {
	claim := e.claimCore(req, ids, model.CategoryDental, "op")
	claim.Extension = e.commonClaimExtensions(req, ids)
	if req.Use == model.UseClaim {
		claim.Extension = append(claim.Extension, e.priorAuthResponseExtension(req)...)
	}
	claim.Diagnosis = buildDiagnoses(req, false)

	info, err := e.buildSupportingInfo(req, model.CategoryDental)
	if err != nil {
		return nil, err
	}
	claim.SupportingInfo = info

	items, err := e.buildItems(req, model.CategoryDental, nil)
	if err != nil {
		return nil, err
	}
	claim.Item = items
	return claim, nil
}

func (e *dentalEncoder) encodeEncounter(req *model.ClaimRequest, ids *ResourceIDs) (*r4.Encounter, error) {
	enc := e.encounterBase(req, ids, "ambulatory")
	eventType := req.ServiceEventType
	if eventType == "" {
		eventType = "ICSE"
	}
	enc.Extension = append(enc.Extension, r4.Extension{
		URL: extServiceEventURL,
		ValueCodeableConcept: &r4.CodeableConcept{Coding: []r4.Coding{{
			System: SystemServiceEvent,
			Code:   eventType,
		}}},
	})
	return enc, nil
}
