package encoder

import (
	r4 "github.com/sahlcare/go-nphies/internal/fhir/r4"
	"github.com/sahlcare/go-nphies/internal/nphies/model"
)

// visionEncoder encodes optical requests. Vision bundles carry neither an
// encounter nor a practitioner; the subtype is always "op".
type visionEncoder struct {
	*builder
}

func (e *visionEncoder) Category() model.Category { return model.CategoryVision }

func (e *visionEncoder) Encode(req *model.ClaimRequest) (*r4.Bundle, error) {
	return e.encodeBundle(e, req, false)
}

func (e *visionEncoder) encodeClaim(req *model.ClaimRequest, ids *ResourceIDs) (*r4.Claim, error) {
	claim := e.claimCore(req, ids, model.CategoryVision, "op")
	claim.Extension = e.commonClaimExtensions(req, ids)
	claim.Diagnosis = buildDiagnoses(req, false)

	info, err := e.buildSupportingInfo(req, model.CategoryVision)
	if err != nil {
		return nil, err
	}
	claim.SupportingInfo = info

	items, err := e.buildItems(req, model.CategoryVision, nil)
	if err != nil {
		return nil, err
	}
	claim.Item = items
	return claim, nil
}

func (e *visionEncoder) encodeEncounter(_ *model.ClaimRequest, _ *ResourceIDs) (*r4.Encounter, error) {
	return nil, nil
}
