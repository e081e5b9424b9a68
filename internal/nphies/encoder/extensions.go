package encoder

import (
	r4 "github.com/sahlcare/go-nphies/internal/fhir/r4"
	"github.com/sahlcare/go-nphies/internal/nphies/model"
)

// commonClaimExtensions builds the conditional extensions shared across
// categories: encounter reference, eligibility linkage, transfer and newborn
// flags, accounting period (day forced to 01) and episode identifier.
// Category encoders append their own on top.
func (b *builder) commonClaimExtensions(req *model.ClaimRequest, ids *ResourceIDs) []r4.Extension {
	var exts []r4.Extension

	if ids.Encounter != "" {
		exts = append(exts, r4.Extension{
			URL:            extEncounterURL,
			ValueReference: b.ref("Encounter", ids.Encounter),
		})
	}
	if req.EligibilityOfflineID != "" {
		exts = append(exts, r4.Extension{URL: extEligibilityOffRefURL, ValueString: req.EligibilityOfflineID})
	}
	if req.EligibilityOfflineDate != "" {
		exts = append(exts, r4.Extension{URL: extEligibilityOffDateURL, ValueDateTime: DateTimeOffset(req.EligibilityOfflineDate)})
	}
	switch {
	case req.EligibilityResponseRef != "":
		exts = append(exts, r4.Extension{
			URL:            extEligibilityRespURL,
			ValueReference: &r4.Reference{Reference: req.EligibilityResponseRef},
		})
	case req.EligibilityResponseID != "":
		exts = append(exts, r4.Extension{
			URL: extEligibilityRespURL,
			ValueReference: &r4.Reference{Identifier: &r4.Identifier{
				System: b.opts.BaseURL + "/eligibilityresponse",
				Value:  req.EligibilityResponseID,
			}},
		})
	}
	if req.IsTransfer {
		t := true
		exts = append(exts, r4.Extension{URL: extTransferURL, ValueBoolean: &t})
	}
	if req.IsNewborn {
		t := true
		exts = append(exts, r4.Extension{URL: extNewbornURL, ValueBoolean: &t})
	}
	if req.AccountingPeriod != "" {
		exts = append(exts, r4.Extension{URL: extAccountingPeriodURL, ValueDate: accountingPeriodDate(req.AccountingPeriod)})
	}
	if req.Episode != "" {
		exts = append(exts, r4.Extension{
			URL:             extEpisodeURL,
			ValueIdentifier: &r4.Identifier{System: b.opts.BaseURL + "/episode", Value: req.Episode},
		})
	}
	return exts
}

// accountingPeriodDate normalizes a YYYY-MM (or longer) period to the first
// day of the month.
func accountingPeriodDate(period string) string {
	if len(period) < 7 {
		return period
	}
	return period[:7] + "-01"
}

// batchExtensions builds the pharmacy-claim batch identification trio.
func (b *builder) batchExtensions(req *model.ClaimRequest) []r4.Extension {
	if req.BatchIdentifier == "" && req.BatchNumber == 0 {
		return nil
	}
	var exts []r4.Extension
	if req.BatchIdentifier != "" {
		exts = append(exts, r4.Extension{
			URL:             extBatchIdentifierURL,
			ValueIdentifier: &r4.Identifier{System: b.opts.BaseURL + "/batch", Value: req.BatchIdentifier},
		})
	}
	if req.BatchNumber > 0 {
		n := req.BatchNumber
		exts = append(exts, r4.Extension{URL: extBatchNumberURL, ValueInteger: &n})
	}
	if req.BatchPeriodFrom != "" || req.BatchPeriodTo != "" {
		exts = append(exts, r4.Extension{URL: extBatchPeriodURL, ValuePeriod: &r4.Period{
			Start: DateOnly(req.BatchPeriodFrom),
			End:   DateOnly(req.BatchPeriodTo),
		}})
	}
	return exts
}

// priorAuthResponseExtension links an oral claim to its approved prior
// authorization response.
func (b *builder) priorAuthResponseExtension(req *model.ClaimRequest) []r4.Extension {
	if req.PreAuthResponseID == "" {
		return nil
	}
	return []r4.Extension{{
		URL: extPriorAuthRespURL,
		ValueReference: &r4.Reference{Identifier: &r4.Identifier{
			System: b.opts.BaseURL + "/claimresponse",
			Value:  req.PreAuthResponseID,
		}},
	}}
}
