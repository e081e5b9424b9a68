package encoder

import (
	"fmt"
	"strings"

	r4 "github.com/sahlcare/go-nphies/internal/fhir/r4"
	"github.com/sahlcare/go-nphies/internal/nphies/model"
)

// Defaults synthesized when a mandatory category is absent from caller
// input. These are validator placeholders, not clinical data.
const (
	defaultChiefComplaintText  = "Not Available"
	defaultInvestigationResult = "NA"
	defaultDaysSupply          = 30
	defaultLengthOfStay        = 1
)

// quantityUnits maps quantity-valued categories to their UCUM unit code.
var quantityUnits = map[string]string{
	"days-supply":              "d",
	"estimated-length-of-stay": "d",
	"birth-weight":             "kg",
	"vital-sign-systolic":      "mm[Hg]",
	"vital-sign-diastolic":     "mm[Hg]",
	"vital-sign-height":        "cm",
	"vital-sign-weight":        "kg",
	"pulse":                    "/min",
	"respiratory-rate":         "/min",
	"temperature":              "Cel",
	"oxygen-saturation":        "%",
}

// freeTextCategories may carry a valueString payload. Every other category
// that carries a code must be a coded concept; chief-complaint additionally
// accepts free text in its code field.
var freeTextCategories = map[string]bool{
	"chief-complaint":            true,
	"treatment-plan":             true,
	"patient-history":            true,
	"physical-examination":       true,
	"history-of-present-illness": true,
	"other":                      true,
}

// buildSupportingInfo runs the normalization pipeline: transform each caller
// entry, synthesize mandatory defaults the caller omitted, append the
// newborn birth weight and (for claims) embedded attachments, then assign
// contiguous 1-based sequence numbers by final position.
func (b *builder) buildSupportingInfo(req *model.ClaimRequest, cat model.Category) ([]r4.SupportingInfo, error) {
	out := make([]r4.SupportingInfo, 0, len(req.SupportingInfo)+4)
	present := make(map[string]bool, len(req.SupportingInfo))

	for _, si := range req.SupportingInfo {
		entry, keep, err := transformSupportingInfo(si)
		if err != nil {
			return nil, err
		}
		if !keep {
			// entries with no safe default are dropped, never emitted malformed
			continue
		}
		present[si.Category] = true
		out = append(out, entry)
	}

	for _, m := range mandatedDefaults(cat, req.Use) {
		if !present[m.category] {
			out = append(out, m.synth(req))
		}
	}

	if req.IsNewborn && req.BirthWeight > 0 {
		out = append(out, r4.SupportingInfo{
			Category:      infoCategory("birth-weight"),
			ValueQuantity: &r4.Quantity{Value: round2(req.BirthWeight / 1000), Code: "kg", System: r4.SystemUCUM},
		})
	}

	if req.Use == model.UseClaim {
		for _, att := range req.Attachments {
			out = append(out, r4.SupportingInfo{
				Category: infoCategory("attachment"),
				ValueAttachment: &r4.Attachment{
					ContentType: att.ContentType,
					Data:        att.Data,
					Title:       att.Title,
					Creation:    DateOnly(att.Creation),
				},
			})
		}
	}

	for i := range out {
		out[i].Sequence = i + 1
	}
	return out, nil
}

// transformSupportingInfo is a pure per-entry transform keyed by category.
// The second return is false when the entry must be dropped.
func transformSupportingInfo(si model.SupportingInfo) (r4.SupportingInfo, bool, error) {
	out := r4.SupportingInfo{Category: infoCategory(si.Category)}
	if si.TimingDate != "" {
		out.TimingDate = DateOnly(si.TimingDate)
	}
	if si.PeriodStart != "" || si.PeriodEnd != "" {
		out.TimingPeriod = &r4.Period{Start: DateOnly(si.PeriodStart), End: DateOnly(si.PeriodEnd)}
	}
	if si.Reason != "" {
		out.Reason = &r4.CodeableConcept{Coding: []r4.Coding{{System: SystemClaimInfoCat, Code: si.Reason}}}
	}

	switch si.Category {
	case "chief-complaint":
		// the only category whose code field may be free text
		if si.Code != "" {
			out.Code = codedConcept(si.System, si.Code, si.Display, r4.SystemICD10AM)
		} else if si.ValueString != "" {
			out.Code = &r4.CodeableConcept{Text: si.ValueString}
		} else {
			out.Code = &r4.CodeableConcept{Text: defaultChiefComplaintText}
		}
		return out, true, nil

	case "onset":
		code := si.Code
		if code == "" {
			code = si.DiagnosisCode
		}
		if code == "" {
			return out, false, nil
		}
		out.Code = codedConcept(si.System, code, si.Display, r4.SystemICD10AM)
		return out, true, nil

	case "investigation-result":
		code := si.Code
		if !validInvestigationResults[code] {
			code = defaultInvestigationResult
		}
		out.Code = codedConcept("", code, "", SystemInvestigation)
		return out, true, nil

	case "attachment":
		if si.Attachment == nil {
			return out, false, nil
		}
		out.ValueAttachment = &r4.Attachment{
			ContentType: si.Attachment.ContentType,
			Data:        si.Attachment.Data,
			Title:       si.Attachment.Title,
			Creation:    DateOnly(si.Attachment.Creation),
		}
		return out, true, nil
	}

	if unit, ok := quantityUnits[si.Category]; ok {
		if si.ValueQuantity == nil {
			return out, false, nil
		}
		code := unit
		if si.Unit != "" {
			code = si.Unit
		}
		out.ValueQuantity = &r4.Quantity{Value: *si.ValueQuantity, Code: code, System: r4.SystemUCUM}
		return out, true, nil
	}

	if si.ValueBoolean != nil {
		out.ValueBoolean = si.ValueBoolean
		return out, true, nil
	}
	if si.Code != "" {
		out.Code = codedConcept(si.System, si.Code, si.Display, terminologyBase+si.Category)
		return out, true, nil
	}
	if si.ValueString != "" {
		if !freeTextCategories[si.Category] {
			return out, false, fmt.Errorf("%w: category %q", ErrFreeTextCode, si.Category)
		}
		out.ValueString = si.ValueString
		return out, true, nil
	}
	if out.TimingDate != "" || out.TimingPeriod != nil {
		return out, true, nil
	}
	return out, false, nil
}

func infoCategory(code string) r4.CodeableConcept {
	return r4.CodeableConcept{Coding: []r4.Coding{{System: SystemClaimInfoCat, Code: code}}}
}

// codedConcept builds a coded concept, resolving the system from the entry
// override (full URL or code-system key) or the category default.
func codedConcept(system, code, display, fallback string) *r4.CodeableConcept {
	switch {
	case system == "":
		system = fallback
	case !strings.Contains(system, "://"):
		system = terminologyBase + system
	}
	return &r4.CodeableConcept{Coding: []r4.Coding{{System: system, Code: code, Display: display}}}
}

type mandate struct {
	category string
	synth    func(req *model.ClaimRequest) r4.SupportingInfo
}

// mandatedDefaults lists the supporting-info categories the validator
// requires for a (category, use) pair, with their synthesized defaults.
func mandatedDefaults(cat model.Category, use model.UseKind) []mandate {
	chiefComplaint := mandate{"chief-complaint", func(req *model.ClaimRequest) r4.SupportingInfo {
		return r4.SupportingInfo{
			Category: infoCategory("chief-complaint"),
			Code:     &r4.CodeableConcept{Text: defaultChiefComplaintText},
		}
	}}

	switch cat {
	case model.CategoryProfessional, model.CategoryDental:
		return []mandate{chiefComplaint}
	case model.CategoryInstitutional:
		return []mandate{chiefComplaint, {"estimated-length-of-stay", func(req *model.ClaimRequest) r4.SupportingInfo {
			days := req.LengthOfStay
			if days <= 0 {
				days = defaultLengthOfStay
			}
			return r4.SupportingInfo{
				Category:      infoCategory("estimated-length-of-stay"),
				ValueQuantity: &r4.Quantity{Value: float64(days), Code: "d", System: r4.SystemUCUM},
			}
		}}}
	case model.CategoryPharmacy:
		return []mandate{{"days-supply", func(req *model.ClaimRequest) r4.SupportingInfo {
			days := req.DaysSupply
			if days <= 0 {
				days = defaultDaysSupply
			}
			return r4.SupportingInfo{
				Category:      infoCategory("days-supply"),
				ValueQuantity: &r4.Quantity{Value: float64(days), Code: "d", System: r4.SystemUCUM},
			}
		}}}
	}
	return nil
}
