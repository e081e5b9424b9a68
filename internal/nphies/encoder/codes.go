// Package encoder translates the internal claim/authorization model into
// exchange-compliant FHIR message bundles, one encoder per claim category.
package encoder

import (
	r4 "github.com/sahlcare/go-nphies/internal/fhir/r4"
	"github.com/sahlcare/go-nphies/internal/nphies/model"
)

// NPHIES profile and terminology authorities.
const (
	profileBase     = "http://nphies.sa/fhir/ksa/nphies-fs/StructureDefinition/"
	profileVersion  = "|1.0.0"
	terminologyBase = "http://nphies.sa/terminology/CodeSystem/"
	licenseBase     = "http://nphies.sa/license/"

	SystemMessageEvents   = terminologyBase + "ksa-message-events"
	SystemClaimSubType    = terminologyBase + "claim-subtype"
	SystemClaimInfoCat    = terminologyBase + "claim-information-category"
	SystemKSAAdjudication = terminologyBase + "ksa-adjudication"
	SystemPracticeCodes   = terminologyBase + "practice-codes"
	SystemAdmitSource     = terminologyBase + "admit-source"
	SystemCancelReason    = terminologyBase + "task-reason-code"
	SystemServiceEvent    = terminologyBase + "service-event-type"
	SystemTriageCategory  = terminologyBase + "triage-category"
	SystemFDIOralRegion   = terminologyBase + "fdi-oral-region"
	SystemToothSurface    = terminologyBase + "tooth-surface"
	SystemBodySite        = terminologyBase + "body-site"
	SystemMOHCategory     = terminologyBase + "moh-category"
	SystemMedicationCode  = terminologyBase + "medication-codes"
	SystemOralHealthOP    = terminologyBase + "oral-health-op"
	SystemLensType        = terminologyBase + "lens-type"
	SystemInvestigation   = terminologyBase + "investigation-result"
	SystemSelectionReason = terminologyBase + "pharmacist-selection-reason"

	SystemProviderLicense = licenseBase + "provider-license"
	SystemPayerLicense    = licenseBase + "payer-license"
	SystemPatientIdentity = licenseBase + "patient-identity" // identity document systems hang off this

	// Message event codes.
	EventPriorAuthRequest  = "priorauth-request"
	EventPriorAuthResponse = "priorauth-response"
	EventClaimRequest      = "claim-request"
	EventClaimResponse     = "claim-response"
	EventCancelRequest     = "cancel-request"
	EventCancelResponse    = "cancel-response"
)

// profileFor returns the canonical profile URL for a category/use pair.
func profileFor(cat model.Category, use model.UseKind) string {
	name := map[model.Category]string{
		model.CategoryProfessional:  "professional",
		model.CategoryInstitutional: "institutional",
		model.CategoryDental:        "oral",
		model.CategoryVision:        "vision",
		model.CategoryPharmacy:      "pharmacy",
	}[cat]
	kind := "claim"
	if use == model.UsePreauthorization {
		kind = "priorauth"
	}
	return profileBase + name + "-" + kind + profileVersion
}

// claimTypeCoding returns the claim-type coding for a category. The dental
// category maps to the "oral" wire code.
func claimTypeCoding(cat model.Category) r4.Coding {
	code := string(cat)
	display := ""
	switch cat {
	case model.CategoryProfessional:
		display = "Professional"
	case model.CategoryInstitutional:
		display = "Institutional"
	case model.CategoryDental:
		code, display = "oral", "Oral"
	case model.CategoryVision:
		display = "Vision"
	case model.CategoryPharmacy:
		display = "Pharmacy"
	}
	return r4.Coding{System: r4.SystemClaimType, Code: code, Display: display}
}

// subTypeCoding returns the ip/op/emr subtype coding.
func subTypeCoding(code string) r4.Coding {
	display := map[string]string{
		"ip":  "InPatient",
		"op":  "OutPatient",
		"emr": "Emergency",
	}[code]
	if display == "" {
		display = code
	}
	return r4.Coding{System: SystemClaimSubType, Code: code, Display: display}
}

// encounterClassCoding maps a domain encounter class to its ActCode coding.
// Unknown classes fall back to the class string itself.
func encounterClassCoding(class string) r4.Coding {
	type cd struct{ code, display string }
	m := map[string]cd{
		"ambulatory": {"AMB", "ambulatory"},
		"inpatient":  {"IMP", "inpatient encounter"},
		"daycase":    {"SS", "short stay"},
		"emergency":  {"EMER", "emergency"},
		"home":       {"HH", "home health"},
		"virtual":    {"VR", "virtual"},
	}
	if c, ok := m[class]; ok {
		return r4.Coding{System: r4.SystemActEncounter, Code: c.code, Display: c.display}
	}
	return r4.Coding{System: r4.SystemActEncounter, Code: class, Display: class}
}

// coverageTypeCoding maps a coverage type code to its display. Unknown codes
// fall back to the code itself.
func coverageTypeCoding(code string) r4.Coding {
	if code == "" {
		code = "EHCPOL"
	}
	displays := map[string]string{
		"EHCPOL":    "extended healthcare",
		"PUBLICPOL": "public healthcare",
		"SUBSIDIZ":  "subsidized health program",
		"ANNU":      "annuity policy",
	}
	display := displays[code]
	if display == "" {
		display = code
	}
	return r4.Coding{
		System:  "http://terminology.hl7.org/CodeSystem/v3-ActCode",
		Code:    code,
		Display: display,
	}
}

// relationshipCoding maps a subscriber relationship code.
func relationshipCoding(code string) r4.Coding {
	if code == "" {
		code = "self"
	}
	displays := map[string]string{
		"self":    "Self",
		"spouse":  "Spouse",
		"child":   "Child",
		"parent":  "Parent",
		"common":  "Common Law Spouse",
		"other":   "Other",
		"injured": "Injured Party",
	}
	display := displays[code]
	if display == "" {
		display = code
	}
	return r4.Coding{System: r4.SystemSubscriberRel, Code: code, Display: display}
}

// practiceCoding maps a specialty/practice code to its display.
func practiceCoding(code string) r4.Coding {
	displays := map[string]string{
		"01.00": "Internal Medicine",
		"02.00": "Pediatric",
		"03.00": "Obstetrics & Gynecology",
		"08.00": "General Surgery",
		"12.00": "Ophthalmology",
		"13.00": "ENT",
		"17.00": "Dental",
		"19.00": "Emergency Medicine",
		"22.00": "Dermatology",
	}
	display := displays[code]
	if display == "" {
		display = code
	}
	return r4.Coding{System: SystemPracticeCodes, Code: code, Display: display}
}

// admitSourceCoding maps an institutional admit source code.
func admitSourceCoding(code string) r4.Coding {
	displays := map[string]string{
		"IA":    "Immediate Admission",
		"EER":   "Admission from hospital ER",
		"EOP":   "Admission from hospital outpatient",
		"EGPHC": "From primary health center",
		"EGGH":  "From general hospital",
		"PMBA":  "Planned medical admission",
		"PSA":   "Planned surgical admission",
	}
	display := displays[code]
	if display == "" {
		display = code
	}
	return r4.Coding{System: SystemAdmitSource, Code: code, Display: display}
}

// bodySiteCoding maps professional body-site codes (hands, feet, coronary
// arteries and similar laterality sites).
func bodySiteCoding(code string) r4.Coding {
	displays := map[string]string{
		"E1": "Upper left, eyelid",
		"E2": "Lower left, eyelid",
		"E3": "Upper right, eyelid",
		"E4": "Lower right, eyelid",
		"F1": "Left hand, second digit",
		"F2": "Left hand, third digit",
		"LC": "Left circumflex coronary artery",
		"LD": "Left anterior descending coronary artery",
		"LT": "Left side",
		"RT": "Right side",
		"RC": "Right coronary artery",
		"TA": "Left foot, great toe",
	}
	display := displays[code]
	if display == "" {
		display = code
	}
	return r4.Coding{System: SystemBodySite, Code: code, Display: display}
}

// toothCoding maps an FDI tooth number.
func toothCoding(number string) r4.Coding {
	return r4.Coding{System: SystemFDIOralRegion, Code: number, Display: number}
}

// toothSurfaceCoding maps a tooth surface code.
func toothSurfaceCoding(code string) r4.Coding {
	displays := map[string]string{
		"M": "Mesial", "O": "Occlusal", "I": "Incisal", "D": "Distal",
		"B": "Buccal", "V": "Ventral", "L": "Lingual", "MO": "Mesioclusal",
		"DO": "Distoclusal", "DI": "Distoincisal", "MOD": "Mesioclusodistal",
	}
	display := displays[code]
	if display == "" {
		display = code
	}
	return r4.Coding{System: SystemToothSurface, Code: code, Display: display}
}

// serviceCoding resolves the productOrService coding for an item in the
// given category.
func serviceCoding(cat model.Category, item model.Item) r4.Coding {
	system := serviceSystem(cat, item.IsMedication, item.CodeSystem)
	return r4.Coding{System: system, Code: item.Code, Display: item.Display}
}

func serviceSystem(cat model.Category, medication bool, override string) string {
	if override != "" {
		return terminologyBase + override
	}
	if medication || cat == model.CategoryPharmacy {
		return SystemMedicationCode
	}
	switch cat {
	case model.CategoryDental:
		return SystemOralHealthOP
	case model.CategoryVision:
		return SystemLensType
	default:
		return SystemMOHCategory
	}
}

// priorityCoding maps the process priority; unknown values fall back to
// normal.
func priorityCoding(code string) r4.Coding {
	switch code {
	case "stat", "normal", "deferred":
	default:
		code = "normal"
	}
	return r4.Coding{System: r4.SystemProcessPriority, Code: code}
}

// diagnosisTypeCoding maps principal/secondary diagnosis types.
func diagnosisTypeCoding(code string) r4.Coding {
	if code == "" {
		code = "principal"
	}
	displays := map[string]string{
		"principal":    "Principal Diagnosis",
		"secondary":    "Secondary Diagnosis",
		"admitting":    "Admitting Diagnosis",
		"discharge":    "Discharge Diagnosis",
		"differential": "Differential Diagnosis",
	}
	display := displays[code]
	if display == "" {
		display = code
	}
	return r4.Coding{System: r4.SystemDiagnosisType, Code: code, Display: display}
}

// onAdmissionCoding maps the institutional diagnosis on-admission flag.
// Unknown values normalize to "u" (unknown).
func onAdmissionCoding(code string) r4.Coding {
	switch code {
	case "y", "n", "u":
	default:
		code = "u"
	}
	return r4.Coding{System: r4.SystemDiagOnAdmission, Code: code}
}

// patientIdentitySystem resolves the identity-document identifier system.
func patientIdentitySystem(idType string) string {
	switch idType {
	case "PRC":
		return licenseBase + "iqama-num"
	case "BN":
		return licenseBase + "border-num"
	case "DP":
		return licenseBase + "passport-num"
	default: // NI
		return licenseBase + "nationalid"
	}
}

// validInvestigationResults is the closed code set the validator accepts for
// investigation-result supporting info.
var validInvestigationResults = map[string]bool{
	"INP": true, // investigations pending
	"NA":  true,
}

// Claim-level and item-level extension URLs.
const (
	extEncounterURL           = profileBase + "extension-encounter"
	extEpisodeURL             = profileBase + "extension-episode"
	extTransferURL            = profileBase + "extension-transfer"
	extNewbornURL             = profileBase + "extension-newborn"
	extEligibilityOffRefURL   = profileBase + "extension-eligibility-offline-reference"
	extEligibilityOffDateURL  = profileBase + "extension-eligibility-offline-date"
	extEligibilityRespURL     = profileBase + "extension-eligibility-response"
	extAccountingPeriodURL    = profileBase + "extension-accountingPeriod"
	extBatchIdentifierURL     = profileBase + "extension-batch-identifier"
	extBatchNumberURL         = profileBase + "extension-batch-number"
	extBatchPeriodURL         = profileBase + "extension-batch-period"
	extPriorAuthRespURL       = profileBase + "extension-prior-auth-response"
	extPackageURL             = profileBase + "extension-package"
	extPatientShareURL        = profileBase + "extension-patient-share"
	extTaxURL                 = profileBase + "extension-tax"
	extPatientInvoiceURL      = profileBase + "extension-patientInvoice"
	extMaternityURL           = profileBase + "extension-maternity"
	extPrescribedMedURL       = profileBase + "extension-prescribed-medication"
	extSelectionReasonURL     = profileBase + "extension-pharmacist-selection-reason"
	extSubstituteURL          = profileBase + "extension-pharmacist-substitute"
	extServiceEventURL        = profileBase + "extension-service-event-type"
	extTriageCategoryURL      = profileBase + "extension-triage-category"
	extTriageDateURL          = profileBase + "extension-triage-date"
	extAdmissionSpecialtyURL  = profileBase + "extension-admission-specialty"
	extAdjudicationOutcomeURL = profileBase + "extension-adjudication-outcome"
	extTransferAuthURL        = profileBase + "extension-transfer-authorization-provider"
)
