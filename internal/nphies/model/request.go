// Package model defines the category-agnostic claim/authorization input
// model submitted by callers before encoding.
package model

import "time"

// Category identifies the claim category. The set is closed; the dispatcher
// normalizes synonyms and infers a category when none is given.
type Category string

const (
	CategoryProfessional  Category = "professional"
	CategoryInstitutional Category = "institutional"
	CategoryDental        Category = "dental"
	CategoryVision        Category = "vision"
	CategoryPharmacy      Category = "pharmacy"
)

// UseKind distinguishes a prior authorization from a claim.
type UseKind string

const (
	UsePreauthorization UseKind = "preauthorization"
	UseClaim            UseKind = "claim"
)

// ClaimRequest is the input to an encode call. Exactly one Use applies per
// request and the category is fixed for the request's lifetime.
type ClaimRequest struct {
	RequestNumber string   `json:"request_number"`
	Use           UseKind  `json:"use"`
	Category      Category `json:"category,omitempty"`  // empty: inferred
	AuthType      string   `json:"auth_type,omitempty"` // explicit category hint
	Priority      string   `json:"priority,omitempty"`  // stat | normal | deferred
	Currency      string   `json:"currency,omitempty"`  // default SAR
	SubType       string   `json:"sub_type,omitempty"`  // ip | op | emr

	Created            time.Time `json:"created,omitempty"`
	BillablePeriodFrom string    `json:"billable_period_from,omitempty"`
	BillablePeriodTo   string    `json:"billable_period_to,omitempty"`

	EncounterClass     string `json:"encounter_class,omitempty"` // ambulatory | inpatient | daycase | emergency | home | virtual
	EncounterStart     string `json:"encounter_start,omitempty"`
	EncounterEnd       string `json:"encounter_end,omitempty"`
	AdmitSource        string `json:"admit_source,omitempty"`
	AdmissionSpecialty string `json:"admission_specialty,omitempty"`
	ServiceEventType   string `json:"service_event_type,omitempty"` // dental encounters
	TriageCategory     string `json:"triage_category,omitempty"`    // emergency encounters
	TriageDate         string `json:"triage_date,omitempty"`

	IsNewborn      bool `json:"is_newborn,omitempty"`
	IsUpdate       bool `json:"is_update,omitempty"`
	IsResubmission bool `json:"is_resubmission,omitempty"`
	IsTransfer     bool `json:"is_transfer,omitempty"`

	BirthWeight  float64 `json:"birth_weight,omitempty"` // grams
	DaysSupply   int     `json:"days_supply,omitempty"`
	LengthOfStay int     `json:"length_of_stay,omitempty"` // estimated, days

	Episode          string `json:"episode,omitempty"`
	AccountingPeriod string `json:"accounting_period,omitempty"` // YYYY-MM; day forced to 01

	BatchIdentifier string `json:"batch_identifier,omitempty"`
	BatchNumber     int    `json:"batch_number,omitempty"`
	BatchPeriodFrom string `json:"batch_period_from,omitempty"`
	BatchPeriodTo   string `json:"batch_period_to,omitempty"`

	// Prior-authorization linkage for claims.
	PreAuthRef        string `json:"pre_auth_ref,omitempty"`
	PreAuthResponseID string `json:"pre_auth_response_id,omitempty"`

	// Eligibility linkage.
	EligibilityResponseID  string `json:"eligibility_response_id,omitempty"`
	EligibilityResponseRef string `json:"eligibility_response_ref,omitempty"`
	EligibilityOfflineID   string `json:"eligibility_offline_id,omitempty"`
	EligibilityOfflineDate string `json:"eligibility_offline_date,omitempty"`

	Total float64 `json:"total,omitempty"` // fallback when no items are present

	Diagnoses      []Diagnosis      `json:"diagnoses,omitempty"`
	SupportingInfo []SupportingInfo `json:"supporting_info,omitempty"`
	Items          []Item           `json:"items,omitempty"`
	Attachments    []Attachment     `json:"attachments,omitempty"`

	VisionPrescription *VisionPrescription `json:"vision_prescription,omitempty"`

	Patient       *Patient      `json:"patient,omitempty"`
	MotherPatient *Patient      `json:"mother_patient,omitempty"` // required when IsNewborn
	Provider      *Provider     `json:"provider,omitempty"`
	Insurer       *Insurer      `json:"insurer,omitempty"`
	Coverage      *Coverage     `json:"coverage,omitempty"`
	Practitioner  *Practitioner `json:"practitioner,omitempty"`
	PolicyHolder  *PolicyHolder `json:"policy_holder,omitempty"`
}

// Diagnosis is one coded diagnosis on the request.
type Diagnosis struct {
	Code        string `json:"code"`
	Display     string `json:"display,omitempty"`
	Type        string `json:"type,omitempty"`         // principal | secondary
	OnAdmission string `json:"on_admission,omitempty"` // y | n | u — mandatory for institutional
}

// SupportingInfo is a category-tagged fact attached to the request. At most
// one value field is set per entry; sequence numbers are reassigned by the
// encoder from final list position.
type SupportingInfo struct {
	Category      string      `json:"category"`
	Code          string      `json:"code,omitempty"`
	System        string      `json:"system,omitempty"`
	Display       string      `json:"display,omitempty"`
	ValueString   string      `json:"value_string,omitempty"`
	ValueQuantity *float64    `json:"value_quantity,omitempty"`
	Unit          string      `json:"unit,omitempty"`
	ValueBoolean  *bool       `json:"value_boolean,omitempty"`
	TimingDate    string      `json:"timing_date,omitempty"`
	PeriodStart   string      `json:"period_start,omitempty"`
	PeriodEnd     string      `json:"period_end,omitempty"`
	Reason        string      `json:"reason,omitempty"`
	Attachment    *Attachment `json:"attachment,omitempty"`
	DiagnosisCode string      `json:"diagnosis_code,omitempty"` // onset entries
}

// Item is one billable line.
type Item struct {
	Sequence     int     `json:"sequence,omitempty"`
	Code         string  `json:"code"`
	CodeSystem   string  `json:"code_system,omitempty"` // service code system key
	Display      string  `json:"display,omitempty"`
	IsMedication bool    `json:"is_medication,omitempty"`
	ServicedDate string  `json:"serviced_date,omitempty"`
	Quantity     float64 `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	Factor       float64 `json:"factor,omitempty"` // default 1
	Tax          float64 `json:"tax,omitempty"`
	PatientShare float64 `json:"patient_share,omitempty"`

	DiagnosisSequence []int `json:"diagnosis_sequence,omitempty"`

	IsPackage bool         `json:"is_package,omitempty"`
	Details   []ItemDetail `json:"details,omitempty"` // required when IsPackage

	IsMaternity    bool   `json:"is_maternity,omitempty"`
	PatientInvoice string `json:"patient_invoice,omitempty"` // claims only

	// Dental tooth coding.
	ToothNumber  string `json:"tooth_number,omitempty"`
	ToothSurface string `json:"tooth_surface,omitempty"`

	// Professional body sites.
	BodySite string `json:"body_site,omitempty"`
	SubSite  string `json:"sub_site,omitempty"`

	// Pharmacy.
	PrescribedMedication      string `json:"prescribed_medication,omitempty"`
	PharmacistSelectionReason string `json:"pharmacist_selection_reason,omitempty"`
	PharmacistSubstitute      string `json:"pharmacist_substitute,omitempty"`
}

// Net computes the line net: quantity x unitPrice x factor + tax, rounded to
// two decimal places. A zero factor counts as 1.
func (i Item) Net() float64 {
	factor := i.Factor
	if factor == 0 {
		factor = 1
	}
	return round2(i.Quantity*i.UnitPrice*factor + i.Tax)
}

// ItemDetail is a sub-line of a package item.
type ItemDetail struct {
	Sequence   int     `json:"sequence,omitempty"`
	Code       string  `json:"code"`
	CodeSystem string  `json:"code_system,omitempty"`
	Display    string  `json:"display,omitempty"`
	Quantity   float64 `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	Factor     float64 `json:"factor,omitempty"`
	Tax        float64 `json:"tax,omitempty"`
}

// Net computes the detail net under the same rule as Item.Net.
func (d ItemDetail) Net() float64 {
	factor := d.Factor
	if factor == 0 {
		factor = 1
	}
	return round2(d.Quantity*d.UnitPrice*factor + d.Tax)
}

// Attachment is binary content supplied with the request.
type Attachment struct {
	ContentType string `json:"content_type"`
	Data        string `json:"data"` // base64
	Title       string `json:"title,omitempty"`
	Creation    string `json:"creation,omitempty"`
}

// VisionPrescription carries lens specification data; its presence marks a
// request as vision when no category is given.
type VisionPrescription struct {
	DateWritten string     `json:"date_written,omitempty"`
	Prescriber  string     `json:"prescriber,omitempty"`
	LensSpecs   []LensSpec `json:"lens_specs,omitempty"`
}

// LensSpec is one eye's lens specification.
type LensSpec struct {
	Eye      string  `json:"eye"` // right | left
	Product  string  `json:"product,omitempty"`
	Sphere   float64 `json:"sphere,omitempty"`
	Cylinder float64 `json:"cylinder,omitempty"`
	Axis     int     `json:"axis,omitempty"`
	Add      float64 `json:"add,omitempty"`
}

// ItemNetTotal sums item nets (detail nets for package items), rounded to
// two decimal places.
func (r *ClaimRequest) ItemNetTotal() float64 {
	var total float64
	for _, item := range r.Items {
		if item.IsPackage && len(item.Details) > 0 {
			for _, d := range item.Details {
				total += d.Net()
			}
			continue
		}
		total += item.Net()
	}
	return round2(total)
}

func round2(v float64) float64 {
	if v < 0 {
		return float64(int64(v*100-0.5)) / 100
	}
	return float64(int64(v*100+0.5)) / 100
}
