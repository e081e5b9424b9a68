package r4

// Claim represents a FHIR R4 Claim resource, used for both claims and prior
// authorizations (distinguished by Use).
type Claim struct {
	ResourceType   string           `json:"resourceType"`
	ID             string           `json:"id,omitempty"`
	Meta           *Meta            `json:"meta,omitempty"`
	Extension      []Extension      `json:"extension,omitempty"`
	Identifier     []Identifier     `json:"identifier,omitempty"`
	Status         string           `json:"status,omitempty"`
	Type           *CodeableConcept `json:"type,omitempty"`
	SubType        *CodeableConcept `json:"subType,omitempty"`
	Use            string           `json:"use,omitempty"` // claim | preauthorization | predetermination
	Patient        *Reference       `json:"patient,omitempty"`
	BillablePeriod *Period          `json:"billablePeriod,omitempty"`
	Created        string           `json:"created,omitempty"`
	Insurer        *Reference       `json:"insurer,omitempty"`
	Provider       *Reference       `json:"provider,omitempty"`
	Priority       *CodeableConcept `json:"priority,omitempty"`
	Related        []ClaimRelated   `json:"related,omitempty"`
	Payee          *ClaimPayee      `json:"payee,omitempty"`
	Referral       *Reference       `json:"referral,omitempty"`
	Facility       *Reference       `json:"facility,omitempty"`
	CareTeam       []ClaimCareTeam  `json:"careTeam,omitempty"`
	SupportingInfo []SupportingInfo `json:"supportingInfo,omitempty"`
	Diagnosis      []ClaimDiagnosis `json:"diagnosis,omitempty"`
	Insurance      []ClaimInsurance `json:"insurance,omitempty"`
	Accident       *ClaimAccident   `json:"accident,omitempty"`
	Item           []ClaimItem      `json:"item,omitempty"`
	Total          *Money           `json:"total,omitempty"`
}

// ClaimRelated links a claim to a prior claim or authorization.
type ClaimRelated struct {
	Claim        *Reference       `json:"claim,omitempty"`
	Relationship *CodeableConcept `json:"relationship,omitempty"`
	Reference    *Identifier      `json:"reference,omitempty"`
}

// ClaimPayee designates the recipient of any payment.
type ClaimPayee struct {
	Type  CodeableConcept `json:"type"`
	Party *Reference      `json:"party,omitempty"`
}

// ClaimCareTeam names a practitioner involved in the care being billed.
type ClaimCareTeam struct {
	Sequence      int              `json:"sequence"`
	Provider      Reference        `json:"provider"`
	Responsible   bool             `json:"responsible,omitempty"`
	Role          *CodeableConcept `json:"role,omitempty"`
	Qualification *CodeableConcept `json:"qualification,omitempty"`
}

// SupportingInfo is a categorized fact attached to a claim. Exactly one of
// the value fields is populated, per the category's data type.
type SupportingInfo struct {
	Sequence        int              `json:"sequence"`
	Category        CodeableConcept  `json:"category"`
	Code            *CodeableConcept `json:"code,omitempty"`
	TimingDate      string           `json:"timingDate,omitempty"`
	TimingPeriod    *Period          `json:"timingPeriod,omitempty"`
	ValueString     string           `json:"valueString,omitempty"`
	ValueBoolean    *bool            `json:"valueBoolean,omitempty"`
	ValueQuantity   *Quantity        `json:"valueQuantity,omitempty"`
	ValueAttachment *Attachment      `json:"valueAttachment,omitempty"`
	ValueReference  *Reference       `json:"valueReference,omitempty"`
	Reason          *CodeableConcept `json:"reason,omitempty"`
}

// ClaimDiagnosis carries one diagnosis code on the claim.
type ClaimDiagnosis struct {
	Sequence    int               `json:"sequence"`
	Diagnosis   CodeableConcept   `json:"diagnosisCodeableConcept"`
	Type        []CodeableConcept `json:"type,omitempty"`
	OnAdmission *CodeableConcept  `json:"onAdmission,omitempty"`
	PackageCode *CodeableConcept  `json:"packageCode,omitempty"`
}

// ClaimInsurance identifies the coverage the claim is billed against.
type ClaimInsurance struct {
	Sequence      int         `json:"sequence"`
	Focal         bool        `json:"focal"`
	Identifier    *Identifier `json:"identifier,omitempty"`
	Coverage      Reference   `json:"coverage"`
	PreAuthRef    []string    `json:"preAuthRef,omitempty"`
	ClaimResponse *Reference  `json:"claimResponse,omitempty"`
}

// ClaimAccident describes an accident that triggered the claimed services.
type ClaimAccident struct {
	Date string           `json:"date,omitempty"`
	Type *CodeableConcept `json:"type,omitempty"`
}

// ClaimItem is a billable service line. Net must equal
// quantity x unitPrice x factor + tax; package items reconcile through
// their detail lines instead.
type ClaimItem struct {
	Extension           []Extension       `json:"extension,omitempty"`
	Sequence            int               `json:"sequence"`
	CareTeamSequence    []int             `json:"careTeamSequence,omitempty"`
	DiagnosisSequence   []int             `json:"diagnosisSequence,omitempty"`
	InformationSequence []int             `json:"informationSequence,omitempty"`
	ProductOrService    CodeableConcept   `json:"productOrService"`
	ServicedDate        string            `json:"servicedDate,omitempty"`
	ServicedPeriod      *Period           `json:"servicedPeriod,omitempty"`
	Quantity            *Quantity         `json:"quantity,omitempty"`
	UnitPrice           *Money            `json:"unitPrice,omitempty"`
	Factor              float64           `json:"factor,omitempty"`
	Net                 *Money            `json:"net,omitempty"`
	BodySite            *CodeableConcept  `json:"bodySite,omitempty"`
	SubSite             []CodeableConcept `json:"subSite,omitempty"`
	Detail              []ClaimItemDetail `json:"detail,omitempty"`
}

// ClaimItemDetail is a sub-line of a package item.
type ClaimItemDetail struct {
	Extension        []Extension     `json:"extension,omitempty"`
	Sequence         int             `json:"sequence"`
	ProductOrService CodeableConcept `json:"productOrService"`
	Quantity         *Quantity       `json:"quantity,omitempty"`
	UnitPrice        *Money          `json:"unitPrice,omitempty"`
	Factor           float64         `json:"factor,omitempty"`
	Net              *Money          `json:"net,omitempty"`
}
