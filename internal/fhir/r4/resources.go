package r4

// Patient represents a FHIR R4 Patient resource.
type Patient struct {
	ResourceType  string           `json:"resourceType"`
	ID            string           `json:"id,omitempty"`
	Meta          *Meta            `json:"meta,omitempty"`
	Extension     []Extension      `json:"extension,omitempty"`
	Identifier    []Identifier     `json:"identifier,omitempty"`
	Active        bool             `json:"active,omitempty"`
	Name          []HumanName      `json:"name,omitempty"`
	Telecom       []ContactPoint   `json:"telecom,omitempty"`
	Gender        string           `json:"gender,omitempty"` // male | female | other | unknown
	BirthDate     string           `json:"birthDate,omitempty"`
	Deceased      *bool            `json:"deceasedBoolean,omitempty"`
	Address       []Address        `json:"address,omitempty"`
	MaritalStatus *CodeableConcept `json:"maritalStatus,omitempty"`
}

// GetOfficialName returns the patient's official name, or first available.
func (p *Patient) GetOfficialName() *HumanName {
	for i := range p.Name {
		if p.Name[i].Use == "official" {
			return &p.Name[i]
		}
	}
	if len(p.Name) > 0 {
		return &p.Name[0]
	}
	return nil
}

// IdentifierValue returns the value of the first identifier carried under
// the given system, or "".
func (p *Patient) IdentifierValue(system string) string {
	for _, id := range p.Identifier {
		if id.System == system {
			return id.Value
		}
	}
	return ""
}

// Organization represents a FHIR R4 Organization resource (provider, insurer
// or policy holder).
type Organization struct {
	ResourceType string            `json:"resourceType"`
	ID           string            `json:"id,omitempty"`
	Meta         *Meta             `json:"meta,omitempty"`
	Extension    []Extension       `json:"extension,omitempty"`
	Identifier   []Identifier      `json:"identifier,omitempty"`
	Active       bool              `json:"active,omitempty"`
	Type         []CodeableConcept `json:"type,omitempty"`
	Name         string            `json:"name,omitempty"`
	Telecom      []ContactPoint    `json:"telecom,omitempty"`
	Address      []Address         `json:"address,omitempty"`
}

// LicenseValue returns the organization's license identifier value, if any.
func (o *Organization) LicenseValue() string {
	if len(o.Identifier) > 0 {
		return o.Identifier[0].Value
	}
	return ""
}

// Coverage represents a FHIR R4 Coverage resource.
type Coverage struct {
	ResourceType  string           `json:"resourceType"`
	ID            string           `json:"id,omitempty"`
	Meta          *Meta            `json:"meta,omitempty"`
	Identifier    []Identifier     `json:"identifier,omitempty"`
	Status        string           `json:"status,omitempty"`
	Type          *CodeableConcept `json:"type,omitempty"`
	PolicyHolder  *Reference       `json:"policyHolder,omitempty"`
	Subscriber    *Reference       `json:"subscriber,omitempty"`
	SubscriberID  string           `json:"subscriberId,omitempty"`
	Beneficiary   *Reference       `json:"beneficiary,omitempty"`
	Dependent     string           `json:"dependent,omitempty"`
	Relationship  *CodeableConcept `json:"relationship,omitempty"`
	Period        *Period          `json:"period,omitempty"`
	Payor         []Reference      `json:"payor,omitempty"`
	Class         []CoverageClass  `json:"class,omitempty"`
	Network       string           `json:"network,omitempty"`
	Subrogation   bool             `json:"subrogation,omitempty"`
	CostToBenefit []CostToBenefit  `json:"costToBeneficiary,omitempty"`
}

// CoverageClass holds plan/group classification of a coverage.
type CoverageClass struct {
	Type  CodeableConcept `json:"type"`
	Value string          `json:"value"`
	Name  string          `json:"name,omitempty"`
}

// CostToBenefit describes patient cost-sharing under a coverage.
type CostToBenefit struct {
	Type          *CodeableConcept `json:"type,omitempty"`
	ValueQuantity *Quantity        `json:"valueQuantity,omitempty"`
	ValueMoney    *Money           `json:"valueMoney,omitempty"`
}

// Practitioner represents a FHIR R4 Practitioner resource.
type Practitioner struct {
	ResourceType string       `json:"resourceType"`
	ID           string       `json:"id,omitempty"`
	Meta         *Meta        `json:"meta,omitempty"`
	Identifier   []Identifier `json:"identifier,omitempty"`
	Active       bool         `json:"active,omitempty"`
	Name         []HumanName  `json:"name,omitempty"`
	Gender       string       `json:"gender,omitempty"`
}

// Encounter represents a FHIR R4 Encounter resource.
type Encounter struct {
	ResourceType    string                    `json:"resourceType"`
	ID              string                    `json:"id,omitempty"`
	Meta            *Meta                     `json:"meta,omitempty"`
	Extension       []Extension               `json:"extension,omitempty"`
	Identifier      []Identifier              `json:"identifier,omitempty"`
	Status          string                    `json:"status,omitempty"` // planned | in-progress | finished | ...
	Class           *Coding                   `json:"class,omitempty"`
	ServiceType     *CodeableConcept          `json:"serviceType,omitempty"`
	Priority        *CodeableConcept          `json:"priority,omitempty"`
	Subject         *Reference                `json:"subject,omitempty"`
	Period          *Period                   `json:"period,omitempty"`
	Hospitalization *EncounterHospitalization `json:"hospitalization,omitempty"`
	ServiceProvider *Reference                `json:"serviceProvider,omitempty"`
}

// EncounterHospitalization holds the admission block required on
// institutional encounters.
type EncounterHospitalization struct {
	AdmitSource          *CodeableConcept `json:"admitSource,omitempty"`
	ReAdmission          *CodeableConcept `json:"reAdmission,omitempty"`
	DischargeDisposition *CodeableConcept `json:"dischargeDisposition,omitempty"`
	Extension            []Extension      `json:"extension,omitempty"`
}

// Task represents a FHIR R4 Task resource, used for cancel requests.
type Task struct {
	ResourceType string           `json:"resourceType"`
	ID           string           `json:"id,omitempty"`
	Meta         *Meta            `json:"meta,omitempty"`
	Identifier   []Identifier     `json:"identifier,omitempty"`
	Status       string           `json:"status,omitempty"` // requested | accepted | completed | ...
	Intent       string           `json:"intent,omitempty"` // order | plan | proposal
	Code         *CodeableConcept `json:"code,omitempty"`
	Focus        *Reference       `json:"focus,omitempty"`
	AuthoredOn   string           `json:"authoredOn,omitempty"`
	Requester    *Reference       `json:"requester,omitempty"`
	Owner        *Reference       `json:"owner,omitempty"`
	ReasonCode   *CodeableConcept `json:"reasonCode,omitempty"`
}
