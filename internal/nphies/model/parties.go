package model

// Patient is the beneficiary of the claim or authorization.
type Patient struct {
	ID            string `json:"id,omitempty"`      // national/iqama/border number
	IDType        string `json:"id_type,omitempty"` // NI | PRC | BN | DP
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	FullName      string `json:"full_name,omitempty"`
	Gender        string `json:"gender,omitempty"`
	BirthDate     string `json:"birth_date,omitempty"`
	MaritalStatus string `json:"marital_status,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Occupation    string `json:"occupation,omitempty"`
}

// Provider is the care-delivery organization submitting the request.
type Provider struct {
	License string `json:"license,omitempty"` // exchange-issued provider license
	Name    string `json:"name,omitempty"`
	Type    string `json:"type,omitempty"` // practice code, e.g. 5 (clinic), 1 (hospital)
}

// Insurer is the payer organization adjudicating the request.
type Insurer struct {
	License string `json:"license,omitempty"` // exchange-issued payer license
	Name    string `json:"name,omitempty"`
}

// Coverage links the patient to the insurer's policy.
type Coverage struct {
	ID           string `json:"id,omitempty"`
	MemberID     string `json:"member_id,omitempty"`
	PolicyNumber string `json:"policy_number,omitempty"`
	Type         string `json:"type,omitempty"`         // EHCPOL | PUBLICPOL | ...
	Relationship string `json:"relationship,omitempty"` // self | spouse | child | ...
	Network      string `json:"network,omitempty"`
	PlanClass    string `json:"plan_class,omitempty"`
	PeriodStart  string `json:"period_start,omitempty"`
	PeriodEnd    string `json:"period_end,omitempty"`
}

// Practitioner is the clinician responsible for the care being billed.
type Practitioner struct {
	License   string `json:"license,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	FullName  string `json:"full_name,omitempty"`
	Role      string `json:"role,omitempty"`      // primary | assist | ...
	Specialty string `json:"specialty,omitempty"` // practice code
}

// PolicyHolder is the organization holding the insurance policy,
// usually the patient's employer.
type PolicyHolder struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// DisplayName returns the patient's display name.
func (p *Patient) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	if p.FirstName == "" {
		return p.LastName
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// DisplayName returns the practitioner's display name.
func (p *Practitioner) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	if p.FirstName == "" {
		return p.LastName
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
