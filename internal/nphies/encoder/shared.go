package encoder

import (
	"fmt"

	r4 "github.com/sahlcare/go-nphies/internal/fhir/r4"
	"github.com/sahlcare/go-nphies/internal/nphies/model"
)

// buildMessageHeader builds the first entry of every outbound bundle. The
// destination endpoint is the payer's license URL; the source endpoint is
// the provider authority.
func (b *builder) buildMessageHeader(req *model.ClaimRequest, ids *ResourceIDs, headerID, event string) *r4.MessageHeader {
	insurer := b.insurerLicense(req)
	return &r4.MessageHeader{
		ResourceType: "MessageHeader",
		ID:           headerID,
		Meta:         &r4.Meta{Profile: []string{profileBase + "message-header" + profileVersion}},
		EventCoding:  &r4.Coding{System: SystemMessageEvents, Code: event},
		Destination: []r4.MessageDestination{{
			Endpoint: SystemPayerLicense + "/" + insurer,
			Receiver: b.ref("Organization", ids.Insurer),
		}},
		Sender: b.ref("Organization", ids.Provider),
		Source: &r4.MessageSource{Endpoint: b.opts.BaseURL},
		Focus:  []r4.Reference{*b.ref("Claim", ids.Claim)},
	}
}

// buildPatient maps a domain patient to its bundle entry resource.
func (b *builder) buildPatient(p *model.Patient, id string) *r4.Patient {
	out := &r4.Patient{
		ResourceType: "Patient",
		ID:           id,
		Meta:         &r4.Meta{Profile: []string{profileBase + "patient" + profileVersion}},
		Active:       true,
		Gender:       p.Gender,
		BirthDate:    DateOnly(p.BirthDate),
	}
	if p.ID != "" {
		out.Identifier = []r4.Identifier{{
			Type: &r4.CodeableConcept{Coding: []r4.Coding{{
				System: "http://terminology.hl7.org/CodeSystem/v2-0203",
				Code:   identityTypeCode(p.IDType),
			}}},
			System: patientIdentitySystem(p.IDType),
			Value:  p.ID,
		}}
	}
	if name := p.DisplayName(); name != "" {
		hn := r4.HumanName{Use: "official", Text: name, Family: p.LastName}
		if p.FirstName != "" {
			hn.Given = []string{p.FirstName}
		}
		out.Name = []r4.HumanName{hn}
	}
	if p.Phone != "" {
		out.Telecom = []r4.ContactPoint{{System: "phone", Value: p.Phone}}
	}
	if p.MaritalStatus != "" {
		out.MaritalStatus = &r4.CodeableConcept{Coding: []r4.Coding{{
			System: "http://terminology.hl7.org/CodeSystem/v3-MaritalStatus",
			Code:   p.MaritalStatus,
		}}}
	}
	return out
}

func identityTypeCode(idType string) string {
	switch idType {
	case "PRC":
		return "PRC"
	case "BN":
		return "BN"
	case "DP":
		return "PPN"
	default:
		return "NI"
	}
}

// buildProviderOrganization builds the submitting provider Organization.
func (b *builder) buildProviderOrganization(req *model.ClaimRequest, id string) *r4.Organization {
	name, typeCode := "", "5"
	if req.Provider != nil {
		name = req.Provider.Name
		if req.Provider.Type != "" {
			typeCode = req.Provider.Type
		}
	}
	return &r4.Organization{
		ResourceType: "Organization",
		ID:           id,
		Meta:         &r4.Meta{Profile: []string{profileBase + "provider-organization" + profileVersion}},
		Identifier:   []r4.Identifier{{System: SystemProviderLicense, Value: b.providerLicense(req)}},
		Active:       true,
		Type: []r4.CodeableConcept{{Coding: []r4.Coding{{
			System: terminologyBase + "organization-type",
			Code:   "prov",
		}}, Text: typeCode}},
		Name: name,
	}
}

// buildInsurerOrganization builds the payer Organization.
func (b *builder) buildInsurerOrganization(req *model.ClaimRequest, id string) *r4.Organization {
	name := ""
	if req.Insurer != nil {
		name = req.Insurer.Name
	}
	return &r4.Organization{
		ResourceType: "Organization",
		ID:           id,
		Meta:         &r4.Meta{Profile: []string{profileBase + "insurer-organization" + profileVersion}},
		Identifier:   []r4.Identifier{{System: SystemPayerLicense, Value: b.insurerLicense(req)}},
		Active:       true,
		Type: []r4.CodeableConcept{{Coding: []r4.Coding{{
			System: terminologyBase + "organization-type",
			Code:   "ins",
		}}}},
		Name: name,
	}
}

// buildPolicyHolder builds the policy-holder Organization (usually the
// patient's employer).
func (b *builder) buildPolicyHolder(ph *model.PolicyHolder, id string) *r4.Organization {
	return &r4.Organization{
		ResourceType: "Organization",
		ID:           id,
		Meta:         &r4.Meta{Profile: []string{profileBase + "policyholder-organization" + profileVersion}},
		Identifier:   []r4.Identifier{{System: b.opts.BaseURL + "/policyholder", Value: ph.ID}},
		Active:       true,
		Name:         ph.Name,
	}
}

// buildCoverage maps the domain coverage, defaulting type to EHCPOL and
// relationship to self.
func (b *builder) buildCoverage(req *model.ClaimRequest, ids *ResourceIDs) *r4.Coverage {
	cov := req.Coverage
	if cov == nil {
		cov = &model.Coverage{}
	}
	out := &r4.Coverage{
		ResourceType: "Coverage",
		ID:           ids.Coverage,
		Meta:         &r4.Meta{Profile: []string{profileBase + "coverage" + profileVersion}},
		Identifier:   []r4.Identifier{{System: b.opts.BaseURL + "/memberid", Value: cov.MemberID}},
		Status:       "active",
		Type:         &r4.CodeableConcept{Coding: []r4.Coding{coverageTypeCoding(cov.Type)}},
		SubscriberID: cov.MemberID,
		Beneficiary:  b.ref("Patient", ids.Patient),
		Relationship: &r4.CodeableConcept{Coding: []r4.Coding{relationshipCoding(cov.Relationship)}},
		Payor:        []r4.Reference{*b.ref("Organization", ids.Insurer)},
		Network:      cov.Network,
	}
	if ids.PolicyHolder != "" {
		out.PolicyHolder = b.ref("Organization", ids.PolicyHolder)
	}
	// Newborns ride on the mother's coverage until registered.
	if ids.MotherPatient != "" {
		out.Subscriber = b.ref("Patient", ids.MotherPatient)
	} else {
		out.Subscriber = b.ref("Patient", ids.Patient)
	}
	if cov.PeriodStart != "" || cov.PeriodEnd != "" {
		out.Period = &r4.Period{Start: DateOnly(cov.PeriodStart), End: DateOnly(cov.PeriodEnd)}
	}
	if cov.PlanClass != "" {
		out.Class = []r4.CoverageClass{{
			Type:  r4.CodeableConcept{Coding: []r4.Coding{{System: r4.SystemCoverageClass, Code: "plan"}}},
			Value: cov.PolicyNumber,
			Name:  cov.PlanClass,
		}}
	}
	return out
}

// buildPractitioner maps the responsible clinician.
func (b *builder) buildPractitioner(p *model.Practitioner, id string) *r4.Practitioner {
	out := &r4.Practitioner{
		ResourceType: "Practitioner",
		ID:           id,
		Meta:         &r4.Meta{Profile: []string{profileBase + "practitioner" + profileVersion}},
		Identifier: []r4.Identifier{{
			Type: &r4.CodeableConcept{Coding: []r4.Coding{{
				System: "http://terminology.hl7.org/CodeSystem/v2-0203",
				Code:   "MD",
			}}},
			System: licenseBase + "practitioner-license",
			Value:  p.License,
		}},
		Active: true,
	}
	if name := p.DisplayName(); name != "" {
		hn := r4.HumanName{Use: "official", Text: name, Family: p.LastName}
		if p.FirstName != "" {
			hn.Given = []string{p.FirstName}
		}
		out.Name = []r4.HumanName{hn}
	}
	return out
}

// buildBinary wraps an attachment as a Binary resource entry.
func (b *builder) buildBinary(att model.Attachment, id string) *r4.Binary {
	return &r4.Binary{
		ResourceType: "Binary",
		ID:           id,
		ContentType:  att.ContentType,
		Data:         att.Data,
	}
}

// claimCore builds the fields present on every claim/authorization category.
// Category encoders extend the result with their conditional extensions,
// diagnoses, supporting info and items.
func (b *builder) claimCore(req *model.ClaimRequest, ids *ResourceIDs, cat model.Category, subType string) *r4.Claim {
	claim := &r4.Claim{
		ResourceType: "Claim",
		ID:           ids.Claim,
		Meta:         &r4.Meta{Profile: []string{profileFor(cat, req.Use)}},
		Identifier:   []r4.Identifier{{System: b.opts.BaseURL + "/claim", Value: req.RequestNumber}},
		Status:       "active",
		Type:         &r4.CodeableConcept{Coding: []r4.Coding{claimTypeCoding(cat)}},
		SubType:      &r4.CodeableConcept{Coding: []r4.Coding{subTypeCoding(subType)}},
		Use:          string(req.Use),
		Patient:      b.ref("Patient", ids.Patient),
		Created:      DateTimeOffset(b.createdAt(req)),
		Insurer:      b.ref("Organization", ids.Insurer),
		Provider:     b.ref("Organization", ids.Provider),
		Priority:     &r4.CodeableConcept{Coding: []r4.Coding{priorityCoding(req.Priority)}},
		Payee: &r4.ClaimPayee{
			Type: r4.CodeableConcept{Coding: []r4.Coding{{System: r4.SystemPayeeType, Code: "provider"}}},
		},
		Insurance: b.buildInsurance(req, ids),
	}
	if req.BillablePeriodFrom != "" || req.BillablePeriodTo != "" {
		claim.BillablePeriod = &r4.Period{
			Start: DateOnly(req.BillablePeriodFrom),
			End:   DateOnly(req.BillablePeriodTo),
		}
	}
	if req.Practitioner != nil && ids.Practitioner != "" {
		role := req.Practitioner.Role
		if role == "" {
			role = "primary"
		}
		ct := r4.ClaimCareTeam{
			Sequence: 1,
			Provider: *b.ref("Practitioner", ids.Practitioner),
			Role: &r4.CodeableConcept{Coding: []r4.Coding{{
				System: "http://terminology.hl7.org/CodeSystem/claimcareteamrole",
				Code:   role,
			}}},
		}
		if req.Practitioner.Specialty != "" {
			ct.Qualification = &r4.CodeableConcept{Coding: []r4.Coding{practiceCoding(req.Practitioner.Specialty)}}
		}
		claim.CareTeam = []r4.ClaimCareTeam{ct}
	}
	claim.Total = b.claimTotal(req)
	return claim
}

// claimTotal equals the sum of item nets when items are present, falling
// back to the caller-supplied total.
func (b *builder) claimTotal(req *model.ClaimRequest) *r4.Money {
	value := req.Total
	if len(req.Items) > 0 {
		value = req.ItemNetTotal()
	}
	return &r4.Money{Value: value, Currency: b.currency(req)}
}

// buildInsurance builds the single focal insurance line. Claims referencing
// an approved prior authorization carry its reference as preAuthRef.
func (b *builder) buildInsurance(req *model.ClaimRequest, ids *ResourceIDs) []r4.ClaimInsurance {
	ins := r4.ClaimInsurance{
		Sequence: 1,
		Focal:    true,
		Coverage: *b.ref("Coverage", ids.Coverage),
	}
	if req.Use == model.UseClaim && req.PreAuthRef != "" {
		ins.PreAuthRef = []string{req.PreAuthRef}
	}
	return []r4.ClaimInsurance{ins}
}

// buildDiagnoses maps the diagnosis list. Institutional claims require the
// on-admission coding on every diagnosis; all other categories omit it.
func buildDiagnoses(req *model.ClaimRequest, withOnAdmission bool) []r4.ClaimDiagnosis {
	out := make([]r4.ClaimDiagnosis, 0, len(req.Diagnoses))
	for i, d := range req.Diagnoses {
		diag := r4.ClaimDiagnosis{
			Sequence: i + 1,
			Diagnosis: r4.CodeableConcept{Coding: []r4.Coding{{
				System:  r4.SystemICD10AM,
				Code:    d.Code,
				Display: d.Display,
			}}},
			Type: []r4.CodeableConcept{{Coding: []r4.Coding{diagnosisTypeCoding(d.Type)}}},
		}
		if withOnAdmission {
			diag.OnAdmission = &r4.CodeableConcept{Coding: []r4.Coding{onAdmissionCoding(d.OnAdmission)}}
		}
		out = append(out, diag)
	}
	return out
}

// itemExtras produces category-specific extensions for one item line.
type itemExtras func(item model.Item) []r4.Extension

// buildItems maps the billable lines. Package items reconcile through their
// detail lines; every line's net follows quantity x unitPrice x factor + tax.
func (b *builder) buildItems(req *model.ClaimRequest, cat model.Category, extras itemExtras) ([]r4.ClaimItem, error) {
	currency := b.currency(req)
	out := make([]r4.ClaimItem, 0, len(req.Items))
	for i, item := range req.Items {
		if cat == model.CategoryPharmacy && item.Code == "" {
			return nil, fmt.Errorf("%w: item %d", ErrMissingMedicationCode, i+1)
		}
		seq := item.Sequence
		if seq == 0 {
			seq = i + 1
		}
		line := r4.ClaimItem{
			Sequence:          seq,
			DiagnosisSequence: item.DiagnosisSequence,
			ProductOrService:  r4.CodeableConcept{Coding: []r4.Coding{serviceCoding(cat, item)}},
			ServicedDate:      DateOnly(item.ServicedDate),
			Quantity:          &r4.Quantity{Value: item.Quantity},
			UnitPrice:         &r4.Money{Value: item.UnitPrice, Currency: currency},
		}
		if item.Factor != 0 && item.Factor != 1 {
			line.Factor = item.Factor
		}
		if len(req.Diagnoses) > 0 && len(line.DiagnosisSequence) == 0 {
			line.DiagnosisSequence = []int{1}
		}
		if len(claimCareTeamSequence(req)) > 0 {
			line.CareTeamSequence = claimCareTeamSequence(req)
		}

		net := item.Net()
		if item.IsPackage {
			details, sum := b.buildItemDetails(item, currency)
			line.Detail = details
			net = sum
		}
		line.Net = &r4.Money{Value: net, Currency: currency}

		switch cat {
		case model.CategoryDental:
			if item.ToothNumber != "" {
				line.BodySite = &r4.CodeableConcept{Coding: []r4.Coding{toothCoding(item.ToothNumber)}}
			}
			if item.ToothSurface != "" {
				line.SubSite = []r4.CodeableConcept{{Coding: []r4.Coding{toothSurfaceCoding(item.ToothSurface)}}}
			}
		case model.CategoryProfessional:
			if item.BodySite != "" {
				line.BodySite = &r4.CodeableConcept{Coding: []r4.Coding{bodySiteCoding(item.BodySite)}}
			}
			if item.SubSite != "" {
				line.SubSite = []r4.CodeableConcept{{Coding: []r4.Coding{bodySiteCoding(item.SubSite)}}}
			}
		}

		line.Extension = b.commonItemExtensions(req, item, currency)
		if extras != nil {
			line.Extension = append(line.Extension, extras(item)...)
		}
		out = append(out, line)
	}
	return out, nil
}

func claimCareTeamSequence(req *model.ClaimRequest) []int {
	if req.Practitioner != nil {
		return []int{1}
	}
	return nil
}

func (b *builder) buildItemDetails(item model.Item, currency string) ([]r4.ClaimItemDetail, float64) {
	details := make([]r4.ClaimItemDetail, 0, len(item.Details))
	var sum float64
	for j, d := range item.Details {
		seq := d.Sequence
		if seq == 0 {
			seq = j + 1
		}
		net := d.Net()
		sum += net
		detail := r4.ClaimItemDetail{
			Sequence: seq,
			ProductOrService: r4.CodeableConcept{Coding: []r4.Coding{{
				System:  SystemMOHCategory,
				Code:    d.Code,
				Display: d.Display,
			}}},
			Quantity:  &r4.Quantity{Value: d.Quantity},
			UnitPrice: &r4.Money{Value: d.UnitPrice, Currency: currency},
			Net:       &r4.Money{Value: net, Currency: currency},
		}
		if d.Factor != 0 && d.Factor != 1 {
			detail.Factor = d.Factor
		}
		details = append(details, detail)
	}
	return details, round2(sum)
}

// commonItemExtensions attaches the extensions shared by all categories:
// package flag, patient share, tax, maternity, and (claims only) the
// patient invoice identifier.
func (b *builder) commonItemExtensions(req *model.ClaimRequest, item model.Item, currency string) []r4.Extension {
	var exts []r4.Extension
	if item.IsPackage {
		t := true
		exts = append(exts, r4.Extension{URL: extPackageURL, ValueBoolean: &t})
	}
	exts = append(exts,
		r4.Extension{URL: extPatientShareURL, ValueMoney: &r4.Money{Value: item.PatientShare, Currency: currency}},
		r4.Extension{URL: extTaxURL, ValueMoney: &r4.Money{Value: item.Tax, Currency: currency}},
	)
	if item.IsMaternity {
		t := true
		exts = append(exts, r4.Extension{URL: extMaternityURL, ValueBoolean: &t})
	}
	if req.Use == model.UseClaim && item.PatientInvoice != "" {
		exts = append(exts, r4.Extension{
			URL:             extPatientInvoiceURL,
			ValueIdentifier: &r4.Identifier{System: b.opts.BaseURL + "/patientInvoice", Value: item.PatientInvoice},
		})
	}
	return exts
}

func round2(v float64) float64 {
	if v < 0 {
		return float64(int64(v*100-0.5)) / 100
	}
	return float64(int64(v*100+0.5)) / 100
}
