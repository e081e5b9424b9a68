package encoder

import (
	"fmt"
	"strings"
	"time"

	r4 "github.com/sahlcare/go-nphies/internal/fhir/r4"
	"github.com/sahlcare/go-nphies/internal/nphies/model"
)

// Options configures an encoder registry. The defaults are read from the
// environment by the service mains; a party that arrives without an explicit
// license falls back to the configured default.
type Options struct {
	// BaseURL is the provider authority used for entry fullUrls and
	// in-bundle references, e.g. "http://provider.com.sa".
	BaseURL         string
	ProviderLicense string
	InsurerLicense  string
	// NewID generates correlation identifiers. Defaults to UUIDGenerator.
	NewID IDGenerator
	// Now supplies the clock for bundle/claim timestamps when the request
	// carries no created time. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = "http://provider.com.sa"
	}
	if o.NewID == nil {
		o.NewID = UUIDGenerator
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Encoder encodes one claim category. Implementations are stateless and safe
// to share across concurrent callers: all per-call state lives in the
// ResourceIDs arena threaded through the build.
type Encoder interface {
	Category() model.Category
	Encode(req *model.ClaimRequest) (*r4.Bundle, error)

	encodeClaim(req *model.ClaimRequest, ids *ResourceIDs) (*r4.Claim, error)
	encodeEncounter(req *model.ClaimRequest, ids *ResourceIDs) (*r4.Encounter, error)
}

// Registry holds the five category encoders plus the cancel encoder. It is
// constructed once at process start and shared by reference.
type Registry struct {
	opts     Options
	builder  *builder
	encoders map[model.Category]Encoder
}

// NewRegistry constructs a registry with one encoder instance per category.
func NewRegistry(opts Options) *Registry {
	b := &builder{opts: opts.withDefaults()}
	return &Registry{
		opts:    b.opts,
		builder: b,
		encoders: map[model.Category]Encoder{
			model.CategoryProfessional:  &professionalEncoder{builder: b},
			model.CategoryInstitutional: &institutionalEncoder{builder: b},
			model.CategoryDental:        &dentalEncoder{builder: b},
			model.CategoryVision:        &visionEncoder{builder: b},
			model.CategoryPharmacy:      &pharmacyEncoder{builder: b},
		},
	}
}

// Encoder returns the encoder for a category.
func (r *Registry) Encoder(cat model.Category) (Encoder, error) {
	if enc, ok := r.encoders[cat]; ok {
		return enc, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
}

// Resolve returns the encoder for an explicit category key, normalizing
// synonyms ("oral" -> dental, "rx" -> pharmacy, ...).
func (r *Registry) Resolve(key string) (Encoder, error) {
	cat, ok := NormalizeCategory(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, key)
	}
	return r.encoders[cat], nil
}

// ResolveRequest returns the encoder for a request, inferring the category
// from its shape when none is explicit. Inference is deterministic and
// total: every request resolves to exactly one category.
func (r *Registry) ResolveRequest(req *model.ClaimRequest) Encoder {
	return r.encoders[InferCategory(req)]
}

// Encode dispatches a request to its category encoder.
func (r *Registry) Encode(req *model.ClaimRequest) (*r4.Bundle, error) {
	return r.ResolveRequest(req).Encode(req)
}

// NormalizeCategory maps a caller-supplied category key to the canonical
// category, accepting common synonyms.
func NormalizeCategory(key string) (model.Category, bool) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "professional", "physician", "medical", "outpatient":
		return model.CategoryProfessional, true
	case "institutional", "hospital", "inpatient":
		return model.CategoryInstitutional, true
	case "dental", "oral", "oral-dental":
		return model.CategoryDental, true
	case "vision", "optical", "optometry":
		return model.CategoryVision, true
	case "pharmacy", "rx", "medication", "pharmaceutical":
		return model.CategoryPharmacy, true
	}
	return "", false
}

// InferCategory determines the claim category from the request shape:
// explicit auth type first, then encounter class, vision prescription,
// tooth-numbered items, medication items or days-supply, and finally the
// professional default.
func InferCategory(req *model.ClaimRequest) model.Category {
	if cat, ok := NormalizeCategory(string(req.Category)); ok {
		return cat
	}
	if cat, ok := NormalizeCategory(req.AuthType); ok {
		return cat
	}
	switch req.EncounterClass {
	case "inpatient", "daycase":
		return model.CategoryInstitutional
	}
	if req.VisionPrescription != nil {
		return model.CategoryVision
	}
	for _, item := range req.Items {
		if item.ToothNumber != "" {
			return model.CategoryDental
		}
	}
	if req.DaysSupply > 0 {
		return model.CategoryPharmacy
	}
	for _, item := range req.Items {
		if item.IsMedication {
			return model.CategoryPharmacy
		}
	}
	return model.CategoryProfessional
}

// builder carries the registry options into the shared resource builders.
type builder struct {
	opts Options
}

// url builds the fully-qualified reference for a resource, matching the
// bundle fullUrl scheme.
func (b *builder) url(resourceType, id string) string {
	return b.opts.BaseURL + "/" + resourceType + "/" + id
}

func (b *builder) ref(resourceType, id string) *r4.Reference {
	return &r4.Reference{Reference: b.url(resourceType, id)}
}

// createdAt returns the request's creation time, falling back to the clock.
func (b *builder) createdAt(req *model.ClaimRequest) time.Time {
	if !req.Created.IsZero() {
		return req.Created
	}
	return b.opts.Now()
}

func (b *builder) currency(req *model.ClaimRequest) string {
	if req.Currency != "" {
		return req.Currency
	}
	return "SAR"
}

func (b *builder) providerLicense(req *model.ClaimRequest) string {
	if req.Provider != nil && req.Provider.License != "" {
		return req.Provider.License
	}
	return b.opts.ProviderLicense
}

func (b *builder) insurerLicense(req *model.ClaimRequest) string {
	if req.Insurer != nil && req.Insurer.License != "" {
		return req.Insurer.License
	}
	return b.opts.InsurerLicense
}

// encodeBundle runs the shared assembly for one category encoder: allocate
// the identifier arena, build the claim, encounter and party resources, and
// order the entries. orgsFirst places the Organization entries ahead of the
// Claim for categories whose facility reference is validated against them.
func (b *builder) encodeBundle(enc Encoder, req *model.ClaimRequest, orgsFirst bool) (*r4.Bundle, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	cat := enc.Category()

	bundleID := b.opts.NewID()
	headerID := b.opts.NewID()
	ids := newResourceIDs(b.opts.NewID, req, cat)

	claim, err := enc.encodeClaim(req, ids)
	if err != nil {
		return nil, err
	}
	encounter, err := enc.encodeEncounter(req, ids)
	if err != nil {
		return nil, err
	}

	event := EventClaimRequest
	if req.Use == model.UsePreauthorization {
		event = EventPriorAuthRequest
	}
	header := b.buildMessageHeader(req, ids, headerID, event)

	bundle := r4.NewMessageBundle(bundleID, DateTimeOffset(b.createdAt(req)))
	bundle.Meta = &r4.Meta{Profile: []string{profileBase + "bundle" + profileVersion}}

	add := func(fullURL string, res any) {
		bundle.Entry = append(bundle.Entry, r4.BundleEntry{FullURL: fullURL, Resource: res})
	}

	add("urn:uuid:"+headerID, header)

	provider := b.buildProviderOrganization(req, ids.Provider)
	insurer := b.buildInsurerOrganization(req, ids.Insurer)
	if orgsFirst {
		add(b.url("Organization", ids.Provider), provider)
		add(b.url("Organization", ids.Insurer), insurer)
		add(b.url("Claim", ids.Claim), claim)
	} else {
		add(b.url("Claim", ids.Claim), claim)
		add(b.url("Organization", ids.Provider), provider)
		add(b.url("Organization", ids.Insurer), insurer)
	}

	if encounter != nil {
		add(b.url("Encounter", ids.Encounter), encounter)
	}
	add(b.url("Coverage", ids.Coverage), b.buildCoverage(req, ids))
	if ids.Practitioner != "" && req.Practitioner != nil {
		add(b.url("Practitioner", ids.Practitioner), b.buildPractitioner(req.Practitioner, ids.Practitioner))
	}
	add(b.url("Patient", ids.Patient), b.buildPatient(req.Patient, ids.Patient))
	if ids.MotherPatient != "" {
		add(b.url("Patient", ids.MotherPatient), b.buildPatient(req.MotherPatient, ids.MotherPatient))
	}
	if ids.PolicyHolder != "" {
		add(b.url("Organization", ids.PolicyHolder), b.buildPolicyHolder(req.PolicyHolder, ids.PolicyHolder))
	}

	// Prior authorizations carry attachments as Binary entries; claims embed
	// them in supportingInfo instead.
	for i, att := range req.Attachments {
		if req.Use != model.UsePreauthorization {
			break
		}
		add(b.url("Binary", ids.Attachments[i]), b.buildBinary(att, ids.Attachments[i]))
	}

	return bundle, nil
}

func validateRequest(req *model.ClaimRequest) error {
	switch req.Use {
	case model.UsePreauthorization, model.UseClaim:
	default:
		return ErrMissingUse
	}
	if req.Patient == nil {
		return ErrMissingPatient
	}
	if req.IsNewborn && req.MotherPatient == nil {
		return ErrMissingMother
	}
	for _, item := range req.Items {
		if item.IsPackage && len(item.Details) == 0 {
			return fmt.Errorf("%w: item %q", ErrPackageWithoutDetails, item.Code)
		}
	}
	return nil
}
