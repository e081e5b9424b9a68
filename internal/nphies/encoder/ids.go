package encoder

import (
	"github.com/google/uuid"

	"github.com/sahlcare/go-nphies/internal/nphies/model"
)

// IDGenerator supplies correlation identifiers for bundle resources. It is
// the only external dependency of an encode call; injecting a fixed sequence
// makes encoding fully deterministic.
type IDGenerator func() string

// UUIDGenerator is the default generator.
func UUIDGenerator() string { return uuid.New().String() }

// ResourceIDs is the arena of correlation identifiers for one encode call.
// It is allocated at the start of Encode, threaded explicitly through the
// builders, and never escapes the call.
type ResourceIDs struct {
	Claim         string
	Patient       string
	Provider      string
	Insurer       string
	Coverage      string
	Encounter     string
	Practitioner  string
	PolicyHolder  string
	MotherPatient string
	Task          string
	Attachments   []string
}

// newResourceIDs allocates one identifier per resource role the category
// needs. Encounter is absent for pharmacy claims and for vision entirely;
// practitioner is absent for pharmacy and vision.
func newResourceIDs(gen IDGenerator, req *model.ClaimRequest, cat model.Category) *ResourceIDs {
	ids := &ResourceIDs{
		Claim:    gen(),
		Patient:  gen(),
		Provider: gen(),
		Insurer:  gen(),
		Coverage: gen(),
	}

	switch cat {
	case model.CategoryVision:
		// no encounter, no practitioner
	case model.CategoryPharmacy:
		if req.Use == model.UsePreauthorization {
			ids.Encounter = gen()
		}
	default:
		ids.Encounter = gen()
		ids.Practitioner = gen()
	}

	if req.PolicyHolder != nil {
		ids.PolicyHolder = gen()
	}
	if req.IsNewborn && req.MotherPatient != nil {
		ids.MotherPatient = gen()
	}
	if req.Use == model.UsePreauthorization {
		for range req.Attachments {
			ids.Attachments = append(ids.Attachments, gen())
		}
	}
	return ids
}
