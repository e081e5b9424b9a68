package encoder

import "errors"

// Caller/input errors surfaced before or during encoding. Fields the
// exchange marks mandatory without a documented default are never silently
// substituted.
var (
	ErrMissingUse            = errors.New("request use must be preauthorization or claim")
	ErrUnknownCategory       = errors.New("unknown claim category")
	ErrMissingPatient        = errors.New("patient is required")
	ErrMissingMedicationCode = errors.New("medication code is required for pharmacy items")
	ErrPackageWithoutDetails = errors.New("package item requires a non-empty detail list")
	ErrFreeTextCode          = errors.New("free-text code is only allowed on chief-complaint supporting info")
	ErrMissingMother         = errors.New("newborn request requires the mother patient")
	ErrMissingRequestNumber  = errors.New("cancel requires the original request number")
)
