package r4

// ClaimResponse represents a FHIR R4 ClaimResponse resource as returned by
// the exchange's adjudication engine.
type ClaimResponse struct {
	ResourceType  string               `json:"resourceType"`
	ID            string               `json:"id,omitempty"`
	Meta          *Meta                `json:"meta,omitempty"`
	Extension     []Extension          `json:"extension,omitempty"`
	Identifier    []Identifier         `json:"identifier,omitempty"`
	Status        string               `json:"status,omitempty"`
	Type          *CodeableConcept     `json:"type,omitempty"`
	SubType       *CodeableConcept     `json:"subType,omitempty"`
	Use           string               `json:"use,omitempty"`
	Patient       *Reference           `json:"patient,omitempty"`
	Created       string               `json:"created,omitempty"`
	Insurer       *Reference           `json:"insurer,omitempty"`
	Requestor     *Reference           `json:"requestor,omitempty"`
	Request       *Reference           `json:"request,omitempty"`
	Outcome       string               `json:"outcome,omitempty"` // queued | complete | error | partial
	Disposition   string               `json:"disposition,omitempty"`
	PreAuthRef    string               `json:"preAuthRef,omitempty"`
	PreAuthPeriod *Period              `json:"preAuthPeriod,omitempty"`
	Item          []ClaimResponseItem  `json:"item,omitempty"`
	AddItem       []ClaimResponseItem  `json:"addItem,omitempty"`
	Total         []ClaimResponseTotal `json:"total,omitempty"`
	ProcessNote   []ClaimResponseNote  `json:"processNote,omitempty"`
	Insurance     []ClaimInsurance     `json:"insurance,omitempty"`
	Error         []ClaimResponseError `json:"error,omitempty"`
}

// ClaimResponseItem carries the adjudication of one claimed line.
type ClaimResponseItem struct {
	Extension    []Extension               `json:"extension,omitempty"`
	ItemSequence int                       `json:"itemSequence,omitempty"`
	NoteNumber   []int                     `json:"noteNumber,omitempty"`
	Adjudication []Adjudication            `json:"adjudication,omitempty"`
	Detail       []ClaimResponseItemDetail `json:"detail,omitempty"`
}

// ClaimResponseItemDetail adjudicates one detail line of a package item.
type ClaimResponseItemDetail struct {
	DetailSequence int            `json:"detailSequence,omitempty"`
	NoteNumber     []int          `json:"noteNumber,omitempty"`
	Adjudication   []Adjudication `json:"adjudication,omitempty"`
}

// Adjudication is one category/amount pair of an item's decision.
type Adjudication struct {
	Category CodeableConcept  `json:"category"`
	Reason   *CodeableConcept `json:"reason,omitempty"`
	Amount   *Money           `json:"amount,omitempty"`
	Value    *float64         `json:"value,omitempty"`
}

// CategoryCode returns the first coding code of the adjudication category.
func (a Adjudication) CategoryCode() string {
	if len(a.Category.Coding) > 0 {
		return a.Category.Coding[0].Code
	}
	return a.Category.Text
}

// ClaimResponseTotal is a claim-level adjudication total.
type ClaimResponseTotal struct {
	Category CodeableConcept `json:"category"`
	Amount   Money           `json:"amount"`
}

// ClaimResponseNote is a free-text processing note.
type ClaimResponseNote struct {
	Number int    `json:"number,omitempty"`
	Type   string `json:"type,omitempty"` // display | print | printoper
	Text   string `json:"text"`
}

// ClaimResponseError is a structured validation error returned inside the
// response itself (as opposed to an OperationOutcome).
type ClaimResponseError struct {
	ItemSequence   int             `json:"itemSequence,omitempty"`
	DetailSequence int             `json:"detailSequence,omitempty"`
	Code           CodeableConcept `json:"code"`
}

// ExtensionValue returns the named extension, or nil.
func (c *ClaimResponse) ExtensionValue(url string) *Extension {
	for i := range c.Extension {
		if c.Extension[i].URL == url {
			return &c.Extension[i]
		}
	}
	return nil
}
