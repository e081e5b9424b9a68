package r4

// Bundle is the message envelope exchanged with the national platform.
// Entry order is significant: validators require the MessageHeader first and,
// for some claim categories, Organization resources ahead of the Claim.
type Bundle struct {
	ResourceType string        `json:"resourceType"`
	ID           string        `json:"id,omitempty"`
	Meta         *Meta         `json:"meta,omitempty"`
	Identifier   *Identifier   `json:"identifier,omitempty"`
	Type         string        `json:"type"` // message | document | collection | ...
	Timestamp    string        `json:"timestamp,omitempty"`
	Entry        []BundleEntry `json:"entry,omitempty"`
}

// BundleEntry pairs a fullUrl with its resource. Resource holds a typed
// struct when composing outbound bundles; inbound bundles are decoded
// through a raw envelope instead.
type BundleEntry struct {
	FullURL  string `json:"fullUrl,omitempty"`
	Resource any    `json:"resource,omitempty"`
}

// NewMessageBundle returns an empty message bundle with the given identifier
// and timestamp already set.
func NewMessageBundle(id, timestamp string) *Bundle {
	return &Bundle{
		ResourceType: "Bundle",
		ID:           id,
		Type:         "message",
		Timestamp:    timestamp,
	}
}

// MessageHeader is always the first entry of a message bundle.
type MessageHeader struct {
	ResourceType string               `json:"resourceType"`
	ID           string               `json:"id,omitempty"`
	Meta         *Meta                `json:"meta,omitempty"`
	EventCoding  *Coding              `json:"eventCoding,omitempty"`
	Destination  []MessageDestination `json:"destination,omitempty"`
	Sender       *Reference           `json:"sender,omitempty"`
	Source       *MessageSource       `json:"source,omitempty"`
	Response     *MessageResponse     `json:"response,omitempty"`
	Focus        []Reference          `json:"focus,omitempty"`
}

// MessageDestination identifies a message recipient endpoint.
type MessageDestination struct {
	Endpoint string     `json:"endpoint"`
	Receiver *Reference `json:"receiver,omitempty"`
}

// MessageSource identifies the sending system.
type MessageSource struct {
	Name     string `json:"name,omitempty"`
	Endpoint string `json:"endpoint"`
}

// MessageResponse links a response header back to the request message.
type MessageResponse struct {
	Identifier string     `json:"identifier,omitempty"`
	Code       string     `json:"code,omitempty"` // ok | transient-error | fatal-error
	Details    *Reference `json:"details,omitempty"`
}

// Binary carries an attachment payload as its own bundle entry. Prior
// authorizations ship attachments this way; claims embed them in
// supportingInfo instead.
type Binary struct {
	ResourceType string `json:"resourceType"`
	ID           string `json:"id,omitempty"`
	ContentType  string `json:"contentType"`
	Data         string `json:"data,omitempty"`
}
