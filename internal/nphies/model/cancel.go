package model

import "time"

// CancelRequest asks the payer to void a previously submitted claim or
// prior authorization, identified by its request number.
type CancelRequest struct {
	RequestNumber string    `json:"request_number"`
	Use           UseKind   `json:"use,omitempty"` // kind of the original request
	Reason        string    `json:"reason,omitempty"`
	Created       time.Time `json:"created,omitempty"`

	Provider *Provider `json:"provider,omitempty"`
	Insurer  *Insurer  `json:"insurer,omitempty"`
}
