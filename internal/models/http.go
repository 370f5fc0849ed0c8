// Package models defines the request and response data structures used
// for communication between clients and the QR manager API.
package models

import (
	"encoding/json"
	"time"
)

// RecordRequest is the body of the create and update operations. Data is
// decoded by the service according to Type.
type RecordRequest struct {
	// Type selects the record kind: "link" or "vcard".
	Type string `json:"type"`

	// Data is the kind-specific payload.
	Data json.RawMessage `json:"data"`
}

// LinkData is the payload of a link record as seen by the API.
type LinkData struct {
	// URL is the redirect destination, absolute http or https only.
	URL string `json:"url"`
}

// ContactData is the payload of a vcard record as seen by the API.
// Fields not listed here are dropped silently on input.
type ContactData struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Organization string `json:"organization,omitempty"`
	Title        string `json:"title,omitempty"`
	Website      string `json:"website,omitempty"`
}

// RecordResponse is a record enriched with the resolvable URL and a
// freshly rendered preview image.
type RecordResponse struct {
	ID      string      `json:"id"`
	ShortID string      `json:"short_id"`
	Type    string      `json:"type"`
	Data    interface{} `json:"data"`

	// URL is the externally resolvable address, <base>/q/<short_id>.
	URL string `json:"url"`

	// Preview is the QR image for URL as a data: URL (base64 PNG).
	Preview string `json:"preview"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TokenRequest exchanges the shared management secret for a bearer token.
type TokenRequest struct {
	Key string `json:"key"`
}

// TokenResponse carries the issued bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// ResultResponse is a generic success marker.
type ResultResponse struct {
	Result string `json:"result"`
}
