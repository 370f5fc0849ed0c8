package storage

import "time"

// Kind discriminates the payload carried by a Record.
type Kind string

const (
	// KindLink marks a record whose payload is a redirect URL.
	KindLink Kind = "link"
	// KindVCard marks a record whose payload is a contact card.
	KindVCard Kind = "vcard"
)

// LinkPayload holds the validated destination of a link record.
type LinkPayload struct {
	URL string `json:"url"`
}

// ContactPayload holds the sanitized fields of a contact-card record.
// Every field is already HTML-escaped and length-capped by the validator,
// so consumers may embed values into HTML and vCard text as-is.
type ContactPayload struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Organization string `json:"organization,omitempty"`
	Title        string `json:"title,omitempty"`
	Website      string `json:"website,omitempty"`
}

// Record maps a public short identifier to a kind and payload.
// Exactly one of Link or Contact is non-nil, matching Kind.
type Record struct {
	ID        string          `json:"uuid"`
	ShortID   string          `json:"short_id"`
	Kind      Kind            `json:"kind"`
	Link      *LinkPayload    `json:"link,omitempty"`
	Contact   *ContactPayload `json:"contact,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
