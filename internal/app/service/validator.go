package service

import (
	"errors"
	"fmt"
	"html"
	"net"
	"net/url"
	"regexp"
	"strings"

	"github.com/atinyakov/go-qr-manager/internal/models"
	"github.com/atinyakov/go-qr-manager/internal/storage"
)

// ErrInvalidInput marks validation failures. Wrapped errors carry the
// specific violated rule, never the raw rejected input.
var ErrInvalidInput = errors.New("invalid input")

// maxContactFieldLength caps every sanitized contact field, measured after
// HTML escaping. Longer values fail validation instead of being truncated.
const maxContactFieldLength = 100

// deniedSchemes is defense in depth on top of the http/https allow-list:
// a URL starting with any of these is rejected before parsing.
var deniedSchemes = []string{
	"javascript", "data", "vbscript", "file", "ftp",
	"mailto", "tel", "sms", "blob", "ws", "wss",
	"ldap", "ldaps", "chrome", "chrome-extension", "about", "view-source",
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ().-]{2,29}$`)
)

// Validator enforces the destination allow-list and the contact sanitation
// policy. In production mode loopback and private-network hosts are rejected.
type Validator struct {
	production bool
}

func NewValidator(production bool) *Validator {
	return &Validator{production: production}
}

// ValidateLink returns the trimmed URL when it is an acceptable redirect
// destination. The URL is never rewritten or re-encoded.
func (v *Validator) ValidateLink(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: url is required", ErrInvalidInput)
	}

	lower := strings.ToLower(trimmed)
	for _, scheme := range deniedSchemes {
		if strings.HasPrefix(lower, scheme+":") {
			return "", fmt.Errorf("%w: scheme %q is not allowed", ErrInvalidInput, scheme)
		}
	}

	u, err := url.Parse(trimmed)
	if err != nil || !u.IsAbs() {
		return "", fmt.Errorf("%w: not an absolute URL", ErrInvalidInput)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: only http and https URLs are allowed", ErrInvalidInput)
	}

	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("%w: URL has no host", ErrInvalidInput)
	}

	// Spoofing and obfuscation attempts hide in the authority part, so it is
	// checked raw, before the parser strips userinfo and fragments.
	if authority, found := strings.CutPrefix(lower, u.Scheme+"://"); found {
		if i := strings.IndexAny(authority, "/?"); i >= 0 {
			authority = authority[:i]
		}
		if strings.ContainsAny(authority, "@#") || strings.Contains(authority, "..") {
			return "", fmt.Errorf("%w: URL host is not acceptable", ErrInvalidInput)
		}
	}

	if v.production && isInternalHost(host) {
		return "", fmt.Errorf("%w: loopback and private-network hosts are not allowed", ErrInvalidInput)
	}

	return trimmed, nil
}

func isInternalHost(host string) bool {
	lower := strings.ToLower(host)
	if lower == "localhost" || strings.HasSuffix(lower, ".localhost") ||
		strings.HasSuffix(lower, ".local") || strings.HasSuffix(lower, ".internal") {
		return true
	}

	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
			ip.IsLinkLocalMulticast() || ip.IsUnspecified()
	}

	return false
}

// ValidateContact sanitizes a contact payload. The result contains only
// recognized fields, each HTML-escaped and length-capped, and is what gets
// persisted so downstream rendering never re-escapes.
func (v *Validator) ValidateContact(data models.ContactData) (*storage.ContactPayload, error) {
	firstName, err := sanitizeRequired("firstName", data.FirstName)
	if err != nil {
		return nil, err
	}
	lastName, err := sanitizeRequired("lastName", data.LastName)
	if err != nil {
		return nil, err
	}

	contact := &storage.ContactPayload{
		FirstName: firstName,
		LastName:  lastName,
	}

	if email := strings.TrimSpace(data.Email); email != "" {
		if !emailPattern.MatchString(email) {
			return nil, fmt.Errorf("%w: email has an invalid format", ErrInvalidInput)
		}
		if contact.Email, err = sanitizeOptional("email", email); err != nil {
			return nil, err
		}
	}

	if phone := strings.TrimSpace(data.Phone); phone != "" {
		if !phonePattern.MatchString(phone) {
			return nil, fmt.Errorf("%w: phone has an invalid format", ErrInvalidInput)
		}
		if contact.Phone, err = sanitizeOptional("phone", phone); err != nil {
			return nil, err
		}
	}

	if org := strings.TrimSpace(data.Organization); org != "" {
		if contact.Organization, err = sanitizeOptional("organization", org); err != nil {
			return nil, err
		}
	}

	if title := strings.TrimSpace(data.Title); title != "" {
		if contact.Title, err = sanitizeOptional("title", title); err != nil {
			return nil, err
		}
	}

	if website := strings.TrimSpace(data.Website); website != "" {
		validated, err := v.ValidateLink(website)
		if err != nil {
			return nil, err
		}
		if contact.Website, err = sanitizeOptional("website", validated); err != nil {
			return nil, err
		}
	}

	return contact, nil
}

func sanitizeRequired(field, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	return sanitizeOptional(field, trimmed)
}

func sanitizeOptional(field, value string) (string, error) {
	escaped := html.EscapeString(value)
	if len(escaped) > maxContactFieldLength {
		return "", fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidInput, field, maxContactFieldLength)
	}
	return escaped, nil
}
