package service

import (
	"regexp"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/atinyakov/go-qr-manager/internal/storage"
)

// qrImageSize is the edge length in pixels of every rendered QR image.
const qrImageSize = 256

// VCardContentType is the media type of the downloadable contact payload.
const VCardContentType = "text/vcard; charset=utf-8"

var filenameCharset = regexp.MustCompile(`[^0-9A-Za-z_-]+`)

// RenderImage encodes the resolution URL as a black-on-white PNG QR code.
// The output is a deterministic function of the URL, so re-rendering on
// every read yields byte-identical images.
func RenderImage(resolutionURL string) ([]byte, error) {
	return qrcode.Encode(resolutionURL, qrcode.Medium, qrImageSize)
}

// RenderVCard renders a contact payload as a VERSION:3.0 vCard with CRLF
// line endings. Optional lines are omitted entirely when the field is empty.
// Payload fields are already sanitized, no escaping happens here.
func RenderVCard(c *storage.ContactPayload) []byte {
	var b strings.Builder

	line := func(s string) {
		b.WriteString(s)
		b.WriteString("\r\n")
	}

	line("BEGIN:VCARD")
	line("VERSION:3.0")
	line("FN:" + c.FirstName + " " + c.LastName)
	line("N:" + c.LastName + ";" + c.FirstName + ";;;")
	if c.Email != "" {
		line("EMAIL:" + c.Email)
	}
	if c.Phone != "" {
		line("TEL:" + c.Phone)
	}
	if c.Organization != "" {
		line("ORG:" + c.Organization)
	}
	if c.Title != "" {
		line("TITLE:" + c.Title)
	}
	if c.Website != "" {
		line("URL:" + c.Website)
	}
	line("END:VCARD")

	return []byte(b.String())
}

// VCardFilename derives a download filename from the sanitized name fields.
func VCardFilename(c *storage.ContactPayload) string {
	name := filenameCharset.ReplaceAllString(c.FirstName+"_"+c.LastName, "")
	name = strings.Trim(name, "_")
	if name == "" {
		name = "contact"
	}
	return name + ".vcf"
}
