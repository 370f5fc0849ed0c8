// Package handler contains the HTTP handlers of the QR manager: the
// authenticated management CRUD surface and the public resolution endpoint.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/atinyakov/go-qr-manager/internal/app/service"
	"github.com/atinyakov/go-qr-manager/internal/models"
	"github.com/atinyakov/go-qr-manager/internal/storage"
)

// malformedRequest represents an error with a malformed HTTP request.
type malformedRequest struct {
	status int
	msg    string
}

func (mr *malformedRequest) Error() string {
	return mr.msg
}

// decodeJSONBody decodes a JSON request body into the given destination
// struct, with a 1MB body cap and a single-object requirement.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	ct := r.Header.Get("Content-Type")
	if ct != "" {
		mediaType := strings.ToLower(strings.TrimSpace(strings.Split(ct, ";")[0]))
		if mediaType != "application/json" {
			msg := "Content-Type header is not application/json"
			return &malformedRequest{status: http.StatusUnsupportedMediaType, msg: msg}
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	dec := json.NewDecoder(r.Body)

	err := dec.Decode(&dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError

		switch {
		case errors.As(err, &syntaxError):
			msg := fmt.Sprintf("Request body contains badly-formed JSON (at position %d)", syntaxError.Offset)
			return &malformedRequest{status: http.StatusBadRequest, msg: msg}

		case errors.Is(err, io.ErrUnexpectedEOF):
			msg := "Request body contains badly-formed JSON"
			return &malformedRequest{status: http.StatusBadRequest, msg: msg}

		case errors.As(err, &unmarshalTypeError):
			msg := fmt.Sprintf("Request body contains an invalid value for the %q field (at position %d)", unmarshalTypeError.Field, unmarshalTypeError.Offset)
			return &malformedRequest{status: http.StatusBadRequest, msg: msg}

		case errors.Is(err, io.EOF):
			msg := "Request body must not be empty"
			return &malformedRequest{status: http.StatusBadRequest, msg: msg}

		case err.Error() == "http: request body too large":
			msg := "Request body must not be larger than 1MB"
			return &malformedRequest{status: http.StatusRequestEntityTooLarge, msg: msg}

		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		msg := "Request body must only contain a single JSON object"
		return &malformedRequest{status: http.StatusBadRequest, msg: msg}
	}

	return nil
}

// recordToResponse enriches a record with the resolvable URL and a freshly
// rendered preview image.
func recordToResponse(svc service.RecordServiceIface, record *storage.Record) (*models.RecordResponse, error) {
	preview, err := svc.Preview(record)
	if err != nil {
		return nil, err
	}

	resp := &models.RecordResponse{
		ID:        record.ID,
		ShortID:   record.ShortID,
		Type:      string(record.Kind),
		URL:       svc.ResolveURL(record.ShortID),
		Preview:   preview,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}

	switch record.Kind {
	case storage.KindLink:
		if record.Link != nil {
			resp.Data = models.LinkData{URL: record.Link.URL}
		}
	case storage.KindVCard:
		if record.Contact != nil {
			resp.Data = models.ContactData{
				FirstName:    record.Contact.FirstName,
				LastName:     record.Contact.LastName,
				Email:        record.Contact.Email,
				Phone:        record.Contact.Phone,
				Organization: record.Contact.Organization,
				Title:        record.Contact.Title,
				Website:      record.Contact.Website,
			}
		}
	}

	return resp, nil
}

// writeServiceError maps service and storage errors onto HTTP statuses.
// Internal failures never expose the underlying error text.
func writeServiceError(res http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		http.Error(res, err.Error(), http.StatusBadRequest)
	case errors.Is(err, storage.ErrNotFound):
		http.Error(res, "record not found", http.StatusNotFound)
	case errors.Is(err, storage.ErrConflict):
		http.Error(res, "identifier conflict", http.StatusConflict)
	default:
		http.Error(res, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
