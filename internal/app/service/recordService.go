package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/go-qr-manager/internal/models"
	"github.com/atinyakov/go-qr-manager/internal/storage"
)

// maxShortIDAttempts bounds the collision retry loop on create. Exhausting
// it surfaces storage.ErrConflict to the caller.
const maxShortIDAttempts = 5

const resolvePathPrefix = "/q/"

// Resolution is the outcome of resolving a short id: either a redirect
// target or a downloadable payload, never both.
type Resolution struct {
	RedirectURL string
	Body        []byte
	Filename    string
	ContentType string
}

// RecordService composes the generator, validator, encoder and store into
// the management and resolution operations.
type RecordService struct {
	repository Storage
	generator  IDGenerator
	validator  *Validator
	logger     *zap.Logger
	baseURL    string
}

func NewRecordService(repo Storage, gen IDGenerator, validator *Validator, logger *zap.Logger, baseURL string) *RecordService {
	return &RecordService{
		repository: repo,
		generator:  gen,
		validator:  validator,
		logger:     logger,
		baseURL:    baseURL,
	}
}

// buildPayload validates raw input and returns the kind plus the sanitized
// payload pointers. Runs identically at create and update time.
func (s *RecordService) buildPayload(kind string, data json.RawMessage) (storage.Kind, *storage.LinkPayload, *storage.ContactPayload, error) {
	switch storage.Kind(kind) {
	case storage.KindLink:
		var in models.LinkData
		if err := json.Unmarshal(data, &in); err != nil {
			return "", nil, nil, fmt.Errorf("%w: malformed link payload", ErrInvalidInput)
		}
		validated, err := s.validator.ValidateLink(in.URL)
		if err != nil {
			return "", nil, nil, err
		}
		return storage.KindLink, &storage.LinkPayload{URL: validated}, nil, nil

	case storage.KindVCard:
		var in models.ContactData
		if err := json.Unmarshal(data, &in); err != nil {
			return "", nil, nil, fmt.Errorf("%w: malformed contact payload", ErrInvalidInput)
		}
		contact, err := s.validator.ValidateContact(in)
		if err != nil {
			return "", nil, nil, err
		}
		return storage.KindVCard, nil, contact, nil

	default:
		return "", nil, nil, fmt.Errorf("%w: unknown record type %q", ErrInvalidInput, kind)
	}
}

// Create validates the payload, draws a fresh short id and persists the
// record. A short-id collision is retried with a new id a bounded number
// of times before the conflict is surfaced.
func (s *RecordService) Create(ctx context.Context, kind string, data json.RawMessage) (*storage.Record, error) {
	k, link, contact, err := s.buildPayload(kind, data)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := storage.Record{
		Kind:      k,
		Link:      link,
		Contact:   contact,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for attempt := 1; attempt <= maxShortIDAttempts; attempt++ {
		shortID, err := s.generator.Generate()
		if err != nil {
			return nil, err
		}
		record.ShortID = shortID

		created, err := s.repository.Insert(ctx, record)
		if errors.Is(err, storage.ErrConflict) {
			s.logger.Info("short id collision", zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, err
		}

		return created, nil
	}

	return nil, fmt.Errorf("short id space exhausted after %d attempts: %w", maxShortIDAttempts, storage.ErrConflict)
}

// Update revalidates and replaces the kind and payload wholesale. The short
// id and creation time never change. Concurrent updates resolve by
// last-write-wins on UpdatedAt.
func (s *RecordService) Update(ctx context.Context, id string, kind string, data json.RawMessage) (*storage.Record, error) {
	k, link, contact, err := s.buildPayload(kind, data)
	if err != nil {
		return nil, err
	}

	existing, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Kind = k
	existing.Link = link
	existing.Contact = contact
	existing.UpdatedAt = time.Now().UTC()

	return s.repository.Update(ctx, *existing)
}

func (s *RecordService) Get(ctx context.Context, id string) (*storage.Record, error) {
	return s.repository.FindByID(ctx, id)
}

func (s *RecordService) List(ctx context.Context) ([]storage.Record, error) {
	return s.repository.All(ctx)
}

func (s *RecordService) Delete(ctx context.Context, id string) error {
	return s.repository.Delete(ctx, id)
}

func (s *RecordService) DeleteAll(ctx context.Context) error {
	return s.repository.DeleteAll(ctx)
}

// Resolve is the public read path. It has no side effects on the store and
// performs no re-validation of stored payloads.
func (s *RecordService) Resolve(ctx context.Context, shortID string) (*Resolution, error) {
	record, err := s.repository.FindByShortID(ctx, shortID)
	if err != nil {
		return nil, err
	}

	switch record.Kind {
	case storage.KindLink:
		if record.Link == nil {
			return nil, fmt.Errorf("link record %s has no payload", record.ID)
		}
		return &Resolution{RedirectURL: record.Link.URL}, nil

	case storage.KindVCard:
		if record.Contact == nil {
			return nil, fmt.Errorf("vcard record %s has no payload", record.ID)
		}
		return &Resolution{
			Body:        RenderVCard(record.Contact),
			Filename:    VCardFilename(record.Contact),
			ContentType: VCardContentType,
		}, nil

	default:
		return nil, fmt.Errorf("record %s has unknown kind %q", record.ID, record.Kind)
	}
}

// Image renders the QR code for the record's resolution URL.
func (s *RecordService) Image(record *storage.Record) ([]byte, error) {
	return RenderImage(s.ResolveURL(record.ShortID))
}

// Preview renders the QR code as a data: URL for embedding in API responses.
func (s *RecordService) Preview(record *storage.Record) (string, error) {
	png, err := s.Image(record)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

func (s *RecordService) ResolveURL(shortID string) string {
	return s.baseURL + resolvePathPrefix + shortID
}

func (s *RecordService) PingContext(ctx context.Context) error {
	return s.repository.PingContext(ctx)
}
