// Package repository implements the PostgreSQL storage backend.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/atinyakov/go-qr-manager/internal/storage"
)

func InitDB(ps string, logger *zap.Logger) *sql.DB {
	db, err := sql.Open("pgx", ps)
	if err != nil {
		panic(err)
	}

	if err := db.Ping(); err != nil {
		panic(err)
	}

	createTables := `
		CREATE TABLE IF NOT EXISTS qr_records (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			short_id TEXT UNIQUE NOT NULL,
			kind TEXT NOT NULL,
			payload JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS qr_short_ids (
			short_id TEXT PRIMARY KEY
		);`

	if _, err = db.Exec(createTables); err != nil {
		logger.Fatal("cannot create tables", zap.Error(err))
	}

	return db
}

type QRRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func CreateQRRepository(db *sql.DB, logger *zap.Logger) *QRRepository {
	return &QRRepository{
		db:     db,
		logger: logger,
	}
}

// payloadDoc is the JSONB document stored in the payload column.
type payloadDoc struct {
	Link    *storage.LinkPayload    `json:"link,omitempty"`
	Contact *storage.ContactPayload `json:"contact,omitempty"`
}

func marshalPayload(r storage.Record) ([]byte, error) {
	return json.Marshal(payloadDoc{Link: r.Link, Contact: r.Contact})
}

func unmarshalPayload(data []byte, r *storage.Record) error {
	var doc payloadDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	r.Link = doc.Link
	r.Contact = doc.Contact
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// Insert writes the record and claims its short id in the append-only
// qr_short_ids ledger. The ledger row is never removed, so a short id retired
// by a deleted record still collides on insert.
func (r *QRRepository) Insert(ctx context.Context, v storage.Record) (*storage.Record, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO qr_short_ids(short_id) VALUES ($1) ON CONFLICT (short_id) DO NOTHING;",
		v.ShortID,
	)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, storage.ErrConflict
	}

	payload, err := marshalPayload(v)
	if err != nil {
		return nil, err
	}

	row := tx.QueryRowContext(ctx,
		"INSERT INTO qr_records(short_id, kind, payload, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING id;",
		v.ShortID, string(v.Kind), payload, v.CreatedAt, v.UpdatedAt,
	)
	if err := row.Scan(&v.ID); err != nil {
		if isUniqueViolation(err) {
			return nil, storage.ErrConflict
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &v, nil
}

func (r *QRRepository) Update(ctx context.Context, v storage.Record) (*storage.Record, error) {
	payload, err := marshalPayload(v)
	if err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx,
		"UPDATE qr_records SET kind = $1, payload = $2, updated_at = $3 WHERE id = $4;",
		string(v.Kind), payload, v.UpdatedAt, v.ID,
	)
	if err != nil {
		r.logger.Error("update failed", zap.Error(err))
		return nil, err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, storage.ErrNotFound
	}

	return &v, nil
}

func (r *QRRepository) scanRecord(row *sql.Row) (*storage.Record, error) {
	var record storage.Record
	var kind string
	var payload []byte

	err := row.Scan(&record.ID, &record.ShortID, &kind, &payload, &record.CreatedAt, &record.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	record.Kind = storage.Kind(kind)
	if err := unmarshalPayload(payload, &record); err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *QRRepository) FindByID(ctx context.Context, id string) (*storage.Record, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, short_id, kind, payload, created_at, updated_at FROM qr_records WHERE id = $1;", id)
	return r.scanRecord(row)
}

func (r *QRRepository) FindByShortID(ctx context.Context, shortID string) (*storage.Record, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, short_id, kind, payload, created_at, updated_at FROM qr_records WHERE short_id = $1;", shortID)
	return r.scanRecord(row)
}

func (r *QRRepository) All(ctx context.Context) ([]storage.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, short_id, kind, payload, created_at, updated_at FROM qr_records ORDER BY created_at;")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]storage.Record, 0)
	for rows.Next() {
		var record storage.Record
		var kind string
		var payload []byte

		if err := rows.Scan(&record.ID, &record.ShortID, &kind, &payload, &record.CreatedAt, &record.UpdatedAt); err != nil {
			return nil, err
		}

		record.Kind = storage.Kind(kind)
		if err := unmarshalPayload(payload, &record); err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *QRRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM qr_records WHERE id = $1;", id)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// DeleteAll removes every record. The qr_short_ids ledger is left intact.
func (r *QRRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM qr_records;")
	return err
}

func (r *QRRepository) PingContext(c context.Context) error {
	return r.db.PingContext(c)
}
