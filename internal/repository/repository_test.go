package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atinyakov/go-qr-manager/internal/storage"
)

// Helper to set up a mock DB and repository
func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *QRRepository) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := CreateQRRepository(db, zap.NewNop())
	return db, mock, repo
}

func testRecord() storage.Record {
	now := time.Now().UTC()
	return storage.Record{
		ShortID:   "abc12345",
		Kind:      storage.KindLink,
		Link:      &storage.LinkPayload{URL: "https://example.com"},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestInsert(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	record := testRecord()
	payload, err := marshalPayload(record)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO qr_short_ids`).
		WithArgs(record.ShortID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO qr_records`).
		WithArgs(record.ShortID, string(record.Kind), payload, record.CreatedAt, record.UpdatedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("generated-uuid"))
	mock.ExpectCommit()

	result, err := repo.Insert(context.Background(), record)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, "generated-uuid", result.ID)
	assert.Equal(t, record.ShortID, result.ShortID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_ShortIDTaken(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	record := testRecord()

	// the ledger row already exists, nothing is affected
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO qr_short_ids`).
		WithArgs(record.ShortID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Insert(context.Background(), record)

	assert.ErrorIs(t, err, storage.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	record := testRecord()
	record.ID = "id-1"
	payload, err := marshalPayload(record)
	require.NoError(t, err)

	mock.ExpectExec(`UPDATE qr_records SET`).
		WithArgs(string(record.Kind), payload, record.UpdatedAt, record.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	result, err := repo.Update(context.Background(), record)

	assert.NoError(t, err)
	assert.Equal(t, "id-1", result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_NotFound(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	record := testRecord()
	record.ID = "no-such-id"
	payload, err := marshalPayload(record)
	require.NoError(t, err)

	mock.ExpectExec(`UPDATE qr_records SET`).
		WithArgs(string(record.Kind), payload, record.UpdatedAt, record.ID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err = repo.Update(context.Background(), record)

	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByShortID(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	record := testRecord()
	payload, err := marshalPayload(record)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT id, short_id, kind, payload, created_at, updated_at FROM qr_records WHERE short_id = \$1;`).
		WithArgs(record.ShortID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "short_id", "kind", "payload", "created_at", "updated_at"}).
			AddRow("id-1", record.ShortID, string(record.Kind), payload, record.CreatedAt, record.UpdatedAt))

	result, err := repo.FindByShortID(context.Background(), record.ShortID)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, storage.KindLink, result.Kind)
	assert.Equal(t, "https://example.com", result.Link.URL)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByShortID_NotFound(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	mock.ExpectQuery(`SELECT id, short_id, kind, payload, created_at, updated_at FROM qr_records WHERE short_id = \$1;`).
		WithArgs("missing1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "short_id", "kind", "payload", "created_at", "updated_at"}))

	_, err := repo.FindByShortID(context.Background(), "missing1")

	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAll(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	link := testRecord()
	linkPayload, err := marshalPayload(link)
	require.NoError(t, err)

	vcard := storage.Record{
		ShortID:   "vcard001",
		Kind:      storage.KindVCard,
		Contact:   &storage.ContactPayload{FirstName: "Jane", LastName: "Doe"},
		CreatedAt: link.CreatedAt.Add(time.Second),
		UpdatedAt: link.UpdatedAt.Add(time.Second),
	}
	vcardPayload, err := marshalPayload(vcard)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT id, short_id, kind, payload, created_at, updated_at FROM qr_records ORDER BY created_at;`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "short_id", "kind", "payload", "created_at", "updated_at"}).
			AddRow("id-1", link.ShortID, string(link.Kind), linkPayload, link.CreatedAt, link.UpdatedAt).
			AddRow("id-2", vcard.ShortID, string(vcard.Kind), vcardPayload, vcard.CreatedAt, vcard.UpdatedAt))

	result, err := repo.All(context.Background())

	assert.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "https://example.com", result[0].Link.URL)
	assert.Equal(t, "Jane", result[1].Contact.FirstName)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	mock.ExpectExec(`DELETE FROM qr_records WHERE id = \$1;`).
		WithArgs("id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), "id-1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_NotFound(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	mock.ExpectExec(`DELETE FROM qr_records WHERE id = \$1;`).
		WithArgs("no-such-id").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "no-such-id")

	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAll(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	// only the records table is cleared, the ledger keeps every issued id
	mock.ExpectExec(`DELETE FROM qr_records;`).
		WillReturnResult(sqlmock.NewResult(0, 3))

	err := repo.DeleteAll(context.Background())

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
