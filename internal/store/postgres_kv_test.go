package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresKV) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewPostgresKV(db)
}

func TestPostgresKV_Get(t *testing.T) {
	db, mock, kv := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT payload FROM record_slots`).
		WithArgs("qfa:dev:scan_history").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(`[]`))

	v, err := kv.Get(context.Background(), "qfa:dev:scan_history")
	require.NoError(t, err)
	assert.Equal(t, `[]`, v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresKV_Get_Miss(t *testing.T) {
	db, mock, kv := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT payload FROM record_slots`).
		WithArgs("qfa:dev:userEmail").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))

	_, err := kv.Get(context.Background(), "qfa:dev:userEmail")
	assert.ErrorIs(t, err, ErrMiss)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresKV_Get_DriverError(t *testing.T) {
	db, mock, kv := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT payload FROM record_slots`).
		WillReturnError(errors.New("disk full"))

	_, err := kv.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
}

func TestPostgresKV_SetUpserts(t *testing.T) {
	db, mock, kv := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO record_slots`).
		WithArgs("qfa:dev:userEmail", "a@b.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, kv.Set(context.Background(), "qfa:dev:userEmail", "a@b.com"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresKV_Delete(t *testing.T) {
	db, mock, kv := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM record_slots WHERE slot_key = ANY`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, kv.Delete(context.Background(), "a", "b"))
	require.NoError(t, kv.Delete(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresKV_ScanKeys(t *testing.T) {
	db, mock, kv := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT slot_key FROM record_slots WHERE slot_key LIKE`).
		WithArgs(`qfa:dev\_1:%`).
		WillReturnRows(sqlmock.NewRows([]string{"slot_key"}).
			AddRow("qfa:dev_1:medical_id_data").
			AddRow("qfa:dev_1:userEmail"))

	keys, err := kv.ScanKeys(context.Background(), "qfa:dev_1:*")
	require.NoError(t, err)
	assert.Equal(t, []string{"qfa:dev_1:medical_id_data", "qfa:dev_1:userEmail"}, keys)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresKV_EnsureSchema(t *testing.T) {
	db, mock, kv := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS record_slots`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, kv.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGlobToLike(t *testing.T) {
	assert.Equal(t, `a%b`, globToLike("a*b"))
	assert.Equal(t, `50\%\_x\\`, globToLike(`50%_x\`))
}
