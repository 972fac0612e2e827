package dbx

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (sqlmock.Sqlmock, func() error) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return mock, func() error {
		return WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
			_, err := tx.ExecContext(ctx, "UPDATE tasks SET completed = true")
			return err
		})
	}
}

func TestWithTx_Commit(t *testing.T) {
	mock, run := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE tasks").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, run())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollbackOnError(t *testing.T) {
	mock, run := newMock(t)
	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE tasks").WillReturnError(boom)
	mock.ExpectRollback()

	err := run()
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollbackFailureIsJoined(t *testing.T) {
	mock, run := newMock(t)
	boom := errors.New("boom")
	rb := errors.New("rollback broke")
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE tasks").WillReturnError(boom)
	mock.ExpectRollback().WillReturnError(rb)

	err := run()
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, err, rb)
}

func TestWithTx_BeginError(t *testing.T) {
	mock, run := newMock(t)
	mock.ExpectBegin().WillReturnError(errors.New("no conn"))

	err := run()
	require.ErrorContains(t, err, "begin tx")
}

func TestWithTx_CommitError(t *testing.T) {
	mock, run := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE tasks").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("serialization"))

	err := run()
	require.ErrorContains(t, err, "commit")
}

func TestWithTx_PanicRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	require.Panics(t, func() {
		_ = WithTx(context.Background(), db, nil, func(context.Context, DBTX) error {
			panic("kaboom")
		})
	})
	require.NoError(t, mock.ExpectationsWereMet())
}
