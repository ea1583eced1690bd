package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xor-shift/prng/util/rng"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	return New(db), mock
}

func TestInit(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS prng_streams")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Init(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveLoad(t *testing.T) {
	s, mock := newMockStore(t)

	state := rng.NewDefaultXoroshiro128P()
	state.Next()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO prng_streams")).
		WithArgs("dice", "3e800000e51a14660039466000000000", uint64(1)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectQuery(regexp.QuoteMeta(selectQuery)).
		WithArgs("dice").
		WillReturnRows(sqlmock.NewRows([]string{"state", "steps"}).
			AddRow("3e800000e51a14660039466000000000", int64(1)))

	require.NoError(t, s.Save(context.Background(), "dice", state, 1))

	loaded, steps, err := s.Load(context.Background(), "dice")
	require.NoError(t, err)
	assert.Equal(t, state.State, loaded.State)
	assert.Equal(t, uint64(1), steps)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadMissing(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectQuery)).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"state", "steps"}))

	_, _, err := s.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadCorruptState(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectQuery)).
		WithArgs("zero").
		WillReturnRows(sqlmock.NewRows([]string{"state", "steps"}).
			AddRow("00000000000000000000000000000000", int64(0)))

	_, _, err := s.Load(context.Background(), "zero")
	assert.ErrorIs(t, err, rng.ErrZeroState)
}

func TestSaveError(t *testing.T) {
	s, mock := newMockStore(t)

	boom := errors.New("boom")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO prng_streams")).WillReturnError(boom)

	err := s.Save(context.Background(), "dice", rng.NewDefaultXoroshiro128P(), 0)
	assert.ErrorIs(t, err, boom)
}
