package notes

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(sqlx.NewDb(db, "sqlmock")), mock
}

func expectStoreCheck(mock sqlmock.Sqlmock, userID int64, exists bool) {
	q := mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM note_stores WHERE user_id = $1`)).
		WithArgs(userID)
	if exists {
		q.WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	} else {
		q.WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	}
}

func TestInitIdempotent(t *testing.T) {
	svc, mock := newMockService(t)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO note_stores (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`)).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO note_stores (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`)).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	created, err := svc.Init(ctx, 7)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.Init(ctx, 7)
	require.NoError(t, err)
	assert.False(t, created)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddAssignsNextID(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT next_note_id FROM note_stores WHERE user_id = $1 FOR UPDATE`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"next_note_id"}).AddRow(3))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO notes (user_id, id, text, created_date) VALUES ($1, $2, $3, $4)`)).
		WithArgs(int64(7), int64(3), "Buy milk", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE note_stores SET next_note_id = next_note_id + 1 WHERE user_id = $1`)).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	note, err := svc.Add(context.Background(), 7, "  Buy milk  ")
	require.NoError(t, err)
	assert.Equal(t, int64(3), note.ID)
	assert.Equal(t, "Buy milk", note.Text)
	assert.NotEmpty(t, note.CreatedDate)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddWithoutStore(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT next_note_id FROM note_stores`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"next_note_id"}))
	mock.ExpectRollback()

	_, err := svc.Add(context.Background(), 7, "Buy milk")
	assert.True(t, IsNotInitialized(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddRejectsInvalidText(t *testing.T) {
	svc, mock := newMockService(t)
	ctx := context.Background()

	cases := map[string]struct {
		text   string
		reason string
	}{
		"empty":      {"", ReasonEmpty},
		"whitespace": {"   ", ReasonEmpty},
		"too long":   {strings.Repeat("x", MaxTextLen+1), ReasonTooLong},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Add(ctx, 7, tc.text)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.reason, verr.Reason)
		})
	}

	// No SQL runs for rejected input.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddAcceptsMaxLengthText(t *testing.T) {
	svc, mock := newMockService(t)
	text := strings.Repeat("x", MaxTextLen)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT next_note_id FROM note_stores`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"next_note_id"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO notes`)).
		WithArgs(int64(7), int64(1), text, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE note_stores SET next_note_id`)).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	note, err := svc.Add(context.Background(), 7, text)
	require.NoError(t, err)
	assert.Equal(t, int64(1), note.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOrdersByID(t *testing.T) {
	svc, mock := newMockService(t)

	expectStoreCheck(mock, 7, true)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT user_id, id, text, created_date FROM notes WHERE user_id = $1 ORDER BY id ASC`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "id", "text", "created_date"}).
			AddRow(7, 1, "first", "01/01/2026").
			AddRow(7, 3, "third", "02/01/2026"))

	list, err := svc.List(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(1), list[0].ID)
	assert.Equal(t, int64(3), list[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListEmptyStoreIsNotAnError(t *testing.T) {
	svc, mock := newMockService(t)

	expectStoreCheck(mock, 7, true)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT user_id, id, text, created_date FROM notes`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "id", "text", "created_date"}))

	list, err := svc.List(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListWithoutStore(t *testing.T) {
	svc, mock := newMockService(t)

	expectStoreCheck(mock, 7, false)

	_, err := svc.List(context.Background(), 7)
	assert.True(t, IsNotInitialized(err))
}

func TestUpdatePreservesIDAndDate(t *testing.T) {
	svc, mock := newMockService(t)

	expectStoreCheck(mock, 7, true)
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE notes SET text = $1 WHERE user_id = $2 AND id = $3`)).
		WithArgs("New text", int64(7), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "id", "text", "created_date"}).
			AddRow(7, 1, "New text", "01/01/2026"))

	note, err := svc.Update(context.Background(), 7, 1, "New text")
	require.NoError(t, err)
	assert.Equal(t, int64(1), note.ID)
	assert.Equal(t, "New text", note.Text)
	assert.Equal(t, "01/01/2026", note.CreatedDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUnknownID(t *testing.T) {
	svc, mock := newMockService(t)

	expectStoreCheck(mock, 7, true)
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE notes SET text = $1`)).
		WithArgs("New text", int64(7), int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "id", "text", "created_date"}))

	_, err := svc.Update(context.Background(), 7, 99, "New text")
	assert.True(t, IsNotFound(err))
}

func TestUpdateRejectsEmptyText(t *testing.T) {
	svc, mock := newMockService(t)

	_, err := svc.Update(context.Background(), 7, 1, "  ")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, ReasonEmpty, verr.Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRemovesNote(t *testing.T) {
	svc, mock := newMockService(t)

	expectStoreCheck(mock, 7, true)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM notes WHERE user_id = $1 AND id = $2`)).
		WithArgs(int64(7), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.Delete(context.Background(), 7, 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUnknownID(t *testing.T) {
	svc, mock := newMockService(t)

	expectStoreCheck(mock, 7, true)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM notes`)).
		WithArgs(int64(7), int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.Delete(context.Background(), 7, 99)
	assert.True(t, IsNotFound(err))
}

func TestResetRestartsCounter(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE note_stores SET next_note_id = 1 WHERE user_id = $1`)).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM notes WHERE user_id = $1`)).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectCommit()

	require.NoError(t, svc.Reset(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetWithoutStore(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE note_stores SET next_note_id = 1`)).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := svc.Reset(context.Background(), 7)
	assert.True(t, IsNotInitialized(err))
}

func TestStats(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectQuery(`SELECT \(SELECT COUNT\(\*\) FROM note_stores\) AS users`).
		WillReturnRows(sqlmock.NewRows([]string{"users", "notes"}).AddRow(12, 57))

	st, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), st.Users)
	assert.Equal(t, int64(57), st.Notes)
}
