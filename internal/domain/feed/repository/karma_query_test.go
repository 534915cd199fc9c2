package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"karmafeed/internal/domain/feed/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockKarmaQuery(t *testing.T) (*KarmaQuery, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewKarmaQuery(sqlx.NewDb(db, "pgx")), mock
}

func TestKarmaQueryAllTime(t *testing.T) {
	q, mock := newMockKarmaQuery(t)

	rows := sqlmock.NewRows([]string{"username", "karma"}).
		AddRow("alice", 10).
		AddRow("bob", 1)
	mock.ExpectQuery(regexp.QuoteMeta("FROM likes l JOIN posts t ON t.id = l.target_id WHERE l.target_type = $2 UNION ALL")).
		WithArgs(int64(5), "post", int64(1), "comment").
		WillReturnRows(rows)

	totals, err := q.KarmaTotals(context.Background(), model.KarmaQuery{PostPoints: 5, CommentPoints: 1})
	require.NoError(t, err)
	assert.Equal(t, []model.KarmaTotal{{Username: "alice", Karma: 10}, {Username: "bob", Karma: 1}}, totals)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKarmaQueryWindowed(t *testing.T) {
	q, mock := newMockKarmaQuery(t)
	since := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("l.created_at >= $3")).
		WithArgs(int64(5), "post", since, int64(1), "comment", since).
		WillReturnRows(sqlmock.NewRows([]string{"username", "karma"}))

	totals, err := q.KarmaTotals(context.Background(), model.KarmaQuery{PostPoints: 5, CommentPoints: 1, Since: since})
	require.NoError(t, err)
	assert.Empty(t, totals)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKarmaQueryError(t *testing.T) {
	q, mock := newMockKarmaQuery(t)

	mock.ExpectQuery("SELECT username").WillReturnError(errors.New("connection reset"))

	_, err := q.KarmaTotals(context.Background(), model.KarmaQuery{PostPoints: 5, CommentPoints: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aggregate karma")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildKarmaSQL(t *testing.T) {
	query, args := buildKarmaSQL(model.KarmaQuery{PostPoints: 5, CommentPoints: 1})
	assert.NotContains(t, query, "created_at")
	assert.Len(t, args, 4)

	query, args = buildKarmaSQL(model.KarmaQuery{PostPoints: 5, CommentPoints: 1, Since: time.Now()})
	assert.Contains(t, query, "l.created_at >= ?")
	assert.Len(t, args, 6)
}
