package db

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"meshconf/pkg/model"
)

var upsert = regexp.QuoteMeta("INSERT INTO `rendered_configs`") + ".*" + regexp.QuoteMeta("ON DUPLICATE KEY UPDATE")

func newMockSink(t *testing.T) (*Sink, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	gdb, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return &Sink{db: gdb, sep: ":"}, mock
}

func TestSinkWriteUpsertsInTransaction(t *testing.T) {
	s, mock := newMockSink(t)
	outputs := []model.Output{
		{Node: "a", Text: "A"},
		{Node: "f", Peer: "g", Text: "FG"},
	}

	mock.ExpectBegin()
	mock.ExpectExec(upsert).
		WithArgs(
			"a", "a", "", "A", outputs[0].Digest(), sqlmock.AnyArg(),
			"f:g", "f", "g", "FG", outputs[1].Digest(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, s.Write(context.Background(), outputs))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSinkWriteRollsBack(t *testing.T) {
	s, mock := newMockSink(t)

	mock.ExpectBegin()
	mock.ExpectExec(upsert).WillReturnError(errors.New("deadlock found"))
	mock.ExpectRollback()

	err := s.Write(context.Background(), []model.Output{{Node: "a", Text: "A"}})
	assert.ErrorContains(t, err, "deadlock found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSinkWriteEmptyBatch(t *testing.T) {
	s, mock := newMockSink(t)

	require.NoError(t, s.Write(context.Background(), nil))
	// no transaction is opened
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRows(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	rows := Rows([]model.Output{
		{Node: "a", Text: "A"},
		{Node: "f", Peer: "g", Text: "FG"},
	}, ":", now)

	assert.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].Name)
	assert.Empty(t, rows[0].Peer)
	assert.Equal(t, "f:g", rows[1].Name)
	assert.Equal(t, "f", rows[1].Node)
	assert.Equal(t, "g", rows[1].Peer)
	assert.Equal(t, "FG", rows[1].Content)
	assert.Equal(t, model.Output{Text: "FG"}.Digest(), rows[1].Digest)
	assert.Equal(t, now, rows[1].UpdatedAt)
}

func TestCreateDatabaseRejectsDSNWithoutName(t *testing.T) {
	err := createDatabase("user:pass@tcp(127.0.0.1:3306)/")
	assert.ErrorContains(t, err, "names no database")
}
