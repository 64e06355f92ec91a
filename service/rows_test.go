package service

import (
	"saasanalytics/models"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	signup := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT plan, users, signup FROM").WillReturnRows(
		sqlmock.NewRows([]string{"plan", "users", "signup"}).
			AddRow([]byte("pro"), int64(12), signup).
			AddRow("free", int64(40), nil),
	)

	rows, err := db.Query("SELECT plan, users, signup FROM users")
	require.NoError(t, err)
	defer rows.Close()

	data, columns, err := scanRows(rows)
	require.NoError(t, err)

	assert.Equal(t, []string{"plan", "users", "signup"}, columns)
	require.Len(t, data, 2)
	assert.Equal(t, "pro", data[0]["plan"], "byte slices become strings")
	assert.Equal(t, int64(12), data[0]["users"])
	assert.Equal(t, "2024-03-01T12:00:00Z", data[0]["signup"])
	assert.Nil(t, data[1]["signup"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScanRows_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rows, err := db.Query("SELECT id FROM users WHERE 1 = 0")
	require.NoError(t, err)
	defer rows.Close()

	data, _, err := scanRows(rows)
	require.NoError(t, err)
	assert.NotNil(t, data, "empty result must encode as [] not null")
	assert.Empty(t, data)
}

func TestScanRows_RowError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnRows(
		sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2).RowError(1, assert.AnError),
	)

	rows, err := db.Query("SELECT id FROM users")
	require.NoError(t, err)
	defer rows.Close()

	_, _, err = scanRows(rows)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestResultType(t *testing.T) {
	one := []map[string]any{{"total": 1}}
	two := []map[string]any{{"a": 1}, {"a": 2}}

	assert.Equal(t, models.ResultTypeMetric, resultType(one, []string{"total"}))
	assert.Equal(t, models.ResultTypeTable, resultType(one, []string{"a", "b"}))
	assert.Equal(t, models.ResultTypeTable, resultType(two, []string{"a"}))
	assert.Equal(t, models.ResultTypeTable, resultType([]map[string]any{}, []string{"a"}))
}
