package service

import (
	"context"
	"saasanalytics/database"
	"saasanalytics/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const insertSetting = "INSERT INTO app_settings (key, value, updated_at) VALUES ('ro_key', 'v', CURRENT_TIMESTAMP)"

func TestReadOnly_SQLiteRefusesWritesThenRestores(t *testing.T) {
	store := openTestStore(t, testConfig(t))
	ctx := context.Background()

	err := readOnly(ctx, store.Session(ctx), database.DialectSQLite, func(tx *gorm.DB) error {
		return tx.Exec(insertSetting).Error
	})
	require.Error(t, err)

	var n int64
	require.NoError(t, store.Session(ctx).Model(&models.AppSetting{}).Count(&n).Error)
	assert.Zero(t, n)

	// the single pooled connection accepts writes again
	require.NoError(t, database.SetSetting(store.Session(ctx), "after", "ok"))
}

func TestReadOnly_SQLiteAllowsReads(t *testing.T) {
	store := openTestStore(t, testConfig(t))
	ctx := context.Background()

	var count int64
	err := readOnly(ctx, store.Session(ctx), database.DialectSQLite, func(tx *gorm.DB) error {
		return tx.Raw("SELECT COUNT(*) FROM users").Scan(&count).Error
	})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestReadOnly_RestoresAfterCancel(t *testing.T) {
	store := openTestStore(t, testConfig(t))
	ctx, cancel := context.WithCancel(context.Background())

	err := readOnly(ctx, store.Session(ctx), database.DialectSQLite, func(tx *gorm.DB) error {
		cancel()
		return context.Canceled
	})
	assert.ErrorIs(t, err, context.Canceled)

	require.NoError(t, database.SetSetting(store.Session(context.Background()), "after", "ok"))
}
