package receipts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/horizoncoop/coopadmin-backend/pkg/db/models"
)

func setupSettingsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS branch_or_settings (
  branch_id TEXT PRIMARY KEY,
  journal_voucher_allow_user_input INTEGER NOT NULL DEFAULT 0,
  journal_voucher_or_current INTEGER NOT NULL DEFAULT 0,
  journal_voucher_prefix TEXT NOT NULL DEFAULT '',
  journal_voucher_padding INTEGER NOT NULL DEFAULT 6,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	require.NoError(t, db.Exec("DELETE FROM branch_or_settings").Error)
	return db
}

func TestSettingsRepository_CreateAndFind(t *testing.T) {
	db := setupSettingsTestDB(t)
	repo := NewSettingsRepository(db)
	ctx := context.Background()

	setting := &models.BranchORSetting{
		BranchID:                     uuid.New(),
		JournalVoucherAllowUserInput: true,
		JournalVoucherORCurrent:      41,
		JournalVoucherPrefix:         "JV-",
		JournalVoucherPadding:        6,
	}
	require.NoError(t, repo.Create(ctx, setting))

	found, err := repo.Find(ctx, setting.BranchID)
	require.NoError(t, err)
	assert.Equal(t, "JV-", found.JournalVoucherPrefix)
	assert.Equal(t, 6, found.JournalVoucherPadding)
	assert.EqualValues(t, 41, found.JournalVoucherORCurrent)
	assert.True(t, found.JournalVoucherAllowUserInput)
}

func TestSettingsRepository_FindMissing(t *testing.T) {
	db := setupSettingsTestDB(t)
	repo := NewSettingsRepository(db)

	_, err := repo.Find(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSettingsRepository_SetCurrent(t *testing.T) {
	db := setupSettingsTestDB(t)
	repo := NewSettingsRepository(db)
	ctx := context.Background()

	setting := &models.BranchORSetting{
		BranchID:              uuid.New(),
		JournalVoucherPrefix:  "JV-",
		JournalVoucherPadding: 6,
	}
	require.NoError(t, repo.Create(ctx, setting))
	require.NoError(t, repo.SetCurrent(ctx, setting.BranchID, 42))

	found, err := repo.Find(ctx, setting.BranchID)
	require.NoError(t, err)
	assert.EqualValues(t, 42, found.JournalVoucherORCurrent)
}

func TestSettingsRepository_Save(t *testing.T) {
	db := setupSettingsTestDB(t)
	repo := NewSettingsRepository(db)
	ctx := context.Background()

	setting := &models.BranchORSetting{
		BranchID:              uuid.New(),
		JournalVoucherPrefix:  "JV-",
		JournalVoucherPadding: 6,
	}
	require.NoError(t, repo.Create(ctx, setting))

	setting.JournalVoucherPrefix = "OR-"
	setting.JournalVoucherAllowUserInput = true
	require.NoError(t, repo.Save(ctx, setting))

	found, err := repo.Find(ctx, setting.BranchID)
	require.NoError(t, err)
	assert.Equal(t, "OR-", found.JournalVoucherPrefix)
	assert.True(t, found.JournalVoucherAllowUserInput)
}
