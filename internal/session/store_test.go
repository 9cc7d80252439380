package session

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newStoreWithMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewStore(gdb, 30*24*time.Hour), mock
}

func TestValidate_BlankTokens(t *testing.T) {
	store, mock := newStoreWithMock(t)
	userID := uuid.New()

	// none of these may touch storage
	assert.False(t, store.Validate(context.Background(), "", userID))
	assert.False(t, store.Validate(context.Background(), "   ", userID))
	assert.False(t, store.Validate(context.Background(), "\t\n", userID))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestValidate_ActiveToken(t *testing.T) {
	store, mock := newStoreWithMock(t)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "refresh_tokens"`).
		WithArgs("tok123", userID, false, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	assert.True(t, store.Validate(context.Background(), "tok123", userID))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestValidate_Miss(t *testing.T) {
	store, mock := newStoreWithMock(t)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "refresh_tokens"`).
		WithArgs("ghost", userID, false, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	assert.False(t, store.Validate(context.Background(), "ghost", userID))
}

func TestValidate_StorageErrorReportsFalse(t *testing.T) {
	store, mock := newStoreWithMock(t)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "refresh_tokens"`).
		WillReturnError(assert.AnError)

	assert.False(t, store.Validate(context.Background(), "tok123", userID))
}

func TestRevoke_BlankIsNoOp(t *testing.T) {
	store, mock := newStoreWithMock(t)

	require.NoError(t, store.Revoke(context.Background(), ""))
	require.NoError(t, store.Revoke(context.Background(), "   "))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRevoke_AbsentTokenIsNoOp(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectExec(`UPDATE "refresh_tokens" SET "is_revoked"=`).
		WithArgs(true, "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Revoke(context.Background(), "ghost"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConsume_WinnerGetsRow(t *testing.T) {
	store, mock := newStoreWithMock(t)
	userID := uuid.New()
	tokenID := uuid.New()

	mock.ExpectExec(`UPDATE "refresh_tokens" SET "is_revoked"=`).
		WithArgs(true, "tok123", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(`SELECT \* FROM "refresh_tokens" WHERE token = `).
		WithArgs("tok123", 1).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "user_id", "token", "expires_at", "created_at", "is_revoked", "device_info"}).
			AddRow(tokenID, userID, "tok123", time.Now().Add(time.Hour), time.Now(), true, "ua"))

	rt, err := store.Consume(context.Background(), "tok123")
	require.NoError(t, err)
	assert.Equal(t, userID, rt.UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConsume_LoserGetsInvalid(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectExec(`UPDATE "refresh_tokens" SET "is_revoked"=`).
		WithArgs(true, "tok123", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := store.Consume(context.Background(), "tok123")
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestConsume_BlankToken(t *testing.T) {
	store, mock := newStoreWithMock(t)

	_, err := store.Consume(context.Background(), "  ")
	require.ErrorIs(t, err, ErrTokenInvalid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRevokeAll(t *testing.T) {
	store, mock := newStoreWithMock(t)
	userID := uuid.New()

	mock.ExpectExec(`UPDATE "refresh_tokens" SET "is_revoked"=`).
		WithArgs(true, userID).
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, store.RevokeAll(context.Background(), userID))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteExpiredBefore(t *testing.T) {
	store, mock := newStoreWithMock(t)
	cutoff := time.Now().Add(-30 * 24 * time.Hour)

	mock.ExpectExec(`DELETE FROM "refresh_tokens"`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 7))

	deleted, err := store.DeleteExpiredBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(7), deleted)
}

func TestGenerateTokenString_Unique(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		s, err := generateTokenString()
		require.NoError(t, err)

		_, dup := seen[s]
		require.False(t, dup, "token string collision: %s", s)
		seen[s] = struct{}{}
	}
}

func TestGenerateTokenString_URLSafe(t *testing.T) {
	s, err := generateTokenString()
	require.NoError(t, err)
	assert.NotContains(t, s, "+")
	assert.NotContains(t, s, "/")
	assert.NotContains(t, s, "=")
	assert.Len(t, s, 43) // 32 bytes, base64 raw-url encoded
	assert.LessOrEqual(t, len(s), 500)
}
