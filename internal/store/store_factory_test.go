package store

import (
	"testing"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"notifysync/internal/config"
	"notifysync/internal/store/memory"
)

func TestNormalizeDSN(t *testing.T) {
	t.Run("adds parseTime and utc", func(t *testing.T) {
		dsn, err := normalizeDSN("app:secret@tcp(db:3306)/notifysync")
		require.NoError(t, err)

		parsed, err := mysqldriver.ParseDSN(dsn)
		require.NoError(t, err)
		require.True(t, parsed.ParseTime)
		require.Equal(t, time.UTC, parsed.Loc)
		require.Equal(t, "app", parsed.User)
		require.Equal(t, "db:3306", parsed.Addr)
		require.Equal(t, "notifysync", parsed.DBName)
	})

	t.Run("overrides explicit parseTime=false", func(t *testing.T) {
		dsn, err := normalizeDSN("app:secret@tcp(db:3306)/notifysync?parseTime=false&loc=Local")
		require.NoError(t, err)

		parsed, err := mysqldriver.ParseDSN(dsn)
		require.NoError(t, err)
		require.True(t, parsed.ParseTime)
		require.Equal(t, time.UTC, parsed.Loc)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := normalizeDSN("not a dsn")
		require.Error(t, err)
	})
}

func TestNewStoreWithoutDSN(t *testing.T) {
	repo, err := NewStore(&config.Config{}, zap.NewNop())
	require.NoError(t, err)
	require.IsType(t, &memory.Store{}, repo)
}
