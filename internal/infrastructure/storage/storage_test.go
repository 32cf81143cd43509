package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Fiado-api/internal/infrastructure/storage"
	"github.com/jhoicas/Fiado-api/pkg/config"
)

func TestOpen_Memoria(t *testing.T) {
	s, err := storage.Open(context.Background(), config.DBConfig{Driver: config.DriverMemory})
	require.NoError(t, err)
	defer s.Close()

	totals, err := s.Reports.Totals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, totals.CustomerCount)
}

func TestOpen_SQLiteCreaElArchivo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fiado.db")

	s, err := storage.Open(context.Background(), config.DBConfig{Driver: config.DriverSQLite, SQLitePath: path})
	require.NoError(t, err)
	defer s.Close()

	assert.FileExists(t, path)
	list, err := s.Customers.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestOpen_DriverDesconocido(t *testing.T) {
	_, err := storage.Open(context.Background(), config.DBConfig{Driver: "mongo"})

	assert.ErrorContains(t, err, "DB_DRIVER")
}
