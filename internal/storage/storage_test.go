package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitchencalc/internal/storage"
)

func testKV(t *testing.T, kv storage.KV) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "calc_history_v1", `[]`))
	require.NoError(t, kv.Set(ctx, "calc_history_v1", `[{"id":"1"}]`))

	value, ok, err := kv.Get(ctx, "calc_history_v1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"1"}]`, value)

	require.NoError(t, kv.Remove(ctx, "calc_history_v1"))
	_, ok, err = kv.Get(ctx, "calc_history_v1")
	require.NoError(t, err)
	assert.False(t, ok)

	// удаление отсутствующего ключа не ошибка
	require.NoError(t, kv.Remove(ctx, "calc_history_v1"))
}

func TestMemory(t *testing.T) {
	testKV(t, storage.NewMemory())
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "kitchen.db")

	db, err := storage.Open(path)
	require.NoError(t, err)
	testKV(t, db)
	require.NoError(t, db.Set(context.Background(), "ovr_flour", `{"gramsPerTbsp":8}`))
	require.NoError(t, db.Close())

	// повторное открытие: миграции идемпотентны, данные на месте
	db, err = storage.Open(path)
	require.NoError(t, err)
	defer db.Close()

	value, ok, err := db.Get(context.Background(), "ovr_flour")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"gramsPerTbsp":8}`, value)
}
