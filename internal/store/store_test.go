package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseKV runs the behaviour every backend must share.
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := kv.Load(ctx, "income")
	require.NoError(t, err)
	assert.False(t, ok, "missing key should report not found")

	require.NoError(t, kv.Save(ctx, "income", "5000"))
	v, ok, err := kv.Load(ctx, "income")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "5000", v)

	require.NoError(t, kv.Save(ctx, "income", "6000"))
	v, _, err = kv.Load(ctx, "income")
	require.NoError(t, err)
	assert.Equal(t, "6000", v)

	require.NoError(t, kv.SaveAll(ctx, map[string]string{
		"income":                  "100",
		"fixedExpenses":           "40",
		"variableExpensesHistory": "[]",
	}))
	for key, want := range map[string]string{
		"income":                  "100",
		"fixedExpenses":           "40",
		"variableExpensesHistory": "[]",
	} {
		got, ok, err := kv.Load(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}

	// Empty strings are values, not absence.
	require.NoError(t, kv.Save(ctx, "fixedExpenses", ""))
	v, ok, err = kv.Load(ctx, "fixedExpenses")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, v)
}

func TestMemory(t *testing.T) {
	kv := NewMemory()
	defer func() { _ = kv.Close() }()
	exerciseKV(t, kv)
}

func TestSQLite(t *testing.T) {
	kv, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "pocket.db"))
	require.NoError(t, err)
	defer func() { _ = kv.Close() }()
	exerciseKV(t, kv)
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pocket.db")
	ctx := context.Background()

	first, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, "income", "4200"))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(path)
	require.NoError(t, err)
	defer func() { _ = second.Close() }()

	v, ok, err := second.Load(ctx, "income")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "4200", v)
}

func TestRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	kv, err := DialRedis(context.Background(), RedisOptions{Addr: mr.Addr()})
	require.NoError(t, err)
	defer func() { _ = kv.Close() }()
	exerciseKV(t, kv)

	got, err := mr.Get(DefaultRedisPrefix + "income")
	require.NoError(t, err)
	assert.Equal(t, "100", got)
}

func TestRedisCustomPrefix(t *testing.T) {
	mr := miniredis.RunT(t)

	kv, err := DialRedis(context.Background(), RedisOptions{Addr: mr.Addr(), Prefix: "budget:"})
	require.NoError(t, err)
	defer func() { _ = kv.Close() }()

	require.NoError(t, kv.Save(context.Background(), "income", "1"))
	assert.True(t, mr.Exists("budget:income"))
	assert.False(t, mr.Exists(DefaultRedisPrefix+"income"))
}

func TestDialRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := DialRedis(context.Background(), RedisOptions{Addr: addr})
	assert.Error(t, err)
}

func TestOpenBackends(t *testing.T) {
	ctx := context.Background()

	mem, err := Open(ctx, Options{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, mem)

	lite, err := Open(ctx, Options{SQLitePath: filepath.Join(t.TempDir(), "p.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, lite)
	_ = lite.Close()

	mr := miniredis.RunT(t)
	rd, err := Open(ctx, Options{Backend: BackendRedis, Redis: RedisOptions{Addr: mr.Addr()}})
	require.NoError(t, err)
	assert.IsType(t, &Redis{}, rd)
	_ = rd.Close()

	_, err = Open(ctx, Options{Backend: "etcd"})
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
