package storage

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the behaviour every backend must share
func exerciseStore(t *testing.T, s Store) {
	t.Helper()

	_, found, err := s.Get("access_token")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set("access_token", "abc123"))
	v, found, err := s.Get("access_token")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "abc123", v)

	require.NoError(t, s.Set("access_token", "def456"))
	v, _, err = s.Get("access_token")
	require.NoError(t, err)
	assert.Equal(t, "def456", v)

	require.NoError(t, s.Set("access_token", ""))
	v, found, err = s.Get("access_token")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "", v)

	require.NoError(t, s.Delete("access_token"))
	_, found, err = s.Get("access_token")
	require.NoError(t, err)
	assert.False(t, found)

	// deleting a missing key is a no-op
	require.NoError(t, s.Delete("missing"))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	s, err := NewFile(path)
	require.NoError(t, err)
	exerciseStore(t, s)

	t.Run("persists across reopen", func(t *testing.T) {
		require.NoError(t, s.Set("nickname", "빵순이"))
		require.NoError(t, s.Set("userId", "42"))

		reopened, err := NewFile(path)
		require.NoError(t, err)

		v, found, err := reopened.Get("nickname")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "빵순이", v)

		v, _, _ = reopened.Get("userId")
		assert.Equal(t, "42", v)
	})

	t.Run("file is owner only", func(t *testing.T) {
		if os.PathSeparator == '\\' {
			t.Skip("permission bits are not meaningful on windows")
		}
		fi, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
	})

	t.Run("corrupt file", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "state.json")
		require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o600))
		_, err := NewFile(bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse state")
	})
}

func TestSQLStore(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("MOASAJA_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("MOASAJA_TEST_REDIS_ADDR not set")
	}
	s, err := DialRedis(addr, "", 0, "moasaja-test-"+strconv.Itoa(os.Getpid())+":")
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestScoped(t *testing.T) {
	base := NewMemory()
	alice := Scoped(base, "alice")
	bob := Scoped(base, "bob")

	exerciseStore(t, alice)

	require.NoError(t, alice.Set("access_token", "a"))
	require.NoError(t, bob.Set("access_token", "b"))

	v, _, _ := alice.Get("access_token")
	assert.Equal(t, "a", v)
	v, _, _ = bob.Get("access_token")
	assert.Equal(t, "b", v)

	raw, found, _ := base.Get("alice:access_token")
	assert.True(t, found)
	assert.Equal(t, "a", raw)

	assert.Same(t, base, Scoped(base, "").(*MemoryStore))
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{name: "memory", opts: Options{Driver: DriverMemory}},
		{name: "file", opts: Options{Driver: DriverFile, Path: filepath.Join(t.TempDir(), "s.json")}},
		{name: "default driver is file", opts: Options{Path: filepath.Join(t.TempDir(), "s.json")}},
		{name: "sqlite", opts: Options{Driver: "SQLite", Path: filepath.Join(t.TempDir(), "s.db")}},
		{name: "unknown", opts: Options{Driver: "etcd"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(tt.opts)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownDriver)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, s)
		})
	}
}
