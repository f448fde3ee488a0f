package prefs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(dir, zap.NewNop())
	require.NoError(t, err)
	return s, dir
}

func TestLoadMissingReturnsDefaults(t *testing.T) {
	s, _ := newTestStore(t)
	assert.Equal(t, Defaults(), s.Load("alice@example.com"))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	want := Preferences{Theme: "dark", Notifications: "off"}
	require.NoError(t, s.Save("alice@example.com", want))
	assert.Equal(t, want, s.Load("alice@example.com"))
}

func TestLoadMergesPartialDocument(t *testing.T) {
	s, dir := newTestStore(t)
	path := filepath.Join(dir, "alice@example.com.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"theme":"dark"}`), 0o644))

	got := s.Load("alice@example.com")
	assert.Equal(t, "dark", got.Theme)
	assert.Equal(t, "on", got.Notifications) // default preserved
}

func TestLoadIgnoresUnknownFields(t *testing.T) {
	s, dir := newTestStore(t)
	path := filepath.Join(dir, "alice@example.com.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"theme":"dark","legacy_field":42}`), 0o644))

	got := s.Load("alice@example.com")
	assert.Equal(t, "dark", got.Theme)
}

func TestLoadCorruptReturnsDefaults(t *testing.T) {
	s, dir := newTestStore(t)
	path := filepath.Join(dir, "alice@example.com.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	assert.Equal(t, Defaults(), s.Load("alice@example.com"))
}

func TestPrincipalsAreIsolated(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Save("alice@example.com", Preferences{Theme: "dark", Notifications: "off"}))
	assert.Equal(t, Defaults(), s.Load("bob@example.com"))
}

func TestFilenameSanitization(t *testing.T) {
	s, dir := newTestStore(t)
	require.NoError(t, s.Save("../../etc/passwd", Defaults()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	name := entries[0].Name()
	assert.False(t, strings.Contains(name, "/"))
	assert.Equal(t, ".._.._etc_passwd.json", name)

	// The file stayed inside the store directory.
	abs, err := filepath.Abs(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(abs, dir))
}

func TestSaveOverwritesAtomically(t *testing.T) {
	s, dir := newTestStore(t)
	require.NoError(t, s.Save("alice@example.com", Preferences{Theme: "dark", Notifications: "on"}))
	require.NoError(t, s.Save("alice@example.com", Preferences{Theme: "light", Notifications: "off"}))

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, Preferences{Theme: "light", Notifications: "off"}, s.Load("alice@example.com"))
}
