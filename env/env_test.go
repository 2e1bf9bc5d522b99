package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestProcessEnv(t *testing.T) {
	path := writeEnv(t, "# comment\nPORTAL_ADDR=:9000\nPORTAL_SECRET_KEY=abc\n\nEMPTY=\n")

	vals, err := ProcessEnv(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", vals["PORTAL_ADDR"])
	assert.Equal(t, "abc", vals["PORTAL_SECRET_KEY"])
	assert.Equal(t, "", vals["EMPTY"])
}

func TestLoad_MissingFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	require.NoError(t, err)

	_, ok := s.Get("PORTAL_TEST_SURELY_UNSET")
	assert.False(t, ok)
}

func TestLoad_EmptyFilename(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestSource_EnvironmentWins(t *testing.T) {
	path := writeEnv(t, "PORTAL_TEST_KEY=from-file\nPORTAL_TEST_OTHER=file-only\n")
	t.Setenv("PORTAL_TEST_KEY", "from-env")

	s, err := Load(path)
	require.NoError(t, err)

	v, ok := s.Get("PORTAL_TEST_KEY")
	assert.True(t, ok)
	assert.Equal(t, "from-env", v)

	v, ok = s.Get("PORTAL_TEST_OTHER")
	assert.True(t, ok)
	assert.Equal(t, "file-only", v)
}
