package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"
)

func TestFileDigest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")
	content := []byte("hello, randcp!")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	got, err := fileDigest(path)
	require.NoError(t, err)
	assert.Equal(t, blake3.Sum256(content), got)
}

func TestFileDigest_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	got, err := fileDigest(path)
	require.NoError(t, err)
	assert.Equal(t, blake3.Sum256(nil), got)
}

func TestFileDigest_NotExist(t *testing.T) {
	_, err := fileDigest("/nonexistent/file")
	assert.Error(t, err)
}

func TestVerifyCopy(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	c := filepath.Join(dir, "c")
	require.NoError(t, os.WriteFile(a, []byte("same"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("same"), 0o644))
	require.NoError(t, os.WriteFile(c, []byte("diff"), 0o644))

	require.NoError(t, verifyCopy(a, b))
	assert.ErrorIs(t, verifyCopy(a, c), ErrVerifyMismatch)
}
