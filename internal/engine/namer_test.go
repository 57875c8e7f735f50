package engine

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDest(t *testing.T) {
	t.Run("free name", func(t *testing.T) {
		dst := t.TempDir()
		out, err := ResolveDest(dst, "a.txt", 4)
		require.NoError(t, err)
		assert.False(t, out.Skip)
		assert.Equal(t, filepath.Join(dst, "a.txt"), out.Path)
	})

	t.Run("same size skips", func(t *testing.T) {
		dst := t.TempDir()
		writeFile(t, filepath.Join(dst, "a.txt"), "abcd")
		out, err := ResolveDest(dst, "a.txt", 4)
		require.NoError(t, err)
		assert.True(t, out.Skip)
	})

	t.Run("different size gets suffix", func(t *testing.T) {
		dst := t.TempDir()
		writeFile(t, filepath.Join(dst, "a.txt"), "1234567")
		out, err := ResolveDest(dst, "a.txt", 4)
		require.NoError(t, err)
		assert.False(t, out.Skip)
		assert.Equal(t, filepath.Join(dst, "a (2).txt"), out.Path)
	})

	t.Run("suffix keeps counting", func(t *testing.T) {
		dst := t.TempDir()
		writeFile(t, filepath.Join(dst, "a.txt"), "1234567")
		writeFile(t, filepath.Join(dst, "a (2).txt"), "12345")
		out, err := ResolveDest(dst, "a.txt", 4)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dst, "a (3).txt"), out.Path)
	})

	t.Run("same size at a suffixed candidate skips", func(t *testing.T) {
		dst := t.TempDir()
		writeFile(t, filepath.Join(dst, "a.txt"), "1234567")
		writeFile(t, filepath.Join(dst, "a (2).txt"), "abcd")
		out, err := ResolveDest(dst, "a.txt", 4)
		require.NoError(t, err)
		assert.True(t, out.Skip)
		assert.Equal(t, filepath.Join(dst, "a (2).txt"), out.Path)
	})

	t.Run("dotfile has no extension", func(t *testing.T) {
		dst := t.TempDir()
		writeFile(t, filepath.Join(dst, ".bashrc"), "x")
		out, err := ResolveDest(dst, ".bashrc", 10)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dst, ".bashrc (2)"), out.Path)
	})
}

func TestSplitExt(t *testing.T) {
	tests := []struct {
		name, stem, ext string
	}{
		{"a.txt", "a", ".txt"},
		{"archive.tar.gz", "archive.tar", ".gz"},
		{"README", "README", ""},
		{".bashrc", ".bashrc", ""},
		{".config.yaml", ".config", ".yaml"},
		{"notes.", "notes.", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stem, ext := splitExt(tt.name)
			assert.Equal(t, tt.stem, stem)
			assert.Equal(t, tt.ext, ext)
		})
	}
}
