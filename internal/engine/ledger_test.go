package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_ListingOfCaches(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "a")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	l := NewLedger()
	names, err := l.ListingOf(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.txt", "sub"}, names)

	// Later changes on disk are not seen.
	writeFile(t, filepath.Join(dir, "b.txt"), "b")
	again, err := l.ListingOf(dir)
	require.NoError(t, err)
	assert.Equal(t, names, again)
}

func TestLedger_ListingOfErrorNotCached(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "later")

	l := NewLedger()
	_, err := l.ListingOf(dir)
	require.Error(t, err)

	require.NoError(t, os.Mkdir(dir, 0755))
	names, err := l.ListingOf(dir)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLedger_MarkTouched(t *testing.T) {
	l := NewLedger()

	assert.True(t, l.MarkTouched("/r/a.txt", KindFile))
	assert.False(t, l.MarkTouched("/r/a.txt", KindFile))
	assert.True(t, l.IsTouched("/r/a.txt"))
	assert.False(t, l.IsDirTouched("/r/a.txt"))

	assert.True(t, l.MarkTouched("/r/sub", KindDir))
	assert.True(t, l.IsTouched("/r/sub"))
	assert.True(t, l.IsDirTouched("/r/sub"))

	assert.False(t, l.IsTouched("/r/other"))
}

func TestLedger_Exhaust(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "a")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	l := NewLedger()
	assert.False(t, l.AllEntriesTouched(dir), "unlisted directory")
	assert.False(t, l.Exhaust(dir))

	_, err := l.ListingOf(dir)
	require.NoError(t, err)

	l.MarkTouched(filepath.Join(dir, "a.txt"), KindFile)
	assert.False(t, l.AllEntriesTouched(dir))
	assert.False(t, l.Exhaust(dir))
	assert.False(t, l.IsDirTouched(dir))

	l.MarkTouched(filepath.Join(dir, "sub"), KindDir)
	assert.True(t, l.AllEntriesTouched(dir))
	assert.True(t, l.Exhaust(dir))
	assert.True(t, l.IsDirTouched(dir))

	assert.False(t, l.Exhaust(dir), "already exhausted")
}

func TestLedger_EmptyListingIsAllTouched(t *testing.T) {
	dir := t.TempDir()
	l := NewLedger()
	_, err := l.ListingOf(dir)
	require.NoError(t, err)
	assert.True(t, l.AllEntriesTouched(dir))
}

func TestLedger_Entered(t *testing.T) {
	l := NewLedger()
	assert.False(t, l.Entered("/real/a"))

	l.MarkEntered("/real/a")
	assert.True(t, l.Entered("/real/a"))
	assert.False(t, l.Entered("/real"), "parents are not implied")
	assert.False(t, l.IsTouched("/real/a"), "entering does not touch")
}
