package allowlist

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func TestParse_TrimsAndSkipsBlankLines(t *testing.T) {
	set, err := Parse(strings.NewReader("  Pride \n\nPeugeot 405\r\n\t\nSamand\nPride\n"))
	require.NoError(t, err)

	assert.Equal(t, 3, set.Len())
	assert.True(t, set.Contains("Pride"))
	assert.True(t, set.Contains("Peugeot 405"))
	assert.True(t, set.Contains("Samand"))
	assert.False(t, set.Contains(""))
	assert.False(t, set.Contains(" Pride "))
	assert.Equal(t, []string{"Peugeot 405", "Pride", "Samand"}, set.Sorted())
}

func TestParse_CaseSensitive(t *testing.T) {
	set, err := Parse(strings.NewReader("White\n"))
	require.NoError(t, err)

	assert.True(t, set.Contains("White"))
	assert.False(t, set.Contains("white"))
	assert.False(t, set.Contains("WHITE"))
}

func TestParse_EmptySource(t *testing.T) {
	_, err := Parse(strings.NewReader("\n  \n"))
	require.ErrorIs(t, err, ErrEmpty)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	modelsPath := writeFile(t, dir, "models.txt", "Pride\nTiba\n")
	colorsPath := writeFile(t, dir, "colors.txt", "White\nBlack\n")

	store, err := Load(modelsPath, colorsPath)
	require.NoError(t, err)

	assert.True(t, store.ContainsModel("Tiba"))
	assert.False(t, store.ContainsModel("White"))
	assert.True(t, store.ContainsColor("Black"))
	assert.False(t, store.ContainsColor("Tiba"))
	assert.Equal(t, []string{"Pride", "Tiba"}, store.Models())
	assert.Equal(t, []string{"Black", "White"}, store.Colors())
}

func TestLoad_Failures(t *testing.T) {
	dir := t.TempDir()
	ok := writeFile(t, dir, "ok.txt", "x\n")
	empty := writeFile(t, dir, "empty.txt", "")
	missing := filepath.Join(dir, "missing.txt")

	_, err := Load(missing, ok)
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(ok, missing)
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(ok, empty)
	require.ErrorIs(t, err, ErrEmpty)
}

func TestLoad_ChangesNeedReload(t *testing.T) {
	dir := t.TempDir()
	modelsPath := writeFile(t, dir, "models.txt", "Pride\n")
	colorsPath := writeFile(t, dir, "colors.txt", "White\n")

	first, err := Load(modelsPath, colorsPath)
	require.NoError(t, err)
	require.False(t, first.ContainsModel("Dena"))

	writeFile(t, dir, "models.txt", "Pride\nDena\n")
	assert.False(t, first.ContainsModel("Dena"), "loaded store must not change")

	second, err := Load(modelsPath, colorsPath)
	require.NoError(t, err)
	assert.True(t, second.ContainsModel("Dena"))
}

func TestStore_ConcurrentReads(t *testing.T) {
	models, err := Parse(strings.NewReader("Pride\n"))
	require.NoError(t, err)
	colors, err := Parse(strings.NewReader("White\n"))
	require.NoError(t, err)
	store := New(models, colors)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.True(t, store.ContainsModel("Pride"))
				assert.True(t, store.ContainsColor("White"))
			}
		}()
	}
	wg.Wait()
}
