package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestExpandFiltersEntries(t *testing.T) {
	content := buildZip(t, map[string]string{
		"compras/janeiro.csv":    "data;produto;valor_total\n01/01/2026;Leite;4,99\n",
		"compras/fevereiro.csv":  "data;produto;valor_total\n01/02/2026;Arroz;22,50\n",
		"__MACOSX/._janeiro.csv": "junk",
		"leia-me.txt":            "not a csv",
	})

	files, err := Expand(context.Background(), content, DefaultExpandOptions())
	require.NoError(t, err)
	require.Len(t, files, 2)

	names := []string{files[0].Name, files[1].Name}
	assert.ElementsMatch(t, []string{"janeiro.csv", "fevereiro.csv"}, names)
	for _, f := range files {
		assert.NotEmpty(t, f.Hash)
		assert.Equal(t, int64(len(f.Content)), f.Size)
	}
}

func TestExpandSkipsTraversalPaths(t *testing.T) {
	content := buildZip(t, map[string]string{
		"../../etc/passwd.csv": "malicious",
		"ok.csv":               "data;produto;valor_total\n",
	})

	files, err := Expand(context.Background(), content, DefaultExpandOptions())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "ok.csv", files[0].Name)
}

func TestExpandEnforcesFileCountLimit(t *testing.T) {
	entries := map[string]string{
		"a.csv": "x",
		"b.csv": "x",
		"c.csv": "x",
	}
	opts := DefaultExpandOptions()
	opts.MaxFiles = 2

	_, err := Expand(context.Background(), buildZip(t, entries), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many files")
}

func TestExpandRejectsNonZip(t *testing.T) {
	_, err := Expand(context.Background(), []byte("not a zip"), DefaultExpandOptions())
	assert.Error(t, err)
}
