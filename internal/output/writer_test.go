package output

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

func TestWriteFile(t *testing.T) {
	t.Run("plain write", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "health.json")
		require.NoError(t, WriteFile(path, []byte("{}\n")))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, "{}\n", string(data))
	})

	t.Run("creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reports", "nightly", "health.json")
		require.NoError(t, WriteFile(path, []byte("{}")))
		require.FileExists(t, path)
	})

	t.Run("gz suffix compresses", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "health.json.gz")
		payload := []byte(`{"status":"GREEN"}`)
		require.NoError(t, WriteFile(path, payload))

		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close() //nolint:errcheck

		zr, err := gzip.NewReader(f)
		require.NoError(t, err)
		restored, err := io.ReadAll(zr)
		require.NoError(t, err)
		require.Equal(t, payload, restored)
	})
}
