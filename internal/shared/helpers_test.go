package shared_test

import (
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"user-service/internal/shared"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// memFiles is an in-memory file reader that counts reads per path.
type memFiles struct {
	mu    sync.Mutex
	files map[string]string
	reads map[string]*atomic.Int32
	delay time.Duration
}

func newMemFiles(files map[string]string) *memFiles {
	reads := make(map[string]*atomic.Int32, len(files))
	for p := range files {
		reads[p] = &atomic.Int32{}
	}
	return &memFiles{files: files, reads: reads}
}

func (m *memFiles) ReadFile(path string) ([]byte, error) {
	m.mu.Lock()
	counter, ok := m.reads[path]
	if !ok {
		counter = &atomic.Int32{}
		m.reads[path] = counter
	}
	content, exists := m.files[path]
	m.mu.Unlock()

	counter.Add(1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if !exists {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return []byte(content), nil
}

func (m *memFiles) Reads(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.reads[path]; ok {
		return int(c.Load())
	}
	return 0
}

func newTestRegistry(files *memFiles) *shared.Registry {
	opts := []shared.CatalogOption{shared.WithLogger(discard), shared.WithReadFile(files.ReadFile)}
	return shared.NewRegistry(
		shared.NewCatalog(shared.GlobalCatalog, "global.json", opts...),
		shared.NewCatalog(shared.ServiceCatalog, "service.json", opts...),
	)
}

func writeCatalog(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
