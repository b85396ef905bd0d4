package shared

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"sync"
)

// CatalogKind selects one of the two message catalogs.
type CatalogKind int

const (
	// GlobalCatalog holds messages for codes in [1000, 2000)
	GlobalCatalog CatalogKind = iota
	// ServiceCatalog holds messages for this service's own codes
	ServiceCatalog
)

// String returns the string representation of the CatalogKind.
func (k CatalogKind) String() string {
	switch k {
	case GlobalCatalog:
		return "global"
	case ServiceCatalog:
		return "service"
	default:
		return "unknown"
	}
}

// EnvVar returns the environment variable holding the catalog path.
func (k CatalogKind) EnvVar() string {
	if k == GlobalCatalog {
		return "GLOBAL_ERROR_FILE_PATH"
	}
	return "SERVICE_ERROR_FILE_PATH"
}

// DefaultPath returns the path used when EnvVar is unset.
func (k CatalogKind) DefaultPath() string {
	if k == GlobalCatalog {
		return "error.json"
	}
	return "services/user/error.json"
}

// owns reports whether the resolver would ever consult this kind for code.
func (k CatalogKind) owns(code Code) bool {
	return code.IsGlobal() == (k == GlobalCatalog)
}

// PathFromEnv returns the catalog path for kind, falling back to its default.
func PathFromEnv(kind CatalogKind) string {
	if v := os.Getenv(kind.EnvVar()); v != "" {
		return v
	}
	return kind.DefaultPath()
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithLogger sets the logger used for parse diagnostics.
func WithLogger(l *slog.Logger) CatalogOption {
	return func(c *Catalog) {
		if l != nil {
			c.log = l
		}
	}
}

// WithReadFile replaces os.ReadFile.
func WithReadFile(fn func(path string) ([]byte, error)) CatalogOption {
	return func(c *Catalog) {
		if fn != nil {
			c.readFile = fn
		}
	}
}

// Catalog maps error codes to messages. It reads its file at most once;
// after that the mapping is immutable and safe for concurrent reads.
type Catalog struct {
	kind     CatalogKind
	path     string
	readFile func(string) ([]byte, error)
	log      *slog.Logger

	once     sync.Once
	messages map[Code]string
	readErr  error
	report   CatalogReport
}

// NewCatalog creates a catalog for kind backed by the file at path.
// Nothing is read until Load or Lookup is called.
func NewCatalog(kind CatalogKind, path string, opts ...CatalogOption) *Catalog {
	c := &Catalog{
		kind:     kind,
		path:     path,
		readFile: os.ReadFile,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Kind returns the catalog kind.
func (c *Catalog) Kind() CatalogKind { return c.kind }

// Path returns the backing file path.
func (c *Catalog) Path() string { return c.path }

// Load reads and parses the catalog file once. Concurrent callers block until
// the first load completes and then observe the same result.
//
// A read failure is returned and remembered. A parse failure is logged and
// leaves the catalog empty, so every lookup falls back.
func (c *Catalog) Load() error {
	c.once.Do(c.load)
	return c.readErr
}

// Lookup returns the message for code. It loads the catalog on first use and
// panics if the file could not be read: catalogs are required configuration.
func (c *Catalog) Lookup(code Code) (string, bool) {
	if err := c.Load(); err != nil {
		panic(err)
	}
	msg, ok := c.messages[code]
	return msg, ok
}

// Messages returns a copy of the loaded mapping.
func (c *Catalog) Messages() (map[Code]string, error) {
	if err := c.Load(); err != nil {
		return nil, err
	}
	out := make(map[Code]string, len(c.messages))
	for k, v := range c.messages {
		out[k] = v
	}
	return out, nil
}

// CatalogReport describes what a load found in the catalog file.
type CatalogReport struct {
	Kind          CatalogKind
	Path          string
	Entries       int
	ParseErr      error
	InvalidKeys   []string
	EmptyMessages []Code
	// Misplaced lists codes the resolver never consults in this catalog.
	Misplaced []Code
}

// OK reports whether the file was clean.
func (r CatalogReport) OK() bool {
	return r.ParseErr == nil && len(r.InvalidKeys) == 0 && len(r.EmptyMessages) == 0 && len(r.Misplaced) == 0
}

// Report loads the catalog and returns its diagnostics.
func (c *Catalog) Report() (CatalogReport, error) {
	if err := c.Load(); err != nil {
		return CatalogReport{Kind: c.kind, Path: c.path}, err
	}
	return c.report, nil
}

func (c *Catalog) load() {
	log := c.log.With(slog.String("kind", c.kind.String()), slog.String("path", c.path))
	c.messages = map[Code]string{}
	c.report = CatalogReport{Kind: c.kind, Path: c.path}

	data, err := c.readFile(c.path)
	if err != nil {
		c.readErr = fmt.Errorf("read %s error catalog %q: %w", c.kind, c.path, err)
		log.Error("failed to read error catalog", slog.Any("err", err))
		return
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		c.report.ParseErr = err
		log.Error("failed to parse error catalog", slog.Any("err", err))
		return
	}

	for key, msg := range raw {
		n, err := strconv.Atoi(key)
		if err != nil || strconv.Itoa(n) != key {
			c.report.InvalidKeys = append(c.report.InvalidKeys, key)
			log.Warn("skipping non-canonical error code", slog.String("key", key))
			continue
		}
		code := Code(n)
		if msg == "" {
			c.report.EmptyMessages = append(c.report.EmptyMessages, code)
			continue
		}
		if !c.kind.owns(code) {
			c.report.Misplaced = append(c.report.Misplaced, code)
		}
		c.messages[code] = msg
	}

	sort.Strings(c.report.InvalidKeys)
	sortCodes(c.report.EmptyMessages)
	sortCodes(c.report.Misplaced)
	c.report.Entries = len(c.messages)
	log.Debug("error catalog loaded", slog.Int("entries", c.report.Entries))
}

func sortCodes(codes []Code) {
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
}
