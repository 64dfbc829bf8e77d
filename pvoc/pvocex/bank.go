package pvocex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-pvoc/pvoc/frame"
)

// Ext is the file extension LoadDir picks up.
const Ext = ".pvx"

// ErrNotFound is returned by Bank lookups for unknown names or indices.
var ErrNotFound = errors.New("pvocex: no such bank entry")

// Bank is a set of analysis files loaded from one directory. Entries are
// numbered consecutively from a start index in lexical file-name order.
type Bank struct {
	dir    string
	start  int
	names  []string
	files  []*frame.File
	byName map[string]int
}

type bankConfig struct {
	start int
	limit int
}

// BankOption configures LoadDir.
type BankOption func(*bankConfig)

// WithStartIndex sets the number of the first bank entry. Default 0.
func WithStartIndex(n int) BankOption {
	return func(c *bankConfig) {
		c.start = n
	}
}

// WithConcurrency bounds the number of files decoded at once. Values < 1 keep
// the default of GOMAXPROCS.
func WithConcurrency(n int) BankOption {
	return func(c *bankConfig) {
		if n > 0 {
			c.limit = n
		}
	}
}

// LoadDir decodes every *.pvx file in dir. Files are decoded concurrently;
// the first failure cancels the rest and is returned.
func LoadDir(ctx context.Context, dir string, opts ...BankOption) (*Bank, error) {
	cfg := bankConfig{limit: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(&cfg)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("pvocex: bank: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), Ext) {
			names = append(names, e.Name())
		}
	}

	files := make([]*frame.File, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.limit)

	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			f, _, err := ReadFile(filepath.Join(dir, name))
			if err != nil {
				return fmt.Errorf("pvocex: bank: %w", err)
			}

			files[i] = f

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	byName := make(map[string]int, len(names))
	for i, name := range names {
		byName[name] = i
		byName[strings.TrimSuffix(name, filepath.Ext(name))] = i
	}

	return &Bank{
		dir:    dir,
		start:  cfg.start,
		names:  names,
		files:  files,
		byName: byName,
	}, nil
}

// Dir returns the directory the bank was loaded from.
func (b *Bank) Dir() string { return b.dir }

// Len returns the number of entries.
func (b *Bank) Len() int { return len(b.files) }

// Start returns the number of the first entry.
func (b *Bank) Start() int { return b.start }

// Names returns the entry file names in bank order.
func (b *Bank) Names() []string { return b.names }

// File returns entry n, counting from Start.
func (b *Bank) File(n int) (*frame.File, error) {
	i := n - b.start
	if i < 0 || i >= len(b.files) {
		return nil, fmt.Errorf("%w: index %d", ErrNotFound, n)
	}

	return b.files[i], nil
}

// Load resolves name as a file name (with or without extension) or as an
// entry number.
func (b *Bank) Load(name string) (*frame.File, error) {
	if i, ok := b.byName[name]; ok {
		return b.files[i], nil
	}

	if n, err := strconv.Atoi(name); err == nil {
		return b.File(n)
	}

	return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// FileLoader loads files from Dir on demand.
type FileLoader struct {
	Dir string
}

// Load reads Dir/name.
func (l FileLoader) Load(name string) (*frame.File, error) {
	f, _, err := ReadFile(filepath.Join(l.Dir, name))
	return f, err
}
