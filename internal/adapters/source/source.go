// Package source turns files on disk into raw row sets. Each file becomes
// one model.Source; parsing stops at the raw-row boundary and every value
// is interpreted later by the normalizer.
package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/trainlog/internal/domain/model"
	"github.com/okian/trainlog/pkg/logger"
	"github.com/okian/trainlog/pkg/metrics"
)

// Formats understood by the loader, keyed by file extension.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatFIT  = "fit"
)

// FITSourceName is the source name shared by every FIT file so that a
// single priority entry covers all device recordings.
const FITSourceName = "fit"

// Loader reads source files concurrently while keeping their order.
type Loader struct {
	concurrency int
	log         logger.Logger
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{concurrency: 4, log: logger.Nop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FormatOf returns the format for path, or "" when unsupported.
func FormatOf(path string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "csv":
		return FormatCSV
	case "json":
		return FormatJSON
	case "fit":
		return FormatFIT
	default:
		return ""
	}
}

// Expand resolves directories to the supported files they contain, sorted
// by path. Plain files are kept as given even when unsupported so that
// Load can report them.
func Expand(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		var found []string
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && FormatOf(path) != "" {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		out = append(out, found...)
	}
	return out, nil
}

// Load expands paths and decodes every file. The result has one Source per
// file in the order the files were listed. A file that cannot be decoded
// fails the whole load.
func (l *Loader) Load(ctx context.Context, paths []string) ([]model.Source, error) {
	files, err := Expand(paths)
	if err != nil {
		return nil, err
	}

	out := make([]model.Source, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src, err := l.loadFile(path)
			if err != nil {
				return err
			}
			out[i] = src
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (l *Loader) loadFile(path string) (model.Source, error) {
	start := time.Now()
	format := FormatOf(path)
	if format == "" {
		metrics.RecordSourceFile("unknown", metrics.StatusError)
		return model.Source{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		metrics.RecordSourceFile(format, metrics.StatusError)
		return model.Source{}, err
	}
	defer func() { _ = f.Close() }()

	var src model.Source
	switch format {
	case FormatCSV:
		src, err = ReadCSV(f, stem(path))
	case FormatJSON:
		src, err = ReadJSON(f, stem(path))
	case FormatFIT:
		src, err = ReadFIT(f)
	}
	if err != nil {
		metrics.RecordSourceFile(format, metrics.StatusError)
		return model.Source{}, fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}

	metrics.RecordSourceFile(format, metrics.StatusOK)
	metrics.RecordSourceLoadDuration(time.Since(start))
	l.log.Debug(context.Background(), "source loaded",
		logger.String("path", path),
		logger.String("format", format),
		logger.Int("rows", len(src.Rows)),
	)
	return src, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
