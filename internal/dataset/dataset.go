// Package dataset lists and reads CSV datasets stored in a directory.
package dataset

import (
	"context"
	"crypto/md5"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"chronology/internal/logging"
	"chronology/internal/model"
)

// DefaultLimit is the row limit used by Content when none is given.
const DefaultLimit = 100

// ErrNotFound is returned for an unknown dataset id.
var ErrNotFound = errors.New("dataset not found")

// Dataset describes one CSV file.
type Dataset struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Filename    string          `json:"filename"`
	Size        int64           `json:"size"`
	Samples     int             `json:"samples"`
	Columns     []string        `json:"columns"`
	CreatedAt   model.Timestamp `json:"createdAt"`
	Description string          `json:"description"`
}

// Content is a slice of a dataset's rows.
type Content struct {
	Dataset      Dataset             `json:"dataset"`
	Columns      []string            `json:"columns"`
	Rows         []map[string]string `json:"rows"`
	TotalRows    int                 `json:"total_rows"`
	ReturnedRows int                 `json:"returned_rows"`
}

// Store reads datasets from a directory.
type Store struct {
	dir    string
	logger *zap.Logger
}

// NewStore creates a store over dir, creating the directory if needed.
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create dataset directory: %w", err)
	}
	return &Store{dir: dir, logger: logging.OrNop(logger).Named("dataset")}, nil
}

// Dir returns the dataset directory.
func (s *Store) Dir() string {
	return s.dir
}

// List returns every *.csv in the directory, ordered by filename. Files
// that cannot be read are logged and skipped.
func (s *Store) List(ctx context.Context) ([]Dataset, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	sort.Strings(paths)

	results := make([]*Dataset, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d, err := describe(path)
			if err != nil {
				s.logger.Warn("Skipping unreadable dataset", zap.String("path", path), zap.Error(err))
				return nil
			}
			results[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := []Dataset{}
	for _, d := range results {
		if d != nil {
			out = append(out, *d)
		}
	}
	return out, nil
}

// Get returns one dataset by id.
func (s *Store) Get(ctx context.Context, id string) (*Dataset, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
}

// Content returns up to limit rows of a dataset as column->value maps.
// A limit <= 0 means DefaultLimit.
func (s *Store) Content(ctx context.Context, id string, limit int) (*Content, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.dir, d.Filename))
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", d.Filename, err)
	}
	defer f.Close()

	r := newReader(f)
	if _, err := r.Read(); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read dataset header: %w", err)
	}

	rows := []map[string]string{}
	for len(rows) < limit {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset %s: %w", d.Filename, err)
		}
		row := make(map[string]string, len(d.Columns))
		for i, col := range d.Columns {
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}

	return &Content{
		Dataset:      *d,
		Columns:      d.Columns,
		Rows:         rows,
		TotalRows:    d.Samples,
		ReturnedRows: len(rows),
	}, nil
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

func describe(path string) (*Dataset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := newReader(f)
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		header = []string{}
	} else if err != nil {
		return nil, err
	}
	samples := 0
	for {
		_, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		samples++
	}

	name := info.Name()
	return &Dataset{
		ID:          datasetID(name, info.ModTime()),
		Name:        titleCase(strings.ReplaceAll(strings.TrimSuffix(name, filepath.Ext(name)), "_", " ")),
		Filename:    name,
		Size:        info.Size(),
		Samples:     samples,
		Columns:     header,
		CreatedAt:   model.NewTimestamp(info.ModTime().UTC().Truncate(time.Microsecond)),
		Description: fmt.Sprintf("CSV dataset with %d samples and %d columns", samples, len(header)),
	}, nil
}

// datasetID is the first 8 hex digits of md5("<filename>_<mtime>"), with
// mtime in fractional Unix seconds.
func datasetID(filename string, mtime time.Time) string {
	secs := float64(mtime.UnixNano()) / 1e9
	s := strconv.FormatFloat(secs, 'f', -1, 64)
	if secs == math.Trunc(secs) {
		s += ".0"
	}
	sum := md5.Sum([]byte(filename + "_" + s))
	return hex.EncodeToString(sum[:])[:8]
}

// titleCase upper-cases the first letter of every word and lower-cases
// the rest.
func titleCase(s string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range s {
		if prevLetter {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(unicode.ToUpper(r))
		}
		prevLetter = unicode.IsLetter(r)
	}
	return b.String()
}

// FormatFileSize renders a byte count as "1.5 KB" style text.
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	sizes := []string{"Bytes", "KB", "MB", "GB"}
	v := float64(bytes)
	i := 0
	for v >= 1024 && i < len(sizes)-1 {
		v /= 1024
		i++
	}
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64) + " " + sizes[i]
}
