// Package dataset loads a delimited table of social-media posts into memory and
// answers substring searches and aggregate statistics over it.
package dataset

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Derived and normalized column names.
const (
	ColumnText      = "text"
	ColumnTextClean = "text_clean"
	ColumnDate      = "date"
)

// columnSynonyms is applied in order, once, after lowercasing the header. A
// synonym is only renamed when its canonical name is not already present.
var columnSynonyms = []struct {
	from string
	to   string
}{
	{"tweet", ColumnText},
	{"content", ColumnText},
	{"message", ColumnText},
	{"created_at", ColumnDate},
	{"timestamp", ColumnDate},
	{"time", ColumnDate},
}

var dateLayouts = []string{
	time.RFC3339,
	"Mon Jan 02 15:04:05 -0700 2006",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"01/02/2006",
	"1/2/2006",
	time.RFC1123Z,
	time.RFC1123,
}

// Record is one row. Values holds every column by normalized name, including
// the derived text_clean column. Date is nil when the row has no parseable date.
type Record struct {
	Values map[string]string
	Date   *time.Time

	hasDateColumn bool
}

// Text returns the raw text column.
func (r Record) Text() string {
	return r.Values[ColumnText]
}

// Get returns the value of column name.
func (r Record) Get(name string) string {
	return r.Values[name]
}

// MarshalJSON renders the record as a flat object; the date column becomes an
// RFC 3339 timestamp or null.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Values)+1)
	for k, v := range r.Values {
		out[k] = v
	}
	if r.hasDateColumn {
		if r.Date != nil {
			out[ColumnDate] = r.Date.Format(time.RFC3339)
		} else {
			out[ColumnDate] = nil
		}
	}
	return json.Marshal(out)
}

// Dataset is an ordered, read-only table. A Dataset with zero records is the
// valid "failed to load or file absent" state.
type Dataset struct {
	Columns []string
	Records []Record
}

// Empty returns a dataset with no columns and no records.
func Empty() *Dataset {
	return &Dataset{}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// IsEmpty reports whether the dataset has no records.
func (d *Dataset) IsEmpty() bool {
	return d.Len() == 0
}

// HasColumn reports whether name is one of the normalized columns.
func (d *Dataset) HasColumn(name string) bool {
	if d == nil {
		return false
	}
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Parse reads a delimited table with a header row.
func Parse(r io.Reader, delimiter rune) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Empty(), nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := NormalizeColumns(header)
	hasText := indexOf(columns, ColumnText) >= 0
	hasDate := indexOf(columns, ColumnDate) >= 0
	if hasText && indexOf(columns, ColumnTextClean) < 0 {
		columns = append(columns, ColumnTextClean)
	}

	ds := &Dataset{Columns: columns}
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}

		rec := Record{
			Values:        make(map[string]string, len(columns)),
			hasDateColumn: hasDate,
		}
		for i := 0; i < len(header); i++ {
			if i < len(row) {
				rec.Values[columns[i]] = row[i]
			} else {
				rec.Values[columns[i]] = ""
			}
		}
		if hasText {
			rec.Values[ColumnTextClean] = CleanText(rec.Values[ColumnText])
		}
		if hasDate {
			if t, ok := ParseDate(rec.Values[ColumnDate]); ok {
				rec.Date = &t
			}
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

// NormalizeColumns lowercases and trims the header, renames the first matching
// synonym of text/date and suffixes later duplicates with ".1", ".2", ...
func NormalizeColumns(header []string) []string {
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}

	seen := make(map[string]int, len(cols))
	for i, c := range cols {
		if n, ok := seen[c]; ok {
			seen[c] = n + 1
			cols[i] = fmt.Sprintf("%s.%d", c, n+1)
			continue
		}
		seen[c] = 0
	}

	for _, syn := range columnSynonyms {
		from := indexOf(cols, syn.from)
		if from >= 0 && indexOf(cols, syn.to) < 0 {
			cols[from] = syn.to
		}
	}
	return cols
}

// ParseDate tries the known layouts in order.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DelimiterFor picks the field separator from the file extension.
func DelimiterFor(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

// Load reads path into a Dataset. Any failure yields an empty Dataset and is
// logged; callers never see an error.
func Load(path string, logger *zap.Logger) *Dataset {
	f, err := os.Open(path)
	if err != nil {
		logger.Warn("dataset not loaded", zap.String("path", path), zap.Error(err))
		return Empty()
	}
	defer f.Close()

	ds, err := Parse(f, DelimiterFor(path))
	if err != nil {
		logger.Warn("dataset not loaded", zap.String("path", path), zap.Error(err))
		return Empty()
	}

	logger.Info("dataset loaded",
		zap.String("path", path),
		zap.Int("rows", ds.Len()),
		zap.Strings("columns", ds.Columns))
	return ds
}

// Store holds the current Dataset. Load replaces it wholesale; readers get an
// immutable snapshot.
type Store struct {
	mu     sync.RWMutex
	ds     *Dataset
	logger *zap.Logger
}

// NewStore creates a store holding an empty dataset.
func NewStore(logger *zap.Logger) *Store {
	return &Store{ds: Empty(), logger: logger.Named("dataset")}
}

// NewStoreWith wraps an already parsed dataset.
func NewStoreWith(ds *Dataset, logger *zap.Logger) *Store {
	if ds == nil {
		ds = Empty()
	}
	return &Store{ds: ds, logger: logger.Named("dataset")}
}

// Load replaces the current dataset with the contents of path and returns the
// number of rows loaded.
func (s *Store) Load(path string) int {
	ds := Load(path, s.logger)
	s.mu.Lock()
	s.ds = ds
	s.mu.Unlock()
	return ds.Len()
}

// Current returns the dataset snapshot.
func (s *Store) Current() *Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds
}

func indexOf(values []string, target string) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return -1
}
