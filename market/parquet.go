package market

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
)

// ParquetStore caches daily bars on disk as one Parquet file per symbol:
//
//	<DataDir>/daily/<SYMBOL>.parquet
//
// Fetched history is written once and replayed offline from then on.
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a ParquetStore rooted at dataDir.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// barRecord is the on-disk Parquet schema.
type barRecord struct {
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    float64 `parquet:"volume"`
}

// WriteSeries writes (or merges into) the Parquet file for the series'
// symbol. Duplicate timestamps keep the incoming bar.
func (p *ParquetStore) WriteSeries(s *Series) error {
	path := p.barPath(s.Symbol)

	existing, _ := readParquetFile[barRecord](path)

	seen := make(map[int64]barRecord, len(existing)+s.Len())
	for _, r := range existing {
		seen[r.Timestamp] = r
	}
	for _, b := range s.Bars() {
		seen[b.Timestamp.UnixMilli()] = barRecord{
			Symbol:    s.Symbol,
			Timestamp: b.Timestamp.UnixMilli(),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		}
	}

	merged := make([]barRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := parquet.WriteFile(path, merged); err != nil {
		return fmt.Errorf("write bars for %s: %w", s.Symbol, err)
	}
	return nil
}

// ReadSeries loads the bar history for symbol between start and end
// (inclusive). The merge step in WriteSeries keeps records sorted, so the
// result appends cleanly into a Series.
func (p *ParquetStore) ReadSeries(symbol string, start, end time.Time) (*Series, error) {
	records, err := readParquetFile[barRecord](p.barPath(symbol))
	if err != nil {
		return nil, fmt.Errorf("read bars for %s: %w", symbol, err)
	}

	s := NewSeries(symbol)
	for _, r := range records {
		ts := time.UnixMilli(r.Timestamp).UTC()
		if ts.Before(start) || ts.After(end) {
			continue
		}
		b := Bar{
			Timestamp: ts,
			Open:      r.Open,
			High:      r.High,
			Low:       r.Low,
			Close:     r.Close,
			Volume:    r.Volume,
		}
		if err := s.Append(b); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Symbols lists every symbol with a cached bar file, sorted.
func (p *ParquetStore) Symbols() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(p.DataDir, "daily"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var symbols []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".parquet") {
			continue
		}
		symbols = append(symbols, strings.TrimSuffix(name, ".parquet"))
	}
	sort.Strings(symbols)
	return symbols, nil
}

func (p *ParquetStore) barPath(symbol string) string {
	return filepath.Join(p.DataDir, "daily", strings.ToUpper(symbol)+".parquet")
}

func readParquetFile[T any](path string) ([]T, error) {
	return parquet.ReadFile[T](path)
}
