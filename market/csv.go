package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
)

// LoadSeriesCSV reads a daily bar series from a CSV file with columns
// time,open,high,low,close,volume. A header row is detected and skipped.
// Files ending in ".xz" are decompressed on the fly, so archived datasets
// can be replayed without unpacking them first.
//
// Timestamps accept RFC3339 or plain dates (2006-01-02).
func LoadSeriesCSV(symbol, path string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rd io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open xz %s: %w", path, err)
		}
		rd = xr
	}

	return ReadSeriesCSV(symbol, rd)
}

// ReadSeriesCSV parses bar rows from rd into a new Series. Bar ordering is
// not checked here; the backtest verifies each series before replay so a
// corrupt file sinks only its own symbol.
func ReadSeriesCSV(symbol string, rd io.Reader) (*Series, error) {
	r := csv.NewReader(rd)
	r.FieldsPerRecord = -1

	var bars []Bar
	line := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(row) == 0 {
			continue
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), "time") {
			continue
		}

		b, err := parseBarRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", symbol, line, err)
		}
		bars = append(bars, b)
	}
	return NewSeriesFromBars(symbol, bars), nil
}

func parseBarRow(row []string) (Bar, error) {
	if len(row) < 5 {
		return Bar{}, fmt.Errorf("bad row (need time,open,high,low,close[,volume]): %v", row)
	}

	ts := strings.TrimSpace(row[0])
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		t2, err2 := time.Parse("2006-01-02", ts)
		if err2 != nil {
			return Bar{}, fmt.Errorf("bad time %q: %w", ts, err)
		}
		t = t2
	}

	vals := make([]float64, 0, 5)
	for _, col := range row[1:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(col), 64)
		if err != nil {
			return Bar{}, fmt.Errorf("bad value %q: %w", col, err)
		}
		vals = append(vals, v)
	}

	b := Bar{
		Timestamp: t.UTC(),
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
	}
	if len(vals) > 4 {
		b.Volume = vals[4]
	}
	return b, nil
}

// LoadUniverseDir loads every *.csv and *.csv.xz file in dir into a
// Universe. The symbol is the file name without extensions, uppercased.
// Symbols load in lexical order so runs over the same directory are
// reproducible.
func LoadUniverseDir(dir string) (*Universe, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	u := NewUniverse()
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		base := name
		base = strings.TrimSuffix(base, ".xz")
		if !strings.HasSuffix(base, ".csv") {
			continue
		}
		symbol := strings.ToUpper(strings.TrimSuffix(base, ".csv"))

		s, err := LoadSeriesCSV(symbol, filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		u.Add(s)
	}

	if u.Len() == 0 {
		return nil, fmt.Errorf("no bar files found in %s", dir)
	}
	return u, nil
}
