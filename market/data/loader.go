// Package data loads historical bar series from CSV files, optionally
// compressed (.xz, .lzma) or packed in a .zip archive.
package data

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
	"github.com/ulikunitz/xz/lzma"
	"github.com/xyproto/unzip"

	"github.com/rustyeddy/autosim/market"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// LoadSeries reads one instrument's bars from path, keeps only bars inside
// window, and returns a validated Series. Column order is
// time,open,high,low,close[,volume]; a header row is detected and skipped.
func LoadSeries(instrument, path string, window market.Window) (*market.Series, error) {
	r, cleanup, err := openBarFile(path)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	bars, err := readBars(instrument, r, window)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s has no bars in the requested window", market.ErrData, path)
	}

	return market.NewSeries(instrument, bars)
}

// openBarFile returns a reader for the bar data inside path, transparently
// handling xz/lzma compression and single-file zip archives.
func openBarFile(path string) (io.Reader, func(), error) {
	noop := func() {}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		tmp, err := os.MkdirTemp("", "autosim-bars-")
		if err != nil {
			return nil, noop, err
		}
		cleanup := func() { os.RemoveAll(tmp) }
		if err := unzip.Extract(path, tmp); err != nil {
			cleanup()
			return nil, noop, fmt.Errorf("extract %s: %w", path, err)
		}
		inner, err := firstDataFile(tmp)
		if err != nil {
			cleanup()
			return nil, noop, err
		}
		f, err := os.Open(inner)
		if err != nil {
			cleanup()
			return nil, noop, err
		}
		return f, func() { f.Close(); cleanup() }, nil

	case ".xz":
		f, err := os.Open(path)
		if err != nil {
			return nil, noop, err
		}
		zr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, noop, fmt.Errorf("xz %s: %w", path, err)
		}
		return zr, func() { f.Close() }, nil

	case ".lzma":
		f, err := os.Open(path)
		if err != nil {
			return nil, noop, err
		}
		zr, err := lzma.NewReader(f)
		if err != nil {
			f.Close()
			return nil, noop, fmt.Errorf("lzma %s: %w", path, err)
		}
		return zr, func() { f.Close() }, nil

	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, noop, err
		}
		return f, func() { f.Close() }, nil
	}
}

func firstDataFile(dir string) (string, error) {
	var found string
	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || found != "" {
			return err
		}
		found = p
		return nil
	})
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", fmt.Errorf("archive %s contains no files", dir)
	}
	return found, nil
}

func readBars(instrument string, r io.Reader, window market.Window) ([]market.Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var bars []market.Bar
	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return bars, nil
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(row) == 0 {
			continue
		}
		if line == 1 && isHeader(row[0]) {
			continue
		}
		if len(row) < 5 {
			return nil, fmt.Errorf("%w: line %d needs time,open,high,low,close", market.ErrData, line)
		}

		ts, err := parseTime(row[0])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", market.ErrData, line, err)
		}
		if !window.Contains(ts) {
			continue
		}

		var v [4]float64
		for i := 0; i < 4; i++ {
			v[i], err = strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d col %d: %v", market.ErrData, line, i+2, err)
			}
		}
		vol := 0.0
		if len(row) > 5 {
			vol, _ = strconv.ParseFloat(strings.TrimSpace(row[5]), 64)
		}

		bars = append(bars, market.Bar{
			Instrument: instrument,
			Time:       ts,
			Open:       v[0],
			High:       v[1],
			Low:        v[2],
			Close:      v[3],
			Volume:     vol,
		})
	}
}

func isHeader(first string) bool {
	f := strings.ToLower(strings.TrimSpace(first))
	return f == "time" || f == "date" || f == "timestamp"
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}
