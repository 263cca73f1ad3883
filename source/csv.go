package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kbukum/tabkit/record"
)

// ReaderOption configures the CSV reader.
type ReaderOption func(*csv.Reader)

// WithComma sets the field delimiter (default is ',').
func WithComma(comma rune) ReaderOption {
	return func(r *csv.Reader) {
		r.Comma = comma
	}
}

// WithComment sets the comment character. Lines beginning with it are ignored.
func WithComment(comment rune) ReaderOption {
	return func(r *csv.Reader) {
		r.Comment = comment
	}
}

// dialectOptions turns the delimiter and comment settings of a request into
// reader options. Each must be empty or a single character.
func dialectOptions(delimiter, comment string) ([]ReaderOption, error) {
	var opts []ReaderOption
	if delimiter != "" {
		r, err := singleRune("delimiter", delimiter)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithComma(r))
	}
	if comment != "" {
		r, err := singleRune("comment", comment)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithComment(r))
	}
	return opts, nil
}

func singleRune(name, s string) (rune, error) {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, fmt.Errorf("%s %q must be a single character", name, s)
	}
	return r, nil
}

// ParseCSV tokenizes text into records. With header set, the first row names
// the columns: blank header cells fall back to their column index and a
// repeated name keeps the last cell. Cells past the header row are keyed by
// column index, and missing trailing cells are left out. Without header every
// key is the column index ("0", "1", ...). Blank lines are skipped.
func ParseCSV(text string, header bool, opts ...ReaderOption) ([]record.Record, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	for _, opt := range opts {
		opt(r)
	}

	var (
		columns []string
		records []record.Record
	)
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if header && columns == nil {
			columns = headerNames(row)
			continue
		}
		rec := make(record.Record, len(row))
		for i, cell := range row {
			rec[columnName(columns, i)] = cell
		}
		records = append(records, rec)
	}
	if records == nil {
		records = []record.Record{}
	}
	return records, nil
}

func headerNames(row []string) []string {
	names := make([]string, len(row))
	for i, h := range row {
		if strings.TrimSpace(h) == "" {
			h = strconv.Itoa(i)
		}
		names[i] = h
	}
	return names
}

func columnName(columns []string, i int) string {
	if i < len(columns) {
		return columns[i]
	}
	return strconv.Itoa(i)
}
