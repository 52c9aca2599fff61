package source

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/poiesic/furrygarden/core"
)

// Format is the on-disk encoding of a partition file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Validate returns ErrUnknownFormat for anything but CSV or JSON.
func (f Format) Validate() error {
	switch f {
	case FormatCSV, FormatJSON:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

// FileName returns the conventional file name of a partition, e.g. safe.csv.
func (f Format) FileName(partition core.Partition) string {
	return partition.String() + "." + string(f)
}

// Decoded is the outcome of parsing a partition file.
type Decoded struct {
	Rows    []core.RawRow
	Skipped int // lines that could not be turned into a row
}

// Decode parses r in the given format.
// Parse failures are wrapped with ErrMalformed.
func Decode(format Format, r io.Reader) (*Decoded, error) {
	switch format {
	case FormatCSV:
		return DecodeCSV(r)
	case FormatJSON:
		return DecodeJSON(r)
	default:
		return nil, format.Validate()
	}
}

// DecodeCSV reads a header row followed by data rows. Fields may be quoted.
// Lines whose column count differs from the header, or which cannot be
// parsed, are skipped and counted.
func DecodeCSV(r io.Reader) (*Decoded, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	out := &Decoded{Rows: make([]core.RawRow, 0)}
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		return nil, fmt.Errorf("%w: header: %w", ErrMalformed, err)
	}
	for i, cell := range header {
		cell = strings.TrimPrefix(cell, "\ufeff")
		header[i] = strings.TrimSpace(cell)
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				out.Skipped++
				continue
			}
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		if isEmptyRecord(record) {
			continue
		}
		if len(record) != len(header) {
			out.Skipped++
			continue
		}

		row := make(core.RawRow, len(header))
		for i, key := range header {
			row[key] = record[i]
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// DecodeJSON reads a JSON array of objects. Non-string values are rendered
// as text and null becomes an empty string.
func DecodeJSON(r io.Reader) (*Decoded, error) {
	var objects []map[string]any
	if err := json.NewDecoder(r).Decode(&objects); err != nil {
		if errors.Is(err, io.EOF) {
			return &Decoded{Rows: make([]core.RawRow, 0)}, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	out := &Decoded{Rows: make([]core.RawRow, 0, len(objects))}
	for _, obj := range objects {
		if obj == nil {
			out.Skipped++
			continue
		}
		row := make(core.RawRow, len(obj))
		for k, v := range obj {
			switch val := v.(type) {
			case nil:
				row[k] = ""
			case string:
				row[k] = val
			default:
				row[k] = fmt.Sprint(val)
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// EncodeJSON writes rows as an indented JSON array, the format read by
// DecodeJSON.
func EncodeJSON(w io.Writer, rows []core.RawRow) error {
	if rows == nil {
		rows = make([]core.RawRow, 0)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(rows)
}

func isEmptyRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
