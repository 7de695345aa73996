package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Format identifies a supported tabular input encoding.
type Format int

const (
	FormatUnknown Format = iota
	FormatCSV
	FormatTSV
	FormatXLSX
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatTSV:
		return "tsv"
	case FormatXLSX:
		return "xlsx"
	default:
		return "unknown"
	}
}

// xlsx files are ZIP containers; this magic is cheaper and more reliable than
// trusting the extension alone.
var zipMagic = []byte{'P', 'K', 0x03, 0x04}

// DetectFormat sniffs the input format from the filename, falling back to
// content inspection of the first line.
func DetectFormat(filename string, data []byte) Format {
	name := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(name, ".xlsx"):
		return FormatXLSX
	case strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".txt"):
		return FormatTSV
	case strings.HasSuffix(name, ".csv"):
		return FormatCSV
	}
	if bytes.HasPrefix(data, zipMagic) {
		return FormatXLSX
	}
	// Count candidate delimiters on the first line.
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte{'\t'}) > bytes.Count(line, []byte{','}) {
		return FormatTSV
	}
	return FormatCSV
}

// Load sniffs the format of an in-memory buffer, reads its rows, and
// normalizes them into a Table.
func Load(data []byte, filename string) (*Table, error) {
	header, rows, err := ReadRaw(data, filename)
	if err != nil {
		return nil, err
	}
	return Normalize(header, rows)
}

// ReadRaw returns the header and string rows of a tabular buffer without
// normalizing the schema.
func ReadRaw(data []byte, filename string) (header []string, rows [][]string, err error) {
	switch DetectFormat(filename, data) {
	case FormatXLSX:
		return readXLSX(data, "", 1)
	case FormatTSV:
		return readDelimited(data, '\t')
	default:
		return readDelimited(data, ',')
	}
}

func readDelimited(data []byte, delim rune) ([]string, [][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("empty input")
		}
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	var rows [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		row := make([]string, len(rec))
		copy(row, rec)
		rows = append(rows, row)
	}
	return header, rows, nil
}

// parseNumeric parses a cell tolerant of percent signs, locale decimal commas
// and thousands separators, and scientific notation.
func parseNumeric(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.ReplaceAll(raw, "%", "")
	raw = strings.ReplaceAll(raw, " ", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	// Decide decimal separator: with both present the later one wins.
	dec := '.'
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	if cpos >= 0 && dpos >= 0 {
		if cpos > dpos {
			dec = ','
		}
	} else if cpos >= 0 && strings.Count(raw, ",") == 1 {
		// A single comma with no dot is a decimal comma unless it lines up as
		// a thousands group ("1,000").
		if len(raw)-cpos-1 != 3 {
			dec = ','
		}
	}
	for _, sep := range []rune{',', '.', ' '} {
		if sep != dec {
			raw = strings.ReplaceAll(raw, string(sep), "")
		}
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
