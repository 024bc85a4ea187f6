package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Row is one raw source record: a stable numeric id plus the row's named
// fields as read from the CSV header.
type Row struct {
	ID     int64
	Fields map[string]string
}

// contentFields lists the fields rendered into the embedded summary, in
// order. The price column is resolved separately because exports of the
// source sheet have shipped with a mojibake header ("preÃ§o").
var contentFields = []struct {
	key   string
	label string
}{
	{"unidade", "Unidade"},
	{"bloco", "Bloco"},
	{"tipologia", "Tipologia"},
	{"piso", "Piso"},
	{"AHB", "AHB"},
	{"ABE", "ABE"},
}

var trailingFields = []struct {
	key   string
	label string
}{
	{"luz_natural", "Luz Natural"},
	{"score", "Score"},
}

// metadataKeys are the fields carried verbatim into record metadata.
var metadataKeys = []string{
	"id", "unidade", "tipologia", "bloco", "piso", "AHB", "ABE", "luz_natural", "score",
}

// Content builds the deterministic text summary that gets embedded, e.g.
// "Unidade A, Bloco 1, Tipologia T2, Piso 3, Preço 350000". Empty fields
// are skipped; identical rows always yield identical summaries.
func (r Row) Content() string {
	var parts []string
	for _, f := range contentFields {
		if v := strings.TrimSpace(r.Fields[f.key]); v != "" {
			parts = append(parts, f.label+" "+v)
		}
	}
	if v := strings.TrimSpace(r.Fields[r.priceKey()]); v != "" {
		parts = append(parts, "Preço "+v)
	}
	for _, f := range trailingFields {
		if v := strings.TrimSpace(r.Fields[f.key]); v != "" {
			parts = append(parts, f.label+" "+v)
		}
	}
	return strings.Join(parts, ", ")
}

// Metadata extracts the non-empty metadata fields for the record.
func (r Row) Metadata() map[string]any {
	meta := make(map[string]any, len(metadataKeys))
	for _, k := range metadataKeys {
		if v, ok := r.Fields[k]; ok && v != "" {
			meta[k] = v
		}
	}
	return meta
}

// priceKey locates the price column tolerating encoding damage in the
// header: any column whose letters collapse to a "pre(co)" prefix counts.
func (r Row) priceKey() string {
	for k := range r.Fields {
		nk := normalizeASCII(k)
		if strings.HasPrefix(nk, "preco") || strings.HasPrefix(nk, "pre") {
			return k
		}
	}
	return ""
}

func normalizeASCII(s string) string {
	var sb strings.Builder
	for _, ch := range strings.ToLower(s) {
		if ch >= 'a' && ch <= 'z' {
			sb.WriteRune(ch)
		}
	}
	return sb.String()
}

// LoadCSV reads rows from a header-keyed CSV file. Rows without a parseable
// numeric id are skipped; source exports occasionally carry blank trailer
// lines.
func LoadCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	return ReadRows(f)
}

// ReadRows parses header-keyed CSV rows from r.
func ReadRows(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var rows []Row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		fields := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				fields[col] = record[i]
			}
		}

		id, err := strconv.ParseInt(strings.TrimSpace(fields["id"]), 10, 64)
		if err != nil {
			continue
		}
		rows = append(rows, Row{ID: id, Fields: fields})
	}
	return rows, nil
}
