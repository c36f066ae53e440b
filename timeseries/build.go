package timeseries

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"easydata"
)

// Column names the service emits, with the generic forms accepted too
var (
	dateAliases  = []string{"observation date", "date"}
	valueAliases = []string{"observation value", "value"}
)

// dateLayouts are the calendar-date forms the service has been seen to
// emit, most common first
var dateLayouts = []string{
	"2006-01-02",
	"02-Jan-2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// recordWrapperKeys are envelope keys a JSON payload may wrap its
// observation array in
var recordWrapperKeys = []string{"data", "Data", "observations", "series", "records", "items"}

// Build converts a raw series payload into a Table. It picks the parser
// for the payload's format, extracts the date and value columns, sorts
// observations chronologically, and enforces date uniqueness. Build is
// pure: the payload is never mutated and equal payloads yield equal
// tables. Any shape or parse problem fails with an
// easydata.ErrorTypeMalformedPayload error.
func Build(payload *easydata.SeriesPayload) (*Table, error) {
	if payload == nil {
		return nil, easydata.NewMalformedPayloadError("payload is nil", nil)
	}

	switch payload.Format {
	case easydata.FormatCSV:
		return buildFromCSV(payload.Body)
	case easydata.FormatJSON:
		return buildFromJSON(payload.Body)
	default:
		return nil, easydata.NewMalformedPayloadError(fmt.Sprintf("unknown payload format %q", payload.Format), nil)
	}
}

// buildFromCSV parses a comma-separated payload with a header row
func buildFromCSV(body []byte) (*Table, error) {
	reader := csv.NewReader(bytes.NewReader(body))
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, easydata.NewMalformedPayloadError("invalid CSV", err)
	}
	if len(records) == 0 {
		return nil, easydata.NewMalformedPayloadError("payload has no header row", nil)
	}

	header := records[0]
	dateIdx := -1
	for i, name := range header {
		if matchesAlias(name, dateAliases) {
			dateIdx = i
			break
		}
	}
	if dateIdx < 0 {
		return nil, easydata.NewMalformedPayloadError("missing date column", nil)
	}

	// Prefer the service's named value column and drop the metadata
	// columns around it; when no named one exists, every remaining column
	// is a value column.
	valueIdx := make([]int, 0, len(header)-1)
	for i, name := range header {
		if i != dateIdx && matchesAlias(name, valueAliases) {
			valueIdx = append(valueIdx, i)
		}
	}
	if len(valueIdx) == 0 {
		for i := range header {
			if i != dateIdx {
				valueIdx = append(valueIdx, i)
			}
		}
	}
	if len(valueIdx) == 0 {
		return nil, easydata.NewMalformedPayloadError("missing value column", nil)
	}

	columns := make([]string, len(valueIdx))
	for i, idx := range valueIdx {
		columns[i] = strings.TrimSpace(header[idx])
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		date, err := parseDate(record[dateIdx])
		if err != nil {
			return nil, easydata.NewMalformedPayloadError(err.Error(), nil)
		}

		values := make([]float64, len(valueIdx))
		for i, idx := range valueIdx {
			v, err := parseValue(record[idx])
			if err != nil {
				return nil, easydata.NewMalformedPayloadError(fmt.Sprintf("column %s: %v", columns[i], err), nil)
			}
			values[i] = v
		}

		rows = append(rows, Row{Date: date, Values: values})
	}

	return finishTable(columns, rows)
}

// buildFromJSON parses a payload holding an array of observation objects,
// bare or under a conventional wrapper key
func buildFromJSON(body []byte) (*Table, error) {
	records, err := extractRecords(body)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Table{}, nil
	}

	keys := make([]string, 0, len(records[0]))
	for k := range records[0] {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	dateKey := ""
	for _, k := range keys {
		if matchesAlias(k, dateAliases) {
			dateKey = k
			break
		}
	}
	if dateKey == "" {
		return nil, easydata.NewMalformedPayloadError("missing date column", nil)
	}

	valueKeys := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != dateKey && matchesAlias(k, valueAliases) {
			valueKeys = append(valueKeys, k)
		}
	}
	if len(valueKeys) == 0 {
		for _, k := range keys {
			if k != dateKey {
				valueKeys = append(valueKeys, k)
			}
		}
	}
	if len(valueKeys) == 0 {
		return nil, easydata.NewMalformedPayloadError("missing value column", nil)
	}

	rows := make([]Row, 0, len(records))
	for _, record := range records {
		rawDate, ok := record[dateKey].(string)
		if !ok {
			return nil, easydata.NewMalformedPayloadError("observation date is not a string", nil)
		}
		date, err := parseDate(rawDate)
		if err != nil {
			return nil, easydata.NewMalformedPayloadError(err.Error(), nil)
		}

		values := make([]float64, len(valueKeys))
		for i, k := range valueKeys {
			v, err := jsonValue(record[k])
			if err != nil {
				return nil, easydata.NewMalformedPayloadError(fmt.Sprintf("column %s: %v", k, err), nil)
			}
			values[i] = v
		}

		rows = append(rows, Row{Date: date, Values: values})
	}

	return finishTable(valueKeys, rows)
}

// extractRecords decodes the payload and finds the observation array
func extractRecords(body []byte) ([]map[string]any, error) {
	var top any
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, easydata.NewMalformedPayloadError("invalid JSON", err)
	}

	switch v := top.(type) {
	case []any:
		return toRecordMaps(v)
	case map[string]any:
		for _, key := range recordWrapperKeys {
			if inner, ok := v[key].([]any); ok {
				return toRecordMaps(inner)
			}
		}
		return nil, easydata.NewMalformedPayloadError("no observation array in JSON payload", nil)
	default:
		return nil, easydata.NewMalformedPayloadError("JSON payload is not an array or object", nil)
	}
}

// toRecordMaps asserts every array entry is an object
func toRecordMaps(arr []any) ([]map[string]any, error) {
	records := make([]map[string]any, 0, len(arr))
	for _, item := range arr {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, easydata.NewMalformedPayloadError("observation entry is not an object", nil)
		}
		records = append(records, m)
	}
	return records, nil
}

// finishTable sorts rows chronologically and enforces date uniqueness
func finishTable(columns []string, rows []Row) (*Table, error) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})

	for i := 1; i < len(rows); i++ {
		if rows[i].Date.Equal(rows[i-1].Date) {
			return nil, easydata.NewMalformedPayloadError(
				fmt.Sprintf("duplicate date %s", rows[i].Date.Format("2006-01-02")), nil)
		}
	}

	return &Table{Columns: columns, Rows: rows}, nil
}

// matchesAlias reports whether a column name is one of the given aliases,
// ignoring case and surrounding space
func matchesAlias(name string, aliases []string) bool {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, alias := range aliases {
		if normalized == alias {
			return true
		}
	}
	return false
}

// parseDate parses a calendar date in any of the known layouts
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// parseValue parses a numeric observation value
func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable value %q", s)
	}
	return v, nil
}

// jsonValue coerces a decoded JSON field into a float64. The service has
// emitted numbers both bare and as strings.
func jsonValue(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case string:
		return parseValue(n)
	case nil:
		return 0, fmt.Errorf("missing value")
	default:
		return 0, fmt.Errorf("unsupported value type %T", v)
	}
}
