package timeseries

import (
	"reflect"
	"testing"
	"time"

	"easydata"
)

func csvPayload(body string) *easydata.SeriesPayload {
	return &easydata.SeriesPayload{
		SeriesCode: "TS_GP_IR_REPOMR_D.ORR",
		Format:     easydata.FormatCSV,
		Body:       []byte(body),
	}
}

func jsonPayload(body string) *easydata.SeriesPayload {
	return &easydata.SeriesPayload{
		SeriesCode: "TS_GP_IR_REPOMR_D.ORR",
		Format:     easydata.FormatJSON,
		Body:       []byte(body),
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuild_CSV(t *testing.T) {
	payload := csvPayload("date,value\n2020-01-01,5.0\n2020-01-02,5.2\n")

	table, err := Build(payload)
	if err != nil {
		t.Fatalf("Build() returned unexpected error: %v", err)
	}

	if table.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", table.Len())
	}

	wantColumns := []string{"value"}
	if !reflect.DeepEqual(table.Columns, wantColumns) {
		t.Errorf("Columns = %v, want %v", table.Columns, wantColumns)
	}

	wantDates := []time.Time{date(2020, 1, 1), date(2020, 1, 2)}
	if !reflect.DeepEqual(table.Dates(), wantDates) {
		t.Errorf("Dates() = %v, want %v", table.Dates(), wantDates)
	}

	values, ok := table.Column("value")
	if !ok {
		t.Fatal("Column(value) not found")
	}
	wantValues := []float64{5.0, 5.2}
	if !reflect.DeepEqual(values, wantValues) {
		t.Errorf("Column(value) = %v, want %v", values, wantValues)
	}
}

func TestBuild_CSV_SortsByDate(t *testing.T) {
	payload := csvPayload("date,value\n2020-01-03,3.0\n2020-01-01,1.0\n2020-01-02,2.0\n")

	table, err := Build(payload)
	if err != nil {
		t.Fatalf("Build() returned unexpected error: %v", err)
	}

	wantDates := []time.Time{date(2020, 1, 1), date(2020, 1, 2), date(2020, 1, 3)}
	if !reflect.DeepEqual(table.Dates(), wantDates) {
		t.Errorf("Dates() = %v, want %v", table.Dates(), wantDates)
	}

	values, _ := table.Column("value")
	wantValues := []float64{1.0, 2.0, 3.0}
	if !reflect.DeepEqual(values, wantValues) {
		t.Errorf("Column(value) = %v, want %v", values, wantValues)
	}
}

func TestBuild_CSV_ServiceColumns(t *testing.T) {
	// The service wraps observations in metadata columns. Only the value
	// column should survive.
	payload := csvPayload(
		"Series Key,Observation Date,Observation Value,Unit\n" +
			"TS_GP_IR_REPOMR_D.ORR,2020-01-01,13.25,Percent\n" +
			"TS_GP_IR_REPOMR_D.ORR,2020-01-02,13.30,Percent\n")

	table, err := Build(payload)
	if err != nil {
		t.Fatalf("Build() returned unexpected error: %v", err)
	}

	wantColumns := []string{"Observation Value"}
	if !reflect.DeepEqual(table.Columns, wantColumns) {
		t.Errorf("Columns = %v, want %v", table.Columns, wantColumns)
	}

	values, _ := table.Column("Observation Value")
	wantValues := []float64{13.25, 13.30}
	if !reflect.DeepEqual(values, wantValues) {
		t.Errorf("Column(Observation Value) = %v, want %v", values, wantValues)
	}
}

func TestBuild_CSV_MultipleValueColumns(t *testing.T) {
	payload := csvPayload("date,low,high\n2020-01-01,1.0,2.0\n2020-01-02,1.5,2.5\n")

	table, err := Build(payload)
	if err != nil {
		t.Fatalf("Build() returned unexpected error: %v", err)
	}

	wantColumns := []string{"low", "high"}
	if !reflect.DeepEqual(table.Columns, wantColumns) {
		t.Errorf("Columns = %v, want %v", table.Columns, wantColumns)
	}

	high, ok := table.Column("high")
	if !ok {
		t.Fatal("Column(high) not found")
	}
	wantHigh := []float64{2.0, 2.5}
	if !reflect.DeepEqual(high, wantHigh) {
		t.Errorf("Column(high) = %v, want %v", high, wantHigh)
	}
}

func TestBuild_CSV_HeaderOnly(t *testing.T) {
	payload := csvPayload("date,value\n")

	table, err := Build(payload)
	if err != nil {
		t.Fatalf("Build() returned unexpected error: %v", err)
	}

	if table.Len() != 0 {
		t.Errorf("Len() = %d, want 0", table.Len())
	}
}

func TestBuild_CSV_DateLayouts(t *testing.T) {
	tests := []struct {
		name string
		body string
		want time.Time
	}{
		{"iso", "date,value\n2020-03-15,1.0\n", date(2020, 3, 15)},
		{"day month year", "date,value\n15-Mar-2020,1.0\n", date(2020, 3, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Build(csvPayload(tt.body))
			if err != nil {
				t.Fatalf("Build() returned unexpected error: %v", err)
			}
			if table.Len() != 1 {
				t.Fatalf("Len() = %d, want 1", table.Len())
			}
			if !table.Rows[0].Date.Equal(tt.want) {
				t.Errorf("Date = %v, want %v", table.Rows[0].Date, tt.want)
			}
		})
	}
}

func TestBuild_CSV_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"missing date column", "code,value\nX,1.0\n"},
		{"missing value column", "date\n2020-01-01\n"},
		{"unparseable date", "date,value\nnot-a-date,1.0\n"},
		{"unparseable value", "date,value\n2020-01-01,abc\n"},
		{"empty value", "date,value\n2020-01-01,\n"},
		{"duplicate dates", "date,value\n2020-01-01,1.0\n2020-01-01,2.0\n"},
		{"ragged row", "date,value\n2020-01-01,1.0,extra\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(csvPayload(tt.body))
			if err == nil {
				t.Fatal("Build() expected error, got nil")
			}
			if !easydata.IsType(err, easydata.ErrorTypeMalformedPayload) {
				t.Errorf("Build() error = %v, want type %v", err, easydata.ErrorTypeMalformedPayload)
			}
		})
	}
}

func TestBuild_CSV_DuplicateDateMessage(t *testing.T) {
	_, err := Build(csvPayload("date,value\n2020-01-01,1.0\n2020-01-01,2.0\n"))
	if err == nil {
		t.Fatal("Build() expected error, got nil")
	}

	expectedErrMsg := "malformed_payload error: duplicate date 2020-01-01"
	if err.Error() != expectedErrMsg {
		t.Errorf("Build() error = %q, want %q", err.Error(), expectedErrMsg)
	}
}

func TestBuild_JSON(t *testing.T) {
	payload := jsonPayload(`[
		{"date": "2020-01-02", "value": 5.2},
		{"date": "2020-01-01", "value": 5.0}
	]`)

	table, err := Build(payload)
	if err != nil {
		t.Fatalf("Build() returned unexpected error: %v", err)
	}

	if table.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", table.Len())
	}

	wantDates := []time.Time{date(2020, 1, 1), date(2020, 1, 2)}
	if !reflect.DeepEqual(table.Dates(), wantDates) {
		t.Errorf("Dates() = %v, want %v", table.Dates(), wantDates)
	}

	values, _ := table.Column("value")
	wantValues := []float64{5.0, 5.2}
	if !reflect.DeepEqual(values, wantValues) {
		t.Errorf("Column(value) = %v, want %v", values, wantValues)
	}
}

func TestBuild_JSON_WrappedArray(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"data key", `{"data": [{"date": "2020-01-01", "value": 5.0}]}`},
		{"observations key", `{"observations": [{"date": "2020-01-01", "value": 5.0}]}`},
		{"items key", `{"items": [{"date": "2020-01-01", "value": 5.0}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Build(jsonPayload(tt.body))
			if err != nil {
				t.Fatalf("Build() returned unexpected error: %v", err)
			}
			if table.Len() != 1 {
				t.Errorf("Len() = %d, want 1", table.Len())
			}
		})
	}
}

func TestBuild_JSON_ServiceColumns(t *testing.T) {
	payload := jsonPayload(`{"data": [
		{"Series Key": "TS_GP_IR_REPOMR_D.ORR", "Observation Date": "2020-01-01", "Observation Value": 13.25, "Unit": "Percent"}
	]}`)

	table, err := Build(payload)
	if err != nil {
		t.Fatalf("Build() returned unexpected error: %v", err)
	}

	wantColumns := []string{"Observation Value"}
	if !reflect.DeepEqual(table.Columns, wantColumns) {
		t.Errorf("Columns = %v, want %v", table.Columns, wantColumns)
	}

	values, _ := table.Column("Observation Value")
	if len(values) != 1 || values[0] != 13.25 {
		t.Errorf("Column(Observation Value) = %v, want [13.25]", values)
	}
}

func TestBuild_JSON_StringValues(t *testing.T) {
	payload := jsonPayload(`[{"date": "2020-01-01", "value": "5.75"}]`)

	table, err := Build(payload)
	if err != nil {
		t.Fatalf("Build() returned unexpected error: %v", err)
	}

	values, _ := table.Column("value")
	if len(values) != 1 || values[0] != 5.75 {
		t.Errorf("Column(value) = %v, want [5.75]", values)
	}
}

func TestBuild_JSON_EmptyArray(t *testing.T) {
	table, err := Build(jsonPayload(`[]`))
	if err != nil {
		t.Fatalf("Build() returned unexpected error: %v", err)
	}

	if table.Len() != 0 {
		t.Errorf("Len() = %d, want 0", table.Len())
	}
}

func TestBuild_JSON_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid JSON", `{not json`},
		{"scalar payload", `42`},
		{"object without observation array", `{"status": "ok"}`},
		{"entry not an object", `[1, 2, 3]`},
		{"date not a string", `[{"date": 20200101, "value": 5.0}]`},
		{"missing date column", `[{"code": "X", "value": 5.0}]`},
		{"null value", `[{"date": "2020-01-01", "value": null}]`},
		{"boolean value", `[{"date": "2020-01-01", "value": true}]`},
		{"duplicate dates", `[{"date": "2020-01-01", "value": 1.0}, {"date": "2020-01-01", "value": 2.0}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(jsonPayload(tt.body))
			if err == nil {
				t.Fatal("Build() expected error, got nil")
			}
			if !easydata.IsType(err, easydata.ErrorTypeMalformedPayload) {
				t.Errorf("Build() error = %v, want type %v", err, easydata.ErrorTypeMalformedPayload)
			}
		})
	}
}

func TestBuild_Idempotent(t *testing.T) {
	payload := csvPayload("date,value\n2020-01-02,5.2\n2020-01-01,5.0\n")

	first, err := Build(payload)
	if err != nil {
		t.Fatalf("Build() returned unexpected error: %v", err)
	}

	second, err := Build(payload)
	if err != nil {
		t.Fatalf("Build() returned unexpected error on second run: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Build() is not deterministic: first %+v, second %+v", first, second)
	}
}

func TestBuild_NilPayload(t *testing.T) {
	_, err := Build(nil)
	if err == nil {
		t.Fatal("Build() expected error for nil payload, got nil")
	}

	if !easydata.IsType(err, easydata.ErrorTypeMalformedPayload) {
		t.Errorf("Build() error = %v, want type %v", err, easydata.ErrorTypeMalformedPayload)
	}
}

func TestBuild_UnknownFormat(t *testing.T) {
	payload := &easydata.SeriesPayload{
		SeriesCode: "TS_GP_IR_REPOMR_D.ORR",
		Format:     easydata.Format("xml"),
		Body:       []byte("<xml/>"),
	}

	_, err := Build(payload)
	if err == nil {
		t.Fatal("Build() expected error for unknown format, got nil")
	}

	if !easydata.IsType(err, easydata.ErrorTypeMalformedPayload) {
		t.Errorf("Build() error = %v, want type %v", err, easydata.ErrorTypeMalformedPayload)
	}
}

func TestTable_Column_Missing(t *testing.T) {
	table := &Table{Columns: []string{"value"}}

	if _, ok := table.Column("other"); ok {
		t.Error("Column(other) = ok, want missing")
	}
}

func TestTable_Dates_Empty(t *testing.T) {
	table := &Table{}

	if got := table.Dates(); len(got) != 0 {
		t.Errorf("Dates() = %v, want empty", got)
	}
}
