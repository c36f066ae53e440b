package easydata

import "testing"

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{"json", FormatJSON, false},
		{"CSV", FormatCSV, false},
		{"JSON", FormatJSON, false},
		{" csv ", FormatCSV, false},
		{"xml", "", true},
		{"", "", true},
		{"cs v", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseFormat(%q) expected error, got nil", tt.input)
				}
				if !IsType(err, ErrorTypeInvalidFormat) {
					t.Errorf("ParseFormat(%q) error = %v, want type %v", tt.input, err, ErrorTypeInvalidFormat)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseFormat(%q) returned unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormat_Accept(t *testing.T) {
	if got := FormatCSV.accept(); got != "text/csv" {
		t.Errorf("FormatCSV.accept() = %q, want text/csv", got)
	}
	if got := FormatJSON.accept(); got != "application/json" {
		t.Errorf("FormatJSON.accept() = %q, want application/json", got)
	}
}
