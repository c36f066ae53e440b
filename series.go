package easydata

import (
	"context"
	"strings"
	"time"
)

// Format identifies the wire format of a series payload
type Format string

const (
	// FormatCSV requests comma-separated observations
	FormatCSV Format = "csv"
	// FormatJSON requests observations as a JSON document
	FormatJSON Format = "json"
)

// ParseFormat converts a user-supplied format name into a Format
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", NewInvalidFormatError(s)
	}
}

// valid reports whether f is a supported format
func (f Format) valid() bool {
	return f == FormatCSV || f == FormatJSON
}

// accept returns the Accept header value for f
func (f Format) accept() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/csv"
}

// SeriesPayload is the unparsed response body for one series request,
// together with the request facts a transformer needs to interpret it.
// It is produced by Client.DownloadSeries and consumed by
// timeseries.Build.
type SeriesPayload struct {
	SeriesCode string
	Format     Format
	Body       []byte
	Start      time.Time
	End        time.Time
}

// Downloader is the series-fetching surface of Client. Consumers that
// only need to download can depend on this interface and swap in an
// offline implementation for tests.
type Downloader interface {
	DownloadSeries(ctx context.Context, seriesCode string, start, end time.Time, format Format) (*SeriesPayload, error)
}
