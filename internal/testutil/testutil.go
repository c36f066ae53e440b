// Package testutil provides canned downloaders for tests that need no
// HTTP server.
package testutil

import (
	"context"
	"time"

	"easydata"
)

// MockDownloader is a mock implementation of the easydata.Downloader
// interface for testing
type MockDownloader struct {
	DownloadFunc func(ctx context.Context, seriesCode string, start, end time.Time, format easydata.Format) (*easydata.SeriesPayload, error)
}

// DownloadSeries implements the Downloader interface
func (m *MockDownloader) DownloadSeries(ctx context.Context, seriesCode string, start, end time.Time, format easydata.Format) (*easydata.SeriesPayload, error) {
	if m.DownloadFunc != nil {
		return m.DownloadFunc(ctx, seriesCode, start, end, format)
	}
	return &easydata.SeriesPayload{
		SeriesCode: seriesCode,
		Format:     format,
		Start:      start,
		End:        end,
	}, nil
}

// NewMockDownloader creates a downloader that serves body for every
// series, or fails with err when err is non-nil
func NewMockDownloader(body string, err error) *MockDownloader {
	return &MockDownloader{
		DownloadFunc: func(ctx context.Context, seriesCode string, start, end time.Time, format easydata.Format) (*easydata.SeriesPayload, error) {
			if err != nil {
				return nil, err
			}
			return &easydata.SeriesPayload{
				SeriesCode: seriesCode,
				Format:     format,
				Body:       []byte(body),
				Start:      start,
				End:        end,
			}, nil
		},
	}
}
