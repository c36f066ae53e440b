// Package batch downloads several series concurrently and builds their
// observation tables.
package batch

import (
	"context"
	"sync"
	"time"

	"easydata"
	"easydata/timeseries"
)

// Result is the outcome for one series in a batch fetch
type Result struct {
	SeriesCode string
	Table      *timeseries.Table
	Err        error
}

// Failed counts the results that carry an error
func Failed(results []Result) int {
	n := 0
	for _, res := range results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// indexed pairs a result with its position in the request
type indexed struct {
	idx int
	res Result
}

// Fetch downloads every series over the same window and format, one
// goroutine per series, and builds each table. A failed series carries
// its error in its Result without stopping the others. Results come back
// in the order the codes were given.
func Fetch(ctx context.Context, dl easydata.Downloader, codes []string, start, end time.Time, format easydata.Format) []Result {
	if len(codes) == 0 {
		return nil
	}

	// Create a channel for collecting results
	resultChan := make(chan indexed, len(codes))

	// WaitGroup to track all worker goroutines
	var wg sync.WaitGroup

	for i, code := range codes {
		wg.Add(1)
		go func(i int, code string) {
			defer wg.Done()

			res := Result{SeriesCode: code}

			payload, err := dl.DownloadSeries(ctx, code, start, end, format)
			if err != nil {
				res.Err = err
			} else {
				res.Table, res.Err = timeseries.Build(payload)
			}

			resultChan <- indexed{idx: i, res: res}
		}(i, code)
	}

	// Close the result channel when all workers are done
	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]Result, len(codes))
	for r := range resultChan {
		results[r.idx] = r.res
	}

	return results
}
