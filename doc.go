// Package easydata is a client for the State Bank of Pakistan's EasyData
// statistical data service.
//
// A Client keeps the API key in a Session, has the service vouch for a
// candidate key, and downloads named time series over a date range as CSV
// or JSON:
//
//	client := easydata.NewClient()
//
//	ok, err := client.VerifyKey(ctx, key)
//	if err != nil || !ok {
//		// unreachable service or rejected key
//	}
//
//	payload, err := client.DownloadSeries(ctx,
//		"TS_GP_IR_REPOMR_D.ORR",
//		time.Date(2015, 5, 25, 0, 0, 0, 0, time.UTC),
//		time.Date(2023, 12, 20, 0, 0, 0, 0, time.UTC),
//		easydata.FormatCSV)
//
// The timeseries package turns a payload into a date-sorted table, and
// the chart package renders a table as a line chart.
//
// Every failing operation returns an *Error carrying one of the ErrorType
// kinds. Calls are synchronous and make exactly one HTTP request; nothing
// is retried or recovered internally.
package easydata
