package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"easydata"
	"easydata/chart"
	"easydata/internal/batch"
	"easydata/internal/config"
	"easydata/internal/logging"
	"easydata/internal/store"
	"easydata/timeseries"
)

const dateLayout = "2006-01-02"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "verify":
		runVerify(os.Args[2:])
	case "fetch":
		runFetch(os.Args[2:])
	case "list":
		runList(os.Args[2:])
	case "chart":
		runChart(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: easydata <command> [options]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  verify   check an API key against the service")
	fmt.Fprintln(os.Stderr, "  fetch    download a series and build its observation table")
	fmt.Fprintln(os.Stderr, "  list     summarize series archived in the local database")
	fmt.Fprintln(os.Stderr, "  chart    render an archived series as a line chart")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "run 'easydata <command> -h' for command options")
}

// setup loads configuration and builds the logger every command shares
func setup() (*config.Config, *slog.Logger) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to set up logging:", err)
		os.Exit(1)
	}

	return cfg, logger
}

// newClient builds the API client from CLI configuration
func newClient(cfg *config.Config, logger *slog.Logger) *easydata.Client {
	opts := []easydata.Option{
		easydata.WithBaseURL(cfg.BaseURL),
		easydata.WithTimeout(cfg.Timeout),
		easydata.WithLogger(logger),
	}
	if cfg.SaveDir != "" {
		opts = append(opts, easydata.WithSaveDir(cfg.SaveDir))
	}
	return easydata.NewClient(opts...)
}

// resolveKey picks the flag key over the configured one
func resolveKey(flagKey string, cfg *config.Config) (string, error) {
	if flagKey != "" {
		return flagKey, nil
	}
	if cfg.APIKey != "" {
		return cfg.APIKey, nil
	}
	return "", fmt.Errorf("missing required configuration: EASYDATA_API_KEY")
}

func runVerify(args []string) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	keyFlag := fs.String("key", "", "API key to verify (default: configured key)")
	fs.Parse(args)

	cfg, logger := setup()

	key, err := resolveKey(*keyFlag, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "verify failed:", err)
		os.Exit(1)
	}

	// Advisory only; the service is the authority on the key.
	if err := easydata.ValidateKeyFormat(key); err != nil {
		logger.Warn("key does not look like an issued EasyData key", "reason", err)
	}

	client := newClient(cfg, logger)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	ok, err := client.VerifyKey(ctx, key)
	if err != nil {
		fmt.Fprintln(os.Stderr, "verify failed:", err)
		os.Exit(1)
	}
	if !ok {
		fmt.Fprintln(os.Stderr, "EasyData API key rejected by the service")
		os.Exit(1)
	}

	logger.Info("EasyData API key verified")
}

func runFetch(args []string) {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	series := fs.String("series", "", "series code, e.g. TS_GP_IR_REPOMR_D.ORR (comma-separated for several)")
	startFlag := fs.String("start", "", "start date (YYYY-MM-DD)")
	endFlag := fs.String("end", "", "end date (YYYY-MM-DD)")
	formatFlag := fs.String("format", "csv", "payload format: csv or json")
	keyFlag := fs.String("key", "", "API key (default: configured key)")
	chartPath := fs.String("chart", "", "write a line chart to this HTML file")
	openChart := fs.Bool("open", false, "open the chart in the default browser")
	dbPath := fs.String("db", "", "sqlite archive path (default: configured path)")
	saveDir := fs.String("save-dir", "", "write the raw payload into this directory")
	printRows := fs.Bool("print", false, "print each observation to stdout")
	fs.Parse(args)

	codes := splitSeriesList(*series)
	if len(codes) == 0 || *startFlag == "" || *endFlag == "" {
		fmt.Fprintln(os.Stderr, "fetch requires -series, -start and -end")
		os.Exit(2)
	}
	if (*chartPath != "" || *openChart) && len(codes) > 1 {
		fmt.Fprintln(os.Stderr, "charting requires a single -series")
		os.Exit(2)
	}

	cfg, logger := setup()

	key, err := resolveKey(*keyFlag, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fetch failed:", err)
		os.Exit(1)
	}

	start, err := parseDateFlag("start", *startFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fetch failed:", err)
		os.Exit(2)
	}
	end, err := parseDateFlag("end", *endFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fetch failed:", err)
		os.Exit(2)
	}

	format, err := easydata.ParseFormat(*formatFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fetch failed:", err)
		os.Exit(2)
	}

	if *saveDir != "" {
		cfg.SaveDir = *saveDir
	}
	db := *dbPath
	if db == "" {
		db = cfg.DBPath
	}

	client := newClient(cfg, logger)
	client.SetKey(key)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	if err := fetchSeries(ctx, client, logger, codes, start, end, format, *chartPath, *openChart, db, *printRows); err != nil {
		fmt.Fprintln(os.Stderr, "fetch failed:", err)
		os.Exit(1)
	}
}

// fetchSeries runs the download, transform, print, archive, chart
// pipeline over the requested series
func fetchSeries(ctx context.Context, client easydata.Downloader, logger *slog.Logger, codes []string, start, end time.Time, format easydata.Format, chartPath string, openChart bool, dbPath string, printRows bool) error {
	var st *store.Store
	if dbPath != "" {
		var err error
		st, err = store.Open(dbPath)
		if err != nil {
			return err
		}
		defer st.Close()
	}

	results := batch.Fetch(ctx, client, codes, start, end, format)

	for _, res := range results {
		if res.Err != nil {
			logger.Error("series failed", "series", res.SeriesCode, "error", res.Err)
			continue
		}

		logger.Info("series fetched",
			"series", res.SeriesCode,
			"observations", res.Table.Len(),
			"columns", strings.Join(res.Table.Columns, ","))

		if printRows {
			if len(results) > 1 {
				fmt.Printf("# %s\n", res.SeriesCode)
			}
			printTable(res.Table)
		}

		if st != nil {
			if err := st.SaveTable(ctx, res.SeriesCode, res.Table); err != nil {
				return err
			}
			logger.Info("observations archived", "db", dbPath, "rows", res.Table.Len())
		}

		if chartPath != "" || openChart {
			c, err := chart.New(res.Table, chart.WithTitle(res.SeriesCode))
			if err != nil {
				return err
			}
			if chartPath != "" {
				if err := c.WriteHTML(chartPath); err != nil {
					return err
				}
				logger.Info("chart written", "path", chartPath)
			}
			if openChart {
				if err := c.Show(); err != nil {
					return err
				}
			}
		}
	}

	if failed := batch.Failed(results); failed > 0 {
		return fmt.Errorf("%d of %d series failed", failed, len(results))
	}

	return nil
}

// splitSeriesList splits a comma-separated series flag, dropping empty
// entries
func splitSeriesList(s string) []string {
	parts := strings.Split(s, ",")
	codes := make([]string, 0, len(parts))
	for _, part := range parts {
		if code := strings.TrimSpace(part); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

func runList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	dbPath := fs.String("db", "", "sqlite archive path (default: configured path)")
	fs.Parse(args)

	cfg, _ := setup()

	path := *dbPath
	if path == "" {
		path = cfg.DBPath
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "list requires -db or EASYDATA_DB_PATH")
		os.Exit(2)
	}

	st, err := store.Open(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list failed:", err)
		os.Exit(1)
	}
	defer st.Close()

	infos, err := st.ListSeries(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, "list failed:", err)
		os.Exit(1)
	}

	for _, info := range infos {
		fmt.Printf("%s\tobservations=%d\t%s..%s\n",
			info.SeriesCode, info.Observations, info.FirstDate, info.LastDate)
	}
}

func runChart(args []string) {
	fs := flag.NewFlagSet("chart", flag.ExitOnError)
	series := fs.String("series", "", "series code to chart from the archive")
	dbPath := fs.String("db", "", "sqlite archive path (default: configured path)")
	out := fs.String("out", "", "write the chart to this HTML file (default: open in browser)")
	openChart := fs.Bool("open", false, "open the chart in the default browser")
	title := fs.String("title", "", "chart title (default: series code)")
	fs.Parse(args)

	if *series == "" {
		fmt.Fprintln(os.Stderr, "chart requires -series")
		os.Exit(2)
	}

	cfg, logger := setup()

	path := *dbPath
	if path == "" {
		path = cfg.DBPath
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "chart requires -db or EASYDATA_DB_PATH")
		os.Exit(2)
	}

	st, err := store.Open(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "chart failed:", err)
		os.Exit(1)
	}
	defer st.Close()

	table, err := st.LoadTable(context.Background(), *series)
	if err != nil {
		fmt.Fprintln(os.Stderr, "chart failed:", err)
		os.Exit(1)
	}

	chartTitle := *title
	if chartTitle == "" {
		chartTitle = *series
	}

	c, err := chart.New(table, chart.WithTitle(chartTitle))
	if err != nil {
		fmt.Fprintln(os.Stderr, "chart failed:", err)
		os.Exit(1)
	}

	// With no output file the chart goes straight to the browser.
	if *out == "" {
		*openChart = true
	}

	if *out != "" {
		if err := c.WriteHTML(*out); err != nil {
			fmt.Fprintln(os.Stderr, "chart failed:", err)
			os.Exit(1)
		}
		logger.Info("chart written", "path", *out)
	}
	if *openChart {
		if err := c.Show(); err != nil {
			fmt.Fprintln(os.Stderr, "chart failed:", err)
			os.Exit(1)
		}
	}
}

// printTable writes one observation per line to stdout
func printTable(table *timeseries.Table) {
	fmt.Println(strings.Join(append([]string{"date"}, table.Columns...), "\t"))
	for _, row := range table.Rows {
		fields := make([]string, 0, len(row.Values)+1)
		fields = append(fields, row.Date.Format(dateLayout))
		for _, v := range row.Values {
			fields = append(fields, strconv.FormatFloat(v, 'f', -1, 64))
		}
		fmt.Println(strings.Join(fields, "\t"))
	}
}

// parseDateFlag parses a YYYY-MM-DD command line date
func parseDateFlag(name, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid -%s date %q (want YYYY-MM-DD)", name, value)
	}
	return t, nil
}
