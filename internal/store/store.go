// Package store archives downloaded observations in SQLite.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"easydata/timeseries"
)

const dateLayout = "2006-01-02"

// Store persists observation tables in a SQLite database
type Store struct {
	db *sqlx.DB
}

// Open opens or creates the database at path and ensures the schema
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store: path is required")
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close releases the database handle
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// obsRow is the observations table shape
type obsRow struct {
	SeriesCode string  `db:"series_code"`
	ColumnName string  `db:"column_name"`
	ColumnIdx  int     `db:"column_idx"`
	ObsDate    string  `db:"obs_date"`
	Value      float64 `db:"value"`
	FetchedAt  string  `db:"fetched_at"`
}

// SeriesInfo summarizes one archived series
type SeriesInfo struct {
	SeriesCode   string `db:"series_code"`
	Observations int    `db:"observations"`
	FirstDate    string `db:"first_date"`
	LastDate     string `db:"last_date"`
}

// SaveTable upserts every cell of table under seriesCode in one
// transaction. Re-fetching a series refreshes the stored values.
func (s *Store) SaveTable(ctx context.Context, seriesCode string, table *timeseries.Table) error {
	if table == nil || table.Len() == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO observations (
			series_code, column_name, column_idx, obs_date, value, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(series_code, column_name, obs_date)
		DO UPDATE SET
			column_idx = excluded.column_idx,
			value = excluded.value,
			fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	fetchedAt := time.Now().UTC().Format(time.RFC3339)
	for _, row := range table.Rows {
		obsDate := row.Date.Format(dateLayout)
		for i, column := range table.Columns {
			_, err = stmt.ExecContext(ctx, seriesCode, column, i, obsDate, row.Values[i], fetchedAt)
			if err != nil {
				return err
			}
		}
	}

	err = tx.Commit()
	return err
}

// LoadTable rebuilds the archived table for seriesCode: chronological
// rows in the original column order
func (s *Store) LoadTable(ctx context.Context, seriesCode string) (*timeseries.Table, error) {
	var rows []obsRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT series_code, column_name, column_idx, obs_date, value, fetched_at
		FROM observations
		WHERE series_code = ?
		ORDER BY obs_date, column_idx
	`, seriesCode)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("store: no observations for series %s", seriesCode)
	}

	// The first date's cells arrive in column_idx order, which is the
	// original column order.
	columns := make([]string, 0, 4)
	seen := make(map[string]bool)
	for _, r := range rows {
		if !seen[r.ColumnName] {
			seen[r.ColumnName] = true
			columns = append(columns, r.ColumnName)
		}
	}
	colPos := make(map[string]int, len(columns))
	for i, name := range columns {
		colPos[name] = i
	}

	table := &timeseries.Table{Columns: columns}
	for _, r := range rows {
		date, err := time.Parse(dateLayout, r.ObsDate)
		if err != nil {
			return nil, fmt.Errorf("store: corrupt date %q: %w", r.ObsDate, err)
		}
		if len(table.Rows) == 0 || !table.Rows[len(table.Rows)-1].Date.Equal(date) {
			table.Rows = append(table.Rows, timeseries.Row{
				Date:   date,
				Values: make([]float64, len(columns)),
			})
		}
		table.Rows[len(table.Rows)-1].Values[colPos[r.ColumnName]] = r.Value
	}

	return table, nil
}

// ListSeries summarizes every archived series
func (s *Store) ListSeries(ctx context.Context) ([]SeriesInfo, error) {
	var infos []SeriesInfo
	err := s.db.SelectContext(ctx, &infos, `
		SELECT series_code,
			COUNT(DISTINCT obs_date) AS observations,
			MIN(obs_date) AS first_date,
			MAX(obs_date) AS last_date
		FROM observations
		GROUP BY series_code
		ORDER BY series_code
	`)
	if err != nil {
		return nil, err
	}
	return infos, nil
}

func (s *Store) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS observations (
			series_code TEXT NOT NULL,
			column_name TEXT NOT NULL,
			column_idx INTEGER NOT NULL,
			obs_date TEXT NOT NULL,
			value REAL NOT NULL,
			fetched_at TEXT NOT NULL,
			PRIMARY KEY (series_code, column_name, obs_date)
		);`,
	}

	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return err
		}
	}

	return nil
}
