// Package inspect reports the database structure for diagnostics.
package inspect

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/phonestock/internal/db"
)

// DescribedTables are the tables whose structure is reported.
var DescribedTables = []string{"phones", "accessories"}

// SampleTable is the table sample rows are taken from.
const SampleTable = "phones"

// SampleLimit caps the sample rows.
const SampleLimit = 5

// Column describes one column the way SHOW COLUMNS does.
type Column struct {
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Null    string  `json:"null"`
	Key     string  `json:"key"`
	Default *string `json:"default"`
	Extra   string  `json:"extra"`
}

// Structure is the column listing of one table.
type Structure struct {
	Table   string   `json:"table"`
	Columns []Column `json:"columns"`
	Error   string   `json:"error,omitempty"`
}

// Sample holds a few raw rows of a table.
type Sample struct {
	Table   string     `json:"table"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Error   string     `json:"error,omitempty"`
}

// Report is the full diagnostic output. Failures are recorded next to the
// section they affect instead of aborting the report.
type Report struct {
	Driver     string      `json:"driver"`
	Tables     []string    `json:"tables"`
	Structures []Structure `json:"structures"`
	Sample     *Sample     `json:"sample,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// dialect hides the driver specific catalog queries.
type dialect interface {
	tables(ctx context.Context, conn *sql.DB) ([]string, error)
	columns(ctx context.Context, conn *sql.DB, table string) ([]Column, error)
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case db.DriverSQLite:
		return sqliteDialect{}, nil
	case db.DriverMySQL:
		return mysqlDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

// Inspect builds a report. It only reads.
func Inspect(ctx context.Context, conn *sql.DB, driver string) *Report {
	rep := &Report{Driver: driver}

	d, err := dialectFor(driver)
	if err != nil {
		rep.Error = err.Error()
		return rep
	}

	tables, err := d.tables(ctx, conn)
	if err != nil {
		rep.Error = fmt.Sprintf("listing tables: %v", err)
		return rep
	}
	rep.Tables = tables

	for _, table := range DescribedTables {
		s := Structure{Table: table}
		cols, err := d.columns(ctx, conn, table)
		if err != nil {
			s.Error = fmt.Sprintf("describing %s: %v", table, err)
		}
		s.Columns = cols
		rep.Structures = append(rep.Structures, s)
	}

	rep.Sample = sample(ctx, conn, SampleTable, SampleLimit)
	return rep
}

// sample reads up to limit rows. table must be one of the fixed names above.
func sample(ctx context.Context, conn *sql.DB, table string, limit int) *Sample {
	s := &Sample{Table: table}

	rows, err := conn.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT ?", table), limit)
	if err != nil {
		s.Error = fmt.Sprintf("reading %s: %v", table, err)
		return s
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		s.Error = fmt.Sprintf("reading columns: %v", err)
		return s
	}
	s.Columns = cols

	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			s.Error = fmt.Sprintf("scanning row: %v", err)
			return s
		}

		row := make([]string, len(cols))
		for i, v := range values {
			row[i] = formatValue(v)
		}
		s.Rows = append(s.Rows, row)
	}
	if err := rows.Err(); err != nil {
		s.Error = fmt.Sprintf("reading rows: %v", err)
	}
	return s
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.DateTime)
	default:
		return fmt.Sprint(v)
	}
}
