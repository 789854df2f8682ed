// Package seed loads the CSV fixtures shipped in static/data into an empty
// database.
package seed

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type kind int

const (
	kindText kind = iota
	kindInt
	kindNullInt
	kindTime
)

type column struct {
	name   string // table column
	header string // CSV header
	kind   kind
}

type table struct {
	name    string
	file    string
	columns []column
}

// tables is in foreign key order.
var tables = []table{
	{name: "users", file: "users.csv", columns: []column{
		{"id", "id", kindInt},
		{"username", "username", kindText},
		{"email", "email", kindText},
		{"role", "role", kindText},
		{"bio", "bio", kindText},
		{"first_name", "first_name", kindText},
		{"last_name", "last_name", kindText},
	}},
	{name: "categories", file: "category.csv", columns: []column{
		{"id", "id", kindInt},
		{"name", "name", kindText},
		{"slug", "slug", kindText},
	}},
	{name: "genres", file: "genre.csv", columns: []column{
		{"id", "id", kindInt},
		{"name", "name", kindText},
		{"slug", "slug", kindText},
	}},
	{name: "titles", file: "titles.csv", columns: []column{
		{"id", "id", kindInt},
		{"name", "name", kindText},
		{"year", "year", kindInt},
		{"category_id", "category", kindNullInt},
	}},
	{name: "genre_title", file: "genre_title.csv", columns: []column{
		{"id", "id", kindInt},
		{"title_id", "title_id", kindInt},
		{"genre_id", "genre_id", kindInt},
	}},
	{name: "reviews", file: "review.csv", columns: []column{
		{"id", "id", kindInt},
		{"title_id", "title_id", kindInt},
		{"text", "text", kindText},
		{"author_id", "author", kindInt},
		{"score", "score", kindInt},
		{"pub_date", "pub_date", kindTime},
	}},
	{name: "comments", file: "comments.csv", columns: []column{
		{"id", "id", kindInt},
		{"review_id", "review_id", kindInt},
		{"text", "text", kindText},
		{"author_id", "author", kindInt},
		{"pub_date", "pub_date", kindTime},
	}},
}

// TableResult reports what happened to one table.
type TableResult struct {
	Table   string
	File    string
	Rows    int
	Skipped bool
}

type Importer struct {
	db     *sqlx.DB
	dir    string
	logger *zap.Logger
}

// New wraps an open pool. driverName must be the name the pool was opened
// with ("pgx" for pools shared with gorm's postgres driver).
func New(db *sql.DB, driverName, dir string, logger *zap.Logger) *Importer {
	return &Importer{
		db:     sqlx.NewDb(db, driverName),
		dir:    dir,
		logger: logger,
	}
}

// Run imports every fixture file. Tables that already hold rows are left
// untouched. It stops at the first failing table; the results gathered so
// far are returned together with the error.
func (im *Importer) Run(ctx context.Context) ([]TableResult, error) {
	results := make([]TableResult, 0, len(tables))
	for _, t := range tables {
		res, err := im.importTable(ctx, t)
		if err != nil {
			return results, fmt.Errorf("import %s: %w", t.name, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (im *Importer) importTable(ctx context.Context, t table) (TableResult, error) {
	res := TableResult{Table: t.name, File: t.file}

	var exists bool
	if err := im.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM `+t.name+`)`); err != nil {
		return res, err
	}
	if exists {
		im.logger.Info("table already has rows, skipping", zap.String("table", t.name))
		res.Skipped = true
		return res, nil
	}

	rows, err := readFile(filepath.Join(im.dir, t.file), t.columns)
	if err != nil {
		return res, err
	}

	tx, err := im.db.BeginTxx(ctx, nil)
	if err != nil {
		return res, err
	}
	defer tx.Rollback()

	query := insertQuery(t)
	for i, row := range rows {
		if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
			return res, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	// explicit ids leave the serial sequence behind
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(
		`SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE(MAX(id), 0) + 1, false) FROM %s`,
		t.name, t.name,
	)); err != nil {
		return res, err
	}

	if err := tx.Commit(); err != nil {
		return res, err
	}

	res.Rows = len(rows)
	im.logger.Info("table imported", zap.String("table", t.name), zap.Int("rows", res.Rows))
	return res, nil
}

func insertQuery(t table) string {
	names := make([]string, len(t.columns))
	params := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
		params[i] = ":" + c.name
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.name, strings.Join(names, ", "), strings.Join(params, ", "))
}

func readFile(path string, columns []column) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readRows(f, columns)
}

// readRows decodes a CSV stream with a header line into named parameters
// keyed by table column.
func readRows(r io.Reader, columns []column) ([]map[string]any, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range columns {
		if _, ok := index[c.header]; !ok {
			return nil, fmt.Errorf("missing column %q", c.header)
		}
	}

	var rows []map[string]any
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		row := make(map[string]any, len(columns))
		for _, c := range columns {
			v, err := convert(rec[index[c.header]], c.kind)
			if err != nil {
				return nil, fmt.Errorf("line %d, column %s: %w", line, c.header, err)
			}
			row[c.name] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func convert(raw string, k kind) (any, error) {
	switch k {
	case kindInt:
		return strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	case kindNullInt:
		if strings.TrimSpace(raw) == "" {
			return nil, nil
		}
		return strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	case kindTime:
		return time.Parse(time.RFC3339Nano, strings.TrimSpace(raw))
	default:
		return raw, nil
	}
}
