package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"price-lookup/internal/config"

	"github.com/shopspring/decimal"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type columnKind int

const (
	kindText columnKind = iota
	kindNumber
	kindFlag
)

// column binds a source column to a Record field.
type column struct {
	name string
	kind columnKind
	text *string
	num  **decimal.Decimal
	flag *interface{}
}

// SQLRepository reads the inventory table through database/sql.
// Column names come from configuration and are validated as plain identifiers.
type SQLRepository struct {
	db      *sql.DB
	dialect Dialect
	cols    config.Columns
	table   string
}

// Open creates the connection pool for cfg.Driver. The pool connects lazily and
// reconnects on its own, so an unreachable store is reported per request.
func Open(cfg config.DBConfig, cols config.Columns) (*SQLRepository, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.DriverName, dialect.DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdle)

	repo, err := NewSQLRepository(db, dialect, cols)
	if err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

// NewSQLRepository wraps an existing pool.
func NewSQLRepository(db *sql.DB, dialect Dialect, cols config.Columns) (*SQLRepository, error) {
	if err := validateColumns(cols); err != nil {
		return nil, err
	}
	return &SQLRepository{
		db:      db,
		dialect: dialect,
		cols:    cols,
		table:   dialect.QuoteTable(cols.Table),
	}, nil
}

func validateColumns(cols config.Columns) error {
	for _, part := range strings.Split(cols.Table, ".") {
		if !identPattern.MatchString(part) {
			return fmt.Errorf("invalid table name %q", cols.Table)
		}
	}
	required := map[string]string{
		"reference": cols.Reference,
		"barcode":   cols.Barcode,
		"name":      cols.Name,
	}
	for field, name := range required {
		if name == "" {
			return fmt.Errorf("column for %s is required", field)
		}
	}
	optional := []string{
		cols.Reference, cols.Barcode, cols.Name, cols.ListPrice, cols.InitialCost,
		cols.OnPromotion, cols.PromotionPrice, cols.WholesalePrice, cols.AverageCost,
		cols.Stock, cols.Category, cols.Brand, cols.Store, cols.Region,
	}
	for _, name := range optional {
		if name != "" && !identPattern.MatchString(name) {
			return fmt.Errorf("invalid column name %q", name)
		}
	}
	return nil
}

// Close closes the database connection
func (r *SQLRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// FindByBarcode finds rows whose barcode column equals barcode
func (r *SQLRepository) FindByBarcode(ctx context.Context, barcode string, limit int) ([]Record, error) {
	where := fmt.Sprintf("%s = %s", r.dialect.quote(r.cols.Barcode), r.dialect.placeholder(1))
	rows, err := r.query(ctx, where, limit, barcode)
	if err != nil {
		return nil, fmt.Errorf("failed to find items by barcode: %w", err)
	}
	return rows, nil
}

// FindByReference finds rows whose reference contains reference, ignoring case
func (r *SQLRepository) FindByReference(ctx context.Context, reference string, limit int) ([]Record, error) {
	where, pattern := r.dialect.LikeContains(r.cols.Reference, 1, reference)
	rows, err := r.query(ctx, where, limit, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to find items by reference: %w", err)
	}
	return rows, nil
}

// Health runs the dialect probe query and returns its rows as maps
func (r *SQLRepository) Health(ctx context.Context) ([]map[string]interface{}, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.healthQuery)
	if err != nil {
		return nil, fmt.Errorf("health query failed: %w", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("health query columns: %w", err)
	}

	out := make([]map[string]interface{}, 0, 1)
	for rows.Next() {
		values := make([]interface{}, len(names))
		ptrs := make([]interface{}, len(names))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("health query scan: %w", err)
		}
		row := make(map[string]interface{}, len(names))
		for i, name := range names {
			if b, ok := values[i].([]byte); ok {
				row[name] = string(b)
			} else {
				row[name] = values[i]
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("health query rows: %w", err)
	}
	return out, nil
}

// selectSQL renders the lookup statement for a WHERE clause.
func (r *SQLRepository) selectSQL(where string, limit int, cols []column) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = r.dialect.quote(c.name)
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	if r.dialect.useTop {
		b.WriteString("TOP (" + strconv.Itoa(limit) + ") ")
	}
	b.WriteString(strings.Join(names, ", "))
	b.WriteString(" FROM " + r.table)
	b.WriteString(" WHERE " + where)
	b.WriteString(" ORDER BY " + r.dialect.quote(r.cols.Reference))
	if !r.dialect.useTop {
		b.WriteString(" LIMIT " + strconv.Itoa(limit))
	}
	return b.String()
}

func (r *SQLRepository) query(ctx context.Context, where string, limit int, args ...interface{}) ([]Record, error) {
	// the column set is rebuilt per call because it points into the scan target
	var rec Record
	cols := r.columns(&rec)

	rows, err := r.db.QueryContext(ctx, r.selectSQL(where, limit, cols), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		rec = Record{}
		if err := scanRecord(rows, cols); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return out, nil
}

func (r *SQLRepository) columns(rec *Record) []column {
	cols := []column{
		{name: r.cols.Reference, kind: kindText, text: &rec.Reference},
		{name: r.cols.Barcode, kind: kindText, text: &rec.Barcode},
		{name: r.cols.Name, kind: kindText, text: &rec.Name},
	}
	add := func(name string, c column) {
		if name == "" {
			return
		}
		c.name = name
		cols = append(cols, c)
	}
	add(r.cols.ListPrice, column{kind: kindNumber, num: &rec.ListPrice})
	add(r.cols.InitialCost, column{kind: kindNumber, num: &rec.InitialCost})
	add(r.cols.OnPromotion, column{kind: kindFlag, flag: &rec.PromotionFlag})
	add(r.cols.PromotionPrice, column{kind: kindNumber, num: &rec.PromotionPrice})
	add(r.cols.WholesalePrice, column{kind: kindNumber, num: &rec.WholesalePrice})
	add(r.cols.AverageCost, column{kind: kindNumber, num: &rec.AverageCost})
	add(r.cols.Stock, column{kind: kindNumber, num: &rec.Stock})
	add(r.cols.Category, column{kind: kindText, text: &rec.Category})
	add(r.cols.Brand, column{kind: kindText, text: &rec.Brand})
	add(r.cols.Store, column{kind: kindText, text: &rec.Store})
	add(r.cols.Region, column{kind: kindText, text: &rec.Region})
	return cols
}

func scanRecord(rows *sql.Rows, cols []column) error {
	texts := make([]sql.NullString, len(cols))
	nums := make([]decimal.NullDecimal, len(cols))
	dest := make([]interface{}, len(cols))
	for i, c := range cols {
		switch c.kind {
		case kindText:
			dest[i] = &texts[i]
		case kindNumber:
			dest[i] = &nums[i]
		case kindFlag:
			dest[i] = c.flag
		}
	}

	if err := rows.Scan(dest...); err != nil {
		return fmt.Errorf("failed to scan item: %w", err)
	}

	for i, c := range cols {
		switch c.kind {
		case kindText:
			*c.text = strings.TrimSpace(texts[i].String)
		case kindNumber:
			if nums[i].Valid {
				d := nums[i].Decimal
				*c.num = &d
			} else {
				*c.num = nil
			}
		}
	}
	return nil
}
