package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/deeptable/internal/column"
	"github.com/JonMunkholm/deeptable/internal/record"
)

// Querier is the subset of *pgxpool.Pool used by Postgres.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var _ Querier = (*pgxpool.Pool)(nil)

// Postgres loads every row of one table, selecting the registered columns
// by id.
type Postgres struct {
	db      Querier
	table   string
	columns []column.Column
	limit   int
}

// NewPostgres returns a loader for table. A limit of 0 loads every row.
func NewPostgres(db Querier, table string, cols []column.Column, limit int) *Postgres {
	return &Postgres{db: db, table: table, columns: cols, limit: limit}
}

// Query returns the SELECT statement Load runs.
func (p *Postgres) Query() string {
	quotedCols := make([]string, len(p.columns))
	for i, c := range p.columns {
		quotedCols[i] = quoteIdentifier(c.ID)
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(quotedCols, ", "), quoteTable(p.table))
	if p.limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", p.limit)
	}
	return query
}

// Load implements Loader.
func (p *Postgres) Load(ctx context.Context) ([]record.Record, error) {
	rows, err := p.db.Query(ctx, p.Query())
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", p.table, err)
	}
	defer rows.Close()

	var out []record.Record
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", p.table, err)
		}

		rec := make(record.Record, len(p.columns))
		for i, c := range p.columns {
			rec[c.ID] = fromPg(values[i])
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", p.table, err)
	}

	return out, nil
}

// fromPg converts the values pgx decodes into ones record.Ingest accepts.
// NULL stays nil so ingestion reports the missing value.
func fromPg(v any) any {
	switch x := v.(type) {
	case pgtype.Numeric:
		if !x.Valid {
			return nil
		}
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case [16]byte:
		return uuid.UUID(x).String()
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case pgtype.Time:
		if !x.Valid {
			return nil
		}
		return time.UnixMicro(x.Microseconds).UTC().Format("15:04:05.999999")
	case pgtype.Interval:
		if !x.Valid {
			return nil
		}
		return fmt.Sprintf("%d months %d days %dus", x.Months, x.Days, x.Microseconds)
	case []byte:
		return string(x)
	default:
		return v
	}
}

// quoteIdentifier quotes a SQL identifier to prevent injection.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteTable quotes a possibly schema-qualified table name.
func quoteTable(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = quoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}
