package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/momager/momager-core/internal/apperror"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicate      = errors.New("duplicate record")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrInvalidColumn  = errors.New("column not allowed")
	ErrMissingValue   = errors.New("missing value")
)

var traceSQL atomic.Bool

// SetTrace toggles debug logging of every statement the repositories run.
func SetTrace(enabled bool) {
	traceSQL.Store(enabled)
}

type columnSet map[string]bool

func columns(names ...string) columnSet {
	set := make(columnSet, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

type cond struct {
	column string
	value  any
}

func eq(column string, value any) cond {
	return cond{column: column, value: value}
}

// table holds the per-table SQL shared by every repository.
// queryable whitelists the columns usable in WHERE and ORDER BY, writable the columns usable in SET.
type table[T any] struct {
	db        *sqlx.DB
	name      string
	queryable columnSet
	writable  columnSet
}

func newTable[T any](db *sqlx.DB, name string, queryable, writable columnSet) *table[T] {
	return &table[T]{db: db, name: name, queryable: queryable, writable: writable}
}

func (t *table[T]) trace(query string, args []any) {
	if traceSQL.Load() {
		slog.Debug("sql", "table", t.name, "query", query, "args", args)
	}
}

func (t *table[T]) exec(ctx context.Context, query string, args ...any) (int64, error) {
	query = t.db.Rebind(query)
	t.trace(query, args)

	result, err := t.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (t *table[T]) notFound() error {
	return apperror.New(fmt.Sprintf("No rows matching %s found", t.name), apperror.StatusExternal, ErrNotFound)
}

func (t *table[T]) invalidColumn(column string) error {
	return apperror.New(fmt.Sprintf("Invalid column %q for %s", column, t.name), apperror.StatusExternal, ErrInvalidColumn)
}

func (t *table[T]) missingValue(column string) error {
	return apperror.New(fmt.Sprintf("A value for %s.%s is required", t.name, column), apperror.StatusExternal, ErrMissingValue)
}

func (t *table[T]) insert(ctx context.Context, values map[string]any) error {
	cols := sortedKeys(values)
	args := make([]any, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		args[i] = values[c]
		marks[i] = "?"
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.name, strings.Join(cols, ", "), strings.Join(marks, ", "))
	_, err := t.exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.New(fmt.Sprintf("Duplicate %s record", t.name), apperror.StatusExternal, ErrDuplicate)
		}
		return apperror.Internal(fmt.Sprintf("Error creating %s record", t.name), err)
	}
	return nil
}

func (t *table[T]) get(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, t.missingValue("id")
	}

	query := t.db.Rebind(fmt.Sprintf("SELECT * FROM %s WHERE id = ?", t.name))
	t.trace(query, []any{id})

	var row T
	err := t.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, t.notFound()
	}
	if err != nil {
		return nil, apperror.Internal(fmt.Sprintf("Query failed on %s", t.name), err)
	}
	return &row, nil
}

func (t *table[T]) delete(ctx context.Context, id string) error {
	if id == "" {
		return t.missingValue("id")
	}

	rows, err := t.exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", t.name), id)
	if err != nil {
		return apperror.Internal(fmt.Sprintf("Error deleting from %s", t.name), err)
	}
	if rows == 0 {
		return t.notFound()
	}
	return nil
}

// update sets values on the row with the given id. Columns are written in sorted order.
func (t *table[T]) update(ctx context.Context, id string, values map[string]any) error {
	if id == "" {
		return t.missingValue("id")
	}
	if len(values) == 0 {
		return apperror.New(fmt.Sprintf("Nothing to update on %s", t.name), apperror.StatusExternal, ErrMissingValue)
	}

	cols := sortedKeys(values)
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, c := range cols {
		if !t.writable[c] {
			return t.invalidColumn(c)
		}
		sets[i] = c + " = ?"
		args = append(args, values[c])
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", t.name, strings.Join(sets, ", "))
	rows, err := t.exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.New(fmt.Sprintf("Duplicate %s record", t.name), apperror.StatusExternal, ErrDuplicate)
		}
		return apperror.Internal(fmt.Sprintf("Error updating %s", t.name), err)
	}
	if rows == 0 {
		return t.notFound()
	}
	return nil
}

func (t *table[T]) queryOne(ctx context.Context, column string, value any, orderBy string) (*T, error) {
	return t.queryOneWhere(ctx, orderBy, eq(column, value))
}

func (t *table[T]) queryOneWhere(ctx context.Context, orderBy string, conds ...cond) (*T, error) {
	query, args, err := t.selectQuery(conds, orderBy)
	if err != nil {
		return nil, err
	}
	query = t.db.Rebind(query + " LIMIT 1")
	t.trace(query, args)

	var row T
	err = t.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, t.notFound()
	}
	if err != nil {
		return nil, apperror.Internal(fmt.Sprintf("Query failed on %s", t.name), err)
	}
	return &row, nil
}

// queryAll returns every matching row. An empty result is ErrNotFound unless allowEmpty is set.
func (t *table[T]) queryAll(ctx context.Context, column string, value any, orderBy string, allowEmpty bool) ([]T, error) {
	query, args, err := t.selectQuery([]cond{eq(column, value)}, orderBy)
	if err != nil {
		return nil, err
	}
	query = t.db.Rebind(query)
	t.trace(query, args)

	var rows []T
	err = t.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, apperror.Internal(fmt.Sprintf("Query failed on %s", t.name), err)
	}
	if len(rows) == 0 && !allowEmpty {
		return nil, t.notFound()
	}
	return rows, nil
}

func (t *table[T]) deleteAll(ctx context.Context, column string, value any) (int64, error) {
	where, args, err := t.where([]cond{eq(column, value)})
	if err != nil {
		return 0, err
	}

	rows, err := t.exec(ctx, fmt.Sprintf("DELETE FROM %s%s", t.name, where), args...)
	if err != nil {
		return 0, apperror.Internal(fmt.Sprintf("Error deleting from %s", t.name), err)
	}
	return rows, nil
}

func (t *table[T]) updateAll(ctx context.Context, setColumn string, setValue any, column string, value any) (int64, error) {
	if !t.writable[setColumn] {
		return 0, t.invalidColumn(setColumn)
	}
	where, args, err := t.where([]cond{eq(column, value)})
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf("UPDATE %s SET %s = ?%s", t.name, setColumn, where)
	rows, err := t.exec(ctx, query, append([]any{setValue}, args...)...)
	if err != nil {
		return 0, apperror.Internal(fmt.Sprintf("Error updating %s", t.name), err)
	}
	return rows, nil
}

func (t *table[T]) selectQuery(conds []cond, orderBy string) (string, []any, error) {
	where, args, err := t.where(conds)
	if err != nil {
		return "", nil, err
	}
	order, err := t.orderClause(orderBy)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("SELECT * FROM %s%s%s", t.name, where, order), args, nil
}

func (t *table[T]) where(conds []cond) (string, []any, error) {
	if len(conds) == 0 {
		return "", nil, t.missingValue("query")
	}

	parts := make([]string, len(conds))
	args := make([]any, len(conds))
	for i, c := range conds {
		if !t.queryable[c.column] {
			return "", nil, t.invalidColumn(c.column)
		}
		if isMissing(c.value) {
			return "", nil, t.missingValue(c.column)
		}
		parts[i] = c.column + " = ?"
		args[i] = c.value
	}
	return " WHERE " + strings.Join(parts, " AND "), args, nil
}

// orderClause accepts "<column>" or "<column> ASC|DESC" for a queryable column.
func (t *table[T]) orderClause(orderBy string) (string, error) {
	fields := strings.Fields(orderBy)
	switch len(fields) {
	case 0:
		return "", nil
	case 1, 2:
	default:
		return "", t.invalidColumn(orderBy)
	}

	if !t.queryable[fields[0]] {
		return "", t.invalidColumn(fields[0])
	}

	direction := "ASC"
	if len(fields) == 2 {
		direction = strings.ToUpper(fields[1])
		if direction != "ASC" && direction != "DESC" {
			return "", t.invalidColumn(orderBy)
		}
	}
	return fmt.Sprintf(" ORDER BY %s %s", fields[0], direction), nil
}

func isMissing(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case time.Time:
		return v.IsZero()
	default:
		return false
	}
}

func isUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func sortedKeys(values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// timestamp normalizes times to UTC with second precision so every driver stores and compares them the same way.
func timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
