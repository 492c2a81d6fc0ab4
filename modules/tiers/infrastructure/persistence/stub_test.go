package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type stubTx struct {
	queryFunc     func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	queryRowFunc  func(ctx context.Context, sql string, args ...any) pgx.Row
	sendBatchFunc func(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

func (s *stubTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("copy not implemented")
}

func (s *stubTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	if s.sendBatchFunc == nil {
		return &stubBatchResults{err: errors.New("batch not implemented")}
	}
	return s.sendBatchFunc(ctx, b)
}

func (s *stubTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (s *stubTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if s.queryFunc == nil {
		return nil, errors.New("query not implemented")
	}
	return s.queryFunc(ctx, sql, args...)
}

func (s *stubTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if s.queryRowFunc == nil {
		return stubRow{scan: func(dest ...any) error { return errors.New("query row not implemented") }}
	}
	return s.queryRowFunc(ctx, sql, args...)
}

// stubBatchResults hands out ids for QueryRow, row sets for Query, and fails
// the statement at index failAt (0-based) when failAt >= 0.
type stubBatchResults struct {
	ids    []int64
	rows   [][][]any
	failAt int
	err    error
	calls  int
	closed bool
}

func okBatch(ids ...int64) *stubBatchResults {
	return &stubBatchResults{ids: ids, failAt: -1}
}

func (b *stubBatchResults) next() (int, error) {
	i := b.calls
	b.calls++
	if b.err != nil {
		return i, b.err
	}
	if b.failAt >= 0 && i == b.failAt {
		return i, fmt.Errorf("statement %d failed", i)
	}
	return i, nil
}

func (b *stubBatchResults) Exec() (pgconn.CommandTag, error) {
	_, err := b.next()
	return pgconn.NewCommandTag("INSERT 0 1"), err
}

func (b *stubBatchResults) Query() (pgx.Rows, error) {
	i, err := b.next()
	if err != nil {
		return nil, err
	}
	if i >= len(b.rows) {
		return &stubRows{}, nil
	}
	return &stubRows{data: b.rows[i]}, nil
}

func (b *stubBatchResults) QueryRow() pgx.Row {
	i, err := b.next()
	return stubRow{scan: func(dest ...any) error {
		if err != nil {
			return err
		}
		*dest[0].(*int64) = b.ids[i]
		return nil
	}}
}

func (b *stubBatchResults) Close() error {
	b.closed = true
	return nil
}

type stubRows struct {
	data [][]any
	idx  int
	err  error
}

func (r *stubRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *stubRows) Scan(dest ...any) error {
	if r.idx == 0 || r.idx > len(r.data) {
		return errors.New("no current row to scan")
	}
	row := r.data[r.idx-1]
	if len(dest) != len(row) {
		return fmt.Errorf("destination length %d does not match row length %d", len(dest), len(row))
	}
	for i, target := range dest {
		switch v := target.(type) {
		case *int64:
			*v = row[i].(int64)
		case *string:
			*v = row[i].(string)
		default:
			return fmt.Errorf("unsupported scan target %T", target)
		}
	}
	return nil
}

func (r *stubRows) Values() ([]any, error) {
	if r.idx == 0 || r.idx > len(r.data) {
		return nil, errors.New("no current row")
	}
	return r.data[r.idx-1], nil
}

func (r *stubRows) RawValues() [][]byte { return nil }
func (r *stubRows) Err() error          { return r.err }
func (r *stubRows) Close()              {}
func (r *stubRows) CommandTag() pgconn.CommandTag {
	return pgconn.CommandTag{}
}
func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *stubRows) Conn() *pgx.Conn                              { return nil }

type stubRow struct {
	scan func(dest ...any) error
}

func (r stubRow) Scan(dest ...any) error {
	if r.scan == nil {
		return errors.New("scan not implemented")
	}
	return r.scan(dest...)
}
