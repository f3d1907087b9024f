package catalog

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
)

// fakeRow implements pgx.Row.
type fakeRow struct {
	scanFn func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.scanFn != nil {
		return r.scanFn(dest...)
	}
	return pgx.ErrNoRows
}

// mockQuerier records the last query and answers with rowFn.
type mockQuerier struct {
	rowFn func(sql string, args []any) pgx.Row

	sql   string
	args  []any
	calls int
}

func (m *mockQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	m.calls++
	m.sql, m.args = sql, args
	if m.rowFn != nil {
		return m.rowFn(sql, args)
	}
	return fakeRow{}
}

func newTestRepo(t *testing.T) (*Repo, *mockQuerier) {
	t.Helper()
	mq := &mockQuerier{}
	return New(mq), mq
}

func int64Ptr(v int64) *int64 { return &v }

func floatPtr(v float64) *float64 { return &v }
