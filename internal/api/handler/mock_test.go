package handler

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"

	"github.com/edvin/backupd/internal/core"
	"github.com/edvin/backupd/internal/model"
)

// handlerMockDB implements core.DB for handler tests.
type handlerMockDB struct {
	mock.Mock
}

func (m *handlerMockDB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *handlerMockDB) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	args := m.Called(ctx, sql, arguments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Rows), args.Error(1)
}

func (m *handlerMockDB) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

// sqlContains matches a query by substring.
func sqlContains(fragment string) any {
	return mock.MatchedBy(func(q string) bool { return strings.Contains(q, fragment) })
}

type handlerMockRow struct {
	scanFunc func(dest ...any) error
}

func (m *handlerMockRow) Scan(dest ...any) error {
	return m.scanFunc(dest...)
}

func errRow(err error) *handlerMockRow {
	return &handlerMockRow{scanFunc: func(...any) error { return err }}
}

type handlerMockRows struct {
	idx       int
	scanFuncs []func(dest ...any) error
}

func (m *handlerMockRows) Next() bool { return m.idx < len(m.scanFuncs) }
func (m *handlerMockRows) Scan(dest ...any) error {
	fn := m.scanFuncs[m.idx]
	m.idx++
	return fn(dest...)
}
func (m *handlerMockRows) Err() error                                   { return nil }
func (m *handlerMockRows) Close()                                       {}
func (m *handlerMockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (m *handlerMockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (m *handlerMockRows) RawValues() [][]byte                          { return nil }
func (m *handlerMockRows) Values() ([]any, error)                       { return nil, nil }
func (m *handlerMockRows) Conn() *pgx.Conn                              { return nil }

// jobScan fills the scanned columns of a backup_jobs row.
func jobScan(id, name, scheduleType string) func(dest ...any) error {
	return func(dest ...any) error {
		*(dest[0].(*string)) = id
		*(dest[2].(*string)) = name
		*(dest[3].(*string)) = scheduleType
		*(dest[7].(*string)) = model.BackupTypeFull
		*(dest[8].(*int)) = model.DefaultRetentionDays
		*(dest[9].(*bool)) = true
		return nil
	}
}

// executionScan fills the scanned columns of a backup_executions row.
func executionScan(id, jobID, status string) func(dest ...any) error {
	return func(dest ...any) error {
		*(dest[0].(*string)) = id
		*(dest[1].(*string)) = jobID
		*(dest[2].(*string)) = status
		*(dest[3].(*string)) = model.BackupTypeFull
		return nil
	}
}

type fakeEngine struct {
	result *model.EngineResult
	err    error
	calls  int
}

func (f *fakeEngine) ExecuteBackup(context.Context, core.EngineRequest) (*model.EngineResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeRecalculator struct {
	calls int
	err   error
}

func (f *fakeRecalculator) Recalculate(context.Context, string) error {
	f.calls++
	return f.err
}

type busyGuard struct{}

func (busyGuard) Acquire(_ context.Context, jobID string) (func(), error) {
	return nil, &core.ConflictError{JobID: jobID}
}
