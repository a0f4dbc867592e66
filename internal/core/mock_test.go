package core

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"

	"github.com/edvin/backupd/internal/model"
)

// ---------- Mock DB ----------

// mockDB implements the DB interface for testing.
type mockDB struct {
	mock.Mock
}

func (m *mockDB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *mockDB) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	args := m.Called(ctx, sql, arguments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Rows), args.Error(1)
}

func (m *mockDB) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

// sqlContains matches a query by substring.
func sqlContains(fragment string) any {
	return mock.MatchedBy(func(q string) bool { return strings.Contains(q, fragment) })
}

// ---------- Mock Row ----------

// mockRow implements pgx.Row for testing.
type mockRow struct {
	scanFunc func(dest ...any) error
}

func (m *mockRow) Scan(dest ...any) error {
	return m.scanFunc(dest...)
}

func errRow(err error) *mockRow {
	return &mockRow{scanFunc: func(...any) error { return err }}
}

// ---------- Mock Rows ----------

// mockRows implements pgx.Rows for testing.
// It iterates through a list of scan functions, one per row.
type mockRows struct {
	callIndex int
	scanFuncs []func(dest ...any) error
	err       error
}

func newMockRows(scanFuncs ...func(dest ...any) error) *mockRows {
	return &mockRows{scanFuncs: scanFuncs}
}

// newEmptyMockRows returns a mockRows that yields zero rows.
func newEmptyMockRows() *mockRows {
	return &mockRows{}
}

func (m *mockRows) Next() bool {
	return m.callIndex < len(m.scanFuncs)
}

func (m *mockRows) Scan(dest ...any) error {
	if m.callIndex < len(m.scanFuncs) {
		fn := m.scanFuncs[m.callIndex]
		m.callIndex++
		return fn(dest...)
	}
	return nil
}

func (m *mockRows) Err() error                                   { return m.err }
func (m *mockRows) Close()                                       {}
func (m *mockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (m *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (m *mockRows) RawValues() [][]byte                          { return nil }
func (m *mockRows) Values() ([]any, error)                       { return nil, nil }
func (m *mockRows) Conn() *pgx.Conn                              { return nil }

// ---------- Row fixtures ----------

func jobRowFrom(j model.BackupJob) func(dest ...any) error {
	return func(dest ...any) error {
		*(dest[0].(*string)) = j.ID
		*(dest[1].(**string)) = j.TenantID
		*(dest[2].(*string)) = j.JobName
		*(dest[3].(*string)) = j.ScheduleType
		*(dest[4].(**string)) = j.ScheduleTime
		*(dest[5].(**int)) = j.ScheduleDay
		*(dest[6].(**int)) = j.ScheduleDayOfWeek
		*(dest[7].(*string)) = j.BackupType
		*(dest[8].(*int)) = j.RetentionDays
		*(dest[9].(*bool)) = j.Enabled
		*(dest[10].(**time.Time)) = j.LastRunAt
		*(dest[11].(**time.Time)) = j.NextRunAt
		*(dest[12].(**string)) = j.CreatedBy
		*(dest[13].(*time.Time)) = j.CreatedAt
		*(dest[14].(*time.Time)) = j.UpdatedAt
		return nil
	}
}

func executionRowFrom(e model.BackupExecution) func(dest ...any) error {
	return func(dest ...any) error {
		*(dest[0].(*string)) = e.ID
		*(dest[1].(*string)) = e.BackupJobID
		*(dest[2].(*string)) = e.Status
		*(dest[3].(*string)) = e.BackupType
		*(dest[4].(**string)) = e.FilePath
		*(dest[5].(**int64)) = e.FileSizeBytes
		*(dest[6].(**float64)) = e.FileSizeMB
		*(dest[7].(*time.Time)) = e.StartedAt
		*(dest[8].(**time.Time)) = e.CompletedAt
		*(dest[9].(**int)) = e.DurationSeconds
		*(dest[10].(**string)) = e.ErrorMessage
		*(dest[11].(**int64)) = e.RecordsBackedUp
		*(dest[12].(*[]string)) = e.TablesBackedUp
		*(dest[13].(**string)) = e.CreatedBy
		return nil
	}
}

func checksumRow(md5, sha256 *string) *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*string)) = "exec"
		*(dest[1].(**string)) = md5
		*(dest[2].(**string)) = sha256
		return nil
	}}
}

func completedExecution(id, jobID string) model.BackupExecution {
	size := int64(2048)
	return model.BackupExecution{
		ID:            id,
		BackupJobID:   jobID,
		Status:        model.StatusCompleted,
		BackupType:    model.BackupTypeFull,
		FilePath:      ptr("/backups/" + id + ".sql.gz"),
		FileSizeBytes: &size,
		StartedAt:     time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC),
	}
}

func ptr[T any](v T) *T { return &v }

// ---------- Collaborator fakes ----------

type fakeEngine struct {
	mu     sync.Mutex
	result *model.EngineResult
	err    error
	reqs   []EngineRequest
}

func (f *fakeEngine) ExecuteBackup(_ context.Context, req EngineRequest) (*model.EngineResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	return f.result, f.err
}

type fakeRecalculator struct {
	calls []string
	err   error
}

func (f *fakeRecalculator) Recalculate(_ context.Context, jobID string) error {
	f.calls = append(f.calls, jobID)
	return f.err
}

type fakeGuard struct {
	acquired []string
	released int
	err      error
}

func (g *fakeGuard) Acquire(_ context.Context, jobID string) (func(), error) {
	if g.err != nil {
		return nil, g.err
	}
	g.acquired = append(g.acquired, jobID)
	return func() { g.released++ }, nil
}
