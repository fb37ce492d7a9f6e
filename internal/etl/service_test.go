package etl

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"possync/internal/brink"
	"possync/internal/ukg"
)

type fakeExtractor struct {
	employees []brink.Employee
	err       error
}

func (f *fakeExtractor) GetEmployees(context.Context) ([]brink.Employee, error) {
	return f.employees, f.err
}

type fakeLoader struct {
	calls   int
	records []map[string]any
	result  ukg.BatchResult
	err     error
}

func (f *fakeLoader) UpsertEmployees(_ context.Context, _ ukg.Credentials, records []map[string]any) (ukg.BatchResult, error) {
	f.calls++
	f.records = records
	return f.result, f.err
}

func newTestService(ex *fakeExtractor, ld *fakeLoader) *Service {
	return NewService(ex, ld, NewMemoryRunStore(), zap.NewNop().Sugar())
}

func sampleEmployees() []brink.Employee {
	return []brink.Employee{
		{ID: "e-1", PayrollID: "PR-1", FirstName: "Ana", LastName: "Diaz", IsActive: true},
		{ID: "e-2", FirstName: "Bo", LastName: "Li", IsActive: false},
	}
}

func TestExecuteDryRun(t *testing.T) {
	ld := &fakeLoader{}
	svc := newTestService(&fakeExtractor{employees: sampleEmployees()}, ld)

	res, err := svc.Execute(context.Background(), RunRequest{TenantID: "t-1"})
	require.NoError(t, err)
	assert.Equal(t, "DRY_RUN", res.Status)
	assert.Equal(t, 2, res.Extracted)
	assert.Equal(t, 2, res.Transformed)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "PR-1", res.Records[0]["employee_id"])
	assert.Equal(t, 0, ld.calls)

	// dry runs are not recorded
	_, ok, err := svc.runs.FindByKey(context.Background(), "t-1", "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExecuteLoadRequiresKey(t *testing.T) {
	svc := newTestService(&fakeExtractor{employees: sampleEmployees()}, &fakeLoader{})
	_, err := svc.Execute(context.Background(), RunRequest{TenantID: "t-1", Load: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "idempotency key")
}

func TestExecuteLoadAndReplay(t *testing.T) {
	ld := &fakeLoader{result: ukg.BatchResult{Batches: 1, Sent: 2}}
	svc := newTestService(&fakeExtractor{employees: sampleEmployees()}, ld)

	req := RunRequest{TenantID: "t-1", IdempotencyKey: "k-1", Load: true}
	res, err := svc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "SUCCEEDED", res.Status)
	assert.Equal(t, 2, res.Loaded)
	assert.False(t, res.Replayed)
	assert.Equal(t, 1, ld.calls)

	// same key replays the stored run without calling UKG again
	res2, err := svc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res2.Replayed)
	assert.Equal(t, res.ID, res2.ID)
	assert.Equal(t, 1, ld.calls)
}

type slowLoader struct {
	mu    sync.Mutex
	calls int
	delay time.Duration
}

func (f *slowLoader) UpsertEmployees(_ context.Context, _ ukg.Credentials, records []map[string]any) (ukg.BatchResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	time.Sleep(f.delay)
	return ukg.BatchResult{Batches: 1, Sent: len(records)}, nil
}

func TestExecuteConcurrentSameKeySingleLoad(t *testing.T) {
	ld := &slowLoader{delay: 20 * time.Millisecond}
	svc := NewService(&fakeExtractor{employees: sampleEmployees()}, ld, NewMemoryRunStore(), zap.NewNop().Sugar())

	req := RunRequest{TenantID: "t-1", IdempotencyKey: "k-9", Load: true}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Execute(context.Background(), req)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, ld.calls)
}

func TestExecuteLoadExtractFailureClosesClaim(t *testing.T) {
	svc := newTestService(&fakeExtractor{err: fmt.Errorf("soap fault")}, &fakeLoader{})
	_, err := svc.Execute(context.Background(), RunRequest{TenantID: "t-1", IdempotencyKey: "k-3", Load: true})
	require.Error(t, err)

	run, ok, ferr := svc.runs.FindByKey(context.Background(), "t-1", "k-3")
	require.NoError(t, ferr)
	require.True(t, ok)
	assert.Equal(t, "FAILED", run.Status)
	assert.NotNil(t, run.FinishedAt)
}

func TestExecutePartialBatch(t *testing.T) {
	ld := &fakeLoader{result: ukg.BatchResult{Batches: 2, Sent: 1, Failed: 1, Errors: []string{"batch 2: 502"}}}
	svc := newTestService(&fakeExtractor{employees: sampleEmployees()}, ld)

	res, err := svc.Execute(context.Background(), RunRequest{TenantID: "t-1", IdempotencyKey: "k-2", Load: true})
	require.NoError(t, err)
	assert.Equal(t, "PARTIAL", res.Status)
	assert.Contains(t, res.Detail, "batch 2: 502")
}

func TestExecuteExtractFailure(t *testing.T) {
	svc := newTestService(&fakeExtractor{err: fmt.Errorf("soap fault")}, &fakeLoader{})
	_, err := svc.Execute(context.Background(), RunRequest{TenantID: "t-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract")
}

func TestExecuteBadRecordCollected(t *testing.T) {
	// missing last name fails that record but not the run
	emps := append(sampleEmployees(), brink.Employee{ID: "e-3", FirstName: "NoLast"})
	svc := newTestService(&fakeExtractor{employees: emps}, &fakeLoader{})

	res, err := svc.Execute(context.Background(), RunRequest{TenantID: "t-1"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Extracted)
	assert.Equal(t, 2, res.Transformed)
	require.Len(t, res.Detail, 1)
	assert.Contains(t, res.Detail[0], "e-3")
}
