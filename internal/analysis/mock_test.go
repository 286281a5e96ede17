package analysis

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/clearleaf/greenwash-cli/internal/model"
	"github.com/clearleaf/greenwash-cli/internal/store"
)

// --- Scripted oracle ---

// scriptedOracle answers by inspecting the prompt, recording every call.
type scriptedOracle struct {
	mu      sync.Mutex
	prompts []string
	respond func(prompt string) (string, error)
}

func (o *scriptedOracle) Complete(_ context.Context, prompt string) (string, error) {
	o.mu.Lock()
	o.prompts = append(o.prompts, prompt)
	o.mu.Unlock()
	return o.respond(prompt)
}

func (o *scriptedOracle) callCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.prompts)
}

// --- Scripted validator ---

type stubValidator struct {
	name model.Tool

	mu      sync.Mutex
	batches []string
	out     string
	err     error
}

func (v *stubValidator) Name() model.Tool {
	return v.name
}

func (v *stubValidator) Validate(_ context.Context, _ string, claimBatch string) (string, error) {
	v.mu.Lock()
	v.batches = append(v.batches, claimBatch)
	v.mu.Unlock()
	return v.out, v.err
}

func (v *stubValidator) callCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.batches)
}

// --- Store mock ---

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateRun(ctx context.Context, subject string) (*model.Run, error) {
	args := m.Called(ctx, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Run), args.Error(1)
}

func (m *mockStore) UpdateRunStatus(ctx context.Context, runID string, status string) error {
	args := m.Called(ctx, runID, status)
	return args.Error(0)
}

func (m *mockStore) SaveResult(ctx context.Context, runID string, result *model.AnalysisResult) error {
	args := m.Called(ctx, runID, result)
	return args.Error(0)
}

func (m *mockStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Run), args.Error(1)
}

func (m *mockStore) GetResult(ctx context.Context, runID string) (*model.AnalysisResult, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AnalysisResult), args.Error(1)
}

func (m *mockStore) ListRuns(ctx context.Context, filter store.RunFilter) ([]model.Run, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Run), args.Error(1)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
