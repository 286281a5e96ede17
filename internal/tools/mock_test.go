package tools

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/clearleaf/greenwash-cli/pkg/newsfeed"
	"github.com/clearleaf/greenwash-cli/pkg/wikirate"
)

// --- Oracle Mock ---

type mockOracle struct {
	mock.Mock
}

func (m *mockOracle) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// --- Newsfeed Mock ---

type mockFeed struct {
	mock.Mock
}

func (m *mockFeed) Search(ctx context.Context, subject string, limit int) ([]newsfeed.Article, error) {
	args := m.Called(ctx, subject, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]newsfeed.Article), args.Error(1)
}

// --- Wikirate Mock ---

type mockRegistry struct {
	mock.Mock
}

func (m *mockRegistry) CompanyMetrics(ctx context.Context, name string) (*wikirate.Company, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wikirate.Company), args.Error(1)
}
