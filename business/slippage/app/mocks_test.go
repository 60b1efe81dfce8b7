package app

import (
	"context"

	"github.com/fd1az/slippage-sentinel/business/slippage/domain"
	"github.com/fd1az/slippage-sentinel/internal/logger"
)

// mockLogger implements logger.LoggerInterface for testing.
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Info(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Warn(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Error(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Debugc(ctx context.Context, caller int, msg string, args ...any) {}
func (m *mockLogger) Infoc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Warnc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Errorc(ctx context.Context, caller int, msg string, args ...any) {}

var _ logger.LoggerInterface = (*mockLogger)(nil)

// mockProvider is a PoolProvider test double that counts calls.
type mockProvider struct {
	name  string
	pools []domain.NormalizedPool
	err   error
	calls int
	panic any
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) FetchPools(ctx context.Context, tokenIn, tokenOut string, hint domain.RouteHint) ([]domain.NormalizedPool, error) {
	m.calls++
	if m.panic != nil {
		panic(m.panic)
	}
	return m.pools, m.err
}

var _ PoolProvider = (*mockProvider)(nil)
