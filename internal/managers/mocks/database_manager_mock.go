package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"library-admin/internal/interfaces"
)

type MockDatabaseManager struct {
	mock.Mock
}

func (m *MockDatabaseManager) GetPool() interfaces.PgxPoolIface {
	args := m.Called()
	return args.Get(0).(interfaces.PgxPoolIface)
}

// Ping delegates to the mocked pool so that pool expectations drive the health check.
func (m *MockDatabaseManager) Ping(ctx context.Context) error {
	return m.GetPool().Ping(ctx)
}

func (m *MockDatabaseManager) Migrate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDatabaseManager) Close() {
	m.Called()
}
