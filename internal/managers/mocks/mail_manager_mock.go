package mocks

import (
	"github.com/stretchr/testify/mock"

	"library-admin/internal/schemas"
)

type MockMailManager struct {
	mock.Mock
}

func (m *MockMailManager) SendFineNotice(notice *schemas.FineNotice) error {
	args := m.Called(notice)
	return args.Error(0)
}
