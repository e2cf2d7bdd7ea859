package mocks

import (
	"context"

	"github.com/phrazzld/atm-session/internal/domain"
	"github.com/phrazzld/atm-session/internal/service/transaction"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// TestifyMockTransactionService is a mock of transaction.Service for use with testify/mock
type TestifyMockTransactionService struct {
	mock.Mock
}

// Ensure the mock implements transaction.Service
var _ transaction.Service = (*TestifyMockTransactionService)(nil)

// Withdraw is a mock implementation of transaction.Service.Withdraw
func (m *TestifyMockTransactionService) Withdraw(
	ctx context.Context,
	card domain.CardIdentifier,
	pin domain.PinCode,
	amount decimal.Decimal,
) (decimal.Decimal, error) {
	args := m.Called(ctx, card, pin, amount)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// TopUp is a mock implementation of transaction.Service.TopUp
func (m *TestifyMockTransactionService) TopUp(ctx context.Context, accountID int, amount decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID, amount)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// Balance is a mock implementation of transaction.Service.Balance
func (m *TestifyMockTransactionService) Balance(
	ctx context.Context,
	card domain.CardIdentifier,
	pin domain.PinCode,
) (decimal.Decimal, error) {
	args := m.Called(ctx, card, pin)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// History is a mock implementation of transaction.Service.History
func (m *TestifyMockTransactionService) History(ctx context.Context, accountID int) ([]domain.HistoryEntry, error) {
	args := m.Called(ctx, accountID)
	if entries, ok := args.Get(0).([]domain.HistoryEntry); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}
