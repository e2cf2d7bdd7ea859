package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// OperationKind identifies one of the supported account operations.
type OperationKind int

// Supported operations.
const (
	OperationWithdrawal OperationKind = iota + 1
	OperationTopUp
	OperationBalance
	OperationHistory
)

// String returns a log-friendly name for the kind.
func (k OperationKind) String() string {
	switch k {
	case OperationWithdrawal:
		return "withdrawal"
	case OperationTopUp:
		return "top_up"
	case OperationBalance:
		return "balance"
	case OperationHistory:
		return "history"
	default:
		return "unknown"
	}
}

// HasAmount reports whether the operation carries an amount parameter.
func (k OperationKind) HasAmount() bool {
	return k == OperationWithdrawal || k == OperationTopUp
}

// Operation is a chosen account action with its parameters.
// Amount is zero for Balance and History.
type Operation struct {
	Kind   OperationKind
	Amount decimal.Decimal
}

// NewOperation validates kind and amount and builds an Operation.
// Withdrawal and TopUp require a positive amount; the others ignore it.
func NewOperation(kind OperationKind, amount decimal.Decimal) (Operation, error) {
	switch kind {
	case OperationWithdrawal, OperationTopUp:
		if !amount.IsPositive() {
			return Operation{}, ErrInvalidAmount
		}
		return Operation{Kind: kind, Amount: amount}, nil
	case OperationBalance, OperationHistory:
		return Operation{Kind: kind}, nil
	default:
		return Operation{}, ErrUnknownOperation
	}
}

// ParseAmount normalizes free-form amount entry into a positive decimal.
// A comma decimal separator is accepted.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.Replace(s, ",", ".", 1)

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount, nil
}
