// Package operation executes a chosen account operation for an authenticated
// holder and turns the outcome into display text plus a disposition telling
// the controller where to go next.
package operation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/phrazzld/atm-session/internal/domain"
	"github.com/phrazzld/atm-session/internal/platform/logger"
	"github.com/phrazzld/atm-session/internal/remote"
	"github.com/phrazzld/atm-session/internal/service/transaction"
	"github.com/shopspring/decimal"
)

// HistoryTimeLayout is how history timestamps are displayed.
const HistoryTimeLayout = "2006-01-02 15:04:05"

// NoTransactionsText is shown for an empty history.
const NoTransactionsText = "No transactions."

// Disposition tells the controller what follows a presented result.
type Disposition int

const (
	// ReturnToIdle ends the session once the result is shown.
	ReturnToIdle Disposition = iota
	// Confirm holds the result on a confirmation view until acknowledged.
	Confirm
)

// Target is the session data an operation is keyed on. Withdrawal and
// Balance use Card and Pin; TopUp and History use AccountID.
type Target struct {
	Card      domain.CardIdentifier
	Pin       domain.PinCode
	AccountID int
}

// Result is the classified outcome of one execution.
type Result struct {
	Operation   domain.OperationKind
	Text        string
	Disposition Disposition

	// Err is the classified failure, nil on success.
	Err error

	// Balance is the balance reported by a successful Withdrawal, TopUp or Balance.
	Balance decimal.Decimal

	// Entries is the history returned by a successful History call.
	Entries []domain.HistoryEntry
}

// Failed reports whether the operation did not succeed.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Blocked reports whether the server signalled a blocked card.
func (r Result) Blocked() bool {
	return errors.Is(r.Err, remote.ErrCardBlocked)
}

// Executor maps operations onto TransactionService calls.
type Executor struct {
	transactions transaction.Service
}

// NewExecutor creates an executor over the transaction facade.
func NewExecutor(transactions transaction.Service) *Executor {
	return &Executor{transactions: transactions}
}

// Execute runs op for target. It performs exactly one remote call.
func (e *Executor) Execute(ctx context.Context, target Target, op domain.Operation) Result {
	log := logger.FromContext(ctx).With("component", "operation_executor", "operation", op.Kind.String())

	var result Result
	switch op.Kind {
	case domain.OperationWithdrawal:
		balance, err := e.transactions.Withdraw(ctx, target.Card, target.Pin, op.Amount)
		result = balanceResult(op.Kind, balance, err, "Withdrawal successful. New balance: %s")
	case domain.OperationTopUp:
		balance, err := e.transactions.TopUp(ctx, target.AccountID, op.Amount)
		result = balanceResult(op.Kind, balance, err, "Deposit successful. New balance: %s")
		if !result.Failed() {
			result.Disposition = Confirm
		}
	case domain.OperationBalance:
		balance, err := e.transactions.Balance(ctx, target.Card, target.Pin)
		result = balanceResult(op.Kind, balance, err, "Balance: %s")
	case domain.OperationHistory:
		entries, err := e.transactions.History(ctx, target.AccountID)
		if err != nil {
			result = failure(op.Kind, err)
		} else {
			result = Result{Operation: op.Kind, Text: FormatHistory(entries), Entries: entries}
		}
	default:
		result = failure(op.Kind, domain.ErrUnknownOperation)
	}

	if result.Failed() {
		log.Info("operation failed", "blocked", result.Blocked(), "error", result.Err)
	} else {
		log.Info("operation completed", "disposition", int(result.Disposition))
	}
	return result
}

func balanceResult(kind domain.OperationKind, balance decimal.Decimal, err error, format string) Result {
	if err != nil {
		return failure(kind, err)
	}
	return Result{
		Operation: kind,
		Text:      fmt.Sprintf(format, balance.StringFixed(2)),
		Balance:   balance,
	}
}

func failure(kind domain.OperationKind, err error) Result {
	msg := remote.MessageOf(err)
	text := "Failed: " + msg
	if errors.Is(err, remote.ErrCardBlocked) {
		text = msg
	}
	return Result{Operation: kind, Text: text, Err: err}
}

// FormatHistory renders entries one per line, or NoTransactionsText.
func FormatHistory(entries []domain.HistoryEntry) string {
	if len(entries) == 0 {
		return NoTransactionsText
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		when := entry.RawTime
		if !entry.Time.IsZero() {
			when = entry.Time.Format(HistoryTimeLayout)
		}
		lines = append(lines, fmt.Sprintf("ID: %d, Type: %s, Amount: %s, Time: %s",
			entry.TransactionID, entry.Class(), entry.Amount.StringFixed(2), when))
	}
	return strings.Join(lines, "\n")
}
