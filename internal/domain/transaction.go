package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryClass classifies a history entry for display.
type EntryClass string

// History entry classes, decided by the sign of the amount.
const (
	EntryWithdrawal EntryClass = "withdrawal"
	EntryDeposit    EntryClass = "deposit"
)

// HistoryEntry is one past account transaction returned by the remote API.
type HistoryEntry struct {
	TransactionID int
	Amount        decimal.Decimal
	// Time is zero when the remote timestamp could not be parsed; RawTime keeps the original.
	Time    time.Time
	RawTime string
}

// Class returns EntryWithdrawal for negative amounts and EntryDeposit otherwise.
func (e HistoryEntry) Class() EntryClass {
	if e.Amount.IsNegative() {
		return EntryWithdrawal
	}
	return EntryDeposit
}

var transactionTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTransactionTime accepts the ISO-8601 variants the remote API emits.
func ParseTransactionTime(raw string) (time.Time, bool) {
	for _, layout := range transactionTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
