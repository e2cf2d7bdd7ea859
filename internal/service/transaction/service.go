// Package transaction provides the account operation facade over the banking
// API: withdraw, top up, balance and history. Each call is a single
// request/response exchange classified by the shared remote.Classifier.
package transaction

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/phrazzld/atm-session/internal/domain"
	"github.com/phrazzld/atm-session/internal/platform/logger"
	"github.com/phrazzld/atm-session/internal/redact"
	"github.com/phrazzld/atm-session/internal/remote"
	"github.com/shopspring/decimal"
)

// Endpoint paths.
const (
	PathWithdraw     = "/transactions/withdraw"
	PathTopUp        = "/transactions/top_up"
	PathBalance      = "/transactions/balance"
	PathTransactions = "/transactions/get_transactions"
)

// Success messages the server sends for card-keyed operations.
const (
	MsgWithdrawalOK = "Withdrawal successful"
	MsgBalanceOK    = "Balance retrieved successfully"
)

// Service performs account operations for an authenticated holder.
// Errors are *remote.Error values; use errors.Is with the remote sentinels.
type Service interface {
	Withdraw(ctx context.Context, card domain.CardIdentifier, pin domain.PinCode, amount decimal.Decimal) (decimal.Decimal, error)
	TopUp(ctx context.Context, accountID int, amount decimal.Decimal) (decimal.Decimal, error)
	Balance(ctx context.Context, card domain.CardIdentifier, pin domain.PinCode) (decimal.Decimal, error)
	History(ctx context.Context, accountID int) ([]domain.HistoryEntry, error)
}

type cardRequest struct {
	CardNumber string      `json:"card_number"`
	PinCode    string      `json:"pin_code"`
	Amount     json.Number `json:"amount,omitempty"`
}

type accountRequest struct {
	AccountID int         `json:"account_id"`
	Amount    json.Number `json:"amount,omitempty"`
}

type withdrawReply struct {
	Message     string `json:"message" validate:"required"`
	Transaction *struct {
		NewBalance *decimal.Decimal `json:"new_balance" validate:"required"`
	} `json:"transaction" validate:"required"`
}

type topUpReply struct {
	NewBalance *decimal.Decimal `json:"newBalance" validate:"required"`
}

type balanceReply struct {
	Balance *decimal.Decimal `json:"balance" validate:"required"`
}

type historyItem struct {
	TransactionID   *int             `json:"transaction_id"   validate:"required"`
	Summa           *decimal.Decimal `json:"summa"            validate:"required"`
	TransactionTime string           `json:"transaction_time" validate:"required"`
}

type remoteService struct {
	transport  remote.Transport
	classifier *remote.Classifier
}

// Ensure remoteService implements Service interface
var _ Service = (*remoteService)(nil)

// NewService creates a transaction facade over transport.
func NewService(transport remote.Transport, classifier *remote.Classifier) Service {
	return &remoteService{
		transport:  transport,
		classifier: classifier,
	}
}

// Withdraw debits amount from the card's account and returns the new balance.
func (s *remoteService) Withdraw(
	ctx context.Context,
	card domain.CardIdentifier,
	pin domain.PinCode,
	amount decimal.Decimal,
) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, domain.ErrInvalidAmount
	}

	var reply withdrawReply
	err := s.exchange(ctx, PathWithdraw, cardRequest{
		CardNumber: card.String(),
		PinCode:    string(pin),
		Amount:     json.Number(amount.String()),
	}, messageIs(MsgWithdrawalOK), &reply)
	if err != nil {
		return decimal.Zero, err
	}
	return *reply.Transaction.NewBalance, nil
}

// TopUp credits amount to the account and returns the new balance.
func (s *remoteService) TopUp(ctx context.Context, accountID int, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, domain.ErrInvalidAmount
	}

	var reply topUpReply
	err := s.exchange(ctx, PathTopUp, accountRequest{
		AccountID: accountID,
		Amount:    json.Number(amount.String()),
	}, func(p remote.Payload) bool { return p.Bool("success") }, &reply)
	if err != nil {
		return decimal.Zero, err
	}
	return *reply.NewBalance, nil
}

// Balance returns the card's account balance.
func (s *remoteService) Balance(ctx context.Context, card domain.CardIdentifier, pin domain.PinCode) (decimal.Decimal, error) {
	var reply balanceReply
	err := s.exchange(ctx, PathBalance, cardRequest{
		CardNumber: card.String(),
		PinCode:    string(pin),
	}, messageIs(MsgBalanceOK), &reply)
	if err != nil {
		return decimal.Zero, err
	}
	return *reply.Balance, nil
}

// History returns the account's recent transactions. Only an array reply is
// a success.
func (s *remoteService) History(ctx context.Context, accountID int) ([]domain.HistoryEntry, error) {
	log := logger.FromContext(ctx).With("component", "transaction_service", "path", PathTransactions)

	resp, err := s.transport.Post(ctx, PathTransactions, accountRequest{AccountID: accountID})
	payload, err := s.classifier.Classify(resp, err, remote.Payload.IsArray)
	if err != nil {
		logFailure(log, err)
		return nil, err
	}

	items, err := remote.DecodeElements[historyItem](payload)
	if err != nil {
		log.Warn("history reply incomplete", "error", err)
		return nil, err
	}

	entries := make([]domain.HistoryEntry, 0, len(items))
	for _, item := range items {
		entry := domain.HistoryEntry{
			TransactionID: *item.TransactionID,
			Amount:        *item.Summa,
			RawTime:       item.TransactionTime,
		}
		if ts, ok := domain.ParseTransactionTime(item.TransactionTime); ok {
			entry.Time = ts
		}
		entries = append(entries, entry)
	}

	log.Info("history retrieved", "account_id", accountID, "entries", len(entries))
	return entries, nil
}

// exchange posts body to path, classifies the reply and decodes an accepted
// payload into out.
func (s *remoteService) exchange(
	ctx context.Context,
	path string,
	body any,
	accept func(remote.Payload) bool,
	out any,
) error {
	log := logger.FromContext(ctx).With("component", "transaction_service", "path", path)

	resp, err := s.transport.Post(ctx, path, body)
	payload, err := s.classifier.Classify(resp, err, accept)
	if err != nil {
		logFailure(log, err)
		return err
	}
	if err := remote.DecodeValid(payload, out); err != nil {
		log.Warn("reply incomplete", "error", err)
		return err
	}

	log.Info("operation succeeded")
	return nil
}

func messageIs(want string) func(remote.Payload) bool {
	return func(p remote.Payload) bool {
		return p.String("message") == want
	}
}

func logFailure(log *slog.Logger, err error) {
	if errors.Is(err, remote.ErrCardBlocked) {
		log.Warn("card blocked reported", "error", redact.Error(err))
		return
	}
	log.Info("operation failed", "error", redact.Error(err))
}
