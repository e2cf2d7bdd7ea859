package fakebank

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// Server messages, as the real backend sends them.
const (
	MsgCardBlocked       = "Kortti on estetty"
	MsgWrongPIN          = "Väärä PIN-koodi"
	MsgCardNotFound      = "Korttia ei löydy"
	MsgInsufficientFunds = "Riittamattomat varat"
	MsgTokenMissing      = "Token puuttuu, autentikointi vaaditaan"
	MsgTokenInvalid      = "Virheellinen tai vanhentunut token"
	MsgWithdrawalOK      = "Withdrawal successful"
	MsgBalanceOK         = "Balance retrieved successfully"
)

// MaxFailedAttempts is the number of wrong PINs that blocks a card.
const MaxFailedAttempts = 3

// ErrDuplicateCard is returned by Add when the card is already registered.
var ErrDuplicateCard = errors.New("card already registered")

// Holder describes one card, its account and its owner.
type Holder struct {
	AccountID int
	Card      string
	PIN       string
	FirstName string
	LastName  string
	CardType  string
	Balance   decimal.Decimal
}

// Transaction is one recorded balance change.
type Transaction struct {
	ID        int
	AccountID int
	Amount    decimal.Decimal
	Time      time.Time
}

type card struct {
	number    string
	accountID int
	cardType  string
	pinHash   []byte
	failed    int
	blocked   bool
}

type account struct {
	id        int
	firstName string
	lastName  string
	balance   decimal.Decimal
}

// Bank holds the fake backend state. It is safe for concurrent use.
type Bank struct {
	mu           sync.Mutex
	cards        map[string]*card
	accounts     map[int]*account
	transactions []Transaction
	calls        map[string]int
	overrides    map[string]http.HandlerFunc
	secret       []byte
	now          func() time.Time
	logger       *slog.Logger
}

// New creates an empty bank.
func New(logger *slog.Logger) *Bank {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bank{
		cards:     make(map[string]*card),
		accounts:  make(map[int]*account),
		calls:     make(map[string]int),
		overrides: make(map[string]http.HandlerFunc),
		secret:    []byte("fakebank-test-secret-32-characters"),
		now:       time.Now,
		logger:    logger.With("component", "fakebank"),
	}
}

// Add registers a card holder. The PIN is stored as a bcrypt hash.
func (b *Bank) Add(h Holder) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(h.PIN), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("failed to hash PIN: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.cards[h.Card]; exists {
		return ErrDuplicateCard
	}
	b.cards[h.Card] = &card{
		number:    h.Card,
		accountID: h.AccountID,
		cardType:  h.CardType,
		pinHash:   hash,
	}
	b.accounts[h.AccountID] = &account{
		id:        h.AccountID,
		firstName: h.FirstName,
		lastName:  h.LastName,
		balance:   h.Balance,
	}
	return nil
}

// Record appends a transaction to an account's history without touching the balance.
func (b *Bank) Record(accountID int, amount decimal.Decimal, at time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recordLocked(accountID, amount, at)
}

func (b *Bank) recordLocked(accountID int, amount decimal.Decimal, at time.Time) {
	b.transactions = append(b.transactions, Transaction{
		ID:        len(b.transactions) + 1,
		AccountID: accountID,
		Amount:    amount,
		Time:      at,
	})
}

// Block marks a card as blocked.
func (b *Bank) Block(cardNumber string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := b.cards[cardNumber]; ok {
		c.blocked = true
	}
}

// Blocked reports whether a card is blocked.
func (b *Bank) Blocked(cardNumber string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.cards[cardNumber]
	return ok && c.blocked
}

// Balance returns an account's current balance.
func (b *Bank) Balance(accountID int) decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	if a, ok := b.accounts[accountID]; ok {
		return a.balance
	}
	return decimal.Zero
}

// Calls returns how many requests reached path.
func (b *Bank) Calls(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[path]
}

// Override replaces the handler of path, for injecting faults.
func (b *Bank) Override(path string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.overrides[path] = h
}

// SetClock replaces the time source used for new transactions.
func (b *Bank) SetClock(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
}

// NewServer starts an httptest server for bank and closes it when the test ends.
func NewServer(t testing.TB, bank *Bank) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(bank.Handler())
	t.Cleanup(server.Close)
	return server
}
