package session_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/atm-session/internal/config"
	"github.com/phrazzld/atm-session/internal/display"
	"github.com/phrazzld/atm-session/internal/domain"
	"github.com/phrazzld/atm-session/internal/events"
	"github.com/phrazzld/atm-session/internal/operation"
	"github.com/phrazzld/atm-session/internal/pin"
	"github.com/phrazzld/atm-session/internal/platform/logger"
	"github.com/phrazzld/atm-session/internal/reader"
	"github.com/phrazzld/atm-session/internal/remote"
	"github.com/phrazzld/atm-session/internal/service/auth"
	"github.com/phrazzld/atm-session/internal/service/transaction"
	"github.com/phrazzld/atm-session/internal/session"
	"github.com/phrazzld/atm-session/internal/testutils/fakebank"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stillTicker struct{}

func (stillTicker) C() <-chan time.Time { return nil }
func (stillTicker) Stop()               {}

type terminalRig struct {
	t      *testing.T
	ctx    context.Context
	bank   *fakebank.Bank
	ctrl   *session.Controller
	driver *reader.ManualDriver
	rec    *display.Recorder
	logs   *logger.TestLogBuffer
}

func newTerminalRig(t *testing.T) *terminalRig {
	t.Helper()
	l, buf := logger.GetTestLogger(t)

	bank := fakebank.New(l)
	require.NoError(t, bank.Add(fakebank.Holder{
		AccountID: 7,
		Card:      "1234567890",
		PIN:       "1111",
		FirstName: "Ada",
		LastName:  "Lovelace",
		CardType:  "debit",
		Balance:   decimal.NewFromInt(100),
	}))
	server := fakebank.NewServer(t, bank)

	transport, err := remote.NewHTTPTransport(config.APIConfig{
		BaseURL:        server.URL,
		RequestTimeout: 2 * time.Second,
		BlockedMarker:  fakebank.MsgCardBlocked,
	}, l)
	require.NoError(t, err)
	classifier := remote.NewClassifier(fakebank.MsgCardBlocked)

	cfg, err := session.ConfigFrom(config.TerminalConfig{
		PinTimeoutSeconds: 10,
		TickInterval:      time.Second,
		WithdrawalPresets: []string{"20", "40"},
	})
	require.NoError(t, err)

	rec := &display.Recorder{}
	queue := events.NewQueue(64, l)
	driver := reader.NewManualDriver()
	source := reader.NewSource(driver, func(card domain.CardIdentifier) error {
		return queue.Post(events.CardPresented{Card: card})
	}, l)
	require.NoError(t, source.Start())
	t.Cleanup(source.Stop)

	ctrl, err := session.NewController(cfg, session.Deps{
		Queue:    queue,
		Verifier: auth.NewService(transport, classifier),
		Executor: operation.NewExecutor(transaction.NewService(transport, classifier)),
		Terminal: display.NewTerminal(rec, l),
		Cards:    source,
		Logger:   l,
	},
		session.WithTickerFactory(func(time.Duration) pin.Ticker { return stillTicker{} }),
		session.WithAsync(func(f func()) { f() }),
	)
	require.NoError(t, err)

	return &terminalRig{t: t, ctx: context.Background(), bank: bank, ctrl: ctrl, driver: driver, rec: rec, logs: buf}
}

func (r *terminalRig) send(payloads ...events.Payload) {
	r.t.Helper()
	for _, p := range payloads {
		require.NoError(r.t, r.ctrl.Post(p))
	}
	r.ctrl.Drain(r.ctx)
}

func (r *terminalRig) insertCard(raw string) {
	r.t.Helper()
	require.True(r.t, r.driver.Present(raw))
	r.ctrl.Drain(r.ctx)
}

func (r *terminalRig) typePin(code string) {
	r.t.Helper()
	for _, d := range code {
		r.send(events.DigitEntered{Digit: d})
	}
	r.send(events.PinSubmitted{})
}

func TestTerminalAgainstBank(t *testing.T) {
	r := newTerminalRig(t)

	r.insertCard("1234567890\r\n")
	require.Equal(t, session.PinEntry, r.ctrl.State())

	// The same card read again while its session is open is suppressed.
	r.insertCard("1234567890")

	r.typePin("1111")
	require.Equal(t, session.Authenticated, r.ctrl.State())
	assert.Equal(t, "identity Ada Lovelace 7 debit", r.rec.Last())

	r.send(events.OperationChosen{Operation: domain.OperationWithdrawal, Preset: 1}, events.OperationStarted{})
	r.typePin("1111")

	assert.Contains(t, r.rec.Lines(), "result Withdrawal successful. New balance: 80.00")
	assert.Equal(t, session.Idle, r.ctrl.State())
	assert.True(t, decimal.NewFromInt(80).Equal(r.bank.Balance(7)))
	assert.Equal(t, 2, r.bank.Calls(fakebank.PathAuth))
	assert.Equal(t, 1, r.bank.Calls(fakebank.PathWithdraw))

	// After release the same card can open a new session.
	r.insertCard("1234567890")
	require.Equal(t, session.PinEntry, r.ctrl.State())
	r.typePin("1111")
	r.send(events.OperationChosen{Operation: domain.OperationHistory}, events.OperationStarted{})
	r.typePin("1111")

	var history string
	for _, l := range r.rec.Lines() {
		if strings.HasPrefix(l, "result ID:") {
			history = l
		}
	}
	assert.Contains(t, history, "Type: withdrawal, Amount: -20.00")

	logger.AssertLogNotContains(t, r.logs, `"pin_code":"1111"`)
}

func TestTerminalWrongPinThenBlocked(t *testing.T) {
	r := newTerminalRig(t)

	for i := 0; i < fakebank.MaxFailedAttempts-1; i++ {
		r.insertCard("1234567890")
		r.typePin("9999")
		assert.Equal(t, "error "+fakebank.MsgWrongPIN, r.rec.Lines()[len(r.rec.Lines())-2])
		assert.Equal(t, session.Idle, r.ctrl.State())
	}

	r.insertCard("1234567890")
	r.typePin("9999")

	assert.Equal(t, "error "+fakebank.MsgCardBlocked, r.rec.Last())
	assert.Equal(t, session.Idle, r.ctrl.State())
	assert.True(t, r.bank.Blocked("1234567890"))
	logger.AssertLogContains(t, r.logs, "card blocked, closing all session views")
}

func TestTerminalBlockedDuringOperation(t *testing.T) {
	r := newTerminalRig(t)

	r.insertCard("1234567890")
	r.typePin("1111")
	r.send(events.OperationChosen{Operation: domain.OperationTopUp, Amount: "25"}, events.OperationStarted{})

	// The card is blocked between selection and execution.
	r.bank.Block("1234567890")
	r.typePin("1111")

	assert.Equal(t, "error "+fakebank.MsgCardBlocked, r.rec.Last())
	assert.Equal(t, session.Idle, r.ctrl.State())
	assert.Equal(t, 0, r.bank.Calls(fakebank.PathTopUp))
}

func TestCardReadWhileAnotherSessionOpensIsNotLost(t *testing.T) {
	r := newTerminalRig(t)
	const first, second, third = "1234567890", "2222222222", "3333333333"

	r.insertCard(first)
	require.Equal(t, session.PinEntry, r.ctrl.State())

	// The second card is read while the first session is still closing.
	require.NoError(t, r.ctrl.Post(events.Cancelled{Reason: "view closed"}))
	require.True(t, r.driver.Present(second))
	r.ctrl.Drain(r.ctx)
	s, open := r.ctrl.Session()
	require.True(t, open)
	assert.Equal(t, domain.CardIdentifier(second), s.Card)

	// A card read during someone else's session is ignored, not remembered.
	r.insertCard(third)
	s, _ = r.ctrl.Session()
	assert.Equal(t, domain.CardIdentifier(second), s.Card)

	r.send(events.Cancelled{Reason: "view closed"})
	require.Equal(t, session.Idle, r.ctrl.State())

	for _, card := range []string{third, second, first} {
		r.insertCard(card)
		s, open = r.ctrl.Session()
		require.True(t, open, card)
		assert.Equal(t, domain.CardIdentifier(card), s.Card)
		r.send(events.Cancelled{Reason: "view closed"})
		require.Equal(t, session.Idle, r.ctrl.State(), card)
	}
}
