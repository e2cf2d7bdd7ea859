package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/atm-session/internal/config"
	"github.com/phrazzld/atm-session/internal/platform/logger"
	"github.com/phrazzld/atm-session/internal/testutils/fakebank"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Terminal: config.TerminalConfig{
			LogLevel:          "debug",
			PinTimeoutSeconds: 10,
			TickInterval:      time.Second,
			QueueSize:         32,
			WithdrawalPresets: []string{"20", "40", "50", "100"},
		},
		API: config.APIConfig{
			BaseURL:        baseURL,
			RequestTimeout: 2 * time.Second,
			BlockedMarker:  fakebank.MsgCardBlocked,
		},
	}
}

func TestApplicationRunsAWithdrawal(t *testing.T) {
	l, _ := logger.GetTestLogger(t)
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

	out := &syncBuffer{}
	app, err := newApplication(testConfig(server.URL), l, out)
	require.NoError(t, err)

	in, keys := io.Pipe()
	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background(), in) }()

	press := func(lines ...string) {
		t.Helper()
		_, err := io.WriteString(keys, strings.Join(lines, "\n")+"\n")
		require.NoError(t, err)
	}
	waitFor := func(text string) {
		t.Helper()
		require.Eventually(t, func() bool { return strings.Contains(out.String(), text) },
			3*time.Second, 10*time.Millisecond, "waiting for %q in:\n%s", text, out.String())
	}

	waitFor("Waiting for card...")
	press("card 1234567890")
	waitFor("PIN: ____")
	press("1111", "ok")
	waitFor("Welcome, Ada Lovelace (account 7)")
	waitFor("Card type: debit")

	press("w #1", "start", "1111", "ok")
	waitFor("Withdrawal successful. New balance: 80.00")
	assert.True(t, decimal.NewFromInt(80).Equal(bank.Balance(7)))

	require.NoError(t, keys.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("terminal did not stop after console input ended")
	}
	assert.NotContains(t, out.String(), "1111")
}

func TestNewApplicationErrors(t *testing.T) {
	l, _ := logger.GetTestLogger(t)

	cfg := testConfig("http://localhost:3000")
	cfg.Reader.Device = "/nonexistent/reader"
	_, err := newApplication(cfg, l, io.Discard)
	assert.ErrorContains(t, err, "failed to open card reader")

	cfg = testConfig("http://localhost:3000")
	cfg.Terminal.WithdrawalPresets = []string{"-20"}
	_, err = newApplication(cfg, l, io.Discard)
	assert.ErrorContains(t, err, "invalid terminal settings")

	cfg = testConfig("")
	_, err = newApplication(cfg, l, io.Discard)
	assert.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := loadConfig("/nonexistent/config.yaml")
	assert.ErrorContains(t, err, "failed to load configuration")
}
