package display

import (
	"bytes"
	"testing"

	"github.com/phrazzld/atm-session/internal/domain"
	"github.com/phrazzld/atm-session/internal/platform/logger"
	"github.com/stretchr/testify/assert"
)

var ada = domain.Identity{FirstName: "Ada", LastName: "Lovelace", AccountID: 7, CardType: "debit"}

func TestTerminalViews(t *testing.T) {
	rec := &Recorder{}
	l, buf := logger.GetTestLogger(t)
	term := NewTerminal(rec, l)

	term.Open(ViewWelcome)
	term.Open(ViewOperation)
	term.Open(ViewOperation)
	term.Open(ViewReauthentication)
	assert.Equal(t, []View{ViewWelcome, ViewOperation, ViewReauthentication}, term.OpenViews())

	assert.True(t, term.Close(ViewOperation))
	assert.False(t, term.Close(ViewOperation))
	assert.False(t, term.IsOpen(ViewOperation))
	assert.True(t, term.IsOpen(ViewWelcome))

	closed := term.Sweep()
	assert.Equal(t, []View{ViewReauthentication, ViewWelcome}, closed)
	assert.Empty(t, term.OpenViews())
	logger.AssertLogContains(t, buf, "force-closing view")
	assert.Empty(t, rec.Lines(), "sweep alone draws nothing")

	term.Open(ViewPinEntry)
	term.ReturnToIdle()
	assert.Empty(t, term.OpenViews())
	assert.Equal(t, "idle", rec.Last())
	assert.Same(t, rec, term.Sink())
}

func TestFanout(t *testing.T) {
	l, buf := logger.GetTestLogger(t)
	a, b := &Recorder{}, &Recorder{}

	empty := NewFanout(l)
	empty.ShowIdle()
	logger.AssertLogContains(t, buf, "no sinks registered")

	f := NewFanout(l, a)
	f.Register(b)

	f.ShowIdle()
	f.ShowPinEntry(9, "**__")
	f.ShowIdentity(ada)
	f.ShowOperationResult("Balance: 80.00")
	f.ShowError("Kortti on estetty")

	want := []string{
		"idle",
		"pin **__ 9",
		"identity Ada Lovelace 7 debit",
		"result Balance: 80.00",
		"error Kortti on estetty",
	}
	assert.Equal(t, want, a.Lines())
	assert.Equal(t, want, b.Lines())
}

func TestConsoleSink(t *testing.T) {
	var out bytes.Buffer
	c := NewConsoleSink(&out, nil)

	c.ShowIdle()
	c.ShowPinEntry(10, "____")
	c.ShowIdentity(ada)
	c.ShowOperationResult("No transactions.")
	c.ShowError("Väärä PIN-koodi")

	assert.Equal(t,
		"Waiting for card...\n"+
			"PIN: ____  Time left: 10 s\n"+
			"Welcome, Ada Lovelace (account 7)\n"+
			"Card type: debit\n"+
			"No transactions.\n"+
			"Error: Väärä PIN-koodi\n",
		out.String())
}

func TestLogSinkNeverLogsPin(t *testing.T) {
	l, buf := logger.GetTestLogger(t)
	s := NewLogSink(l)

	s.ShowPinEntry(8, "***_")
	s.ShowOperationResult("line one\nline two")
	s.ShowError("Failed: Riittamattomat varat")

	logger.AssertLogField(t, buf, "entered", float64(3))
	logger.AssertLogField(t, buf, "lines", float64(2))
	logger.AssertLogNotContains(t, buf, "***_")
	logger.AssertLogContains(t, buf, "Riittamattomat varat")
}

func TestRecorderHelpers(t *testing.T) {
	r := &Recorder{}
	assert.Equal(t, "", r.Last())
	r.ShowError("x")
	assert.True(t, r.HasPrefix("error"))
	r.Reset()
	assert.Empty(t, r.Lines())
}
