package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/phrazzld/atm-session/internal/domain"
	"github.com/phrazzld/atm-session/internal/events"
	"github.com/phrazzld/atm-session/internal/reader"
)

// Console input errors
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("missing or invalid argument")
	ErrNoConsoleCards = errors.New("cards are read from the reader device")
)

// command is one parsed console line.
type command struct {
	card     string
	payloads []events.Payload
	help     bool
	quit     bool
}

// parseCommand turns a console line into a command.
//
//	card <id>        present a card
//	1234             PIN digits
//	clear, ok        clear or submit the PIN
//	w <amount|#n>    withdraw an amount or preset n
//	d <amount>       deposit
//	b, h             balance, history
//	start            start the selected operation
//	return           acknowledge a confirmation
//	cancel           close the session
func parseCommand(line string) (command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{}, nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	if isDigits(name) {
		if len(args) > 0 {
			return command{}, ErrUsage
		}
		payloads := make([]events.Payload, 0, len(name))
		for _, r := range name {
			payloads = append(payloads, events.DigitEntered{Digit: r})
		}
		return command{payloads: payloads}, nil
	}

	one := func(p events.Payload) (command, error) {
		if len(args) > 0 {
			return command{}, ErrUsage
		}
		return command{payloads: []events.Payload{p}}, nil
	}

	switch name {
	case "card":
		if len(args) != 1 {
			return command{}, ErrUsage
		}
		return command{card: args[0]}, nil
	case "clear":
		return one(events.PinCleared{})
	case "ok":
		return one(events.PinSubmitted{})
	case "w":
		if len(args) != 1 {
			return command{}, ErrUsage
		}
		choice := events.OperationChosen{Operation: domain.OperationWithdrawal}
		if n, ok := strings.CutPrefix(args[0], "#"); ok {
			preset, err := strconv.Atoi(n)
			if err != nil || preset <= 0 {
				return command{}, ErrUsage
			}
			choice.Preset = preset
		} else {
			choice.Amount = args[0]
		}
		return command{payloads: []events.Payload{choice}}, nil
	case "d":
		if len(args) != 1 {
			return command{}, ErrUsage
		}
		return command{payloads: []events.Payload{
			events.OperationChosen{Operation: domain.OperationTopUp, Amount: args[0]},
		}}, nil
	case "b":
		return one(events.OperationChosen{Operation: domain.OperationBalance})
	case "h":
		return one(events.OperationChosen{Operation: domain.OperationHistory})
	case "start":
		return one(events.OperationStarted{})
	case "return":
		return one(events.ConfirmationAcknowledged{})
	case "cancel":
		return one(events.Cancelled{Reason: "cancel pressed"})
	case "help", "?":
		return command{help: true}, nil
	case "quit", "exit":
		return command{quit: true}, nil
	default:
		return command{}, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
}

func isDigits(s string) bool {
	for _, r := range s {
		if !domain.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

// console reads keypad commands line by line and posts them as events.
type console struct {
	in      io.Reader
	out     io.Writer
	post    func(events.Payload) error
	cards   *reader.ManualDriver
	presets int
	logger  *slog.Logger
}

func newConsole(
	in io.Reader,
	out io.Writer,
	post func(events.Payload) error,
	cards *reader.ManualDriver,
	presets int,
	logger *slog.Logger,
) *console {
	return &console{
		in:      in,
		out:     out,
		post:    post,
		cards:   cards,
		presets: presets,
		logger:  logger.With("component", "console"),
	}
}

// Run processes input until it ends, a quit command is read or ctx is done.
func (c *console) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		cmd, err := parseCommand(scanner.Text())
		if err != nil {
			fmt.Fprintf(c.out, "? %v (type help)\n", err)
			continue
		}
		if cmd.quit {
			c.logger.Info("quit requested")
			return nil
		}
		if err := c.dispatch(cmd); err != nil {
			fmt.Fprintf(c.out, "? %v\n", err)
		}
	}
	return scanner.Err()
}

func (c *console) dispatch(cmd command) error {
	if cmd.help {
		c.printHelp()
		return nil
	}
	if cmd.card != "" {
		if c.cards == nil {
			return ErrNoConsoleCards
		}
		c.cards.Present(cmd.card)
		return nil
	}
	for _, p := range cmd.payloads {
		if err := c.post(p); err != nil {
			return err
		}
	}
	return nil
}

func (c *console) printHelp() {
	lines := []string{
		"card <id>      present a card",
		"<digits>       enter PIN digits; clear | ok",
		"w <amount>     withdraw an amount",
		fmt.Sprintf("w #<n>         withdraw preset n (1-%d)", c.presets),
		"d <amount>     deposit",
		"b | h          balance | history",
		"start          confirm the operation with your PIN",
		"return         acknowledge a deposit",
		"cancel         end the session",
		"quit           exit",
	}
	if c.presets == 0 {
		lines = append(lines[:3], lines[4:]...)
	}
	fmt.Fprintln(c.out, strings.Join(lines, "\n"))
}
