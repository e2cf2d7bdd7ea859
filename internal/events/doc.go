// Package events defines the inputs of the session controller and the
// ordered queue they travel through.
//
// Every source of change (the card reader, the keypad, the PIN countdown,
// completed network exchanges) marshals its input into an Event and posts it
// to a single Queue. The controller drains the queue one event at a time, so
// no two state transitions ever run concurrently and the order between, for
// example, a countdown expiry and a verification response is simply the order
// in which they were posted.
//
// Asynchronous completions carry the Token of the PIN capture or exchange that
// started them; the controller discards completions whose token is no longer
// current.
package events
