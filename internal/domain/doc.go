// Package domain contains the terminal's core value types: card identifiers,
// PIN codes, authenticated identities, account operations and history entries.
// It has no knowledge of the remote API, the reader hardware or the display.
package domain
