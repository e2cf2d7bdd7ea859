// Package display is the terminal's output side. The controller only talks
// to a Sink (one-way, fire-and-forget) and to the Terminal handle, which
// tracks the views opened on top of the idle screen so that they can be
// closed together.
package display

import "github.com/phrazzld/atm-session/internal/domain"

// Sink receives what the terminal should show. Implementations must not
// block and must not call back into the controller.
type Sink interface {
	ShowIdle()
	// ShowPinEntry shows the countdown and the masked PIN buffer.
	ShowPinEntry(remaining int, masked string)
	ShowIdentity(identity domain.Identity)
	ShowOperationResult(text string)
	ShowError(text string)
}
