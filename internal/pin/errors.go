package pin

import "errors"

// ErrNotAwaiting is returned by Submit once the capture has left AwaitingDigits.
var ErrNotAwaiting = errors.New("pin capture is not awaiting digits")
