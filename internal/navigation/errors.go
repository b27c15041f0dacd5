package navigation

import "errors"

// ErrAlreadyRunning is returned by Run when the engine has already been started.
var ErrAlreadyRunning = errors.New("navigation: engine already running")
