package render

import "errors"

// ErrNotReady is returned by Run when Init has not succeeded.
var ErrNotReady = errors.New("backend is not ready")
