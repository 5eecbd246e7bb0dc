package database

import "errors"

// ErrNotReady is returned by Check when the database cannot be reached.
var ErrNotReady = errors.New("database not ready")
