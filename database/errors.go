package database

import "errors"

// ErrNotFound is returned when a product or category does not exist.
var ErrNotFound = errors.New("not found")
