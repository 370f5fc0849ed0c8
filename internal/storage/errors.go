package storage

import "errors"

// ErrNotFound is returned when no record exists for the given id or short id.
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned when an insert collides with an already issued
// short id, including ids retired by deleted records.
var ErrConflict = errors.New("data conflict")
