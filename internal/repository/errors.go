package repository

import "errors"

// ErrConflictoVersion is returned when a compare-and-swap update finds the
// row changed since it was read. Callers re-read and retry.
var ErrConflictoVersion = errors.New("la versión del registro cambió")

// ErrDuplicado is returned when an insert violates a unique index.
var ErrDuplicado = errors.New("registro duplicado")
