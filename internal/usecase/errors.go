package usecase

import crerr "github.com/cockroachdb/errors"

var (
	ErrInvalidInput = crerr.New("invalid input")
	ErrNotFound     = crerr.New("resource not found")
	// ErrProvider marks transport or parse failures from an upstream feed.
	// An empty-but-well-formed provider response is never an ErrProvider;
	// callers rely on that distinction to tell "nothing here" from "could
	// not ask".
	ErrProvider              = crerr.New("provider failure")
	ErrDependencyUnavailable = crerr.New("dependency unavailable")
)
