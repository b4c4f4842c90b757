package main

import (
	"context"
	"errors"

	"github.com/agenthands/routegraph/internal/driver"
)

const (
	ExitSuccess         = 0
	ExitError           = 1
	ExitConfigError     = 2
	ExitConnectionError = 3
	ExitQueryError      = 4
	ExitTransientError  = 5
	ExitTimeout         = 6
)

type configError struct {
	err error
}

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

func exitCode(err error) int {
	var cfgErr *configError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &cfgErr):
		return ExitConfigError
	case errors.Is(err, context.DeadlineExceeded):
		return ExitTimeout
	case errors.Is(err, driver.ErrConnection):
		return ExitConnectionError
	case errors.Is(err, driver.ErrTransient):
		return ExitTransientError
	case errors.Is(err, driver.ErrQuery):
		return ExitQueryError
	}
	return ExitError
}
