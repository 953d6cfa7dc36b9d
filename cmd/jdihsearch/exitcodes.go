package main

import (
	"errors"

	"github.com/kailas-cloud/jdih-search/internal/domain"
)

// Exit codes.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // Runtime failure
	ExitConfigError = 2 // Configuration, corpus, dictionary or encoder unusable at startup
)

type cliConfigError struct{ err error }

func (e *cliConfigError) Error() string { return e.err.Error() }
func (e *cliConfigError) Unwrap() error { return e.err }

func configError(err error) error { return &cliConfigError{err: err} }

func exitCode(err error) int {
	var ce *cliConfigError
	if errors.As(err, &ce) || errors.Is(err, domain.ErrConfiguration) {
		return ExitConfigError
	}
	return ExitError
}
