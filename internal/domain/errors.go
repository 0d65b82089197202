package domain

import "errors"

var (
	// ErrInsufficientLiquidity is the defined outcome of a depth walk that
	// cannot fill the requested quantity. It is not a transport failure.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")

	// ErrMissingCredential means no signing key was configured. It is fatal
	// for trade-intent calls and is never retried automatically.
	ErrMissingCredential = errors.New("missing signing credential")

	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limited")
)
