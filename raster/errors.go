package raster

import (
	"errors"
	"fmt"
)

var (
	// ErrRenderFailure is wrapped by every error a Rasterizer returns.
	ErrRenderFailure = errors.New("raster: render failure")

	// ErrUnknownBackend is returned by Get for an unregistered name.
	ErrUnknownBackend = errors.New("raster: unknown backend")

	// ErrNoBackend is returned by Default when nothing is registered.
	ErrNoBackend = errors.New("raster: no backend available")
)

// Failure wraps err as a render failure of the named backend. Errors that
// already wrap ErrRenderFailure are returned unchanged.
func Failure(backend string, err error) error {
	if err == nil || errors.Is(err, ErrRenderFailure) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrRenderFailure, backend, err)
}
