//go:build !gl

package ca

import (
	"errors"
	"log"

	"flood-ca/pkg/lattice"
)

// ErrGLUnavailable reports a build without the gl backend.
var ErrGLUnavailable = errors.New("ca: the gl backend requires building with the 'gl' tag")

func newGL(*lattice.Grid, Options, *log.Logger) (backend, error) {
	return nil, ErrGLUnavailable
}

func init() {
	registerBackend("gl", newGL)
}
