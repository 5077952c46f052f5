package model

import (
	"errors"
	"fmt"
	"sync"

	"github.com/kartoza/premium-estimator/internal/premium"
)

// LoaderFunc builds a predictor from an artifact path
type LoaderFunc func(path string) (Predictor, error)

// Handle is the process-wide model handle. The artifact is loaded at most
// once; the outcome, success or failure, is kept until process exit.
type Handle struct {
	path string
	load LoaderFunc

	once      sync.Once
	predictor Predictor
	err       error
}

// NewHandle returns a handle that loads path with Load on first use
func NewHandle(path string) *Handle {
	return NewHandleFunc(path, Load)
}

// NewHandleFunc returns a handle backed by a custom loader
func NewHandleFunc(path string, load LoaderFunc) *Handle {
	return &Handle{path: path, load: load}
}

// Get returns the cached predictor, loading it on the first call. After
// a failed load every call returns the same premium.ErrModelUnavailable.
func (h *Handle) Get() (Predictor, error) {
	h.once.Do(func() {
		h.predictor, h.err = h.load(h.path)
		if h.err == nil && h.predictor == nil {
			h.err = fmt.Errorf("%w: loader returned no predictor for %s", premium.ErrModelUnavailable, h.path)
		}
		if h.err != nil && !errors.Is(h.err, premium.ErrModelUnavailable) {
			h.err = fmt.Errorf("%w: %w", premium.ErrModelUnavailable, h.err)
		}
		if h.err != nil {
			h.predictor = nil
		}
	})
	return h.predictor, h.err
}

// Preload forces the load at startup and returns its error
func (h *Handle) Preload() error {
	_, err := h.Get()
	return err
}

// Path returns the artifact path
func (h *Handle) Path() string {
	return h.path
}
