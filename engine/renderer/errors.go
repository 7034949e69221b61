package renderer

import "errors"

var (
	// ErrCapability is returned by Initialize when the device lacks a feature the deferred pipeline
	// needs, such as float render targets. A renderer that failed this way refuses to render.
	ErrCapability = errors.New("renderer: missing required capability")

	// ErrNotInitialized is returned by Render before a successful Initialize.
	ErrNotInitialized = errors.New("renderer: not initialized")
)
